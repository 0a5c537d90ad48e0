package transporter

import (
	"github.com/ferritemq/ferrite-go/telemetry/throughputstats"
)

// Transporter is the surface a connected byte-frame transport exposes to the
// protocol layer above it. How a transport reaches the broker (raw TCP with
// an in-place TLS upgrade, or a websocket) is up to the implementation; once
// connected they all ferry opaque frames the same way.
//
// Inbound has single-consumer semantics: exactly one goroutine may drain it,
// selecting against Done to learn when the stream has terminated. Err reports
// the terminal cause after Done is closed, nil for a clean shutdown.
type Transporter interface {
	Done() <-chan struct{}
	Err() error
	Inbound() <-chan *[]byte
	Send(frame []byte) error
	Close(reason error)
	Disconnect()
	IsClosed() bool
	IsEncrypted() bool
	Stats() throughputstats.Digest
}
