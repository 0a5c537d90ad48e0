/*
The connection package defines the seam between this library's transport layer
and everything built on top of it: message parsing, subscription routing, and
reconnect policy all consume a Connection without caring whether a raw TCP
socket or a websocket is ferrying the frames underneath.
*/
package connection

type Connection interface {
	// Send writes one raw frame. Sends into a closed connection are
	// silently swallowed so best-effort final writes never fail.
	Send(frame []byte) error

	// Inbound yields raw frames in arrival order. Single consumer only;
	// select against Done to learn when the stream terminates.
	Inbound() <-chan *[]byte

	// Close tears the connection down with the given cause; only the first
	// close, from whichever trigger, takes effect. Disconnect is the
	// fire-and-forget clean variant.
	Close(reason error)
	Disconnect()

	// Done fires once shutdown has finished; Err then reports the first
	// presented cause, nil for a clean close.
	Done() <-chan struct{}
	Err() error

	IsClosed() bool
	IsEncrypted() bool
}
