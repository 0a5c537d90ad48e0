/*
The options package holds the caller-supplied connection options and the
compatibility check that runs against the server's greeting before a
connection is considered usable. The check is deliberately separate from the
transport so that the negotiation policy can evolve without touching the
socket handling.
*/
package options

import (
	"crypto/tls"

	"github.com/ferritemq/ferrite-go/connection"
	"github.com/ferritemq/ferrite-go/wire"
)

const DefaultPendingLimit = 200

// ConnectOptions configure a single transport instance. They are fixed for
// the life of the connection.
type ConnectOptions struct {
	// TLSConfig, when set, is merged over the transport's base TLS config
	// during the encrypted upgrade. Leaving it nil requests a plain
	// connection unless the server mandates encryption.
	TLSConfig *tls.Config

	// RequireTLS refuses to proceed if the server cannot speak TLS.
	RequireTLS bool

	// Debug enables tracing of every inbound and outbound frame.
	Debug bool

	// PendingLimit bounds the inbound frame queue. Defaults to
	// DefaultPendingLimit when zero.
	PendingLimit int
}

// Check validates the requested options against the capabilities the server
// announced. A mismatch is a handshake failure: the transport propagates the
// returned error verbatim to the caller of Connect.
func Check(info *wire.ServerInfo, opts ConnectOptions) error {
	if opts.RequireTLS && !info.TLSRequired && !info.TLSAvailable {
		return &connection.OptionMismatchError{
			Reason: "client requires a TLS connection but the server does not support TLS",
		}
	}

	if info.AuthRequired {
		return &connection.OptionMismatchError{
			Reason: "server requires authentication which this client was not configured for",
		}
	}

	return nil
}
