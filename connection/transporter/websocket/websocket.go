/*
The websocket package establishes and ferries raw frames across a websocket
connection, for ferrite brokers deployed behind HTTP front ends. In terms of
the overall connection layer architecture this package sits at the same level
as tcpsocket: it delivers opaque frames to the protocol handler above, which
performs the greeting handshake over whichever transport carried it.
*/
package websocket

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	gorilla "github.com/gorilla/websocket"
	"gopkg.in/tomb.v2"

	"github.com/ferritemq/ferrite-go/connection"
	"github.com/ferritemq/ferrite-go/connection/options"
	"github.com/ferritemq/ferrite-go/connection/transporter"
	"github.com/ferritemq/ferrite-go/logger"
	"github.com/ferritemq/ferrite-go/telemetry/throughputstats"
	"github.com/ferritemq/ferrite-go/wire"
)

const (
	SecureUrlScheme = "wss"
	PlainUrlScheme  = "ws"
)

var UrlScheme = SecureUrlScheme

type Websocket struct {
	tmb    tomb.Tomb
	logger *logger.Logger

	opts  options.ConnectOptions
	stats *throughputstats.ThroughputStats

	client *gorilla.Conn

	mu        sync.Mutex
	connected bool
	done      bool
	encrypted bool

	// Received frames, in arrival order
	inbound chan *[]byte
}

var _ transporter.Transporter = &Websocket{}
var _ connection.Connection = &Websocket{}

func New(logger *logger.Logger, opts options.ConnectOptions) *Websocket {
	pending := opts.PendingLimit
	if pending <= 0 {
		pending = options.DefaultPendingLimit
	}

	return &Websocket{
		logger:  logger,
		opts:    opts,
		inbound: make(chan *[]byte, pending),
	}
}

// Dial opens the websocket to the broker's front end. The url scheme is
// forced to the package-wide UrlScheme; wss connections report as encrypted.
func (w *Websocket) Dial(ctx context.Context, connUrl *url.URL, headers http.Header) error {
	connUrl.Scheme = UrlScheme

	client, _, err := gorilla.DefaultDialer.DialContext(ctx, connUrl.String(), headers)
	if err != nil {
		return &connection.ConnectionFailedError{Err: err}
	}

	w.stats = throughputstats.New("bytes", w.tmb.Dead())

	w.mu.Lock()
	w.client = client
	w.encrypted = connUrl.Scheme == SecureUrlScheme
	w.connected = true
	w.mu.Unlock()

	w.tmb.Go(w.receive)

	return nil
}

func (w *Websocket) receive() error {
	defer w.logger.Infof("Websocket connection closed")
	w.logger.Infof("Websocket connection started")

	for {
		_, frame, err := w.client.ReadMessage()
		if err != nil {
			if !w.tmb.Alive() || w.IsClosed() {
				return nil
			}

			if gorilla.IsCloseError(err, gorilla.CloseNormalClosure) {
				// peer closed with no error; not a failure
				w.shutdown(nil)
			} else {
				w.shutdown(err)
			}
			return nil
		}

		if w.opts.Debug {
			w.logger.Tracef("<<- %s", wire.Render(frame))
		}
		w.stats.CountInbound(len(frame))

		select {
		case w.inbound <- &frame:
		case <-w.tmb.Dying():
		}
	}
}

// Send writes one frame as a binary websocket message. Sending into a closed
// websocket is a silent no-op, matching the transport contract.
func (w *Websocket) Send(frame []byte) error {
	w.mu.Lock()
	client := w.client
	done := w.done
	w.mu.Unlock()

	if done || client == nil {
		return nil
	}

	if w.opts.Debug {
		w.logger.Tracef("->> %s", wire.Render(frame))
	}

	if err := client.WriteMessage(gorilla.BinaryMessage, frame); err != nil {
		return &connection.WriteFailedError{Err: err}
	}
	w.stats.CountOutbound(len(frame))

	return nil
}

func (w *Websocket) Inbound() <-chan *[]byte {
	return w.inbound
}

func (w *Websocket) Close(reason error) {
	w.mu.Lock()
	connected := w.connected
	w.mu.Unlock()

	if !connected {
		return
	}

	w.shutdown(reason)
	w.tmb.Wait()
}

func (w *Websocket) Disconnect() {
	w.shutdown(nil)
}

func (w *Websocket) shutdown(reason error) {
	w.mu.Lock()
	if !w.connected || w.done {
		w.mu.Unlock()
		return
	}
	w.done = true
	client := w.client
	w.mu.Unlock()

	if reason == nil {
		w.logger.Infof("Websocket connection closing")

		// Best-effort close frame so the peer sees a normal closure; a
		// failure here must never block shutdown
		message := gorilla.FormatCloseMessage(gorilla.CloseNormalClosure, "")
		if err := client.WriteMessage(gorilla.CloseMessage, message); err != nil {
			w.logger.Debugf("final close frame failed: %s", err)
		}
	} else {
		w.logger.Infof("Websocket connection closing because: %s", reason)
	}

	w.tmb.Kill(reason)

	if err := client.Close(); err != nil {
		w.logger.Debugf("error destroying websocket: %s", err)
	}
}

func (w *Websocket) Done() <-chan struct{} {
	return w.tmb.Dead()
}

func (w *Websocket) Err() error {
	if err := w.tmb.Err(); err != tomb.ErrStillAlive {
		return err
	}
	return nil
}

func (w *Websocket) IsClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.done
}

func (w *Websocket) IsEncrypted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.connected && w.encrypted
}

func (w *Websocket) Stats() throughputstats.Digest {
	if w.stats == nil {
		return throughputstats.Digest{}
	}
	return w.stats.Digest()
}
