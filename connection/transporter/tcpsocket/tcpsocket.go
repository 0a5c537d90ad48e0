/*
The tcpsocket package owns the raw byte-stream connection to a ferrite broker.
It dials the socket, performs the greeting handshake (including the in-place
upgrade to TLS when the server mandates or the caller requests it), and then
ferries raw frames in both directions until the connection is torn down. In
terms of the overall connection layer architecture this package is at the
lowest layer, providing the raw bytes to the protocol handler for it to parse
and handle.
*/
package tcpsocket

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"syscall"
	"time"

	"gopkg.in/tomb.v2"

	"github.com/ferritemq/ferrite-go/connection"
	"github.com/ferritemq/ferrite-go/connection/options"
	"github.com/ferritemq/ferrite-go/connection/transporter"
	"github.com/ferritemq/ferrite-go/logger"
	"github.com/ferritemq/ferrite-go/telemetry/throughputstats"
	"github.com/ferritemq/ferrite-go/wire"
)

const (
	readBufferSize = 32 * 1024

	// Deadline for the best-effort flush write on clean shutdown
	flushWriteTimeout = 2 * time.Second
)

// Target identifies the broker endpoint to dial.
type Target struct {
	Host string
	Port int
}

func (t Target) String() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

type Transport struct {
	tmb    tomb.Tomb
	logger *logger.Logger

	opts  options.ConnectOptions
	stats *throughputstats.ThroughputStats

	// guards the socket handle and the lifecycle flags
	mu        sync.Mutex
	conn      net.Conn
	connected bool
	done      bool
	encrypted bool

	info *wire.ServerInfo

	// Received frames, in arrival order
	inbound chan *[]byte
}

var _ transporter.Transporter = &Transport{}
var _ connection.Connection = &Transport{}

func New(logger *logger.Logger, opts options.ConnectOptions) *Transport {
	pending := opts.PendingLimit
	if pending <= 0 {
		pending = options.DefaultPendingLimit
	}

	return &Transport{
		logger:  logger,
		opts:    opts,
		inbound: make(chan *[]byte, pending),
	}
}

// Connect dials the target, reads and validates the server's greeting, and
// upgrades to TLS when negotiated. On any failure the transport is left
// unconnected with no resources to clean up: Done never fires for a
// connection that never existed.
func (t *Transport) Connect(ctx context.Context, target Target) error {
	t.mu.Lock()
	if t.connected || t.done {
		t.mu.Unlock()
		return &connection.ConnectionFailedError{Err: errors.New("transport has already been connected")}
	}
	t.mu.Unlock()

	conn, err := t.dial(ctx, target)
	if err != nil {
		return err
	}

	info, leftover, err := t.readGreeting(ctx, conn)
	if err != nil {
		conn.Close()
		return err
	}

	if err := options.Check(info, t.opts); err != nil {
		conn.Close()
		return err
	}

	encrypted := false
	if info.TLSRequired || t.opts.RequireTLS || t.opts.TLSConfig != nil {
		if conn, err = t.upgrade(ctx, conn, target); err != nil {
			return err
		}
		encrypted = true
	}

	t.stats = throughputstats.New("bytes", t.tmb.Dead())

	t.mu.Lock()
	t.conn = conn
	t.info = info
	t.encrypted = encrypted
	t.connected = true
	t.mu.Unlock()

	// Bytes that trailed the greeting in the same read belong to the frame
	// pump, ahead of anything the socket delivers next
	if len(leftover) > 0 {
		frame := make([]byte, len(leftover))
		copy(frame, leftover)
		t.queue(frame)
	}

	t.tmb.Go(t.receive)

	t.logger.Infof("Connected to %s (server %s, version %s)", target, info.ServerID, info.Version)
	return nil
}

func (t *Transport) dial(ctx context.Context, target Target) (net.Conn, error) {
	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", target.String())
	if err != nil {
		if errors.Is(err, syscall.ECONNREFUSED) {
			return nil, &connection.ConnectionRefusedError{Err: err}
		}
		return nil, &connection.ConnectionFailedError{Err: err}
	}

	// Handshake acknowledgments are tiny; don't let write coalescing hold
	// them back
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err := tcpConn.SetNoDelay(true); err != nil {
			t.logger.Debugf("failed to disable write coalescing: %s", err)
		}
	}

	return conn, nil
}

// readGreeting accumulates reads until one complete protocol line can be
// extracted, then parses it as the server greeting. Whatever followed the
// line in the accumulated buffer is returned untouched for the frame pump.
func (t *Transport) readGreeting(ctx context.Context, conn net.Conn) (*wire.ServerInfo, []byte, error) {
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
	}

	// Cancellation has to break a blocked Read the same way a deadline does
	watcherStopped := make(chan struct{})
	stopWatcher := make(chan struct{})
	go func() {
		defer close(watcherStopped)
		select {
		case <-ctx.Done():
			conn.SetReadDeadline(time.Now())
		case <-stopWatcher:
		}
	}()
	defer func() {
		close(stopWatcher)
		<-watcherStopped
		conn.SetReadDeadline(time.Time{})
	}()

	var accumulated []byte
	buf := make([]byte, readBufferSize)

	for {
		n, err := conn.Read(buf)
		if n > 0 {
			accumulated = append(accumulated, buf[:n]...)

			if line, rest, ok := wire.ExtractLine(accumulated); ok {
				info, perr := wire.ParseServerInfo(line)
				if perr != nil {
					return nil, nil, &connection.ProtocolViolationError{Err: perr}
				}
				return info, rest, nil
			}
		}

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, nil, &connection.ConnectionFailedError{
					Err: fmt.Errorf("greeting read aborted: %w", ctxErr),
				}
			}
			return nil, nil, &connection.ConnectionFailedError{
				Err: fmt.Errorf("connection closed before the server greeting arrived: %w", err),
			}
		}
	}
}

// upgrade wraps the raw socket in a TLS session, merging the caller's tls
// config over our base one. The session owns the raw conn from here on; there
// is no separate handle left to close.
func (t *Transport) upgrade(ctx context.Context, conn net.Conn, target Target) (net.Conn, error) {
	tlsConf := &tls.Config{}
	if t.opts.TLSConfig != nil {
		tlsConf = t.opts.TLSConfig.Clone()
	}
	if tlsConf.ServerName == "" {
		tlsConf.ServerName = target.Host
	}
	if tlsConf.MinVersion == 0 {
		tlsConf.MinVersion = tls.VersionTLS12
	}

	tlsConn := tls.Client(conn, tlsConf)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, &connection.ConnectionFailedError{Err: fmt.Errorf("tls handshake failed: %w", err)}
	}

	return tlsConn, nil
}

func (t *Transport) receive() error {
	defer t.logger.Infof("Frame pump stopped")
	t.logger.Infof("Frame pump started")

	buf := make([]byte, readBufferSize)

	for {
		t.mu.Lock()
		conn := t.conn
		t.mu.Unlock()

		if conn == nil {
			return nil
		}

		n, err := conn.Read(buf)
		if n > 0 {
			frame := make([]byte, n)
			copy(frame, buf[:n])
			t.queue(frame)
		}

		if err != nil {
			if !t.tmb.Alive() || t.IsClosed() {
				// shutdown already owns the close cause
				return nil
			}

			if errors.Is(err, io.EOF) {
				// The server hung up without reporting a problem first;
				// that's a clean close, not a failure
				t.shutdown(nil)
			} else {
				t.shutdown(err)
			}
			return nil
		}
	}
}

func (t *Transport) queue(frame []byte) {
	if t.opts.Debug {
		t.logger.Tracef("<<- %s", wire.Render(frame))
	}
	t.stats.CountInbound(len(frame))

	select {
	case t.inbound <- &frame:
	case <-t.tmb.Dying():
	}
}

// Send writes a frame to the current socket handle. Sending into a closed
// transport is not an error: best-effort final writes are silently swallowed.
// A failed write is reported to this caller only and does not tear the
// connection down.
func (t *Transport) Send(frame []byte) error {
	t.mu.Lock()
	conn := t.conn
	done := t.done
	t.mu.Unlock()

	if done || conn == nil {
		return nil
	}

	if t.opts.Debug {
		t.logger.Tracef("->> %s", wire.Render(frame))
	}

	if _, err := conn.Write(frame); err != nil {
		return &connection.WriteFailedError{Err: err}
	}
	t.stats.CountOutbound(len(frame))

	return nil
}

// Inbound is the stream of raw frames in arrival order. It has
// single-consumer semantics; drain it from one goroutine, selecting against
// Done to learn when the stream has terminated.
func (t *Transport) Inbound() <-chan *[]byte {
	return t.inbound
}

// Close drives an orderly shutdown and waits for the frame pump to finish.
// Only the first close has any effect, whichever trigger it came from; its
// cause is what Err reports forever after.
func (t *Transport) Close(reason error) {
	t.mu.Lock()
	connected := t.connected
	t.mu.Unlock()

	// An aborted in-progress connect has nothing to tear down
	if !connected {
		return
	}

	t.shutdown(reason)
	t.tmb.Wait()
}

// Disconnect triggers a caller-initiated clean close without waiting for the
// teardown to finish. Callers who need to know when shutdown completed must
// watch Done.
func (t *Transport) Disconnect() {
	t.shutdown(nil)
}

// shutdown is the one close path shared by every trigger: explicit Close,
// Disconnect, and socket-reported closure from the frame pump. It never
// waits on the tomb, so it is safe to call from tracked goroutines.
func (t *Transport) shutdown(reason error) {
	t.mu.Lock()
	if !t.connected || t.done {
		t.mu.Unlock()
		return
	}
	t.done = true
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()

	if reason == nil {
		t.logger.Infof("Connection closing")
	} else {
		t.logger.Infof("Connection closing because: %s", reason)
	}

	// One best-effort flush write on a clean close. The server discards the
	// frame; it only exists to push out anything still buffered. A failure
	// here must never block shutdown
	if reason == nil {
		conn.SetWriteDeadline(time.Now().Add(flushWriteTimeout))
		if _, err := conn.Write(wire.OKFrame); err != nil {
			t.logger.Debugf("final flush write failed: %s", err)
		}
	}

	t.tmb.Kill(reason)

	if err := conn.Close(); err != nil {
		t.logger.Debugf("error destroying socket: %s", err)
	}
}

// Done fires exactly once, after shutdown has finished, for every waiter.
func (t *Transport) Done() <-chan struct{} {
	return t.tmb.Dead()
}

// Err reports the cause of closure: nil while the connection is live and
// after a clean close, the first presented cause otherwise.
func (t *Transport) Err() error {
	if err := t.tmb.Err(); err != tomb.ErrStillAlive {
		return err
	}
	return nil
}

func (t *Transport) IsClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// IsEncrypted reports whether the socket was upgraded to TLS. It becomes true
// only once the TLS handshake has completed.
func (t *Transport) IsEncrypted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected && t.encrypted
}

// ServerInfo returns the parsed greeting, nil before a successful handshake.
func (t *Transport) ServerInfo() *wire.ServerInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.info
}

func (t *Transport) Stats() throughputstats.Digest {
	if t.stats == nil {
		return throughputstats.Digest{}
	}
	return t.stats.Digest()
}
