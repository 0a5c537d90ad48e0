package tcpsocket

import (
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/ferritemq/ferrite-go/logger"
)

// MockBrokerServer is a single-connection broker stand-in for tests: it
// accepts one client, writes its greeting (optionally split across several
// writes, optionally followed by a server-side TLS upgrade), then records
// whatever the client sends and pushes whatever a test asks it to.
type MockBrokerServer struct {
	logger   *logger.Logger
	listener net.Listener

	Target        Target
	ReceivedBytes chan []byte

	mu             sync.Mutex
	greetingWrites [][]byte
	writeGap       time.Duration
	tlsConfig      *tls.Config
	conn           net.Conn
	accepted       chan struct{}
}

const defaultGreeting = "INFO {\"server_id\":\"MOCK\",\"version\":\"0.0.0\",\"proto\":1}\r\n"

func NewMockBrokerServer(logger *logger.Logger) *MockBrokerServer {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		logger.Errorf("failed to setup listener")
	}

	mockServer := &MockBrokerServer{
		logger:   logger,
		listener: listener,
		Target: Target{
			Host: "127.0.0.1",
			Port: listener.Addr().(*net.TCPAddr).Port,
		},
		ReceivedBytes:  make(chan []byte, 16),
		greetingWrites: [][]byte{[]byte(defaultGreeting)},
		accepted:       make(chan struct{}),
	}

	go mockServer.serve()

	return mockServer
}

// SetGreeting replaces the default greeting with the given writes, issued one
// socket write at a time with a short gap in between. Call before the client
// dials in.
func (m *MockBrokerServer) SetGreeting(writes ...[]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.greetingWrites = writes
	m.writeGap = 10 * time.Millisecond
}

// ServeTLS makes the server upgrade its side of the connection right after
// the greeting is written, mirroring a broker that mandates encryption. Call
// before the client dials in.
func (m *MockBrokerServer) ServeTLS(config *tls.Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tlsConfig = config
}

func (m *MockBrokerServer) serve() {
	conn, err := m.listener.Accept()
	if err != nil {
		return
	}

	// Accept only returns once the test's client has dialed, so the test is
	// done configuring; snapshot under the lock.
	m.mu.Lock()
	greetingWrites := m.greetingWrites
	writeGap := m.writeGap
	tlsConfig := m.tlsConfig
	m.mu.Unlock()

	for _, chunk := range greetingWrites {
		if _, err := conn.Write(chunk); err != nil {
			m.logger.Errorf("greeting write failed: %s", err)
			return
		}
		time.Sleep(writeGap)
	}

	if tlsConfig != nil {
		tlsConn := tls.Server(conn, tlsConfig)
		if err := tlsConn.Handshake(); err != nil {
			m.logger.Errorf("server side tls handshake failed: %s", err)
			return
		}
		conn = tlsConn
	}

	m.mu.Lock()
	m.conn = conn
	m.mu.Unlock()
	close(m.accepted)

	// The read loop
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			received := make([]byte, n)
			copy(received, buf[:n])
			m.ReceivedBytes <- received
		}
		if err != nil {
			return
		}
	}
}

// Push writes a frame to the connected client.
func (m *MockBrokerServer) Push(frame []byte) error {
	conn, err := m.waitForClient()
	if err != nil {
		return err
	}
	_, err = conn.Write(frame)
	return err
}

// HangUp closes the server's side of the connection without any prior error,
// the way a broker going down gracefully does.
func (m *MockBrokerServer) HangUp() error {
	conn, err := m.waitForClient()
	if err != nil {
		return err
	}
	return conn.Close()
}

func (m *MockBrokerServer) waitForClient() (net.Conn, error) {
	select {
	case <-m.accepted:
	case <-time.After(3 * time.Second):
		return nil, fmt.Errorf("no client connected")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn, nil
}

func (m *MockBrokerServer) Shutdown() {
	m.listener.Close()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn != nil {
		m.conn.Close()
	}
}
