package websocket

import (
	"fmt"
	"net"
	"net/http"

	"github.com/ferritemq/ferrite-go/logger"
	gorilla "github.com/gorilla/websocket"
)

// MockFrontEnd is a websocket endpoint that replays every frame it receives
// back to the client, standing in for a broker's HTTP front end.
type MockFrontEnd struct {
	logger   *logger.Logger
	listener net.Listener

	Addr          string
	ReceivedBytes chan []byte
}

func NewMockFrontEnd(logger *logger.Logger) *MockFrontEnd {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		logger.Errorf("failed to setup listener")
	}

	mockServer := &MockFrontEnd{
		logger:        logger,
		listener:      listener,
		Addr:          fmt.Sprintf("http://127.0.0.1:%d", listener.Addr().(*net.TCPAddr).Port),
		ReceivedBytes: make(chan []byte, 1),
	}

	go func() {
		http.Serve(mockServer.listener, mockServer)
	}()

	return mockServer
}

func (m *MockFrontEnd) Shutdown() {
	m.listener.Close()
}

func (m *MockFrontEnd) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upgrader := gorilla.Upgrader{}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.Errorf("Error during connection upgradation: %s", err)
		return
	}
	defer conn.Close()

	// The echo loop
	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			return
		}

		m.ReceivedBytes <- message

		if err = conn.WriteMessage(messageType, message); err != nil {
			m.logger.Errorf("Error during message writing: %s", err)
			return
		}
	}
}
