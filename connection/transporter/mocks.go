package transporter

import (
	"github.com/ferritemq/ferrite-go/telemetry/throughputstats"
	"github.com/stretchr/testify/mock"
)

type MockTransporter struct {
	mock.Mock
}

func (m *MockTransporter) Stats() throughputstats.Digest {
	args := m.Called()
	return args.Get(0).(throughputstats.Digest)
}

func (m *MockTransporter) Done() <-chan struct{} {
	args := m.Called()
	return args.Get(0).(chan struct{})
}

func (m *MockTransporter) Inbound() <-chan *[]byte {
	args := m.Called()
	return args.Get(0).(chan *[]byte)
}

func (m *MockTransporter) Send(frame []byte) error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTransporter) Close(reason error) {
	m.Called()
}

func (m *MockTransporter) Disconnect() {
	m.Called()
}

func (m *MockTransporter) IsClosed() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockTransporter) IsEncrypted() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockTransporter) Err() error {
	args := m.Called()
	return args.Error(0)
}
