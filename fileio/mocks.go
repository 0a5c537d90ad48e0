package fileio

import (
	"io/fs"

	"github.com/stretchr/testify/mock"
)

// mocked version of FileIo
type MockFileIo struct {
	mock.Mock
}

func (m *MockFileIo) ReadFile(name string) ([]byte, error) {
	args := m.Called(name)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockFileIo) WriteFile(name string, data []byte, perm fs.FileMode) error {
	args := m.Called(name)
	return args.Error(0)
}
