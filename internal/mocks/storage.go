package mocks

import (
	"github.com/brettbedarf/treestore"
	"github.com/stretchr/testify/mock"
)

// MockStorage implements treestore.Storage for testing across packages
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Load() ([]byte, error) {
	args := m.Called()

	// Handle nil returns
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStorage) Save(data []byte) error {
	args := m.Called(data)
	return args.Error(0)
}

func (m *MockStorage) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ treestore.Storage = (*MockStorage)(nil)
