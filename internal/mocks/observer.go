package mocks

import (
	"github.com/brettbedarf/treestore/tree"
	"github.com/stretchr/testify/mock"
)

// MockObserver implements tree.Observer for testing across packages
type MockObserver struct {
	mock.Mock
}

func (m *MockObserver) OnChange(ev tree.ChangeEvent) {
	m.Called(ev)
}

var _ tree.Observer = (*MockObserver)(nil)
