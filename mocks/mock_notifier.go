package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ims/internal/port"
)

// MockNotifier is a mock implementation of port.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, ev port.Event) {
	m.Called(ctx, ev)
}
