package sequence

import (
	"context"
	"sync"
)

// MockAllocator is an in-memory Allocator for tests.
type MockAllocator struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewMockAllocator creates a mock allocator starting every scope at 1.
func NewMockAllocator() *MockAllocator {
	return &MockAllocator{
		counters: make(map[string]int64),
	}
}

// Next implements Allocator.
func (m *MockAllocator) Next(_ context.Context, scope Scope) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[scope.Key()]++
	return m.counters[scope.Key()], nil
}

// Ensure interface compliance.
var _ Allocator = (*MockAllocator)(nil)
