package lock

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/btc-tracker/backend/internal/application/adapter"
)

// MemoryLock is a process-local ImportLock.
type MemoryLock struct {
	mu     sync.Mutex
	owners map[string]string
}

// NewMemoryLock creates a new MemoryLock.
func NewMemoryLock() adapter.ImportLock {
	return &MemoryLock{owners: make(map[string]string)}
}

// Acquire implements adapter.ImportLock.
func (l *MemoryLock) Acquire(_ context.Context, reportID string) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, held := l.owners[reportID]; held {
		return "", false, nil
	}
	token := uuid.New().String()
	l.owners[reportID] = token
	return token, true, nil
}

// Release implements adapter.ImportLock.
func (l *MemoryLock) Release(_ context.Context, reportID, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.owners[reportID] == token {
		delete(l.owners, reportID)
	}
	return nil
}
