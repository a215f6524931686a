package reminders

import (
	"context"
	"sync"
	"time"
)

// MemoryLog keeps last-reminder timestamps in-process
type MemoryLog struct {
	mu   sync.RWMutex
	sent map[uint]time.Time
}

// NewMemoryLog creates an in-memory reminder log
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{sent: make(map[uint]time.Time)}
}

// Record stores at as the last reminder time for transactionID
func (l *MemoryLog) Record(_ context.Context, transactionID uint, at time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sent[transactionID] = at.UTC()
	return nil
}

// LastSent returns the last reminder time, if any
func (l *MemoryLog) LastSent(_ context.Context, transactionID uint) (time.Time, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	at, ok := l.sent[transactionID]
	return at, ok, nil
}
