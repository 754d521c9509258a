package state

import (
	"context"
	"sync"
	"time"
)

// MemoryBackend keeps records in process memory. Contents are lost on restart.
type MemoryBackend struct {
	records sync.Map // int64 -> Record
}

// NewMemoryBackend constructs an empty in-memory Backend for tests and development.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (m *MemoryBackend) Load(_ context.Context, chatID int64) (Record, bool, error) {
	v, ok := m.records.Load(chatID)
	if !ok {
		return Record{}, false, nil
	}
	return v.(Record), true, nil
}

func (m *MemoryBackend) Save(_ context.Context, chatID int64, rec Record) error {
	rec.Payload = append([]byte(nil), rec.Payload...)
	m.records.Store(chatID, rec)
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, chatID int64) error {
	m.records.Delete(chatID)
	return nil
}

func (m *MemoryBackend) Prune(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	m.records.Range(func(k, v any) bool {
		if v.(Record).UpdatedAt.Before(cutoff) {
			m.records.Delete(k)
			n++
		}
		return true
	})
	return n, nil
}

func (m *MemoryBackend) Ping(context.Context) error { return nil }

// Len returns the number of stored sessions.
func (m *MemoryBackend) Len() int {
	n := 0
	m.records.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
