package state

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the chat.
	StateIdle State = "idle"
)

// Value is implemented by session types kept in a Store.
type Value interface {
	SessionState() State
}

// Record is the serialized form of a session as seen by a Backend.
type Record struct {
	State     State
	Payload   []byte
	UpdatedAt time.Time
}

// Backend persists session records keyed by chat id.
type Backend interface {
	Load(ctx context.Context, chatID int64) (Record, bool, error)
	Save(ctx context.Context, chatID int64, rec Record) error
	Delete(ctx context.Context, chatID int64) error
	// Prune removes records last written before cutoff and reports how many went away.
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
	Ping(ctx context.Context) error
}

// ErrCodeStore is reported by StoreError.Code.
const ErrCodeStore = "SESSION_STORE"

// StoreError wraps a backend or codec failure for one chat.
type StoreError struct {
	Op     string
	ChatID int64
	Err    error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("session %s chat %d: %v", e.Op, e.ChatID, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Code returns a stable identifier for logs.
func (e *StoreError) Code() string { return ErrCodeStore }

// IsStoreError reports whether err carries a *StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
