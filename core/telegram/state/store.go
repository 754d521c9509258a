package state

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/m3rciful/espertofit/core/logger"
)

// Store keeps session values of type T, one per chat.
type Store[T Value] struct {
	backend Backend
	initial T
	locks   KeyedMutex
	now     func() time.Time
}

// NewStore wires a Store over backend. Chats without a record read as initial.
func NewStore[T Value](backend Backend, initial T) *Store[T] {
	return &Store[T]{
		backend: backend,
		initial: initial,
		now:     time.Now,
	}
}

// Get returns the session of chatID, or the initial value if none is stored.
func (s *Store[T]) Get(ctx context.Context, chatID int64) (T, error) {
	return s.load(ctx, chatID)
}

// Set replaces the session of chatID.
func (s *Store[T]) Set(ctx context.Context, chatID int64, v T) error {
	unlock := s.locks.Lock(chatID)
	defer unlock()
	return s.save(ctx, chatID, v)
}

// Erase drops the session of chatID. The next Get returns the initial value.
func (s *Store[T]) Erase(ctx context.Context, chatID int64) error {
	unlock := s.locks.Lock(chatID)
	defer unlock()
	if err := s.backend.Delete(ctx, chatID); err != nil {
		return &StoreError{Op: "erase", ChatID: chatID, Err: err}
	}
	return nil
}

// Update loads the session of chatID, applies fn and stores the result while
// holding the chat's lock. When fn fails nothing is written and its error is
// returned as is.
func (s *Store[T]) Update(ctx context.Context, chatID int64, fn func(T) (T, error)) (T, error) {
	unlock := s.locks.Lock(chatID)
	defer unlock()

	cur, err := s.load(ctx, chatID)
	if err != nil {
		return cur, err
	}
	next, err := fn(cur)
	if err != nil {
		return cur, err
	}
	if err := s.save(ctx, chatID, next); err != nil {
		return cur, err
	}
	return next, nil
}

// Prune removes sessions untouched for longer than maxAge.
func (s *Store[T]) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := s.now().Add(-maxAge)
	n, err := s.backend.Prune(ctx, cutoff)
	if err != nil {
		return 0, &StoreError{Op: "prune", Err: err}
	}
	return n, nil
}

// Ping reports whether the backend is reachable.
func (s *Store[T]) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

func (s *Store[T]) load(ctx context.Context, chatID int64) (T, error) {
	rec, ok, err := s.backend.Load(ctx, chatID)
	if err != nil {
		return s.initial, &StoreError{Op: "load", ChatID: chatID, Err: err}
	}
	if !ok {
		return s.initial, nil
	}
	var v T
	if err := json.Unmarshal(rec.Payload, &v); err != nil {
		return s.initial, &StoreError{Op: "decode", ChatID: chatID, Err: err}
	}
	if logger.ShouldSampleDebug() {
		logger.LogEvent(ctx, logger.Session, slog.LevelDebug, "session.load",
			slog.Int64("chat_id", chatID),
			slog.String("state", string(rec.State)),
		)
	}
	return v, nil
}

func (s *Store[T]) save(ctx context.Context, chatID int64, v T) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return &StoreError{Op: "encode", ChatID: chatID, Err: err}
	}
	rec := Record{State: v.SessionState(), Payload: payload, UpdatedAt: s.now()}
	if err := s.backend.Save(ctx, chatID, rec); err != nil {
		return &StoreError{Op: "save", ChatID: chatID, Err: err}
	}
	return nil
}
