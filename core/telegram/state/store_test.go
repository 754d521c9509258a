package state

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/espertofit/core/database"
)

type counterSession struct {
	State State `json:"state"`
	Count int   `json:"count"`
}

func (s counterSession) SessionState() State {
	if s.State == "" {
		return StateIdle
	}
	return s.State
}

func newMemoryStore() *Store[counterSession] {
	return NewStore[counterSession](NewMemoryBackend(), counterSession{State: StateIdle})
}

func TestStoreGetReturnsInitialForUnknownChat(t *testing.T) {
	s := newMemoryStore()
	got, err := s.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, got.State)
	assert.Zero(t, got.Count)
}

func TestStoreSetGetErase(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore()

	require.NoError(t, s.Set(ctx, 1, counterSession{State: "busy", Count: 3}))
	got, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, counterSession{State: "busy", Count: 3}, got)

	other, err := s.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, other.State)

	require.NoError(t, s.Erase(ctx, 1))
	got, err = s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, got.State)
}

func TestStoreUpdateSerializesPerChat(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore()

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Update(ctx, 7, func(cur counterSession) (counterSession, error) {
				cur.Count++
				return cur, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, workers, got.Count)
}

func TestStoreUpdateFnErrorSkipsSave(t *testing.T) {
	ctx := context.Background()
	s := newMemoryStore()
	require.NoError(t, s.Set(ctx, 1, counterSession{State: "busy", Count: 1}))

	boom := errors.New("boom")
	cur, err := s.Update(ctx, 1, func(cur counterSession) (counterSession, error) {
		cur.Count = 99
		return cur, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, cur.Count)

	got, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count)
}

type failingBackend struct{ MemoryBackend }

var errBackendDown = errors.New("backend down")

func (f *failingBackend) Save(context.Context, int64, Record) error { return errBackendDown }

func TestStoreWrapsBackendErrors(t *testing.T) {
	s := NewStore[counterSession](&failingBackend{}, counterSession{})
	_, err := s.Update(context.Background(), 5, func(cur counterSession) (counterSession, error) {
		return cur, nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errBackendDown)

	var se *StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "save", se.Op)
	assert.Equal(t, int64(5), se.ChatID)
	assert.Equal(t, ErrCodeStore, se.Code())
	assert.True(t, IsStoreError(err))
}

func TestStoreCorruptPayload(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryBackend()
	require.NoError(t, mem.Save(ctx, 3, Record{State: "busy", Payload: []byte("{"), UpdatedAt: time.Now()}))

	s := NewStore[counterSession](mem, counterSession{State: StateIdle})
	got, err := s.Get(ctx, 3)
	var se *StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "decode", se.Op)
	assert.Equal(t, StateIdle, got.State)
}

func TestStorePrune(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryBackend()
	s := NewStore[counterSession](mem, counterSession{})

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base.Add(-2 * time.Hour) }
	require.NoError(t, s.Set(ctx, 1, counterSession{Count: 1}))
	s.now = func() time.Time { return base }
	require.NoError(t, s.Set(ctx, 2, counterSession{Count: 2}))

	n, err := s.Prune(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, mem.Len())
}

func TestSQLBackendSQLite(t *testing.T) {
	ctx := context.Background()
	cfg := database.Config{Driver: database.DriverSQLite, Path: filepath.Join(t.TempDir(), "sessions.sqlite")}
	require.NoError(t, database.RunMigrations(cfg, Migrations()))

	db, err := database.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := NewStore[counterSession](NewSQLBackend(db), counterSession{State: StateIdle})
	require.NoError(t, s.Ping(ctx))

	require.NoError(t, s.Set(ctx, -100123, counterSession{State: "busy", Count: 4}))
	got, err := s.Get(ctx, -100123)
	require.NoError(t, err)
	assert.Equal(t, counterSession{State: "busy", Count: 4}, got)

	got, err = s.Update(ctx, -100123, func(cur counterSession) (counterSession, error) {
		cur.Count++
		return cur, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, got.Count)

	n, err := s.Prune(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, s.Erase(ctx, -100123))
	got, err = s.Get(ctx, -100123)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, got.State)
}
