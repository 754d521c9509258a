package state

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQLBackend stores records in the chat_sessions table. Queries are written
// with '?' placeholders and rebound for the connected driver.
type SQLBackend struct {
	db *sqlx.DB
}

// NewSQLBackend wraps an open sqlx handle. The schema comes from Migrations.
func NewSQLBackend(db *sqlx.DB) *SQLBackend {
	return &SQLBackend{db: db}
}

type sessionRow struct {
	State     string `db:"state"`
	Payload   string `db:"payload"`
	UpdatedAt int64  `db:"updated_at"`
}

const (
	selectSession = `SELECT state, payload, updated_at FROM chat_sessions WHERE chat_id = ?`
	upsertSession = `INSERT INTO chat_sessions (chat_id, state, payload, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT (chat_id) DO UPDATE SET state = excluded.state, payload = excluded.payload, updated_at = excluded.updated_at`
	deleteSession = `DELETE FROM chat_sessions WHERE chat_id = ?`
	pruneSessions = `DELETE FROM chat_sessions WHERE updated_at < ?`
)

func (b *SQLBackend) Load(ctx context.Context, chatID int64) (Record, bool, error) {
	var row sessionRow
	err := b.db.GetContext(ctx, &row, b.db.Rebind(selectSession), chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	return Record{
		State:     State(row.State),
		Payload:   []byte(row.Payload),
		UpdatedAt: time.Unix(0, row.UpdatedAt),
	}, true, nil
}

func (b *SQLBackend) Save(ctx context.Context, chatID int64, rec Record) error {
	_, err := b.db.ExecContext(ctx, b.db.Rebind(upsertSession),
		chatID, string(rec.State), string(rec.Payload), rec.UpdatedAt.UnixNano())
	return err
}

func (b *SQLBackend) Delete(ctx context.Context, chatID int64) error {
	_, err := b.db.ExecContext(ctx, b.db.Rebind(deleteSession), chatID)
	return err
}

func (b *SQLBackend) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := b.db.ExecContext(ctx, b.db.Rebind(pruneSessions), cutoff.UnixNano())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (b *SQLBackend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}
