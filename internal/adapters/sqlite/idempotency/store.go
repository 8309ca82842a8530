package idempotency

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/clinicflow/scheduling-api/internal/ports/out/idempotency"
)

// Store is a SQLite implementation of idempotency.Store.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, key idempotency.Key) (idempotency.Record, bool, error) {
	if s.db == nil {
		return idempotency.Record{}, false, errors.New("nil sqlite db")
	}
	var (
		rec  idempotency.Record
		op   string
		body string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT operation, appointment, created_at FROM idempotency_keys WHERE idempotency_key = ?`,
		string(key),
	).Scan(&op, &body, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return idempotency.Record{}, false, nil
	}
	if err != nil {
		return idempotency.Record{}, false, fmt.Errorf("idempotency lookup failed: %w", err)
	}
	if err := json.Unmarshal([]byte(body), &rec.Appointment); err != nil {
		return idempotency.Record{}, false, fmt.Errorf("decode idempotency snapshot: %w", err)
	}
	rec.Operation = idempotency.Operation(op)
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, true, nil
}

func (s *Store) Put(ctx context.Context, key idempotency.Key, rec idempotency.Record) error {
	if s.db == nil {
		return errors.New("nil sqlite db")
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	body, err := json.Marshal(rec.Appointment)
	if err != nil {
		return fmt.Errorf("encode idempotency snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO idempotency_keys (idempotency_key, operation, appointment, created_at) VALUES (?, ?, ?, ?)`,
		string(key), string(rec.Operation), string(body), createdAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("record idempotency key failed: %w", err)
	}
	return nil
}
