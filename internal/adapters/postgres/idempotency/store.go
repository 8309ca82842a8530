package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicflow/scheduling-api/internal/ports/out/idempotency"
)

// Store is a Postgres implementation of idempotency.Store.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Get(ctx context.Context, key idempotency.Key) (idempotency.Record, bool, error) {
	if s.pool == nil {
		return idempotency.Record{}, false, errors.New("nil postgres pool")
	}
	row := s.pool.QueryRow(ctx, `
		SELECT operation, appointment, created_at
		FROM idempotency_keys
		WHERE idempotency_key = $1
	`, string(key))

	var (
		rec  idempotency.Record
		op   string
		body []byte
	)
	if err := row.Scan(&op, &body, &rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return idempotency.Record{}, false, nil
		}
		return idempotency.Record{}, false, err
	}
	if err := json.Unmarshal(body, &rec.Appointment); err != nil {
		return idempotency.Record{}, false, fmt.Errorf("decode idempotency snapshot: %w", err)
	}
	rec.Operation = idempotency.Operation(op)
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, true, nil
}

func (s *Store) Put(ctx context.Context, key idempotency.Key, rec idempotency.Record) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	body, err := json.Marshal(rec.Appointment)
	if err != nil {
		return fmt.Errorf("encode idempotency snapshot: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO idempotency_keys (idempotency_key, operation, appointment, created_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (idempotency_key) DO NOTHING
	`,
		string(key),
		string(rec.Operation),
		body,
		createdAt.UTC(),
	)
	return err
}
