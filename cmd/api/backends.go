package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/clinicflow/scheduling-api/internal/adapters/httpapi"
	memappointmentrepo "github.com/clinicflow/scheduling-api/internal/adapters/memory/appointmentrepo"
	memidempotency "github.com/clinicflow/scheduling-api/internal/adapters/memory/idempotency"
	postgres "github.com/clinicflow/scheduling-api/internal/adapters/postgres"
	pgappointmentrepo "github.com/clinicflow/scheduling-api/internal/adapters/postgres/appointmentrepo"
	pgidempotency "github.com/clinicflow/scheduling-api/internal/adapters/postgres/idempotency"
	redisidempotency "github.com/clinicflow/scheduling-api/internal/adapters/redis/idempotency"
	sqlite "github.com/clinicflow/scheduling-api/internal/adapters/sqlite"
	sqliteappointmentrepo "github.com/clinicflow/scheduling-api/internal/adapters/sqlite/appointmentrepo"
	sqliteidempotency "github.com/clinicflow/scheduling-api/internal/adapters/sqlite/idempotency"
	"github.com/clinicflow/scheduling-api/internal/platform/config"
	appointmentrepoport "github.com/clinicflow/scheduling-api/internal/ports/out/appointmentrepo"
	idempotencyport "github.com/clinicflow/scheduling-api/internal/ports/out/idempotency"
)

// backends holds the storage adapters selected by config.
type backends struct {
	repo   appointmentrepoport.Repository
	idem   idempotencyport.Store
	checks []httpapi.ReadyCheck

	closers []func()
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackends(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*backends, error) {
	b := &backends{}

	var (
		pool *pgxpool.Pool
		db   *sql.DB
	)
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		p, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns})
		if err != nil {
			return nil, err
		}
		pool = p
		b.closers = append(b.closers, pool.Close)
		if err := postgres.Migrate(ctx, pool); err != nil {
			b.Close()
			return nil, err
		}
		b.repo = pgappointmentrepo.NewRepo(pool)
		b.checks = append(b.checks, httpapi.ReadyCheck{Name: "postgres", Check: postgres.ReadyCheck(pool)})
		logger.Info().Msg("connected to postgres")
	case config.BackendSQLite:
		d, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		db = d
		b.closers = append(b.closers, func() { _ = db.Close() })
		if err := sqlite.Migrate(ctx, db); err != nil {
			b.Close()
			return nil, err
		}
		b.repo = sqliteappointmentrepo.NewRepo(db)
		b.checks = append(b.checks, httpapi.ReadyCheck{Name: "sqlite", Check: sqlite.ReadyCheck(db)})
		logger.Info().Str("path", cfg.SQLitePath).Msg("opened sqlite database")
	default:
		b.repo = memappointmentrepo.NewRepo()
	}

	switch cfg.IdempotencyBackend {
	case config.BackendRedis:
		rdb, err := redisidempotency.NewClient(cfg.RedisURL)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = rdb.Close() })
		b.idem = redisidempotency.NewStore(rdb, "")
		b.checks = append(b.checks, httpapi.ReadyCheck{Name: "redis", Check: redisidempotency.ReadyCheck(rdb)})
	case config.BackendPostgres:
		b.idem = pgidempotency.NewStore(pool)
	case config.BackendSQLite:
		b.idem = sqliteidempotency.NewStore(db)
	case config.BackendMemory:
		b.idem = memidempotency.NewStore()
	default:
		b.Close()
		return nil, fmt.Errorf("unsupported idempotency backend %q", cfg.IdempotencyBackend)
	}
	return b, nil
}
