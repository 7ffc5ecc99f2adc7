package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

type DB struct {
	pool *sql.DB
	log  *zap.SugaredLogger
}

// New connects to Postgres, retrying while the server comes up, and applies
// the schema.
func New(ctx context.Context, databaseURL string, log *zap.SugaredLogger) (*DB, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	dsn := withSSLMode(databaseURL)

	log.Infow("connecting to database")
	pool, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("db: open failed: %w", err)
	}

	pool.SetMaxOpenConns(10)
	pool.SetMaxIdleConns(5)
	pool.SetConnMaxLifetime(30 * time.Minute)

	// Retry up to 5 times; the database may start after the service.
	var pingErr error
	for attempt := 1; attempt <= 5; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		pingErr = pool.PingContext(pingCtx)
		cancel()
		if pingErr == nil {
			break
		}
		log.Warnw("db ping failed", "attempt", attempt, "error", pingErr)
		select {
		case <-ctx.Done():
			pool.Close()
			return nil, fmt.Errorf("db: ping cancelled: %w", ctx.Err())
		case <-time.After(time.Duration(attempt) * 2 * time.Second):
		}
	}
	if pingErr != nil {
		pool.Close()
		return nil, fmt.Errorf("db: ping failed after 5 attempts: %w", pingErr)
	}

	d := &DB{pool: pool, log: log}
	migCtx, migCancel := context.WithTimeout(ctx, 30*time.Second)
	defer migCancel()
	if err := d.migrate(migCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db: migration failed: %w", err)
	}

	log.Infow("database connected and migrated")
	return d, nil
}

func (d *DB) Close() error {
	return d.pool.Close()
}

// withSSLMode disables SSL unless the URL says otherwise; internal Postgres
// deployments usually run without it.
func withSSLMode(dsn string) string {
	if dsn == "" || strings.Contains(dsn, "sslmode=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&sslmode=disable"
	}
	return dsn + "?sslmode=disable"
}

func (d *DB) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS status_checks (
            id UUID PRIMARY KEY,
            organisation_name TEXT,
            requester_forename TEXT,
            requester_surname TEXT,
            applicant_surname TEXT,
            certificate_number TEXT,
            ok BOOLEAN NOT NULL DEFAULT FALSE,
            outcome TEXT,
            error TEXT,
            error_kind TEXT,
            final_url TEXT,
            steps JSONB NOT NULL DEFAULT '[]',
            duration_ms INTEGER NOT NULL DEFAULT 0,
            started_at TIMESTAMPTZ NOT NULL,
            checked_at TIMESTAMPTZ DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_status_checks_checked_at ON status_checks (checked_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_status_checks_certificate ON status_checks (certificate_number)`,
	}
	for _, m := range migrations {
		if _, err := d.pool.ExecContext(ctx, m); err != nil {
			return err
		}
	}
	return nil
}
