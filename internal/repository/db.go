// Package repository holds the sqlx-backed persistence layer: one file per
// aggregate, plus the shared connection/transaction helpers in this file.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sony/gobreaker"

	"github.com/moneyquest/backend/internal/config"
)

var circuitBreaker *gobreaker.CircuitBreaker

func init() {
	circuitBreaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "database",
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})
}

// NewConnection opens a pooled sqlx connection guarded by a circuit breaker,
// the way the lineage guards every cold connection attempt.
func NewConnection(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	var db *sqlx.DB

	_, cbErr := circuitBreaker.Execute(func() (interface{}, error) {
		var err error
		db, err = sqlx.Open("postgres", cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database connection: %w", err)
		}

		maxOpen := cfg.PoolMax
		if maxOpen == 0 {
			maxOpen = 25
		}
		minIdle := cfg.PoolMin
		if minIdle == 0 {
			minIdle = 2
		}
		idleTimeout := cfg.IdleTimeout
		if idleTimeout == 0 {
			idleTimeout = 300
		}
		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(minIdle)
		db.SetConnMaxIdleTime(time.Duration(idleTimeout) * time.Second)

		connectTimeout := cfg.ConnectTimeout
		if connectTimeout == 0 {
			connectTimeout = 10
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(connectTimeout)*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		return db, nil
	})

	if cbErr != nil {
		return nil, fmt.Errorf("circuit breaker: %w", cbErr)
	}
	return db, nil
}

// RunMigrations applies every pending migration under migrations/.
func RunMigrations(databaseURL string) error {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}

	migrationPath := filepath.ToSlash(filepath.Clean("migrations"))
	m, err := migrate.NewWithDatabaseInstance("file://"+migrationPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// HealthCheck pings the database with a short deadline.
func HealthCheck(db *sqlx.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}
