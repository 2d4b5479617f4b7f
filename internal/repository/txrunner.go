package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// serializationFailure and deadlockDetected are the Postgres SQLSTATEs that
// WithTx treats as transiently retryable: a REPEATABLE READ (or stricter)
// transaction can lose a race to a concurrent writer and must retry rather
// than surface a spurious Conflict to the caller.
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// WithTx runs fn inside a single *sqlx.Tx at isolation level (defaulting to
// sql.LevelRepeatableRead when level is the zero value), committing on
// success and rolling back on error or panic. Every cross-table write in
// the service layer is expected to be wrapped in exactly one call to
// WithTx.
//
// If fn fails with a Postgres serialization-failure or deadlock SQLSTATE,
// WithTx retries the whole transaction exactly once before surfacing the
// error.
func WithTx(ctx context.Context, db *sqlx.DB, level sql.IsolationLevel, fn func(tx *sqlx.Tx) error) error {
	if level == sql.LevelDefault {
		level = sql.LevelRepeatableRead
	}

	err := runOnce(ctx, db, level, fn)
	if isRetryableSerializationError(err) {
		err = runOnce(ctx, db, level, fn)
	}
	return err
}

func runOnce(ctx context.Context, db *sqlx.DB, level sql.IsolationLevel, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: level})
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	err = fn(tx)
	return err
}

func isRetryableSerializationError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == sqlStateSerializationFailure || pqErr.Code == sqlStateDeadlockDetected
	}
	return false
}
