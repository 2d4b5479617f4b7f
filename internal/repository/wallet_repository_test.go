package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneyquest/backend/internal/apperrors"
)

func newMockWalletDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestWalletRepository_GetByUserID(t *testing.T) {
	db, mock := newMockWalletDB(t)
	repo := NewWalletRepository(db)

	walletID := uuid.New()
	userID := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "user_id", "balance", "created_at", "updated_at"}).
		AddRow(walletID.String(), userID.String(), "42.50", now, now)
	mock.ExpectQuery(`SELECT \* FROM wallets WHERE user_id = \$1`).
		WithArgs(userID.String()).
		WillReturnRows(rows)

	w, err := repo.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, decimal.RequireFromString("42.50").String(), w.Balance.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepository_GetByUserID_NotFound(t *testing.T) {
	db, mock := newMockWalletDB(t)
	repo := NewWalletRepository(db)

	userID := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM wallets WHERE user_id = \$1`).
		WithArgs(userID.String()).
		WillReturnError(sql.ErrNoRows)

	w, err := repo.GetByUserID(context.Background(), userID)
	assert.Nil(t, w)
	e, ok := apperrors.Of(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.NotFound, e.Kind)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepository_History_LimitsAndOrders(t *testing.T) {
	db, mock := newMockWalletDB(t)
	repo := NewWalletRepository(db)

	userID := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "wallet_id", "amount", "transaction_type", "description", "created_at"}).
		AddRow(uuid.New().String(), uuid.New().String(), "10.00", "mission_reward", "daily mission", time.Now())
	mock.ExpectQuery(`SELECT wt\.\* FROM wallet_transactions wt`).
		WithArgs(userID.String(), 50).
		WillReturnRows(rows)

	txs, err := repo.History(context.Background(), userID, 50)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
