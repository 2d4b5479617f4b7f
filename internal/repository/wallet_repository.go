package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/moneyquest/backend/internal/apperrors"
	"github.com/moneyquest/backend/internal/entities"
)

// WalletRepository persists wallets and their append-only transaction
// ledger.
type WalletRepository struct {
	db *sqlx.DB
}

// NewWalletRepository creates a WalletRepository.
func NewWalletRepository(db *sqlx.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// GetOrCreateForUpdateTx returns the user's wallet, row-locked for the
// duration of tx, creating one with a zero balance if none exists yet.
func (r *WalletRepository) GetOrCreateForUpdateTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (*entities.Wallet, error) {
	var w entities.Wallet
	err := tx.GetContext(ctx, &w, `SELECT * FROM wallets WHERE user_id = $1 FOR UPDATE`, userID)
	if err == nil {
		return &w, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	w = entities.Wallet{
		ID:      uuid.New(),
		UserID:  userID,
		Balance: decimal.Zero,
	}
	_, insertErr := tx.NamedExecContext(ctx, `
		INSERT INTO wallets (id, user_id, balance, created_at, updated_at)
		VALUES (:id, :user_id, :balance, now(), now())
		ON CONFLICT (user_id) DO NOTHING`, &w)
	if insertErr != nil {
		return nil, insertErr
	}

	if err := tx.GetContext(ctx, &w, `SELECT * FROM wallets WHERE user_id = $1 FOR UPDATE`, userID); err != nil {
		return nil, err
	}
	return &w, nil
}

// GetByUserID returns the user's wallet without creating one; callers that
// tolerate a missing wallet as a zero balance should use the service layer's
// GetBalance instead.
func (r *WalletRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error) {
	var w entities.Wallet
	err := r.db.GetContext(ctx, &w, `SELECT * FROM wallets WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.New(apperrors.NotFound, "wallet not found")
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// UpdateBalanceTx writes a wallet's new balance within tx.
func (r *WalletRepository) UpdateBalanceTx(ctx context.Context, tx *sqlx.Tx, walletID uuid.UUID, newBalance decimal.Decimal) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE wallets SET balance = $1, updated_at = now() WHERE id = $2`, newBalance, walletID)
	return err
}

// AppendTransactionTx appends one ledger row within tx.
func (r *WalletRepository) AppendTransactionTx(ctx context.Context, tx *sqlx.Tx, wt *entities.WalletTransaction) error {
	query := `
		INSERT INTO wallet_transactions (id, wallet_id, amount, transaction_type, description, created_at)
		VALUES (:id, :wallet_id, :amount, :transaction_type, :description, :created_at)`
	_, err := tx.NamedExecContext(ctx, query, wt)
	return err
}

// History returns the newest-first ledger rows for a user's wallet,
// bounded by limit.
func (r *WalletRepository) History(ctx context.Context, userID uuid.UUID, limit int) ([]entities.WalletTransaction, error) {
	var rows []entities.WalletTransaction
	err := r.db.SelectContext(ctx, &rows, `
		SELECT wt.* FROM wallet_transactions wt
		JOIN wallets w ON w.id = wt.wallet_id
		WHERE w.user_id = $1
		ORDER BY wt.created_at DESC
		LIMIT $2`, userID, limit)
	return rows, err
}
