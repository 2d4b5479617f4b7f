// Package wallet implements the Wallet Engine: balance reads and the
// atomic debit/credit transaction every reward and purchase composes on
// top of.
package wallet

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/moneyquest/backend/internal/apperrors"
	"github.com/moneyquest/backend/internal/entities"
	"github.com/moneyquest/backend/internal/repository"
)

// Service is the Wallet Engine.
type Service struct {
	db      *sqlx.DB
	wallets *repository.WalletRepository
}

// New creates a Service.
func New(db *sqlx.DB, wallets *repository.WalletRepository) *Service {
	return &Service{db: db, wallets: wallets}
}

// Balance is the read shape for GetBalance.
type Balance struct {
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}

// GetBalance returns the user's wallet balance, creating the wallet with
// a zero balance if none exists yet. Currency is not tracked on the
// wallet itself; callers that need it read it off the profile.
func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	w, err := s.wallets.GetByUserID(ctx, userID)
	if err == nil {
		return w.Balance, nil
	}
	if !apperrors.IsNotFound(err) {
		return decimal.Zero, err
	}

	var balance decimal.Decimal
	txErr := repository.WithTx(ctx, s.db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		w, err := s.wallets.GetOrCreateForUpdateTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		balance = w.Balance
		return nil
	})
	if txErr != nil {
		return decimal.Zero, txErr
	}
	return balance, nil
}

// Credit adds amount (> 0) to the user's wallet and appends a ledger row,
// within its own transaction.
func (s *Service) Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, txType entities.TransactionType, description string) (*entities.Wallet, error) {
	if amount.Sign() <= 0 {
		return nil, apperrors.New(apperrors.InvalidAmount, "amount must be positive")
	}
	var result *entities.Wallet
	err := repository.WithTx(ctx, s.db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		w, err := s.CreditTx(ctx, tx, userID, amount, txType, description)
		if err != nil {
			return err
		}
		result = w
		return nil
	})
	return result, err
}

// CreditTx is Credit's transactional body, exposed so sibling state
// changes (mission reward, goal bonus) can share the caller's
// transaction rather than opening a nested one.
func (s *Service) CreditTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount decimal.Decimal, txType entities.TransactionType, description string) (*entities.Wallet, error) {
	if amount.Sign() <= 0 {
		return nil, apperrors.New(apperrors.InvalidAmount, "amount must be positive")
	}
	w, err := s.wallets.GetOrCreateForUpdateTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	w.Balance = w.Balance.Add(amount)
	if err := s.wallets.UpdateBalanceTx(ctx, tx, w.ID, w.Balance); err != nil {
		return nil, err
	}
	ledger := &entities.WalletTransaction{
		ID:              uuid.New(),
		WalletID:        w.ID,
		Amount:          amount,
		TransactionType: txType,
		Description:     description,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.wallets.AppendTransactionTx(ctx, tx, ledger); err != nil {
		return nil, err
	}
	return w, nil
}

// Debit subtracts amount (> 0) from the user's wallet, failing with
// InsufficientFunds if the balance is too low, within its own transaction.
func (s *Service) Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, txType entities.TransactionType, description string) (*entities.Wallet, error) {
	if amount.Sign() <= 0 {
		return nil, apperrors.New(apperrors.InvalidAmount, "amount must be positive")
	}
	var result *entities.Wallet
	err := repository.WithTx(ctx, s.db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		w, err := s.DebitTx(ctx, tx, userID, amount, txType, description)
		if err != nil {
			return err
		}
		result = w
		return nil
	})
	return result, err
}

// DebitTx is Debit's transactional body, shared with Purchase and other
// components that must undo the debit if a later step in the same
// transaction fails.
func (s *Service) DebitTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, amount decimal.Decimal, txType entities.TransactionType, description string) (*entities.Wallet, error) {
	if amount.Sign() <= 0 {
		return nil, apperrors.New(apperrors.InvalidAmount, "amount must be positive")
	}
	w, err := s.wallets.GetOrCreateForUpdateTx(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if w.Balance.LessThan(amount) {
		return nil, apperrors.New(apperrors.InsufficientFunds, "insufficient wallet balance")
	}
	w.Balance = w.Balance.Sub(amount)
	if err := s.wallets.UpdateBalanceTx(ctx, tx, w.ID, w.Balance); err != nil {
		return nil, err
	}
	ledger := &entities.WalletTransaction{
		ID:              uuid.New(),
		WalletID:        w.ID,
		Amount:          amount.Neg(),
		TransactionType: txType,
		Description:     description,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.wallets.AppendTransactionTx(ctx, tx, ledger); err != nil {
		return nil, err
	}
	return w, nil
}

// History returns the newest-first ledger entries for a user's wallet.
func (s *Service) History(ctx context.Context, userID uuid.UUID, limit int) ([]entities.WalletTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.wallets.History(ctx, userID, limit)
}
