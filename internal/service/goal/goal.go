// Package goal implements the Goal Engine: savings-goal CRUD and the
// progress transaction with its completion bonus.
package goal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/moneyquest/backend/internal/apperrors"
	"github.com/moneyquest/backend/internal/entities"
	"github.com/moneyquest/backend/internal/repository"
	"github.com/moneyquest/backend/internal/service/wallet"
)

// bonusRate is the fraction of targetAmount credited when a goal
// completes.
var bonusRate = decimal.NewFromFloat(0.1)

// Service is the Goal Engine.
type Service struct {
	db      *sqlx.DB
	goals   *repository.GoalRepository
	wallets *wallet.Service
}

// New creates a Service.
func New(db *sqlx.DB, goals *repository.GoalRepository, wallets *wallet.Service) *Service {
	return &Service{db: db, goals: goals, wallets: wallets}
}

// Create inserts a new goal. targetAmount must be positive.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, title, description string, targetAmount decimal.Decimal) (*entities.Goal, error) {
	if targetAmount.Sign() <= 0 {
		return nil, apperrors.New(apperrors.InvalidAmount, "targetAmount must be positive")
	}
	now := time.Now().UTC()
	g := &entities.Goal{
		ID:            uuid.New(),
		UserID:        userID,
		Title:         title,
		Description:   description,
		TargetAmount:  targetAmount,
		CurrentAmount: decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.goals.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// List returns every goal for a user.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]entities.Goal, error) {
	return s.goals.List(ctx, userID)
}

// ListActive returns a user's incomplete goals.
func (s *Service) ListActive(ctx context.Context, userID uuid.UUID) ([]entities.Goal, error) {
	return s.goals.ListActive(ctx, userID)
}

// ListCompleted returns a user's completed goals.
func (s *Service) ListCompleted(ctx context.Context, userID uuid.UUID) ([]entities.Goal, error) {
	return s.goals.ListCompleted(ctx, userID)
}

// AddProgressResult is the read shape for AddProgress.
type AddProgressResult struct {
	Goal         *entities.Goal
	BonusAwarded *decimal.Decimal
}

// AddProgress adds amount (> 0) to a goal's currentAmount within one
// transaction. Fails with AlreadyCompleted if the goal is already done.
// Crossing targetAmount flips completed and credits floor(target × 0.1)
// as a bonus, exactly once, under the same row lock that read the goal.
func (s *Service) AddProgress(ctx context.Context, goalID, userID uuid.UUID, amount decimal.Decimal) (*AddProgressResult, error) {
	if amount.Sign() <= 0 {
		return nil, apperrors.New(apperrors.InvalidAmount, "amount must be positive")
	}

	var result *AddProgressResult
	err := repository.WithTx(ctx, s.db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		g, err := s.goals.GetForUpdateTx(ctx, tx, goalID, userID)
		if err != nil {
			return err
		}
		if g.Completed {
			return apperrors.New(apperrors.AlreadyCompleted, "goal already completed")
		}

		g.CurrentAmount = g.CurrentAmount.Add(amount)

		var bonus *decimal.Decimal
		if g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount) {
			now := time.Now().UTC()
			g.Completed = true
			g.CompletedAt = &now

			b := g.TargetAmount.Mul(bonusRate).Floor()
			desc := fmt.Sprintf("Completed goal: %s", g.Title)
			if _, err := s.wallets.CreditTx(ctx, tx, userID, b, entities.TransactionTypeGoalBonus, desc); err != nil {
				return err
			}
			bonus = &b
		}

		if err := s.goals.UpdateProgressTx(ctx, tx, g); err != nil {
			return err
		}

		result = &AddProgressResult{Goal: g, BonusAwarded: bonus}
		return nil
	})
	return result, err
}

// Delete removes a goal scoped to (goalID, userID).
func (s *Service) Delete(ctx context.Context, goalID, userID uuid.UUID) error {
	return s.goals.Delete(ctx, goalID, userID)
}
