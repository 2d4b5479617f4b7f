package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/moneyquest/backend/internal/apperrors"
	"github.com/moneyquest/backend/internal/entities"
)

// GoalRepository persists user savings goals.
type GoalRepository struct {
	db *sqlx.DB
}

// NewGoalRepository creates a GoalRepository.
func NewGoalRepository(db *sqlx.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

// Create inserts a new goal.
func (r *GoalRepository) Create(ctx context.Context, g *entities.Goal) error {
	query := `
		INSERT INTO goals (id, user_id, title, description, target_amount, current_amount, completed, completed_at, created_at, updated_at)
		VALUES (:id, :user_id, :title, :description, :target_amount, :current_amount, :completed, :completed_at, :created_at, :updated_at)`
	_, err := r.db.NamedExecContext(ctx, query, g)
	return err
}

// List returns every goal for a user, newest first.
func (r *GoalRepository) List(ctx context.Context, userID uuid.UUID) ([]entities.Goal, error) {
	var rows []entities.Goal
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM goals WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	return rows, err
}

// ListActive returns a user's incomplete goals, newest first.
func (r *GoalRepository) ListActive(ctx context.Context, userID uuid.UUID) ([]entities.Goal, error) {
	var rows []entities.Goal
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM goals WHERE user_id = $1 AND completed = false ORDER BY created_at DESC`, userID)
	return rows, err
}

// ListRecentActive returns up to limit of a user's most recently created
// incomplete goals, used to build the AI adventure's goal context.
func (r *GoalRepository) ListRecentActive(ctx context.Context, userID uuid.UUID, limit int) ([]entities.Goal, error) {
	var rows []entities.Goal
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM goals WHERE user_id = $1 AND completed = false ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	return rows, err
}

// ListCompleted returns a user's completed goals, newest first.
func (r *GoalRepository) ListCompleted(ctx context.Context, userID uuid.UUID) ([]entities.Goal, error) {
	var rows []entities.Goal
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM goals WHERE user_id = $1 AND completed = true ORDER BY completed_at DESC`, userID)
	return rows, err
}

// GetForUpdateTx fetches a goal scoped to (goalID, userID), row-locked,
// within tx.
func (r *GoalRepository) GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, goalID, userID uuid.UUID) (*entities.Goal, error) {
	var g entities.Goal
	err := tx.GetContext(ctx, &g,
		`SELECT * FROM goals WHERE id = $1 AND user_id = $2 FOR UPDATE`, goalID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.New(apperrors.NotFound, "goal not found")
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// UpdateProgressTx persists currentAmount and, if newly completed,
// completed/completedAt, within tx.
func (r *GoalRepository) UpdateProgressTx(ctx context.Context, tx *sqlx.Tx, g *entities.Goal) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE goals
		SET current_amount = $1, completed = $2, completed_at = $3, updated_at = now()
		WHERE id = $4`,
		g.CurrentAmount, g.Completed, g.CompletedAt, g.ID)
	return err
}

// Delete removes a goal scoped to (goalID, userID). Returns NotFound if no
// row matched.
func (r *GoalRepository) Delete(ctx context.Context, goalID, userID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = $1 AND user_id = $2`, goalID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.New(apperrors.NotFound, "goal not found")
	}
	return nil
}
