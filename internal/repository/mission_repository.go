package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/moneyquest/backend/internal/entities"
)

// MissionRepository persists per-user mission progress and the activity
// ledgers (expenses, savings) that drive it.
type MissionRepository struct {
	db *sqlx.DB
}

// NewMissionRepository creates a MissionRepository.
func NewMissionRepository(db *sqlx.DB) *MissionRepository {
	return &MissionRepository{db: db}
}

// GetUserMissionTx fetches the (userID, missionID) progress row, row-locked,
// within tx. Returns (nil, nil) if it does not exist yet.
func (r *MissionRepository) GetUserMissionTx(ctx context.Context, tx *sqlx.Tx, userID, missionID uuid.UUID) (*entities.UserMission, error) {
	var um entities.UserMission
	err := tx.GetContext(ctx, &um, `
		SELECT * FROM user_missions WHERE user_id = $1 AND mission_id = $2 FOR UPDATE`,
		userID, missionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &um, nil
}

// GetUserMission fetches the (userID, missionID) progress row outside a
// transaction. Returns (nil, nil) if it does not exist yet.
func (r *MissionRepository) GetUserMission(ctx context.Context, userID, missionID uuid.UUID) (*entities.UserMission, error) {
	var um entities.UserMission
	err := r.db.GetContext(ctx, &um,
		`SELECT * FROM user_missions WHERE user_id = $1 AND mission_id = $2`, userID, missionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &um, nil
}

// CreateUserMissionTx lazily creates an empty-progress row within tx.
func (r *MissionRepository) CreateUserMissionTx(ctx context.Context, tx *sqlx.Tx, um *entities.UserMission) error {
	query := `
		INSERT INTO user_missions (id, user_id, mission_id, progress, completed, completed_at, created_at)
		VALUES (:id, :user_id, :mission_id, :progress, :completed, :completed_at, :created_at)
		ON CONFLICT (user_id, mission_id) DO NOTHING`
	_, err := tx.NamedExecContext(ctx, query, um)
	return err
}

// UpdateProgressTx persists a progress map update within tx.
func (r *MissionRepository) UpdateProgressTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, progress entities.MissionProgress) error {
	_, err := tx.ExecContext(ctx, `UPDATE user_missions SET progress = $1 WHERE id = $2`, progress, id)
	return err
}

// CompleteTx flips completed to true and stamps completedAt within tx.
func (r *MissionRepository) CompleteTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE user_missions SET completed = true, completed_at = now() WHERE id = $1`, id)
	return err
}

// CreateExpenseTx appends an expense row within tx.
func (r *MissionRepository) CreateExpenseTx(ctx context.Context, tx *sqlx.Tx, e *entities.Expense) error {
	query := `
		INSERT INTO expenses (id, user_id, amount, category, description, logged_at)
		VALUES (:id, :user_id, :amount, :category, :description, :logged_at)`
	_, err := tx.NamedExecContext(ctx, query, e)
	return err
}

// CreateSavingTx appends a saving row within tx.
func (r *MissionRepository) CreateSavingTx(ctx context.Context, tx *sqlx.Tx, s *entities.Saving) error {
	query := `
		INSERT INTO savings (id, user_id, amount, source, logged_at)
		VALUES (:id, :user_id, :amount, :source, :logged_at)`
	_, err := tx.NamedExecContext(ctx, query, s)
	return err
}

// ListExpenses returns newest-first expense history for a user.
func (r *MissionRepository) ListExpenses(ctx context.Context, userID uuid.UUID, limit int) ([]entities.Expense, error) {
	var rows []entities.Expense
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM expenses WHERE user_id = $1 ORDER BY logged_at DESC LIMIT $2`, userID, limit)
	return rows, err
}

// ListSavings returns newest-first saving history for a user.
func (r *MissionRepository) ListSavings(ctx context.Context, userID uuid.UUID, limit int) ([]entities.Saving, error) {
	var rows []entities.Saving
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM savings WHERE user_id = $1 ORDER BY logged_at DESC LIMIT $2`, userID, limit)
	return rows, err
}
