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

// ProfileRepository persists onboarding profiles.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a ProfileRepository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create inserts a new profile. Callers must handle the unique-constraint
// violation on user_id as a Conflict.
func (r *ProfileRepository) Create(ctx context.Context, p *entities.Profile) error {
	query := `
		INSERT INTO profiles (id, user_id, age, allowance, currency, onboarding_completed, created_at, updated_at)
		VALUES (:id, :user_id, :age, :allowance, :currency, :onboarding_completed, :created_at, :updated_at)`
	_, err := r.db.NamedExecContext(ctx, query, p)
	return err
}

// GetByUserID fetches a profile by owning user id.
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Profile, error) {
	var p entities.Profile
	err := r.db.GetContext(ctx, &p, `SELECT * FROM profiles WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.New(apperrors.NotFound, "profile not found")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByUserIDTx fetches a profile by owning user id within an existing
// transaction.
func (r *ProfileRepository) GetByUserIDTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (*entities.Profile, error) {
	var p entities.Profile
	err := tx.GetContext(ctx, &p, `SELECT * FROM profiles WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.New(apperrors.NotFound, "profile not found")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SetOnboardingCompletedTx flips onboarding_completed to true within an
// existing transaction.
func (r *ProfileRepository) SetOnboardingCompletedTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE profiles SET onboarding_completed = true, updated_at = now() WHERE user_id = $1`, userID)
	return err
}
