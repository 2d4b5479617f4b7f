package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/moneyquest/backend/internal/apperrors"
	"github.com/moneyquest/backend/internal/entities"
)

// AdventureRepository persists AI-generated adventures and their
// submitted-choice evaluation.
type AdventureRepository struct {
	db *sqlx.DB
}

// NewAdventureRepository creates an AdventureRepository.
func NewAdventureRepository(db *sqlx.DB) *AdventureRepository {
	return &AdventureRepository{db: db}
}

// Create inserts a freshly generated, unsubmitted adventure.
func (r *AdventureRepository) Create(ctx context.Context, a *entities.Adventure) error {
	query := `
		INSERT INTO adventures (id, user_id, scenario, choices, selected_choice_index, feedback, scores, generation_trace_id, evaluation_trace_id, created_at, evaluated_at)
		VALUES (:id, :user_id, :scenario, :choices, :selected_choice_index, :feedback, :scores, :generation_trace_id, :evaluation_trace_id, :created_at, :evaluated_at)`
	_, err := r.db.NamedExecContext(ctx, query, a)
	return err
}

// GetForUpdateTx fetches an adventure scoped to (id, userID), row-locked,
// within tx.
func (r *AdventureRepository) GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, id, userID uuid.UUID) (*entities.Adventure, error) {
	var a entities.Adventure
	err := tx.GetContext(ctx, &a,
		`SELECT * FROM adventures WHERE id = $1 AND user_id = $2 FOR UPDATE`, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.New(apperrors.NotFound, "adventure not found")
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Get fetches an adventure scoped to (id, userID) outside a transaction.
func (r *AdventureRepository) Get(ctx context.Context, id, userID uuid.UUID) (*entities.Adventure, error) {
	var a entities.Adventure
	err := r.db.GetContext(ctx, &a,
		`SELECT * FROM adventures WHERE id = $1 AND user_id = $2`, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.New(apperrors.NotFound, "adventure not found")
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// History returns newest-first adventures for a user, bounded by limit.
func (r *AdventureRepository) History(ctx context.Context, userID uuid.UUID, limit int) ([]entities.Adventure, error) {
	var rows []entities.Adventure
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM adventures WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	return rows, err
}

// SubmitChoiceTx writes the one-shot submission fields within tx.
func (r *AdventureRepository) SubmitChoiceTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, choiceIndex int, feedback string, scores entities.AdventureScores, evaluationTraceID string, evaluatedAt time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE adventures
		SET selected_choice_index = $1, feedback = $2, scores = $3, evaluation_trace_id = $4, evaluated_at = $5
		WHERE id = $6`,
		choiceIndex, feedback, scores, evaluationTraceID, evaluatedAt, id)
	return err
}

// ListStaleUnsubmitted returns adventures generated before cutoff that
// were never submitted, for the periodic sweep.
func (r *AdventureRepository) ListStaleUnsubmitted(ctx context.Context, cutoff time.Time, limit int) ([]entities.Adventure, error) {
	var rows []entities.Adventure
	err := r.db.SelectContext(ctx, &rows, `
		SELECT * FROM adventures
		WHERE selected_choice_index IS NULL AND created_at < $1
		ORDER BY created_at ASC
		LIMIT $2`, cutoff, limit)
	return rows, err
}
