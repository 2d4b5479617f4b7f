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

// TamagotchiRepository persists the per-user virtual pet.
type TamagotchiRepository struct {
	db *sqlx.DB
}

// NewTamagotchiRepository creates a TamagotchiRepository.
func NewTamagotchiRepository(db *sqlx.DB) *TamagotchiRepository {
	return &TamagotchiRepository{db: db}
}

// GetByUserID fetches a user's tamagotchi.
func (r *TamagotchiRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Tamagotchi, error) {
	var t entities.Tamagotchi
	err := r.db.GetContext(ctx, &t, `SELECT * FROM tamagotchis WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.New(apperrors.NotFound, "tamagotchi not found")
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByUserIDForUpdateTx fetches a user's tamagotchi, row-locked, within tx.
func (r *TamagotchiRepository) GetByUserIDForUpdateTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (*entities.Tamagotchi, error) {
	var t entities.Tamagotchi
	err := tx.GetContext(ctx, &t, `SELECT * FROM tamagotchis WHERE user_id = $1 FOR UPDATE`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.New(apperrors.NotFound, "tamagotchi not found")
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTx inserts a new tamagotchi within tx, used once per user during
// onboarding.
func (r *TamagotchiRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, t *entities.Tamagotchi) error {
	query := `
		INSERT INTO tamagotchis (id, user_id, character_id, name, hunger, happiness, health, last_fed_at, created_at, updated_at)
		VALUES (:id, :user_id, :character_id, :name, :hunger, :happiness, :health, :last_fed_at, :created_at, :updated_at)`
	_, err := tx.NamedExecContext(ctx, query, t)
	return err
}

// ExistsForUserTx reports whether a tamagotchi already exists for userID,
// within tx.
func (r *TamagotchiRepository) ExistsForUserTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (bool, error) {
	var exists bool
	err := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM tamagotchis WHERE user_id = $1)`, userID)
	return exists, err
}

// UpdateStatsTx persists updated stats and lastFedAt within tx.
func (r *TamagotchiRepository) UpdateStatsTx(ctx context.Context, tx *sqlx.Tx, t *entities.Tamagotchi) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE tamagotchis
		SET hunger = $1, happiness = $2, health = $3, last_fed_at = $4, updated_at = now()
		WHERE id = $5`,
		t.Hunger, t.Happiness, t.Health, t.LastFedAt, t.ID)
	return err
}

// RenameTx updates a tamagotchi's display name within tx.
func (r *TamagotchiRepository) RenameTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, name string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE tamagotchis SET name = $1, updated_at = now() WHERE user_id = $2`, name, userID)
	return err
}
