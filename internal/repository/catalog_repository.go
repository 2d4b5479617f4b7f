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

// CatalogRepository reads the read-mostly Character/Food/Mission catalog
// tables, seeded externally.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository creates a CatalogRepository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListCharacters returns every character in the catalog.
func (r *CatalogRepository) ListCharacters(ctx context.Context) ([]entities.Character, error) {
	var chars []entities.Character
	err := r.db.SelectContext(ctx, &chars, `SELECT * FROM characters ORDER BY price ASC, name ASC`)
	return chars, err
}

// ListStarterCharacters returns only the starter-eligible characters.
func (r *CatalogRepository) ListStarterCharacters(ctx context.Context) ([]entities.Character, error) {
	var chars []entities.Character
	err := r.db.SelectContext(ctx, &chars,
		`SELECT * FROM characters WHERE is_starter = true ORDER BY name ASC`)
	return chars, err
}

// GetCharacter fetches one character by id.
func (r *CatalogRepository) GetCharacter(ctx context.Context, id uuid.UUID) (*entities.Character, error) {
	var c entities.Character
	err := r.db.GetContext(ctx, &c, `SELECT * FROM characters WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.New(apperrors.NotFound, "character not found")
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCharacterTx fetches one character by id inside an existing
// transaction.
func (r *CatalogRepository) GetCharacterTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*entities.Character, error) {
	var c entities.Character
	err := tx.GetContext(ctx, &c, `SELECT * FROM characters WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.New(apperrors.NotFound, "character not found")
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListFoods returns every food in the catalog, ordered by price then name.
func (r *CatalogRepository) ListFoods(ctx context.Context) ([]entities.Food, error) {
	var foods []entities.Food
	err := r.db.SelectContext(ctx, &foods, `SELECT * FROM foods ORDER BY price ASC, name ASC`)
	return foods, err
}

// GetFood fetches one food by id.
func (r *CatalogRepository) GetFood(ctx context.Context, id uuid.UUID) (*entities.Food, error) {
	var f entities.Food
	err := r.db.GetContext(ctx, &f, `SELECT * FROM foods WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.New(apperrors.NotFound, "food not found")
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// GetFoodTx fetches one food by id inside an existing transaction.
func (r *CatalogRepository) GetFoodTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*entities.Food, error) {
	var f entities.Food
	err := tx.GetContext(ctx, &f, `SELECT * FROM foods WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.New(apperrors.NotFound, "food not found")
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// GetMissionForDate returns the catalog mission whose active_date equals
// day (UTC, truncated to the day).
func (r *CatalogRepository) GetMissionForDate(ctx context.Context, day time.Time) (*entities.Mission, error) {
	var m entities.Mission
	err := r.db.GetContext(ctx, &m,
		`SELECT * FROM missions WHERE active_date = $1::date`, day)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.New(apperrors.NoActiveMission, "no active mission today")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMission fetches a mission by id.
func (r *CatalogRepository) GetMission(ctx context.Context, id uuid.UUID) (*entities.Mission, error) {
	var m entities.Mission
	err := r.db.GetContext(ctx, &m, `SELECT * FROM missions WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.New(apperrors.NotFound, "mission not found")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
