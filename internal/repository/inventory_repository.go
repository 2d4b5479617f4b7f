package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/moneyquest/backend/internal/entities"
)

// InventoryRepository persists owned characters and food stacks.
type InventoryRepository struct {
	db *sqlx.DB
}

// NewInventoryRepository creates an InventoryRepository.
func NewInventoryRepository(db *sqlx.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// List returns every inventory row for a user.
func (r *InventoryRepository) List(ctx context.Context, userID uuid.UUID) ([]entities.UserInventory, error) {
	var rows []entities.UserInventory
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM user_inventory WHERE user_id = $1 ORDER BY acquired_at DESC`, userID)
	return rows, err
}

// GetTx fetches one inventory row scoped to (userID, itemType, itemID)
// within tx, row-locked.
func (r *InventoryRepository) GetTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, itemType entities.InventoryItemType, itemID uuid.UUID) (*entities.UserInventory, error) {
	var row entities.UserInventory
	err := tx.GetContext(ctx, &row, `
		SELECT * FROM user_inventory
		WHERE user_id = $1 AND item_type = $2 AND item_id = $3
		FOR UPDATE`, userID, itemType, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Get fetches one inventory row outside a transaction, used by read-only
// ownership checks.
func (r *InventoryRepository) Get(ctx context.Context, userID uuid.UUID, itemType entities.InventoryItemType, itemID uuid.UUID) (*entities.UserInventory, error) {
	var row entities.UserInventory
	err := r.db.GetContext(ctx, &row, `
		SELECT * FROM user_inventory WHERE user_id = $1 AND item_type = $2 AND item_id = $3`,
		userID, itemType, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// UpsertIncrementTx inserts a new row with quantity delta, or increments
// the existing row's quantity by delta, within tx.
func (r *InventoryRepository) UpsertIncrementTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, itemType entities.InventoryItemType, itemID uuid.UUID, delta int) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO user_inventory (id, user_id, item_type, item_id, quantity, acquired_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (user_id, item_type, item_id)
		DO UPDATE SET quantity = user_inventory.quantity + $5`,
		uuid.New(), userID, itemType, itemID, delta)
	return err
}

// EnsureOwnedTx inserts a binary-owned row (quantity 1) if absent; a
// repeat call is a no-op, matching the idempotent-ownership rule for
// characters.
func (r *InventoryRepository) EnsureOwnedTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, itemType entities.InventoryItemType, itemID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO user_inventory (id, user_id, item_type, item_id, quantity, acquired_at)
		VALUES ($1, $2, $3, $4, 1, now())
		ON CONFLICT (user_id, item_type, item_id) DO NOTHING`,
		uuid.New(), userID, itemType, itemID)
	return err
}

// SetQuantityTx updates an existing row's quantity within tx.
func (r *InventoryRepository) SetQuantityTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, quantity int) error {
	_, err := tx.ExecContext(ctx, `UPDATE user_inventory SET quantity = $1 WHERE id = $2`, quantity, id)
	return err
}

// DeleteTx removes an inventory row within tx, used once quantity reaches 0.
func (r *InventoryRepository) DeleteTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM user_inventory WHERE id = $1`, id)
	return err
}
