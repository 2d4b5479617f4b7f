// Package shop implements the Shop Engine: catalog reads, inventory
// reads, and the purchase transaction that debits a wallet and credits
// inventory atomically.
package shop

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/moneyquest/backend/internal/apperrors"
	"github.com/moneyquest/backend/internal/entities"
	"github.com/moneyquest/backend/internal/metrics"
	"github.com/moneyquest/backend/internal/repository"
	"github.com/moneyquest/backend/internal/service/wallet"
)

// Service is the Shop Engine.
type Service struct {
	db        *sqlx.DB
	catalog   *repository.CatalogRepository
	inventory *repository.InventoryRepository
	wallets   *wallet.Service
}

// New creates a Service.
func New(db *sqlx.DB, catalog *repository.CatalogRepository, inventory *repository.InventoryRepository, wallets *wallet.Service) *Service {
	return &Service{db: db, catalog: catalog, inventory: inventory, wallets: wallets}
}

// ListCharacters returns the full character catalog, price ascending.
func (s *Service) ListCharacters(ctx context.Context) ([]entities.Character, error) {
	return s.catalog.ListCharacters(ctx)
}

// ListStarterCharacters returns the starter-eligible characters.
func (s *Service) ListStarterCharacters(ctx context.Context) ([]entities.Character, error) {
	return s.catalog.ListStarterCharacters(ctx)
}

// ListFoods returns the full food catalog, price ascending.
func (s *Service) ListFoods(ctx context.Context) ([]entities.Food, error) {
	return s.catalog.ListFoods(ctx)
}

// GetInventory returns every inventory row a user owns.
func (s *Service) GetInventory(ctx context.Context, userID uuid.UUID) ([]entities.UserInventory, error) {
	return s.inventory.List(ctx, userID)
}

// UserOwns reports whether a user owns at least one unit of an item.
func (s *Service) UserOwns(ctx context.Context, userID uuid.UUID, itemType entities.InventoryItemType, itemID uuid.UUID) (bool, error) {
	row, err := s.inventory.Get(ctx, userID, itemType, itemID)
	if err != nil {
		return false, err
	}
	return row != nil && row.Quantity > 0, nil
}

// PurchaseResult is the read shape for a successful Purchase.
type PurchaseResult struct {
	NewBalance decimal.Decimal `json:"newBalance"`
	Item       interface{}     `json:"item"`
}

// Purchase debits the item's price from the wallet and credits inventory,
// within one transaction: the debit is rolled back if the inventory
// update fails.
func (s *Service) Purchase(ctx context.Context, userID uuid.UUID, itemType entities.InventoryItemType, itemID uuid.UUID) (*PurchaseResult, error) {
	var result *PurchaseResult
	err := repository.WithTx(ctx, s.db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		var price decimal.Decimal
		var description string
		var item interface{}

		switch itemType {
		case entities.InventoryItemCharacter:
			c, err := s.catalog.GetCharacterTx(ctx, tx, itemID)
			if err != nil {
				return err
			}
			price = c.Price
			description = "Purchased character: " + c.Name
			item = c
		case entities.InventoryItemFood:
			f, err := s.catalog.GetFoodTx(ctx, tx, itemID)
			if err != nil {
				return err
			}
			price = f.Price
			description = "Purchased food: " + f.Name
			item = f
		default:
			return apperrors.New(apperrors.ValidationFailed, "unknown item type").WithField("itemType", "must be 'character' or 'food'")
		}

		w, err := s.wallets.DebitTx(ctx, tx, userID, price, entities.TransactionTypeShopPurchase, description)
		if err != nil {
			return err
		}

		if itemType == entities.InventoryItemCharacter {
			if err := s.inventory.EnsureOwnedTx(ctx, tx, userID, itemType, itemID); err != nil {
				return err
			}
		} else {
			if err := s.inventory.UpsertIncrementTx(ctx, tx, userID, itemType, itemID, 1); err != nil {
				return err
			}
		}

		result = &PurchaseResult{NewBalance: w.Balance, Item: item}
		return nil
	})

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	metrics.PurchasesTotal.WithLabelValues(string(itemType), outcome).Inc()

	return result, err
}

// ConsumeItem decrements an owned item's quantity by qty, deleting the
// inventory row if it reaches 0, within tx.
func (s *Service) ConsumeItem(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, itemType entities.InventoryItemType, itemID uuid.UUID, qty int) error {
	row, err := s.inventory.GetTx(ctx, tx, userID, itemType, itemID)
	if err != nil {
		return err
	}
	if row == nil {
		return apperrors.New(apperrors.NotFound, "item not in inventory")
	}
	if row.Quantity < qty {
		return apperrors.New(apperrors.InsufficientQuantity, "not enough quantity to consume")
	}
	remaining := row.Quantity - qty
	if remaining == 0 {
		return s.inventory.DeleteTx(ctx, tx, row.ID)
	}
	return s.inventory.SetQuantityTx(ctx, tx, row.ID, remaining)
}
