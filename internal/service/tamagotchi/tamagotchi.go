// Package tamagotchi implements the Tamagotchi Engine: state reads and
// the feed transaction that consumes inventory and mutates pet stats.
package tamagotchi

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/moneyquest/backend/internal/apperrors"
	"github.com/moneyquest/backend/internal/entities"
	"github.com/moneyquest/backend/internal/repository"
	"github.com/moneyquest/backend/internal/service/mission"
	"github.com/moneyquest/backend/internal/service/shop"
)

// Service is the Tamagotchi Engine.
type Service struct {
	db          *sqlx.DB
	tamagotchis *repository.TamagotchiRepository
	catalog     *repository.CatalogRepository
	inventory   *repository.InventoryRepository
	shop        *shop.Service
	missions    *mission.Service
}

// New creates a Service.
func New(db *sqlx.DB, tamagotchis *repository.TamagotchiRepository, catalog *repository.CatalogRepository, inventory *repository.InventoryRepository, shopSvc *shop.Service, missionSvc *mission.Service) *Service {
	return &Service{db: db, tamagotchis: tamagotchis, catalog: catalog, inventory: inventory, shop: shopSvc, missions: missionSvc}
}

// Get returns a user's tamagotchi, NotFound if onboarding never created
// one.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*entities.Tamagotchi, error) {
	return s.tamagotchis.GetByUserID(ctx, userID)
}

// Feed consumes one unit of foodID from inventory and updates the
// tamagotchi's hunger/happiness/health, all within one transaction. If
// today's active mission is tamagotchi_care, the feed event also bumps
// its progress and runs the completion check.
func (s *Service) Feed(ctx context.Context, userID, foodID uuid.UUID) (*entities.Tamagotchi, error) {
	var result *entities.Tamagotchi
	err := repository.WithTx(ctx, s.db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		t, err := s.tamagotchis.GetByUserIDForUpdateTx(ctx, tx, userID)
		if err != nil {
			return err
		}

		food, err := s.catalog.GetFoodTx(ctx, tx, foodID)
		if err != nil {
			return err
		}

		owns, err := s.userOwnsTx(ctx, tx, userID, foodID)
		if err != nil {
			return err
		}
		if !owns {
			return apperrors.New(apperrors.Forbidden, "food not owned")
		}

		n := food.NutritionValue
		t.Hunger = maxInt(0, t.Hunger-n)
		t.Happiness = minInt(100, t.Happiness+n/2)
		if t.Hunger < 30 {
			t.Health = minInt(100, t.Health+5)
		}
		now := time.Now().UTC()
		t.LastFedAt = &now

		if err := s.tamagotchis.UpdateStatsTx(ctx, tx, t); err != nil {
			return err
		}

		if err := s.shop.ConsumeItem(ctx, tx, userID, entities.InventoryItemFood, foodID, 1); err != nil {
			return err
		}

		if err := s.missions.BumpTamagotchiCareTx(ctx, tx, userID); err != nil {
			return err
		}

		result = t
		return nil
	})
	return result, err
}

// Rename updates a tamagotchi's display name.
func (s *Service) Rename(ctx context.Context, userID uuid.UUID, name string) error {
	return repository.WithTx(ctx, s.db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		if _, err := s.tamagotchis.GetByUserIDForUpdateTx(ctx, tx, userID); err != nil {
			return err
		}
		return s.tamagotchis.RenameTx(ctx, tx, userID, name)
	})
}

func (s *Service) userOwnsTx(ctx context.Context, tx *sqlx.Tx, userID, foodID uuid.UUID) (bool, error) {
	row, err := s.inventory.GetTx(ctx, tx, userID, entities.InventoryItemFood, foodID)
	if err != nil {
		return false, err
	}
	return row != nil && row.Quantity > 0, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
