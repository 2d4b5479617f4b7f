// Package profile implements the Profile / Onboarding component:
// profile creation and the starter-character-to-pet bootstrap.
package profile

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/moneyquest/backend/internal/apperrors"
	"github.com/moneyquest/backend/internal/entities"
	"github.com/moneyquest/backend/internal/repository"
)

// startingTamagotchiStat is the initial hunger/happiness value a freshly
// bootstrapped tamagotchi carries; health starts full.
const startingTamagotchiStat = 50

// Service is the Profile / Onboarding component.
type Service struct {
	db          *sqlx.DB
	profiles    *repository.ProfileRepository
	catalog     *repository.CatalogRepository
	tamagotchis *repository.TamagotchiRepository
}

// New creates a Service.
func New(db *sqlx.DB, profiles *repository.ProfileRepository, catalog *repository.CatalogRepository, tamagotchis *repository.TamagotchiRepository) *Service {
	return &Service{db: db, profiles: profiles, catalog: catalog, tamagotchis: tamagotchis}
}

// CreateProfile inserts a new profile for userID. Fails with Conflict if
// one already exists.
func (s *Service) CreateProfile(ctx context.Context, userID uuid.UUID, age int, allowance decimal.Decimal, currency string) (*entities.Profile, error) {
	if _, err := s.profiles.GetByUserID(ctx, userID); err == nil {
		return nil, apperrors.New(apperrors.Conflict, "profile already exists")
	} else if !apperrors.IsNotFound(err) {
		return nil, err
	}

	now := time.Now().UTC()
	p := &entities.Profile{
		ID:        uuid.New(),
		UserID:    userID,
		Age:       age,
		Allowance: allowance,
		Currency:  currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.profiles.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetProfile reads a user's profile.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*entities.Profile, error) {
	return s.profiles.GetByUserID(ctx, userID)
}

// ChooseStarterCharacter validates characterID is a starter character,
// creates the user's one-and-only tamagotchi from it, and flips
// onboardingCompleted, all within one transaction.
func (s *Service) ChooseStarterCharacter(ctx context.Context, userID, characterID uuid.UUID) (*entities.Tamagotchi, error) {
	var result *entities.Tamagotchi
	err := repository.WithTx(ctx, s.db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		if _, err := s.profiles.GetByUserIDTx(ctx, tx, userID); err != nil {
			return err
		}

		c, err := s.catalog.GetCharacterTx(ctx, tx, characterID)
		if err != nil {
			return err
		}
		if !c.IsStarter {
			return apperrors.New(apperrors.InvalidStarter, "character is not a starter character")
		}

		exists, err := s.tamagotchis.ExistsForUserTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.New(apperrors.Conflict, "tamagotchi already exists for user")
		}

		now := time.Now().UTC()
		t := &entities.Tamagotchi{
			ID:          uuid.New(),
			UserID:      userID,
			CharacterID: characterID,
			Name:        c.Name,
			Hunger:      startingTamagotchiStat,
			Happiness:   startingTamagotchiStat,
			Health:      100,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.tamagotchis.CreateTx(ctx, tx, t); err != nil {
			return err
		}

		if err := s.profiles.SetOnboardingCompletedTx(ctx, tx, userID); err != nil {
			return err
		}

		result = t
		return nil
	})
	return result, err
}
