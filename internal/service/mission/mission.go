// Package mission implements the Mission Engine: daily mission
// resolution, expense/saving logging, and the progress + completion
// state machine shared with the Tamagotchi Engine's feed event.
package mission

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/moneyquest/backend/internal/apperrors"
	"github.com/moneyquest/backend/internal/entities"
	"github.com/moneyquest/backend/internal/metrics"
	"github.com/moneyquest/backend/internal/repository"
	"github.com/moneyquest/backend/internal/service/wallet"
)

// Service is the Mission Engine.
type Service struct {
	db       *sqlx.DB
	missions *repository.MissionRepository
	catalog  *repository.CatalogRepository
	wallets  *wallet.Service
}

// New creates a Service.
func New(db *sqlx.DB, missions *repository.MissionRepository, catalog *repository.CatalogRepository, wallets *wallet.Service) *Service {
	return &Service{db: db, missions: missions, catalog: catalog, wallets: wallets}
}

// Today is the UTC calendar day "now" resolves to for daily mission
// selection.
func Today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// TodaysMissionResult is the read shape for TodaysMission.
type TodaysMissionResult struct {
	Mission     *entities.Mission     `json:"mission"`
	UserMission *entities.UserMission `json:"userMission"`
	ProgressPct float64               `json:"progressPct"`
}

// TodaysMission fetches the mission active for today and the caller's
// progress against it, lazily creating an empty-progress row. Fails with
// NoActiveMission if no catalog mission is active today.
func (s *Service) TodaysMission(ctx context.Context, userID uuid.UUID) (*TodaysMissionResult, error) {
	m, err := s.catalog.GetMissionForDate(ctx, Today())
	if err != nil {
		return nil, err
	}

	var um *entities.UserMission
	err = repository.WithTx(ctx, s.db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		existing, err := s.missions.GetUserMissionTx(ctx, tx, userID, m.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			um = existing
			return nil
		}
		um = &entities.UserMission{
			ID:        uuid.New(),
			UserID:    userID,
			MissionID: m.ID,
			Progress:  entities.MissionProgress{},
			CreatedAt: time.Now().UTC(),
		}
		return s.missions.CreateUserMissionTx(ctx, tx, um)
	})
	if err != nil {
		return nil, err
	}

	return &TodaysMissionResult{Mission: m, UserMission: um, ProgressPct: progressPct(m, um)}, nil
}

// progressPct computes the completion percentage for a mission/progress
// pair according to the mission's type-specific formula.
func progressPct(m *entities.Mission, um *entities.UserMission) float64 {
	switch m.MissionType {
	case entities.MissionTypeLogExpenses, entities.MissionTypeExpenseTracking:
		return ratioPct(um.Progress["expenseCount"], m.Requirements["expenseCount"])
	case entities.MissionTypeLogSavings, entities.MissionTypeSavingTracking:
		return ratioPct(um.Progress["savingCount"], m.Requirements["savingCount"])
	case entities.MissionTypeCombined:
		expensePct := ratioPct(um.Progress["expenseCount"], m.Requirements["expenseCount"])
		savingPct := ratioPct(um.Progress["savingCount"], m.Requirements["savingCount"])
		return (expensePct + savingPct) / 2
	case entities.MissionTypeTamagotchiCare:
		return ratioPct(um.Progress["feedCount"], m.Requirements["feedCount"])
	default:
		return 0
	}
}

func ratioPct(count, required int) float64 {
	if required <= 0 {
		return 0
	}
	pct := 100 * float64(count) / float64(required)
	if pct > 100 {
		pct = 100
	}
	return pct
}

// LogResult is the read shape shared by LogExpense and LogSaving.
type LogResult struct {
	ProgressPct float64 `json:"progressPct"`
	Completed   bool    `json:"completed"`
}

// LogExpense appends an expense row and increments expenseCount against
// today's mission (if any), crediting the reward exactly once if this
// call completes the mission. A non-positive amount fails with
// InvalidAmount; an absent active mission still logs the expense and
// returns zero progress rather than failing.
func (s *Service) LogExpense(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, category, description string) (*entities.Expense, *LogResult, error) {
	if amount.Sign() <= 0 {
		return nil, nil, apperrors.New(apperrors.InvalidAmount, "amount must be positive")
	}
	expense := &entities.Expense{
		ID:          uuid.New(),
		UserID:      userID,
		Amount:      amount,
		Category:    category,
		Description: description,
		LoggedAt:    time.Now().UTC(),
	}

	result := &LogResult{}
	err := repository.WithTx(ctx, s.db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		if err := s.missions.CreateExpenseTx(ctx, tx, expense); err != nil {
			return err
		}
		return s.bumpActiveMissionTx(ctx, tx, userID, "expenseCount", result)
	})
	if err != nil {
		return nil, nil, err
	}
	return expense, result, nil
}

// LogSaving appends a saving row and increments savingCount the same way
// LogExpense does for expenseCount.
func (s *Service) LogSaving(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, source string) (*entities.Saving, *LogResult, error) {
	if amount.Sign() <= 0 {
		return nil, nil, apperrors.New(apperrors.InvalidAmount, "amount must be positive")
	}
	saving := &entities.Saving{
		ID:       uuid.New(),
		UserID:   userID,
		Amount:   amount,
		Source:   source,
		LoggedAt: time.Now().UTC(),
	}

	result := &LogResult{}
	err := repository.WithTx(ctx, s.db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		if err := s.missions.CreateSavingTx(ctx, tx, saving); err != nil {
			return err
		}
		return s.bumpActiveMissionTx(ctx, tx, userID, "savingCount", result)
	})
	if err != nil {
		return nil, nil, err
	}
	return saving, result, nil
}

// bumpActiveMissionTx increments progress[counterKey] against today's
// active mission (a no-op if none is active) and runs the completion
// check, within tx.
func (s *Service) bumpActiveMissionTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, counterKey string, result *LogResult) error {
	m, err := s.catalog.GetMissionForDate(ctx, Today())
	if apperrors.Is(err, apperrors.NoActiveMission) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.bumpProgressTx(ctx, tx, m, userID, counterKey, result)
}

// bumpProgressTx increments progress[counterKey] against mission m and
// runs the completion check, within tx.
func (s *Service) bumpProgressTx(ctx context.Context, tx *sqlx.Tx, m *entities.Mission, userID uuid.UUID, counterKey string, result *LogResult) error {
	um, err := s.missions.GetUserMissionTx(ctx, tx, userID, m.ID)
	if err != nil {
		return err
	}
	if um == nil {
		um = &entities.UserMission{
			ID:        uuid.New(),
			UserID:    userID,
			MissionID: m.ID,
			Progress:  entities.MissionProgress{},
			CreatedAt: time.Now().UTC(),
		}
		if err := s.missions.CreateUserMissionTx(ctx, tx, um); err != nil {
			return err
		}
	}
	if um.Completed {
		result.Completed = true
		result.ProgressPct = 100
		return nil
	}

	if um.Progress == nil {
		um.Progress = entities.MissionProgress{}
	}
	um.Progress[counterKey] = um.Progress[counterKey] + 1
	if err := s.missions.UpdateProgressTx(ctx, tx, um.ID, um.Progress); err != nil {
		return err
	}

	return s.completeIfReadyTx(ctx, tx, m, um, result)
}

// completeIfReadyTx flips um to completed and credits the reward exactly
// once when progress has reached 100%, within tx.
func (s *Service) completeIfReadyTx(ctx context.Context, tx *sqlx.Tx, m *entities.Mission, um *entities.UserMission, result *LogResult) error {
	pct := progressPct(m, um)
	result.ProgressPct = pct
	result.Completed = um.Completed

	if um.Completed || pct < 100 {
		return nil
	}

	if err := s.missions.CompleteTx(ctx, tx, um.ID); err != nil {
		return err
	}
	desc := fmt.Sprintf("Completed mission: %s", m.Title)
	if _, err := s.wallets.CreditTx(ctx, tx, um.UserID, m.RewardCoins, entities.TransactionTypeMissionReward, desc); err != nil {
		return err
	}
	result.Completed = true
	metrics.MissionsCompletedTotal.WithLabelValues(string(m.MissionType)).Inc()
	return nil
}

// BumpTamagotchiCareTx increments feedCount against today's mission (if
// it is a tamagotchi_care mission) and runs the completion check. Shared
// with the Tamagotchi Engine's Feed algorithm, which calls this within
// its own transaction.
func (s *Service) BumpTamagotchiCareTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) error {
	m, err := s.catalog.GetMissionForDate(ctx, Today())
	if apperrors.Is(err, apperrors.NoActiveMission) {
		return nil
	}
	if err != nil {
		return err
	}
	if m.MissionType != entities.MissionTypeTamagotchiCare {
		return nil
	}

	result := &LogResult{}
	return s.bumpProgressTx(ctx, tx, m, userID, "feedCount", result)
}

// ListExpenses returns newest-first expense history for a user.
func (s *Service) ListExpenses(ctx context.Context, userID uuid.UUID, limit int) ([]entities.Expense, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.missions.ListExpenses(ctx, userID, limit)
}

// ListSavings returns newest-first saving history for a user.
func (s *Service) ListSavings(ctx context.Context, userID uuid.UUID, limit int) ([]entities.Saving, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.missions.ListSavings(ctx, userID, limit)
}
