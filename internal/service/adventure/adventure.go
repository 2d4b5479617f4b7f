// Package adventure implements the AI Adventure Orchestrator: the
// two-phase generate/submit state machine, goal-context prompting, and
// trace-id persistence that correlates a player-visible event with its
// upstream AI trace.
package adventure

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/moneyquest/backend/internal/aiclient"
	"github.com/moneyquest/backend/internal/apperrors"
	"github.com/moneyquest/backend/internal/entities"
	"github.com/moneyquest/backend/internal/repository"
)

// recentGoalsForContext bounds how many of a user's active goals feed
// the generate prompt.
const recentGoalsForContext = 3

// Service is the AI Adventure Orchestrator.
type Service struct {
	db          *sqlx.DB
	adventures  *repository.AdventureRepository
	profiles    *repository.ProfileRepository
	goals       *repository.GoalRepository
	ai          *aiclient.Client
}

// New creates a Service.
func New(db *sqlx.DB, adventures *repository.AdventureRepository, profiles *repository.ProfileRepository, goals *repository.GoalRepository, ai *aiclient.Client) *Service {
	return &Service{db: db, adventures: adventures, profiles: profiles, goals: goals, ai: ai}
}

// Generate builds a new scenario for userID. The profile must already
// exist; goalContext is built from the caller's most recently created
// active goals plus any caller-supplied extraContext.
func (s *Service) Generate(ctx context.Context, userID uuid.UUID, extraContext string) (*entities.Adventure, error) {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	activeGoals, err := s.goals.ListRecentActive(ctx, userID, recentGoalsForContext)
	if err != nil {
		return nil, err
	}
	goalContext := buildGoalContext(activeGoals, extraContext)

	allowance, _ := p.Allowance.Float64()
	resp, err := s.ai.GenerateAdventure(ctx, aiclient.GenerateRequest{
		UserAge:     p.Age,
		Allowance:   allowance,
		GoalContext: goalContext,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) < 2 {
		return nil, apperrors.New(apperrors.Internal, "AI adventure returned fewer than two choices")
	}

	a := &entities.Adventure{
		ID:                uuid.New(),
		UserID:            userID,
		Scenario:          resp.Scenario,
		Choices:           entities.StringSlice(resp.Choices),
		GenerationTraceID: resp.OpikTraceID,
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.adventures.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func buildGoalContext(activeGoals []entities.Goal, extraContext string) string {
	var parts []string
	for _, g := range activeGoals {
		parts = append(parts, fmt.Sprintf("%s (%s/%s)", g.Title, g.CurrentAmount.String(), g.TargetAmount.String()))
	}
	if extraContext != "" {
		parts = append(parts, extraContext)
	}
	return strings.Join(parts, "; ")
}

// SubmitChoice records the caller's choice and evaluates it, one time
// only. The AI call happens outside the database transaction (it can
// take up to the client's full timeout); the write is a single atomic
// UPDATE once the response is in hand.
func (s *Service) SubmitChoice(ctx context.Context, userID, adventureID uuid.UUID, choiceIndex int) (*entities.Adventure, error) {
	a, err := s.adventures.Get(ctx, adventureID, userID)
	if err != nil {
		return nil, err
	}
	if a.IsSubmitted() {
		return nil, apperrors.New(apperrors.AlreadySubmitted, "adventure already submitted")
	}
	if choiceIndex < 0 || choiceIndex >= len(a.Choices) {
		return nil, apperrors.New(apperrors.InvalidChoice, "choiceIndex out of range")
	}

	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp, err := s.ai.EvaluateChoice(ctx, aiclient.EvaluateRequest{
		Scenario:    a.Scenario,
		ChoiceIndex: choiceIndex,
		ChoiceText:  a.Choices[choiceIndex],
		UserAge:     p.Age,
	})
	if err != nil {
		return nil, err
	}

	evaluatedAt := time.Now().UTC()
	err = repository.WithTx(ctx, s.db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		locked, err := s.adventures.GetForUpdateTx(ctx, tx, adventureID, userID)
		if err != nil {
			return err
		}
		if locked.IsSubmitted() {
			return apperrors.New(apperrors.AlreadySubmitted, "adventure already submitted")
		}
		return s.adventures.SubmitChoiceTx(ctx, tx, adventureID, choiceIndex, resp.Feedback, entities.AdventureScores(resp.Scores), resp.OpikTraceID, evaluatedAt)
	})
	if err != nil {
		return nil, err
	}

	return s.adventures.Get(ctx, adventureID, userID)
}

// Get returns one adventure scoped to (id, userID).
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*entities.Adventure, error) {
	return s.adventures.Get(ctx, id, userID)
}

// History returns newest-first adventures for a user.
func (s *Service) History(ctx context.Context, userID uuid.UUID, limit int) ([]entities.Adventure, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.adventures.History(ctx, userID, limit)
}
