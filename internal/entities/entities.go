// Package entities defines the persisted game-state types: accounts, the
// wallet ledger, catalog items, missions, goals and adventures. Every
// entity carries a random UUID identifier and UTC timestamps.
package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User is a registered player account. Username and email are immutable
// after registration.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Profile holds the per-user onboarding state: age, allowance and
// currency. Created once per user; onboardingCompleted flips true exactly
// when a starter character is chosen.
type Profile struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	UserID              uuid.UUID       `json:"userId" db:"user_id"`
	Age                 int             `json:"age" db:"age"`
	Allowance           decimal.Decimal `json:"allowance" db:"allowance"`
	Currency            string          `json:"currency" db:"currency"`
	OnboardingCompleted bool            `json:"onboardingCompleted" db:"onboarding_completed"`
	CreatedAt           time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time       `json:"updatedAt" db:"updated_at"`
}

// Character is a catalog pet avatar. Starter characters are free and
// choosable during onboarding; others are purchasable in the shop.
type Character struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	ImageURL  string          `json:"imageUrl" db:"image_url"`
	IsStarter bool            `json:"isStarter" db:"is_starter"`
	Price     decimal.Decimal `json:"price" db:"price"`
}

// Food is a catalog item that can be fed to a tamagotchi.
type Food struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	Name           string          `json:"name" db:"name"`
	NutritionValue int             `json:"nutritionValue" db:"nutrition_value"`
	Price          decimal.Decimal `json:"price" db:"price"`
	ImageURL       string          `json:"imageUrl" db:"image_url"`
}

// Tamagotchi is the user's virtual pet, created exactly once when a
// starter character is chosen. Stat bounds are enforced by storage CHECK
// constraints as well as the feed algorithm.
type Tamagotchi struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      uuid.UUID  `json:"userId" db:"user_id"`
	CharacterID uuid.UUID  `json:"characterId" db:"character_id"`
	Name        string     `json:"name" db:"name"`
	Hunger      int        `json:"hunger" db:"hunger"`
	Happiness   int        `json:"happiness" db:"happiness"`
	Health      int        `json:"health" db:"health"`
	LastFedAt   *time.Time `json:"lastFedAt" db:"last_fed_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// Wallet holds a user's coin balance. Auto-created on first read or first
// credit; balance non-negative is a storage-level invariant.
type Wallet struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	UserID    uuid.UUID       `json:"userId" db:"user_id"`
	Balance   decimal.Decimal `json:"balance" db:"balance"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// TransactionType tags the reason a WalletTransaction was appended.
type TransactionType string

const (
	TransactionTypeShopPurchase   TransactionType = "shop_purchase"
	TransactionTypeMissionReward  TransactionType = "mission_reward"
	TransactionTypeGoalBonus      TransactionType = "goal_bonus"
	TransactionTypeManualCredit   TransactionType = "manual_credit"
	TransactionTypeManualDebit    TransactionType = "manual_debit"
)

// WalletTransaction is an append-only ledger row. One row is written per
// successful debit or credit, in the same transaction that mutated the
// wallet balance; the sum of amounts over a wallet equals its balance.
type WalletTransaction struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	WalletID        uuid.UUID       `json:"walletId" db:"wallet_id"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	TransactionType TransactionType `json:"transactionType" db:"transaction_type"`
	Description     string          `json:"description" db:"description"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
}

// InventoryItemType discriminates the two catalog kinds an inventory row
// can reference.
type InventoryItemType string

const (
	InventoryItemCharacter InventoryItemType = "character"
	InventoryItemFood      InventoryItemType = "food"
)

// UserInventory is a single owned-item row. Foods stack via Quantity;
// characters are binary-owned (quantity is always 1 while the row
// exists). At most one row per (userId, itemType, itemId); a row is
// deleted once its quantity reaches 0.
type UserInventory struct {
	ID         uuid.UUID         `json:"id" db:"id"`
	UserID     uuid.UUID         `json:"userId" db:"user_id"`
	ItemType   InventoryItemType `json:"itemType" db:"item_type"`
	ItemID     uuid.UUID         `json:"itemId" db:"item_id"`
	Quantity   int               `json:"quantity" db:"quantity"`
	AcquiredAt time.Time         `json:"acquiredAt" db:"acquired_at"`
}

// MissionType selects which progress formula a mission uses (see
// internal/service/mission).
type MissionType string

const (
	MissionTypeLogExpenses     MissionType = "log_expenses"
	MissionTypeExpenseTracking MissionType = "expense_tracking"
	MissionTypeLogSavings      MissionType = "log_savings"
	MissionTypeSavingTracking  MissionType = "saving_tracking"
	MissionTypeCombined        MissionType = "combined"
	MissionTypeTamagotchiCare  MissionType = "tamagotchi_care"
)

// MissionRequirements is the tag-specific threshold map a mission carries,
// e.g. {"expenseCount": 3}.
type MissionRequirements map[string]int

// Mission is a catalog row; exactly one mission is expected to be current
// for any given UTC day (ActiveDate).
type Mission struct {
	ID           uuid.UUID           `json:"id" db:"id"`
	Title        string              `json:"title" db:"title"`
	Description  string              `json:"description" db:"description"`
	MissionType  MissionType         `json:"missionType" db:"mission_type"`
	Requirements MissionRequirements `json:"requirements" db:"requirements"`
	RewardCoins  decimal.Decimal     `json:"rewardCoins" db:"reward_coins"`
	ActiveDate   time.Time           `json:"activeDate" db:"active_date"`
}

// MissionProgress is the tag-keyed counter map tracked per user-mission.
type MissionProgress map[string]int

// UserMission tracks one user's progress against one mission; unique per
// (userId, missionId), created lazily on first fetch. Completed is
// monotonic — it never flips back to false.
type UserMission struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	UserID      uuid.UUID       `json:"userId" db:"user_id"`
	MissionID   uuid.UUID       `json:"missionId" db:"mission_id"`
	Progress    MissionProgress `json:"progress" db:"progress"`
	Completed   bool            `json:"completed" db:"completed"`
	CompletedAt *time.Time      `json:"completedAt" db:"completed_at"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
}

// Expense is an append-only logged spending event.
type Expense struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	UserID      uuid.UUID       `json:"userId" db:"user_id"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Category    string          `json:"category" db:"category"`
	Description string          `json:"description" db:"description"`
	LoggedAt    time.Time       `json:"loggedAt" db:"logged_at"`
}

// Saving is an append-only logged savings event.
type Saving struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	UserID    uuid.UUID       `json:"userId" db:"user_id"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Source    string          `json:"source" db:"source"`
	LoggedAt  time.Time       `json:"loggedAt" db:"logged_at"`
}

// Goal is a user-defined savings target. Completed is monotonic;
// CompletedAt is non-null iff Completed.
type Goal struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	UserID        uuid.UUID       `json:"userId" db:"user_id"`
	Title         string          `json:"title" db:"title"`
	Description   string          `json:"description" db:"description"`
	TargetAmount  decimal.Decimal `json:"targetAmount" db:"target_amount"`
	CurrentAmount decimal.Decimal `json:"currentAmount" db:"current_amount"`
	Completed     bool            `json:"completed" db:"completed"`
	CompletedAt   *time.Time      `json:"completedAt" db:"completed_at"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// ProgressPct returns the goal's completion percentage, clamped to 100.
func (g *Goal) ProgressPct() float64 {
	if g.TargetAmount.IsZero() {
		return 0
	}
	pct := g.CurrentAmount.Div(g.TargetAmount).Mul(decimal.NewFromInt(100))
	hundred := decimal.NewFromInt(100)
	if pct.GreaterThan(hundred) {
		return 100
	}
	f, _ := pct.Float64()
	return f
}

// AdventureScores maps an evaluation metric name to a score in [0,1].
type AdventureScores map[string]float64

// Adventure is one AI-generated money scenario. SelectedChoiceIndex is
// write-once: transitioning it from nil to a valid index also writes
// Feedback, Scores, EvaluationTraceID and EvaluatedAt atomically.
type Adventure struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	UserID              uuid.UUID       `json:"userId" db:"user_id"`
	Scenario            string          `json:"scenario" db:"scenario"`
	Choices             StringSlice     `json:"choices" db:"choices"`
	SelectedChoiceIndex *int            `json:"selectedChoiceIndex" db:"selected_choice_index"`
	Feedback            *string         `json:"feedback" db:"feedback"`
	Scores              AdventureScores `json:"scores" db:"scores"`
	GenerationTraceID   string          `json:"generationTraceId" db:"generation_trace_id"`
	EvaluationTraceID   *string         `json:"evaluationTraceId" db:"evaluation_trace_id"`
	CreatedAt           time.Time       `json:"createdAt" db:"created_at"`
	EvaluatedAt         *time.Time      `json:"evaluatedAt" db:"evaluated_at"`
}

// IsSubmitted reports whether a choice has already been recorded.
func (a *Adventure) IsSubmitted() bool {
	return a.SelectedChoiceIndex != nil
}
