package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/moneyquest/backend/internal/apperrors"
	"github.com/moneyquest/backend/internal/service/mission"
)

// MissionHandlers serves the daily mission, expense/saving logging, and
// their history.
type MissionHandlers struct {
	missions *mission.Service
}

// NewMissionHandlers creates a MissionHandlers.
func NewMissionHandlers(missions *mission.Service) *MissionHandlers {
	return &MissionHandlers{missions: missions}
}

// Today returns the caller's mission for the current UTC day, along with
// their progress on it.
func (h *MissionHandlers) Today(c *gin.Context) {
	userID, ok2 := userIDFromContext(c)
	if !ok2 {
		return
	}

	result, err := h.missions.TodaysMission(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, result)
}

type logExpenseRequest struct {
	Amount      string `json:"amount" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Description string `json:"description"`
}

// LogExpense records an expense and applies any mission progress it
// unlocks.
func (h *MissionHandlers) LogExpense(c *gin.Context) {
	userID, ok2 := userIDFromContext(c)
	if !ok2 {
		return
	}

	var req logExpenseRequest
	if !bindJSON(c, &req) {
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.Sign() <= 0 {
		respondError(c, apperrors.New(apperrors.ValidationFailed, "amount must be a positive decimal").WithField("amount", "invalid"))
		return
	}

	expense, result, err := h.missions.LogExpense(c.Request.Context(), userID, amount, req.Category, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, gin.H{"expense": expense, "missionProgress": result})
}

type logSavingRequest struct {
	Amount string `json:"amount" validate:"required"`
	Source string `json:"source" validate:"required"`
}

// LogSaving records a saving and applies any mission progress it unlocks.
func (h *MissionHandlers) LogSaving(c *gin.Context) {
	userID, ok2 := userIDFromContext(c)
	if !ok2 {
		return
	}

	var req logSavingRequest
	if !bindJSON(c, &req) {
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.Sign() <= 0 {
		respondError(c, apperrors.New(apperrors.ValidationFailed, "amount must be a positive decimal").WithField("amount", "invalid"))
		return
	}

	saving, result, err := h.missions.LogSaving(c.Request.Context(), userID, amount, req.Source)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, gin.H{"saving": saving, "missionProgress": result})
}

// Expenses returns the caller's expense history, newest first.
func (h *MissionHandlers) Expenses(c *gin.Context) {
	userID, ok2 := userIDFromContext(c)
	if !ok2 {
		return
	}
	items, err := h.missions.ListExpenses(c.Request.Context(), userID, 0)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, items)
}

// Savings returns the caller's saving history, newest first.
func (h *MissionHandlers) Savings(c *gin.Context) {
	userID, ok2 := userIDFromContext(c)
	if !ok2 {
		return
	}
	items, err := h.missions.ListSavings(c.Request.Context(), userID, 0)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, items)
}
