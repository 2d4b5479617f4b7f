package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moneyquest/backend/internal/apperrors"
	"github.com/moneyquest/backend/internal/service/goal"
)

// GoalHandlers serves goal creation, listing, progress and deletion.
type GoalHandlers struct {
	goals *goal.Service
}

// NewGoalHandlers creates a GoalHandlers.
func NewGoalHandlers(goals *goal.Service) *GoalHandlers {
	return &GoalHandlers{goals: goals}
}

type createGoalRequest struct {
	Title        string `json:"title" validate:"required,max=100"`
	Description  string `json:"description"`
	TargetAmount string `json:"targetAmount" validate:"required"`
}

// Create adds a new savings goal for the caller.
func (h *GoalHandlers) Create(c *gin.Context) {
	userID, ok2 := userIDFromContext(c)
	if !ok2 {
		return
	}

	var req createGoalRequest
	if !bindJSON(c, &req) {
		return
	}

	target, err := decimal.NewFromString(req.TargetAmount)
	if err != nil || target.Sign() <= 0 {
		respondError(c, apperrors.New(apperrors.ValidationFailed, "targetAmount must be a positive decimal").WithField("targetAmount", "invalid"))
		return
	}

	g, err := h.goals.Create(c.Request.Context(), userID, req.Title, req.Description, target)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, g)
}

// List returns every goal for the caller.
func (h *GoalHandlers) List(c *gin.Context) {
	userID, ok2 := userIDFromContext(c)
	if !ok2 {
		return
	}
	items, err := h.goals.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, items)
}

// Active returns the caller's not-yet-completed goals.
func (h *GoalHandlers) Active(c *gin.Context) {
	userID, ok2 := userIDFromContext(c)
	if !ok2 {
		return
	}
	items, err := h.goals.ListActive(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, items)
}

// Completed returns the caller's completed goals.
func (h *GoalHandlers) Completed(c *gin.Context) {
	userID, ok2 := userIDFromContext(c)
	if !ok2 {
		return
	}
	items, err := h.goals.ListCompleted(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, items)
}

type addProgressRequest struct {
	Amount string `json:"amount" validate:"required"`
}

// AddProgress adds funds toward a goal, crediting the completion bonus
// if it tips the goal over its target.
func (h *GoalHandlers) AddProgress(c *gin.Context) {
	userID, ok2 := userIDFromContext(c)
	if !ok2 {
		return
	}

	goalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.New(apperrors.ValidationFailed, "invalid goal id"))
		return
	}

	var req addProgressRequest
	if !bindJSON(c, &req) {
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.Sign() <= 0 {
		respondError(c, apperrors.New(apperrors.ValidationFailed, "amount must be a positive decimal").WithField("amount", "invalid"))
		return
	}

	result, err := h.goals.AddProgress(c.Request.Context(), goalID, userID, amount)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"goal": result.Goal}
	if result.BonusAwarded != nil {
		resp["bonusAwarded"] = result.BonusAwarded.String()
	}
	ok(c, resp)
}

// Delete removes a goal owned by the caller.
func (h *GoalHandlers) Delete(c *gin.Context) {
	userID, ok2 := userIDFromContext(c)
	if !ok2 {
		return
	}

	goalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.New(apperrors.ValidationFailed, "invalid goal id"))
		return
	}

	if err := h.goals.Delete(c.Request.Context(), goalID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(204)
}
