package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/moneyquest/backend/internal/apperrors"
	"github.com/moneyquest/backend/internal/service/adventure"
)

// AdventureHandlers serves the AI adventure generate/submit/read surface.
type AdventureHandlers struct {
	adventures *adventure.Service
}

// NewAdventureHandlers creates an AdventureHandlers.
func NewAdventureHandlers(adventures *adventure.Service) *AdventureHandlers {
	return &AdventureHandlers{adventures: adventures}
}

type generateAdventureRequest struct {
	Context string `json:"context"`
}

// Generate requests a new scenario from the AI adventure subsystem.
func (h *AdventureHandlers) Generate(c *gin.Context) {
	userID, ok2 := userIDFromContext(c)
	if !ok2 {
		return
	}

	var req generateAdventureRequest
	_ = c.ShouldBindJSON(&req)

	a, err := h.adventures.Generate(c.Request.Context(), userID, req.Context)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, a)
}

type submitChoiceRequest struct {
	ChoiceIndex int `json:"choiceIndex" validate:"gte=0"`
}

// SubmitChoice records and evaluates the caller's choice for an
// adventure, exactly once.
func (h *AdventureHandlers) SubmitChoice(c *gin.Context) {
	userID, ok2 := userIDFromContext(c)
	if !ok2 {
		return
	}

	adventureID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.New(apperrors.ValidationFailed, "invalid adventure id"))
		return
	}

	var req submitChoiceRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.adventures.SubmitChoice(c.Request.Context(), userID, adventureID, req.ChoiceIndex)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, a)
}

// Get returns one adventure owned by the caller.
func (h *AdventureHandlers) Get(c *gin.Context) {
	userID, ok2 := userIDFromContext(c)
	if !ok2 {
		return
	}

	adventureID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperrors.New(apperrors.ValidationFailed, "invalid adventure id"))
		return
	}

	a, err := h.adventures.Get(c.Request.Context(), userID, adventureID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, a)
}

// History returns the caller's past adventures, newest first.
func (h *AdventureHandlers) History(c *gin.Context) {
	userID, ok2 := userIDFromContext(c)
	if !ok2 {
		return
	}
	items, err := h.adventures.History(c.Request.Context(), userID, 0)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, items)
}
