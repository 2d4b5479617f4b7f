package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/moneyquest/backend/internal/service/tamagotchi"
)

// TamagotchiHandlers serves the caller's pet: read, feed, rename.
type TamagotchiHandlers struct {
	tamagotchis *tamagotchi.Service
}

// NewTamagotchiHandlers creates a TamagotchiHandlers.
func NewTamagotchiHandlers(tamagotchis *tamagotchi.Service) *TamagotchiHandlers {
	return &TamagotchiHandlers{tamagotchis: tamagotchis}
}

// Get returns the caller's tamagotchi.
func (h *TamagotchiHandlers) Get(c *gin.Context) {
	userID, ok2 := userIDFromContext(c)
	if !ok2 {
		return
	}
	t, err := h.tamagotchis.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, t)
}

type feedRequest struct {
	FoodID uuid.UUID `json:"foodId" validate:"required"`
}

// Feed consumes one owned food item and applies its stat effects.
func (h *TamagotchiHandlers) Feed(c *gin.Context) {
	userID, ok2 := userIDFromContext(c)
	if !ok2 {
		return
	}

	var req feedRequest
	if !bindJSON(c, &req) {
		return
	}

	t, err := h.tamagotchis.Feed(c.Request.Context(), userID, req.FoodID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, t)
}

type renameRequest struct {
	Name string `json:"name" validate:"required,min=1,max=50"`
}

// Rename changes the caller's tamagotchi's display name.
func (h *TamagotchiHandlers) Rename(c *gin.Context) {
	userID, ok2 := userIDFromContext(c)
	if !ok2 {
		return
	}

	var req renameRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.tamagotchis.Rename(c.Request.Context(), userID, req.Name); err != nil {
		respondError(c, err)
		return
	}

	t, err := h.tamagotchis.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, t)
}
