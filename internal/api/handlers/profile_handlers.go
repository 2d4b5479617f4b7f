package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/moneyquest/backend/internal/apperrors"
	"github.com/moneyquest/backend/internal/service/profile"
)

// ProfileHandlers serves profile creation/read and starter-character
// onboarding.
type ProfileHandlers struct {
	profiles *profile.Service
}

// NewProfileHandlers creates a ProfileHandlers.
func NewProfileHandlers(profiles *profile.Service) *ProfileHandlers {
	return &ProfileHandlers{profiles: profiles}
}

type createProfileRequest struct {
	Age       int    `json:"age" validate:"required,min=1,max=120"`
	Allowance string `json:"allowance" validate:"required"`
	Currency  string `json:"currency" validate:"required,len=3"`
}

// Create provisions a profile for the authenticated caller.
func (h *ProfileHandlers) Create(c *gin.Context) {
	userID, ok2 := userIDFromContext(c)
	if !ok2 {
		return
	}

	var req createProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	allowance, err := decimal.NewFromString(req.Allowance)
	if err != nil {
		respondError(c, apperrors.New(apperrors.ValidationFailed, "allowance must be a decimal amount").WithField("allowance", "invalid"))
		return
	}

	p, err := h.profiles.CreateProfile(c.Request.Context(), userID, req.Age, allowance, req.Currency)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, p)
}

// Get returns the authenticated caller's profile.
func (h *ProfileHandlers) Get(c *gin.Context) {
	userID, ok2 := userIDFromContext(c)
	if !ok2 {
		return
	}

	p, err := h.profiles.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, p)
}

type chooseStarterRequest struct {
	CharacterID uuid.UUID `json:"characterId" validate:"required"`
}

// ChooseStarter completes onboarding by bootstrapping the caller's
// tamagotchi from a starter character.
func (h *ProfileHandlers) ChooseStarter(c *gin.Context) {
	userID, ok2 := userIDFromContext(c)
	if !ok2 {
		return
	}

	var req chooseStarterRequest
	if !bindJSON(c, &req) {
		return
	}

	t, err := h.profiles.ChooseStarterCharacter(c.Request.Context(), userID, req.CharacterID)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, t)
}
