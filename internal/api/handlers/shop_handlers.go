package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/moneyquest/backend/internal/apperrors"
	"github.com/moneyquest/backend/internal/entities"
	"github.com/moneyquest/backend/internal/service/shop"
)

// ShopHandlers serves catalog reads, inventory reads and purchases.
type ShopHandlers struct {
	shop *shop.Service
}

// NewShopHandlers creates a ShopHandlers.
func NewShopHandlers(shop *shop.Service) *ShopHandlers {
	return &ShopHandlers{shop: shop}
}

// Characters lists the full character catalog.
func (h *ShopHandlers) Characters(c *gin.Context) {
	items, err := h.shop.ListCharacters(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, items)
}

// Foods lists the full food catalog.
func (h *ShopHandlers) Foods(c *gin.Context) {
	items, err := h.shop.ListFoods(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, items)
}

// StarterCharacters lists the starter-eligible characters offered during
// onboarding.
func (h *ShopHandlers) StarterCharacters(c *gin.Context) {
	items, err := h.shop.ListStarterCharacters(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, gin.H{"characters": items})
}

// Inventory returns the caller's owned items.
func (h *ShopHandlers) Inventory(c *gin.Context) {
	userID, ok2 := userIDFromContext(c)
	if !ok2 {
		return
	}
	items, err := h.shop.GetInventory(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, items)
}

type purchaseRequest struct {
	ItemType string    `json:"itemType" validate:"required,oneof=character food"`
	ItemID   uuid.UUID `json:"itemId" validate:"required"`
}

// Purchase debits the caller's wallet and credits inventory for one item.
func (h *ShopHandlers) Purchase(c *gin.Context) {
	userID, ok2 := userIDFromContext(c)
	if !ok2 {
		return
	}

	var req purchaseRequest
	if !bindJSON(c, &req) {
		return
	}

	var itemType entities.InventoryItemType
	switch req.ItemType {
	case "character":
		itemType = entities.InventoryItemCharacter
	case "food":
		itemType = entities.InventoryItemFood
	default:
		respondError(c, apperrors.New(apperrors.ValidationFailed, "unknown item type").WithField("itemType", "must be 'character' or 'food'"))
		return
	}

	result, err := h.shop.Purchase(c.Request.Context(), userID, itemType, req.ItemID)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, gin.H{"success": true, "newBalance": result.NewBalance.String(), "item": result.Item})
}
