package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/moneyquest/backend/internal/service/profile"
	"github.com/moneyquest/backend/internal/service/wallet"
)

// WalletHandlers serves balance reads and transaction history.
type WalletHandlers struct {
	wallets  *wallet.Service
	profiles *profile.Service
}

// NewWalletHandlers creates a WalletHandlers.
func NewWalletHandlers(wallets *wallet.Service, profiles *profile.Service) *WalletHandlers {
	return &WalletHandlers{wallets: wallets, profiles: profiles}
}

type balanceResponse struct {
	Balance  string `json:"balance"`
	Currency string `json:"currency"`
}

// Balance returns the caller's wallet balance alongside the currency
// recorded on their profile.
func (h *WalletHandlers) Balance(c *gin.Context) {
	userID, ok2 := userIDFromContext(c)
	if !ok2 {
		return
	}

	balance, err := h.wallets.GetBalance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	currency := "USD"
	if p, err := h.profiles.GetProfile(c.Request.Context(), userID); err == nil {
		currency = p.Currency
	}

	ok(c, balanceResponse{Balance: balance.String(), Currency: currency})
}

// History returns the caller's wallet transaction ledger, newest first.
func (h *WalletHandlers) History(c *gin.Context) {
	userID, ok2 := userIDFromContext(c)
	if !ok2 {
		return
	}

	txs, err := h.wallets.History(c.Request.Context(), userID, 0)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, txs)
}
