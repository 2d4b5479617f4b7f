package wallet

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/moneyquest/backend/internal/apperrors"
	"github.com/moneyquest/backend/internal/entities"
)

// Credit and Debit reject non-positive amounts before ever touching the
// database, so this much is testable without a live *sqlx.DB.
func TestCredit_RejectsNonPositiveAmount(t *testing.T) {
	s := &Service{}

	for _, amount := range []string{"0", "-5"} {
		_, err := s.Credit(context.Background(), uuid.New(), decimal.RequireFromString(amount), entities.TransactionTypeMissionReward, "daily mission")
		e, ok := apperrors.Of(err)
		assert.True(t, ok)
		assert.Equal(t, apperrors.InvalidAmount, e.Kind)
	}
}

func TestDebit_RejectsNonPositiveAmount(t *testing.T) {
	s := &Service{}

	_, err := s.Debit(context.Background(), uuid.New(), decimal.Zero, entities.TransactionTypeShopPurchase, "shop item")
	e, ok := apperrors.Of(err)
	assert.True(t, ok)
	assert.Equal(t, apperrors.InvalidAmount, e.Kind)
}
