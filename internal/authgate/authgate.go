// Package authgate is the Auth Gate component: it turns a raw
// Authorization header into an authenticated principal, or a reason it
// can't.
package authgate

import (
	"strings"

	"github.com/google/uuid"

	"github.com/moneyquest/backend/internal/apperrors"
	"github.com/moneyquest/backend/pkg/auth"
)

// ResolvePrincipal validates an "Authorization: Bearer <token>" header
// against secret and returns the caller's user id.
func ResolvePrincipal(authHeader, secret string) (uuid.UUID, error) {
	if authHeader == "" {
		return uuid.Nil, apperrors.New(apperrors.Unauthorized, "authorization header required")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return uuid.Nil, apperrors.New(apperrors.Unauthorized, "invalid authorization format")
	}

	claims, err := auth.ValidateToken(parts[1], secret)
	if err != nil {
		return uuid.Nil, apperrors.Wrap(apperrors.Unauthorized, "invalid or expired token", err)
	}
	return claims.UserID, nil
}
