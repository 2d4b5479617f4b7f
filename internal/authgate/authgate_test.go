package authgate

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneyquest/backend/internal/apperrors"
	"github.com/moneyquest/backend/pkg/auth"
)

const testSecret = "test-signing-secret"

func TestResolvePrincipal_ValidToken(t *testing.T) {
	userID := uuid.New()
	token, _, err := auth.GenerateToken(userID, testSecret, 3600)
	require.NoError(t, err)

	resolved, err := ResolvePrincipal("Bearer "+token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, userID, resolved)
}

func TestResolvePrincipal_MissingHeader(t *testing.T) {
	_, err := ResolvePrincipal("", testSecret)
	e, ok := apperrors.Of(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.Unauthorized, e.Kind)
}

func TestResolvePrincipal_MalformedHeader(t *testing.T) {
	_, err := ResolvePrincipal("Basic abc123", testSecret)
	e, ok := apperrors.Of(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.Unauthorized, e.Kind)
}

func TestResolvePrincipal_WrongSecret(t *testing.T) {
	token, _, err := auth.GenerateToken(uuid.New(), testSecret, 3600)
	require.NoError(t, err)

	_, err = ResolvePrincipal("Bearer "+token, "a-different-secret")
	e, ok := apperrors.Of(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.Unauthorized, e.Kind)
}
