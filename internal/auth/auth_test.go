package auth

import (
	"testing"
	"time"

	"decantifume-api/internal/config"
	"decantifume-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newIssuer() *TokenIssuer {
	return NewTokenIssuer(&config.Auth{
		AccessSecret:     "access-secret",
		AccessExpiresIn:  time.Hour,
		RefreshSecret:    "refresh-secret",
		RefreshExpiresIn: 24 * time.Hour,
	})
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("Secret1", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, "Secret1", hash)
	assert.True(t, ComparePassword(hash, "Secret1"))
	assert.False(t, ComparePassword(hash, "secret1"))
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := newIssuer()

	pair, err := issuer.IssuePair("user-1", model.RoleAdmin)
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	claims, err := issuer.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, model.RoleAdmin, claims.Role)

	claims, err = issuer.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestTokenIssuer_RejectsWrongSecret(t *testing.T) {
	issuer := newIssuer()

	pair, err := issuer.IssuePair("user-1", model.RoleUser)
	require.NoError(t, err)

	_, err = issuer.ParseAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.ParseRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.ParseAccess("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_RejectsExpired(t *testing.T) {
	issuer := newIssuer()
	issued := time.Now().Add(-2 * time.Hour)
	issuer.now = func() time.Time { return issued }

	token, err := issuer.IssueAccess("user-1", model.RoleUser)
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.ParseAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
