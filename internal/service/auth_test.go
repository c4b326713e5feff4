package service

import (
	"net/http"
	"testing"

	"decantifume-api/internal/dto"
	"decantifume-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService(f.users, testTokenIssuer(), bcrypt.MinCost)
	ctx := t.Context()

	user, err := svc.Register(ctx, &dto.RegisterRequest{
		Name:     "Ada",
		Email:    "  Ada@Example.com ",
		Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.NotEqual(t, "secret1", user.Password)

	_, err = svc.Register(ctx, &dto.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	assertAppError(t, err, http.StatusConflict, "User already exists with this email")

	resp, err := svc.Login(ctx, &dto.LoginRequest{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.Equal(t, "user", resp.User.Role)
}

func TestAuthService_LoginFailures(t *testing.T) {
	f := newFixture(t)
	f.createUser(t, "bob@example.com", model.RoleUser)
	svc := NewAuthService(f.users, testTokenIssuer(), bcrypt.MinCost)

	tests := []struct {
		name    string
		req     *dto.LoginRequest
		status  int
		message string
	}{
		{
			name:    "unknown email",
			req:     &dto.LoginRequest{Email: "nobody@example.com", Password: "secret123"},
			status:  http.StatusNotFound,
			message: "User not found",
		},
		{
			name:    "wrong password",
			req:     &dto.LoginRequest{Email: "bob@example.com", Password: "nope"},
			status:  http.StatusUnauthorized,
			message: "Invalid credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(t.Context(), tt.req)
			assertAppError(t, err, tt.status, tt.message)
		})
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "carol@example.com", model.RoleUser)
	svc := NewAuthService(f.users, testTokenIssuer(), bcrypt.MinCost)
	ctx := t.Context()

	err := svc.ChangePassword(ctx, user.ID, &dto.ChangePasswordRequest{OldPassword: "wrong12", NewPassword: "Newpass1!"})
	assertAppError(t, err, http.StatusUnauthorized, "Old password is incorrect")

	err = svc.ChangePassword(ctx, user.ID, &dto.ChangePasswordRequest{OldPassword: "secret123", NewPassword: "Newpass1!"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "carol@example.com", Password: "secret123"})
	assertAppError(t, err, http.StatusUnauthorized, "Invalid credentials")

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "carol@example.com", Password: "Newpass1!"})
	require.NoError(t, err)
}

func TestAuthService_RefreshToken(t *testing.T) {
	f := newFixture(t)
	user := f.createUser(t, "dave@example.com", model.RoleAdmin)
	tokens := testTokenIssuer()
	svc := NewAuthService(f.users, tokens, bcrypt.MinCost)

	pair, err := tokens.IssuePair(user.ID, model.RoleUser)
	require.NoError(t, err)

	resp, err := svc.RefreshToken(t.Context(), pair.RefreshToken)
	require.NoError(t, err)

	claims, err := tokens.ParseAccess(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, model.RoleAdmin, claims.Role)

	_, err = svc.RefreshToken(t.Context(), pair.AccessToken)
	assertAppError(t, err, http.StatusUnauthorized, "Invalid refresh token")
}
