package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"decantifume-api/internal/apperr"
	"decantifume-api/internal/auth"
	"decantifume-api/internal/config"
	"decantifume-api/internal/model"
	"decantifume-api/internal/validation"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubUsers map[string]*model.User

func (s stubUsers) FindAnyByID(_ context.Context, id string) (*model.User, error) {
	u, ok := s[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func newIssuer() *auth.TokenIssuer {
	return auth.NewTokenIssuer(&config.Auth{
		AccessSecret:     "access-secret",
		AccessExpiresIn:  time.Hour,
		RefreshSecret:    "refresh-secret",
		RefreshExpiresIn: time.Hour,
	})
}

func TestAuthenticate(t *testing.T) {
	issuer := newIssuer()
	users := stubUsers{
		"u-1":     {Base: model.Base{ID: "u-1"}, Role: model.RoleUser},
		"admin-1": {Base: model.Base{ID: "admin-1"}, Role: model.RoleAdmin},
		"gone-1":  {Base: model.Base{ID: "gone-1"}, Role: model.RoleUser, IsDeleted: true},
	}

	token := func(id string, role model.Role) string {
		tok, err := issuer.IssueAccess(id, role)
		require.NoError(t, err)
		return "Bearer " + tok
	}

	tests := []struct {
		name       string
		header     string
		roles      []model.Role
		wantStatus int
		wantMsg    string
	}{
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized, wantMsg: "You are not authorized"},
		{name: "garbage token", header: "Bearer nope", wantStatus: http.StatusUnauthorized, wantMsg: "You are not authorized"},
		{name: "unknown user", header: token("ghost", model.RoleUser), wantStatus: http.StatusUnauthorized, wantMsg: "The user no longer exists"},
		{name: "deleted user", header: token("gone-1", model.RoleUser), wantStatus: http.StatusUnauthorized, wantMsg: "The user is deleted"},
		{name: "role not allowed", header: token("u-1", model.RoleUser), roles: []model.Role{model.RoleAdmin}, wantStatus: http.StatusForbidden, wantMsg: "You are not authorized"},
		{name: "admin allowed", header: token("admin-1", model.RoleAdmin), roles: []model.Role{model.RoleAdmin}, wantStatus: http.StatusOK},
		{name: "any role", header: token("u-1", model.RoleUser), wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			var seen *auth.Claims
			h := Authenticate(issuer, users, tt.roles...)(func(c echo.Context) error {
				seen = ClaimsFrom(c)
				return c.NoContent(http.StatusOK)
			})

			err := h(c)
			if tt.wantStatus == http.StatusOK {
				require.NoError(t, err)
				require.NotNil(t, seen)
				return
			}

			var appErr *apperr.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantStatus, appErr.StatusCode)
			assert.Equal(t, tt.wantMsg, appErr.Message)
			assert.Nil(t, seen)
		})
	}
}

type sampleBody struct {
	Name  string `json:"name" validate:"required"`
	Count int    `json:"count" validate:"min=1"`
}

type sampleQuery struct {
	Page int    `query:"page" validate:"omitempty,min=1"`
	Term string `query:"term"`
}

func TestValidateBody(t *testing.T) {
	e := echo.New()
	e.Validator = validation.New()

	run := func(body string) (*sampleBody, error) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		c := e.NewContext(req, httptest.NewRecorder())

		var got *sampleBody
		err := ValidateBody[sampleBody]()(func(c echo.Context) error {
			got = Payload[sampleBody](c)
			return nil
		})(c)
		return got, err
	}

	got, err := run(`{"name":"x","count":2}`)
	require.NoError(t, err)
	assert.Equal(t, "x", got.Name)
	assert.Equal(t, 2, got.Count)

	_, err = run(`{"count":0}`)
	require.Error(t, err)
	fields := validation.FieldErrors(err)
	require.Len(t, fields, 2)
	assert.Equal(t, "name", fields[0].Path)

	_, err = run(`{"name":`)
	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
}

func TestValidateQuery(t *testing.T) {
	e := echo.New()
	e.Validator = validation.New()

	req := httptest.NewRequest(http.MethodGet, "/?page=3&term=oud", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	var got *sampleQuery
	err := ValidateQuery[sampleQuery]()(func(c echo.Context) error {
		got = Payload[sampleQuery](c)
		return nil
	})(c)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Page)
	assert.Equal(t, "oud", got.Term)

	req = httptest.NewRequest(http.MethodGet, "/?page=-1", nil)
	c = e.NewContext(req, httptest.NewRecorder())
	err = ValidateQuery[sampleQuery]()(func(echo.Context) error { return nil })(c)
	assert.NotNil(t, validation.FieldErrors(err))
}
