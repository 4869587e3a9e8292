package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ewaste-pickup/internal/apperr"
	"ewaste-pickup/internal/auth"
	"ewaste-pickup/internal/models"
)

func testUser() *models.User {
	return &models.User{
		ID:   "user-1",
		Role: models.RoleCustomer,
	}
}

func TestIssueAndParseToken(t *testing.T) {
	token, jti, err := auth.IssueToken("secret", testUser(), time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, jti)

	claims, err := auth.ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, models.RoleCustomer, claims.Role)
	assert.Equal(t, jti, claims.ID)
}

func TestParseTokenRejectsBadSignature(t *testing.T) {
	token, _, err := auth.IssueToken("secret", testUser(), time.Hour)
	require.NoError(t, err)

	_, err = auth.ParseToken("other-secret", token)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, _, err := auth.IssueToken("secret", testUser(), -time.Minute)
	require.NoError(t, err)

	_, err = auth.ParseToken("secret", token)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}

func TestExtractTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	_, err := auth.ExtractTokenFromRequest(r)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))

	r.Header.Set("Authorization", "Token abc")
	_, err = auth.ExtractTokenFromRequest(r)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))

	r.Header.Set("Authorization", "Bearer abc")
	token, err := auth.ExtractTokenFromRequest(r)
	assert.NoError(t, err)
	assert.Equal(t, "abc", token)
}

func TestMiddlewareAndRoleGuard(t *testing.T) {
	token, _, err := auth.IssueToken("secret", testUser(), time.Hour)
	require.NoError(t, err)

	var seen models.Actor
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.CurrentActor(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	// nil session cache means signature-only validation
	handler := auth.Middleware("secret", nil)(auth.RequireRoles(models.RoleCustomer)(inner))

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", seen.ID)
	assert.Equal(t, models.RoleCustomer, seen.Role)

	// wrong role is turned away at the guard
	adminOnly := auth.Middleware("secret", nil)(auth.RequireRoles(models.RoleAdmin)(inner))
	w = httptest.NewRecorder()
	adminOnly.ServeHTTP(w, r)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// missing token never reaches the handler
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
