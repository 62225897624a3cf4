package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"skillswap-backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authProbe(t *testing.T) (http.Handler, *string) {
	t.Helper()

	var seenID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = GetMemberID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	authService := services.NewAuthService(nil, "test-secret")
	return AuthMiddleware(authService)(next), &seenID
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	handler, seenID := authProbe(t)

	token, err := services.NewAuthService(nil, "test-secret").GenerateJWT("member-42")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "member-42", *seenID)
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	handler, _ := authProbe(t)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	handler, _ := authProbe(t)

	for _, header := range []string{"Bearer", "Basic abc", "Bearer a b"} {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "header: %q", header)
	}
}

func TestAuthMiddlewareBadToken(t *testing.T) {
	handler, _ := authProbe(t)

	// Signed with a different secret
	token, err := services.NewAuthService(nil, "wrong-secret").GenerateJWT("member-42")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetMemberIDEmptyContext(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	assert.Equal(t, "", GetMemberID(req.Context()))
}
