package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	handler, _, _ := newTestServer(t)

	w := doRequest(t, handler, nil, http.MethodGet, "/items/", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	handler, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/items/", nil)
	req.Header.Set("Authorization", "Token abcdef")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	handler, db, _ := newTestServer(t)
	alice := createUser(t, db, "alice")

	token, err := generateJWT(alice.ID, "some-other-secret-entirely")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/items/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	handler, db, _ := newTestServer(t)
	alice := createUser(t, db, "alice")

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": alice.ID,
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	token, err := expired.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/items/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_UnknownUser(t *testing.T) {
	handler, _, _ := newTestServer(t)

	token, err := generateJWT(424242, testJWTSecret)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/items/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	handler, db, _ := newTestServer(t)
	alice := createUser(t, db, "alice")

	w := doRequest(t, handler, alice, http.MethodGet, "/items/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthCheck_NoAuthRequired(t *testing.T) {
	handler, _, _ := newTestServer(t)

	w := doRequest(t, handler, nil, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}
