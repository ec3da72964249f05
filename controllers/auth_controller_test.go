package controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginMe(t *testing.T) {
	_, r := newTestEnv(t)

	w := perform(r, "POST", "/api/v1/auth/register", map[string]interface{}{
		"username": "carol",
		"password": "supersecret",
		"email":    "carol@example.com",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	require.NotEmpty(t, env.Data["token"])

	w = perform(r, "POST", "/api/v1/auth/login", map[string]interface{}{
		"username": "carol",
		"password": "wrongpassword",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(r, "POST", "/api/v1/auth/login", map[string]interface{}{
		"username": "carol",
		"password": "supersecret",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	token := decode(t, w).Data["token"].(string)

	w = perform(r, "GET", "/api/v1/auth/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode(t, w)
	assert.Equal(t, "carol", me.Data["username"])
	// The owner sees their own email; credential fields never leak.
	assert.Equal(t, "carol@example.com", me.Data["email"])
	_, hasHash := me.Data["password_hash"]
	assert.False(t, hasHash)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	db, r := newTestEnv(t)
	createUser(t, db, "carol")

	w := perform(r, "POST", "/api/v1/auth/register", map[string]interface{}{
		"username": "carol",
		"password": "supersecret",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	_, r := newTestEnv(t)

	// Illegal characters in username.
	w := perform(r, "POST", "/api/v1/auth/register", map[string]interface{}{
		"username": "bad name!",
		"password": "supersecret",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Too short password.
	w = perform(r, "POST", "/api/v1/auth/register", map[string]interface{}{
		"username": "dave",
		"password": "short",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	db, r := newTestEnv(t)
	carol := createUser(t, db, "carol")
	token := tokenFor(t, carol)

	w := perform(r, "GET", "/api/v1/auth/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = perform(r, "POST", "/api/v1/auth/logout", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = perform(r, "GET", "/api/v1/auth/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRouteRejectsGarbageToken(t *testing.T) {
	_, r := newTestEnv(t)
	w := perform(r, "GET", "/api/v1/auth/me", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
