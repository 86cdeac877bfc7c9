package server_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogin_Success(t *testing.T) {
	f := setupTestFixture(t)

	recorder, response := f.doRequest(t, http.MethodPost, "/api/v1/auth/login",
		`{"email":"alice@example.com","password":"password123"}`, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.True(t, response.Success)

	var data struct {
		Token string `json:"token"`
		User  struct {
			ID       string `json:"id"`
			TenantID string `json:"tenant_id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(response.Data, &data))
	require.NotEmpty(t, data.Token)
	require.Equal(t, aliceID, data.User.ID)
	require.Equal(t, testTenantID, data.User.TenantID)

	// The issued token works against the authenticated chat API.
	recorder, _ = f.doRequest(t, http.MethodGet,
		"/api/v1/chat/online-users", "", "Bearer "+data.Token)
	require.Equal(t, http.StatusOK, recorder.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := setupTestFixture(t)

	recorder, response := f.doRequest(t, http.MethodPost, "/api/v1/auth/login",
		`{"email":"alice@example.com","password":"wrong"}`, "")
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	require.False(t, response.Success)
}

func TestLogin_UnknownEmail(t *testing.T) {
	f := setupTestFixture(t)

	recorder, _ := f.doRequest(t, http.MethodPost, "/api/v1/auth/login",
		`{"email":"nobody@example.com","password":"password123"}`, "")
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestLogin_InvalidRequest(t *testing.T) {
	f := setupTestFixture(t)

	recorder, _ := f.doRequest(t, http.MethodPost, "/api/v1/auth/login", `{not json`, "")
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder, _ = f.doRequest(t, http.MethodPost, "/api/v1/auth/login",
		`{"email":"alice@example.com"}`, "")
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}
