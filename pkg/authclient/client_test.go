package authclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"premier-open-group/pkg/access"
	"premier-open-group/pkg/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/login", r.URL.Path)
		assert.Equal(t, "pk_test", r.Header.Get(middleware.ClientKeyHeader))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "scout@example.com", body["email"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","refresh_token":"rt","expires_in":3600,
			"user":{"id":"user-1","email":"scout@example.com"},
			"profile":{"id":"user-1","role":"member","status":"pending"}}`))
	}))
	defer srv.Close()

	client := New(srv.URL, "pk_test", time.Second)
	tokens, err := client.Login(context.Background(), "scout@example.com", "secret")

	require.NoError(t, err)
	assert.Equal(t, "at", tokens.AccessToken)
	assert.Equal(t, int64(3600), tokens.ExpiresIn)
	assert.Equal(t, "user-1", tokens.User.Identity().ID)
	assert.Equal(t, access.StatusPending, tokens.Profile.Status)
}

func TestClient_LoginRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid email or password"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "", time.Second).Login(context.Background(), "scout@example.com", "wrong")

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Contains(t, err.Error(), "invalid email or password")
}

func TestClient_RegisterConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"email already registered"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "", time.Second).Register(context.Background(), "scout@example.com", "secret1", "Scout")

	assert.ErrorIs(t, err, ErrConflict)
}

func TestClient_MeSendsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/me", r.URL.Path)
		assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user":{"id":"user-1","email":"scout@example.com"},"profile":{"id":"user-1","role":"admin","status":"approved"}}`))
	}))
	defer srv.Close()

	me, err := New(srv.URL+"/", "", time.Second).Me(context.Background(), "at")

	require.NoError(t, err)
	assert.Equal(t, "scout@example.com", me.User.Email)
	assert.Equal(t, access.RoleAdmin, me.Profile.Role)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Signed out"}`))
	}))
	defer srv.Close()

	err := New(srv.URL, "", time.Second).Logout(context.Background(), "rt")

	assert.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_OtherErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"User not found"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "", time.Second).Me(context.Background(), "at")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "User not found", apiErr.Message)
}
