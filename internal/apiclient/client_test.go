package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/maheshrc27/postflow-cli/internal/session"
	"github.com/maheshrc27/postflow-cli/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginStoresTokenAndListAttachesHeader(t *testing.T) {
	var listAuthHeader string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"), "login must be anonymous")

		var creds transfer.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "alice", creds.Username)
		assert.Equal(t, "secret", creds.Password)

		json.NewEncoder(w).Encode(map[string]any{"token": "abc123", "user_id": 7})
	})
	mux.HandleFunc("/api/posts/", func(w http.ResponseWriter, r *http.Request) {
		listAuthHeader = r.Header.Get("Authorization")
		w.Write([]byte("[]"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := session.NewMemoryStore()
	client := New(srv.URL+"/api", store)

	resp, err := NewAuthClient(client).Login(context.Background(), transfer.Credentials{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), resp.UserID)
	assert.Equal(t, "abc123", store.CurrentToken())

	_, err = NewPostsClient(client).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc123", listAuthHeader)
}

func TestAuthenticatedCallFailsFastWithoutToken(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	client := New(srv.URL, session.NewMemoryStore())
	_, err := NewPostsClient(client).List(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Zero(t, calls.Load(), "no network round trip expected")
}

func TestConnectivityErrorSurfacesBaseURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	store := session.NewMemoryStore()
	require.NoError(t, store.SetToken("abc123"))

	client := New(baseURL, store)
	_, err := NewPostsClient(client).List(context.Background())

	var connErr *ConnectivityError
	require.ErrorAs(t, err, &connErr)
	assert.Contains(t, err.Error(), baseURL)
}

func TestRequestErrorCarriesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "Title and content are required"}`))
	}))
	defer srv.Close()

	store := session.NewMemoryStore()
	require.NoError(t, store.SetToken("abc123"))

	client := New(srv.URL, store)
	_, err := NewPostsClient(client).List(context.Background())

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusBadRequest, reqErr.StatusCode)
	assert.Contains(t, reqErr.Body, "Title and content are required")
}

func TestUnauthorizedResponseClearsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "Invalid or expired token"}`))
	}))
	defer srv.Close()

	store := session.NewMemoryStore()
	require.NoError(t, store.SetToken("expired-token"))

	client := New(srv.URL, store)
	_, err := NewPostsClient(client).List(context.Background())

	assert.True(t, IsAuthRejection(err))
	assert.Empty(t, store.CurrentToken(), "401 must clear the stored token")
}

func TestUnauthorizedLoginDoesNotTouchSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "Invalid credentials"}`))
	}))
	defer srv.Close()

	store := session.NewMemoryStore()
	require.NoError(t, store.SetToken("abc123"))

	client := New(srv.URL, store)
	_, err := NewAuthClient(client).Login(context.Background(), transfer.Credentials{Username: "alice", Password: "wrong"})

	assert.True(t, IsAuthRejection(err))
	assert.Equal(t, "abc123", store.CurrentToken(), "anonymous 401 is not a session expiry")
}

func TestMalformedResponseIsValidationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	store := session.NewMemoryStore()
	require.NoError(t, store.SetToken("abc123"))

	client := New(srv.URL, store)
	_, err := NewPostsClient(client).List(context.Background())

	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestLoginWithoutTokenInResponseFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": "Login successful", "user_id": 7}`))
	}))
	defer srv.Close()

	store := session.NewMemoryStore()
	client := New(srv.URL, store)

	_, err := NewAuthClient(client).Login(context.Background(), transfer.Credentials{Username: "alice", Password: "secret"})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Empty(t, store.CurrentToken())
}

func TestLogoutClearsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": "Logged out successfully"}`))
	}))
	defer srv.Close()

	store := session.NewMemoryStore()
	require.NoError(t, store.SetToken("abc123"))

	client := New(srv.URL, store)
	require.NoError(t, NewAuthClient(client).Logout(context.Background()))
	assert.Empty(t, store.CurrentToken())
}
