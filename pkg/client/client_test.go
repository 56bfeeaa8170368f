package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req["email"] != "alice@example.com" || req["password"] != "secret123" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid email or password"})
			return
		}

		json.NewEncoder(w).Encode(map[string]any{
			"id": 1, "name": "alice", "email": "alice@example.com", "token": "valid-token",
		})
	})
	mux.HandleFunc("GET /api/auth/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer valid-token" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "not authorized"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id": 1, "name": "alice", "email": "alice@example.com",
		})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"message": "logged out successfully"})
	})

	return httptest.NewServer(mux)
}

func TestLoginStoresSnapshot(t *testing.T) {
	server := newAuthServer(t)
	defer server.Close()

	store := NewMemoryStore()
	c := New(server.URL, store)

	session, err := c.Login(context.Background(), "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, uint(1), session.UserID)
	assert.Equal(t, "valid-token", session.Token)

	// Snapshot persisted in one piece
	stored, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, *session, *stored)
}

func TestLoginFailureLeavesNoSession(t *testing.T) {
	server := newAuthServer(t)
	defer server.Close()

	c := New(server.URL, NewMemoryStore())

	_, err := c.Login(context.Background(), "alice@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Nil(t, c.CurrentUser())
}

func TestBearerAttachedToRequests(t *testing.T) {
	var seenAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]Note{})
	}))
	defer server.Close()

	store := NewMemoryStore()
	require.NoError(t, store.Save(&Snapshot{UserID: 1, Token: "stored-token"}))

	c := New(server.URL, store)
	_, err := c.ListNotes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer stored-token", seenAuth)
}

func TestBootstrap(t *testing.T) {
	t.Run("no stored session", func(t *testing.T) {
		c := New("http://localhost:0", NewMemoryStore())
		_, err := c.Bootstrap(context.Background())
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("valid session is refreshed", func(t *testing.T) {
		server := newAuthServer(t)
		defer server.Close()

		store := NewMemoryStore()
		// Stale name: the server's answer wins.
		require.NoError(t, store.Save(&Snapshot{UserID: 1, Name: "old-name", Token: "valid-token"}))

		c := New(server.URL, store)
		user, err := c.Bootstrap(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Name)

		stored, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, "alice", stored.Name)
		assert.Equal(t, "valid-token", stored.Token)
	})

	t.Run("401 clears the snapshot", func(t *testing.T) {
		server := newAuthServer(t)
		defer server.Close()

		store := NewMemoryStore()
		require.NoError(t, store.Save(&Snapshot{UserID: 1, Token: "expired-token"}))

		c := New(server.URL, store)
		_, err := c.Bootstrap(context.Background())
		require.Error(t, err)
		assert.True(t, IsUnauthorized(err))

		assert.Nil(t, c.CurrentUser())
		_, err = store.Load()
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("network failure keeps the snapshot", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.Save(&Snapshot{UserID: 1, Token: "valid-token"}))

		// Server that is already gone
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		c := New(server.URL, store)
		_, err := c.Bootstrap(context.Background())
		require.Error(t, err)
		assert.False(t, IsUnauthorized(err))

		assert.NotNil(t, c.CurrentUser())
		stored, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, "valid-token", stored.Token)
	})

	t.Run("5xx keeps the snapshot", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		store := NewMemoryStore()
		require.NoError(t, store.Save(&Snapshot{UserID: 1, Token: "valid-token"}))

		c := New(server.URL, store)
		_, err := c.Bootstrap(context.Background())
		require.Error(t, err)
		assert.NotNil(t, c.CurrentUser())
	})
}

func TestLogoutAlwaysClearsLocalState(t *testing.T) {
	t.Run("server reachable", func(t *testing.T) {
		server := newAuthServer(t)
		defer server.Close()

		store := NewMemoryStore()
		require.NoError(t, store.Save(&Snapshot{UserID: 1, Token: "valid-token"}))

		c := New(server.URL, store)
		require.NoError(t, c.Logout(context.Background()))

		assert.Nil(t, c.CurrentUser())
		_, err := store.Load()
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("server unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		store := NewMemoryStore()
		require.NoError(t, store.Save(&Snapshot{UserID: 1, Token: "valid-token"}))

		c := New(server.URL, store)
		err := c.Logout(context.Background())
		assert.Error(t, err)

		assert.Nil(t, c.CurrentUser(), "local state cleared despite server failure")
		_, loadErr := store.Load()
		assert.ErrorIs(t, loadErr, ErrNoSession)
	})
}

func TestUpdateNoteSendsStepUpTicket(t *testing.T) {
	var seenTicket string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenTicket = r.Header.Get("X-Step-Up-Ticket")
		json.NewEncoder(w).Encode(Note{ID: 3, Title: "updated"})
	}))
	defer server.Close()

	store := NewMemoryStore()
	require.NoError(t, store.Save(&Snapshot{UserID: 1, Token: "valid-token"}))

	c := New(server.URL, store)

	title := "updated"
	_, err := c.UpdateNote(context.Background(), 3, NoteUpdate{Title: &title}, "ticket-abc")
	require.NoError(t, err)
	assert.Equal(t, "ticket-abc", seenTicket)

	// No ticket for public notes
	_, err = c.UpdateNote(context.Background(), 3, NoteUpdate{Title: &title}, "")
	require.NoError(t, err)
	assert.Empty(t, seenTicket)
}

func TestAPIErrorMessageParsing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"error": "not authorized to access this note"})
	}))
	defer server.Close()

	c := New(server.URL, NewMemoryStore())
	_, err := c.GetNote(context.Background(), 1)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "not authorized to access this note", apiErr.Message)
}
