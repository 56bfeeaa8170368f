// Package client is the Go API client for the notes server. It attaches
// the bearer token to every request, keeps a local session snapshot, and
// reconciles that snapshot against the server's profile endpoint.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the server. Only this
// class of failure invalidates a locally cached session.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// User is the server's view of an account, never including credentials.
type User struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Note mirrors the server's note representation.
type Note struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"userId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	IsPrivate bool      `json:"isPrivate"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NoteUpdate carries a partial update. Nil fields are left untouched by
// the server; set fields overwrite, including IsPrivate=false.
type NoteUpdate struct {
	Title     *string `json:"title,omitempty"`
	Content   *string `json:"content,omitempty"`
	IsPrivate *bool   `json:"isPrivate,omitempty"`
}

type identityResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Token string `json:"token"`
}

type verifyPasswordResponse struct {
	Message string `json:"message"`
	Ticket  string `json:"ticket"`
}

const stepUpTicketHeader = "X-Step-Up-Ticket"

// Client talks to the notes server on behalf of one user session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      SnapshotStore

	mu      sync.RWMutex
	session *Snapshot
}

// New creates a client. Any snapshot already in the store is loaded
// optimistically; call Bootstrap to validate it against the server.
func New(baseURL string, store SnapshotStore) *Client {
	c := &Client{
		baseURL: baseURL,
		store:   store,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	if snapshot, err := store.Load(); err == nil {
		c.session = snapshot
	}

	return c
}

// CurrentUser returns the cached identity, or nil when logged out.
func (c *Client) CurrentUser() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.session == nil {
		return nil
	}
	copied := *c.session
	return &copied
}

// Bootstrap validates the cached session against the server. A 401 means
// the token is dead and the snapshot is discarded; any other failure
// (network, 5xx) keeps the snapshot so a flaky connection does not log
// the user out.
func (c *Client) Bootstrap(ctx context.Context) (*User, error) {
	c.mu.RLock()
	session := c.session
	c.mu.RUnlock()

	if session == nil {
		return nil, ErrNoSession
	}

	var user User
	err := c.doRequest(ctx, http.MethodGet, "/api/auth/profile", nil, nil, &user)
	if err != nil {
		if IsUnauthorized(err) {
			c.clearSession()
		}
		return nil, err
	}

	c.setSession(&Snapshot{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Token:  session.Token,
	})

	return &user, nil
}

// Register creates an account and stores the returned session.
func (c *Client) Register(ctx context.Context, username, email, password string) (*Snapshot, error) {
	body := map[string]string{"username": username, "email": email, "password": password}

	var resp identityResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/register", nil, body, &resp); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}

	return c.adoptIdentity(resp)
}

// Login authenticates and stores the returned session.
func (c *Client) Login(ctx context.Context, email, password string) (*Snapshot, error) {
	body := map[string]string{"email": email, "password": password}

	var resp identityResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/login", nil, body, &resp); err != nil {
		return nil, err
	}

	return c.adoptIdentity(resp)
}

// Logout tells the server to clear its cookie and drops the local
// snapshot. The local state is cleared even when the server call fails:
// the user asked to be logged out and must end up logged out.
func (c *Client) Logout(ctx context.Context) error {
	err := c.doRequest(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
	c.clearSession()
	if err != nil && !IsUnauthorized(err) {
		return fmt.Errorf("server logout failed (local session cleared): %w", err)
	}
	return nil
}

// Profile fetches the authenticated identity from the server.
func (c *Client) Profile(ctx context.Context) (*User, error) {
	var user User
	if err := c.doRequest(ctx, http.MethodGet, "/api/auth/profile", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// VerifyPassword re-proves the password and returns a single-use step-up
// ticket for sensitive operations.
func (c *Client) VerifyPassword(ctx context.Context, password string) (string, error) {
	body := map[string]string{"password": password}

	var resp verifyPasswordResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/verify-password", nil, body, &resp); err != nil {
		return "", err
	}
	return resp.Ticket, nil
}

// ListNotes returns the caller's notes, most recently updated first.
func (c *Client) ListNotes(ctx context.Context) ([]Note, error) {
	var notes []Note
	if err := c.doRequest(ctx, http.MethodGet, "/api/notes", nil, nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// GetNote fetches one owned note.
func (c *Client) GetNote(ctx context.Context, id uint) (*Note, error) {
	var note Note
	path := fmt.Sprintf("/api/notes/%d", id)
	if err := c.doRequest(ctx, http.MethodGet, path, nil, nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// CreateNote creates a note. Notes default to private on the server when
// isPrivate is omitted.
func (c *Client) CreateNote(ctx context.Context, title, content string, isPrivate *bool) (*Note, error) {
	body := map[string]any{"title": title, "content": content}
	if isPrivate != nil {
		body["isPrivate"] = *isPrivate
	}

	var note Note
	if err := c.doRequest(ctx, http.MethodPost, "/api/notes", nil, body, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// UpdateNote applies a partial update. Updating a private note requires a
// step-up ticket from VerifyPassword; pass "" for public notes.
func (c *Client) UpdateNote(ctx context.Context, id uint, update NoteUpdate, stepUpTicket string) (*Note, error) {
	headers := map[string]string{}
	if stepUpTicket != "" {
		headers[stepUpTicketHeader] = stepUpTicket
	}

	var note Note
	path := fmt.Sprintf("/api/notes/%d", id)
	if err := c.doRequest(ctx, http.MethodPut, path, headers, update, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// DeleteNote removes an owned note.
func (c *Client) DeleteNote(ctx context.Context, id uint) error {
	path := fmt.Sprintf("/api/notes/%d", id)
	return c.doRequest(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) adoptIdentity(resp identityResponse) (*Snapshot, error) {
	snapshot := &Snapshot{
		UserID: resp.ID,
		Name:   resp.Name,
		Email:  resp.Email,
		Token:  resp.Token,
	}
	if err := c.setSession(snapshot); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}
	return snapshot, nil
}

func (c *Client) setSession(snapshot *Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Save(snapshot); err != nil {
		return err
	}
	c.session = snapshot
	return nil
}

func (c *Client) clearSession() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session = nil
	_ = c.store.Delete()
}

func (c *Client) doRequest(ctx context.Context, method, path string, headers map[string]string, body, result any) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	c.mu.RLock()
	if c.session != nil && c.session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}
	c.mu.RUnlock()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		message := string(respBody)
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			if errResp.Error != "" {
				message = errResp.Error
			} else if errResp.Message != "" {
				message = errResp.Message
			}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
