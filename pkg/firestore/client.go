// Package firestore implements the typed session-document operations the
// desktop client needs against the Firestore REST API: atomic-ish counter
// increment and session create/read. The record encoding is hidden behind
// the Document type.
package firestore

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/markasset/markasset/pkg/errors"
)

// StatusActive is the only status value this client ever writes.
const StatusActive = "active"

// Session is a decoded session document.
type Session struct {
	Code      string
	CreatedAt time.Time
	ExpiresAt time.Time
	Files     []string
	Status    string
}

// Client talks to the Firestore REST document API for one user's session
// tree. It is safe for concurrent use.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	userID  string
	ttl     time.Duration
}

// NewClient creates a Firestore client. baseURL is the documents root of the
// project database; ttl is the session lifetime written into new sessions.
func NewClient(httpClient *http.Client, baseURL, apiKey, userID string, ttl time.Duration) *Client {
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		userID:  userID,
		ttl:     ttl,
	}
}

func (c *Client) counterURL(query url.Values) string {
	return c.documentURL("users/"+c.userID+"/meta/session_counter", query)
}

func (c *Client) sessionURL(code string) string {
	return c.documentURL("users/"+c.userID+"/sessions/"+url.PathEscape(code), nil)
}

func (c *Client) documentURL(docPath string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	if c.apiKey != "" {
		query.Set("key", c.apiKey)
	}
	u := c.baseURL + "/" + docPath
	if encoded := query.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

// IncrementCounter bumps the shared session counter and returns its new
// value. The counter document is created on first use; a failed create is
// the expected steady state and is ignored. A response whose value cannot
// be parsed yields 1, so code generation still proceeds. The store may not
// implement the increment atomically; the create-session conflict check is
// the real collision defense.
func (c *Client) IncrementCounter(ctx context.Context) (int, error) {
	if resp, err := c.send(ctx, http.MethodPost, c.counterURL(nil), NewDocument().SetInteger("value", 0)); err == nil {
		resp.Body.Close()
	}

	patchURL := c.counterURL(url.Values{"updateMask.fieldPaths": {"value"}})
	resp, err := c.send(ctx, http.MethodPatch, patchURL, NewDocument().SetInteger("value", 1))
	if err != nil {
		slog.Error("counter_increment_failed", "error", err)
		return 0, &errors.TransportError{Op: "increment counter", Message: err.Error()}
	}
	defer resp.Body.Close()

	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		slog.Warn("counter_response_unparseable", "error", err)
		return 1, nil
	}
	value, ok := doc.Integer("value")
	if !ok {
		slog.Warn("counter_value_missing")
		return 1, nil
	}

	slog.Info("counter_incremented", "value", value)
	return value, nil
}

// CreateSession writes a fresh session document for code with an empty file
// list and status "active". It returns errors.ErrConflict when the store
// reports the document already exists.
func (c *Client) CreateSession(ctx context.Context, code string) (*Session, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(c.ttl)

	doc := NewDocument().
		SetTimestamp("created_at", now).
		SetTimestamp("expires_at", expiresAt).
		SetStringArray("files", nil).
		SetString("status", StatusActive)

	resp, err := c.send(ctx, http.MethodPost, c.sessionURL(code), doc)
	if err != nil {
		slog.Error("session_create_failed", "code", code, "error", err)
		return nil, &errors.TransportError{Op: "create session", Message: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusConflict || strings.Contains(string(body), "already exists") {
		slog.Info("session_create_conflict", "code", code)
		return nil, errors.Wrap(errors.ErrConflict, "create session "+code)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Error("session_create_rejected", "code", code, "status", resp.StatusCode)
		return nil, &errors.TransportError{Op: "create session", StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	slog.Info("session_created", "code", code, "expires_at", expiresAt)
	return &Session{
		Code:      code,
		CreatedAt: now,
		ExpiresAt: expiresAt,
		Files:     []string{},
		Status:    StatusActive,
	}, nil
}

// GetSession reads the session document for code. A missing document is
// (nil, nil), not an error. Field-level defaulting is deliberate: a
// partially-written or differently-shaped document must never abort a poll
// cycle, so missing timestamps default to now / now+TTL, a missing file
// list to empty, and a missing status to "active".
func (c *Client) GetSession(ctx context.Context, code string) (*Session, error) {
	resp, err := c.send(ctx, http.MethodGet, c.sessionURL(code), nil)
	if err != nil {
		return nil, &errors.TransportError{Op: "get session", Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &errors.TransportError{Op: "get session", StatusCode: resp.StatusCode, Message: resp.Status}
	}

	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decode session document")
	}

	now := time.Now().UTC()
	createdAt, ok := doc.Timestamp("created_at")
	if !ok {
		createdAt = now
	}
	expiresAt, ok := doc.Timestamp("expires_at")
	if !ok {
		expiresAt = now.Add(c.ttl)
	}
	status, ok := doc.String("status")
	if !ok {
		status = StatusActive
	}

	return &Session{
		Code:      code,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
		Files:     doc.StringArray("files"),
		Status:    status,
	}, nil
}

func (c *Client) send(ctx context.Context, method, rawURL string, doc *Document) (*http.Response, error) {
	var body io.Reader
	if doc != nil {
		payload, err := json.Marshal(doc)
		if err != nil {
			return nil, errors.Wrap(err, "encode document")
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	if doc != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.http.Do(req)
}
