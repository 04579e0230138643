// Package api is the typed HTTP client for the reservation backend.
// It fills the role the storage adapters play elsewhere in the tree:
// everything above it talks to narrow interfaces, and this package is
// the only place that knows about paths, envelopes and CSRF tokens.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// csrfHeader is the header the backend reads tokens from and writes
// fresh tokens to. The client persists the latest token it has seen
// and reattaches it to every mutating request.
const csrfHeader = "X-Csrf-Token"

// Error is a normalized backend rejection. Mutating handlers surface
// Message to the user; passive fetches collapse errors to empty values.
type Error struct {
	StatusCode int
	Message    string
	Code       string
	Details    map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// Credentials is the serializable session state of a client: the
// backend session cookies and the last CSRF token. It is what the
// session store persists so logins survive a portal restart.
type Credentials struct {
	CSRFToken string            `json:"csrf_token"`
	Cookies   map[string]string `json:"cookies"`
}

// CallRecorder receives one timing record per backend call. The perf
// collector implements it; nil disables recording.
type CallRecorder interface {
	RecordCall(method, path string, status int, d time.Duration)
}

// Client issues requests to the reservation backend on behalf of one
// authenticated browser session. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	recorder   CallRecorder

	mu        sync.RWMutex
	csrfToken string
	cookies   map[string]string
}

// NewClient creates a client with no session state.
// PRE: baseURL is non-empty and has no trailing slash
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cookies:    make(map[string]string),
	}
}

// RestoreClient creates a client carrying previously persisted
// credentials, used when rehydrating a session from storage.
func RestoreClient(baseURL string, creds Credentials) *Client {
	c := NewClient(baseURL)
	c.csrfToken = creds.CSRFToken
	for k, v := range creds.Cookies {
		c.cookies[k] = v
	}
	return c
}

// SetRecorder attaches a timing recorder for backend calls. Call it
// once before the client is shared; it is not synchronized.
func (c *Client) SetRecorder(r CallRecorder) {
	c.recorder = r
}

// Credentials returns a copy of the client's current session state.
func (c *Client) Credentials() Credentials {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cookies := make(map[string]string, len(c.cookies))
	for k, v := range c.cookies {
		cookies[k] = v
	}
	return Credentials{CSRFToken: c.csrfToken, Cookies: cookies}
}

// CSRFToken returns the most recently captured backend token.
func (c *Client) CSRFToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.csrfToken
}

func isMutating(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodDelete
}

// do sends one request and decodes the JSON response into out (when
// non-nil). Mutating requests carry the stored CSRF token; every
// response may rotate it. Statuses >= 400 become a *Error.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, method, path, out)
}

// send finishes header preparation, executes the request and handles
// the shared response plumbing for do and doMultipart.
func (c *Client) send(req *http.Request, method, path string, out any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.New().String())

	c.mu.RLock()
	if isMutating(method) && c.csrfToken != "" {
		req.Header.Set(csrfHeader, c.csrfToken)
	}
	for name, value := range c.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	c.mu.RUnlock()

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("backend_call_failed", "method", method, "path", path, "error", err.Error())
		return fmt.Errorf("backend %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.captureSessionState(resp)

	duration := time.Since(start)
	slog.Debug("backend_call",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", float64(duration.Microseconds())/1000.0,
	)
	if c.recorder != nil {
		c.recorder.RecordCall(method, path, resp.StatusCode, duration)
	}

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			return fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}

// captureSessionState stores rotated CSRF tokens and session cookies
// from a backend response.
func (c *Client) captureSessionState(resp *http.Response) {
	token := resp.Header.Get(csrfHeader)
	setCookies := resp.Cookies()
	if token == "" && len(setCookies) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if token != "" {
		c.csrfToken = token
	}
	for _, ck := range setCookies {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck.Value
	}
}

// decodeError normalizes a backend error payload. A body that is not
// the expected {error, code, details} shape degrades to a generic
// message carrying the status code.
func decodeError(resp *http.Response) error {
	apiErr := &Error{StatusCode: resp.StatusCode}
	var payload struct {
		Error   string         `json:"error"`
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		apiErr.Message = payload.Error
		apiErr.Code = payload.Code
		apiErr.Details = payload.Details
	}
	return apiErr
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// doMultipart uploads a single file field, used by the profile
// picture endpoint.
func (c *Client) doMultipart(ctx context.Context, path, field, filename string, file io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("create multipart field: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("copy upload body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(req, http.MethodPost, path, out)
}
