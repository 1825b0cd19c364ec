package student

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultAuthMessage = "Требуется авторизация"

// Client talks to the student service over HTTP.
type Client struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
	log        *zap.Logger
}

// ClientOptions configures NewClient.
type ClientOptions struct {
	BaseURL string
	Token   string
	// Timeout of zero leaves requests unbounded.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewClient validates the base URL and returns a ready client.
func NewClient(opts ClientOptions) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		return nil, fmt.Errorf("student client: base url required")
	}
	u, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("student client: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("student client: base url %q must be absolute", raw)
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:    u,
		token:      strings.TrimSpace(opts.Token),
		httpClient: hc,
		log:        log.Named("student"),
	}, nil
}

// GetStates fetches the state catalog.
func (c *Client) GetStates(ctx context.Context) ([]State, error) {
	var out []State
	if err := c.do(ctx, http.MethodGet, "/students/states", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTgAdmins fetches the admin names students can be filtered by.
func (c *Client) GetTgAdmins(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.do(ctx, http.MethodGet, "/students/tg-admins", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ChangeState moves a student to another state.
func (c *Client) ChangeState(ctx context.Context, studentID, stateID int) error {
	body := struct {
		State int `json:"state"`
	}{State: stateID}
	path := "/students/" + strconv.Itoa(studentID) + "/state"
	return c.do(ctx, http.MethodPatch, path, body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &Error{Kind: KindGeneric, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return &Error{Kind: KindGeneric, Err: fmt.Errorf("build request: %w", err)}
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	log := c.log.With(zap.String("method", method), zap.String("path", path), zap.String("request_id", reqID))
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("request failed", zap.Error(err))
		return &Error{Kind: KindGeneric, Err: fmt.Errorf("%s %s: %w", method, path, err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &Error{Kind: KindGeneric, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	log.Debug("response", zap.Int("status", resp.StatusCode), zap.Duration("took", time.Since(start)))

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		msg := errorMessage(raw)
		if msg == "" {
			msg = defaultAuthMessage
		}
		return &Error{Kind: KindAuthorization, Message: msg, Status: resp.StatusCode}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{
			Kind:    KindGeneric,
			Message: errorMessage(raw),
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, truncate(string(raw), 300)),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Kind: KindGeneric, Status: resp.StatusCode, Err: fmt.Errorf("decode %s: %w", path, err)}
	}
	return nil
}

// errorMessage pulls a human readable message out of an error body.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	if m := strings.TrimSpace(payload.Message); m != "" {
		return m
	}
	return strings.TrimSpace(payload.Error)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
