package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/doubleteemedia40-oss/doublet/pkg/config"
	pkgerrors "github.com/doubleteemedia40-oss/doublet/pkg/errors"
	"github.com/doubleteemedia40-oss/doublet/pkg/logger"
)

var (
	errBaseURLRequired = errors.New("backend base url is required")
	errLoggerRequired  = errors.New("backend logger is required")
)

// Client wraps the storefront REST backend with centralized auth, logging and
// error mapping. A stale token is not refreshed; calls simply keep failing
// with UNAUTHORIZED until the user logs in again.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logger.Logger

	mu    sync.RWMutex
	token string
}

// NewClient validates the config and builds the backend wrapper.
func NewClient(cfg config.APIConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errBaseURLRequired
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid backend base url: %w", err)
	}

	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logg,
	}, nil
}

// SetToken installs the bearer token attached to subsequent requests.
// An empty string drops back to guest calls.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the currently installed bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// BaseURL reports the configured backend root.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL
}

type request struct {
	method  string
	path    string
	query   url.Values
	body    any
	accept  []int
	op      string
	failMsg string
}

func (c *Client) do(ctx context.Context, req request, out any) error {
	endpoint := c.baseURL + req.path
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	var payload io.Reader
	if req.body != nil {
		raw, err := json.Marshal(req.body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("encode %s request", req.op))
		}
		payload = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("build %s request", req.op))
	}
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	c.log(ctx, "request", req.op, map[string]any{"method": req.method, "path": req.path})

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log(ctx, "error", req.op, map[string]any{"error": err.Error()})
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, req.failMsg)
	}
	defer resp.Body.Close()

	if !accepted(resp.StatusCode, req.accept) {
		apiErr := c.errorFromResponse(resp, req.failMsg)
		c.log(ctx, "error", req.op, map[string]any{"status": resp.StatusCode, "error": apiErr.Error()})
		return apiErr
	}

	c.log(ctx, "response", req.op, map[string]any{"status": resp.StatusCode})

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decode %s response", req.op))
	}
	return nil
}

func accepted(status int, accept []int) bool {
	if len(accept) == 0 {
		return status >= 200 && status < 300
	}
	for _, s := range accept {
		if status == s {
			return true
		}
	}
	return false
}

// errorFromResponse extracts the backend's {"error": "..."} message when one
// exists and falls back to the operation's generic message otherwise.
func (c *Client) errorFromResponse(resp *http.Response, fallback string) *pkgerrors.Error {
	code := pkgerrors.FromStatus(resp.StatusCode)
	message := fallback

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil && len(raw) > 0 {
		var body struct {
			Error   string `json:"error"`
			Details any    `json:"details"`
		}
		if json.Unmarshal(raw, &body) == nil && strings.TrimSpace(body.Error) != "" {
			message = body.Error
			if body.Details != nil {
				return pkgerrors.New(code, message).WithDetails(body.Details)
			}
		}
	}
	return pkgerrors.New(code, message)
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Warn(ctx, fmt.Sprintf("backend %s failed", op))
	default:
		c.logger.Debug(ctx, fmt.Sprintf("backend %s", phase))
	}
}

func redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"password", "token", "secret", "email", "details"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}
