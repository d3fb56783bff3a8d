// Package email sends transactional notifications through an
// EmailJS-compatible HTTP API. Every send is best-effort: missing
// configuration downgrades to a warning and failures are logged, never
// surfaced to the buyer flow.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/doubleteemedia40-oss/doublet/internal/backend"
	"github.com/doubleteemedia40-oss/doublet/pkg/config"
	"github.com/doubleteemedia40-oss/doublet/pkg/logger"
)

const sendPath = "/api/v1.0/email/send"

// Client wraps the transactional email service.
type Client struct {
	cfg    config.EmailConfig
	http   *http.Client
	logger *logger.Logger
}

// NewClient builds the wrapper. Unconfigured credentials are allowed; sends
// become logged no-ops.
func NewClient(cfg config.EmailConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, fmt.Errorf("email logger is required")
	}
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: 15 * time.Second},
		logger: logg,
	}
	if !cfg.Configured() {
		logg.Warn(context.Background(), "email service not configured, notifications disabled")
	}
	return c, nil
}

// WelcomeParams personalizes the signup template.
type WelcomeParams struct {
	ToEmail string `json:"to_email"`
	ToName  string `json:"to_name"`
}

// ReleaseParams personalizes the delivery and partial-delivery templates.
type ReleaseParams struct {
	ToEmail string `json:"to_email"`
	ToName  string `json:"to_name"`
	OrderID string `json:"order_id"`
	Total   string `json:"total"`
	Details string `json:"details,omitempty"`
}

// ResetParams personalizes the password reset template.
type ResetParams struct {
	ToEmail string `json:"to_email"`
	Email   string `json:"email"`
	Link    string `json:"link"`
	Token   string `json:"token"`
}

// SendWelcome greets a fresh signup.
func (c *Client) SendWelcome(ctx context.Context, params WelcomeParams) error {
	return c.send(ctx, "welcome", c.cfg.TemplateWelcomeID, params)
}

// SendRelease notifies a buyer that their order was delivered.
func (c *Client) SendRelease(ctx context.Context, params ReleaseParams) error {
	return c.send(ctx, "release", c.cfg.TemplateReleaseID, params)
}

// SendPartial notifies a buyer about a partial delivery.
func (c *Client) SendPartial(ctx context.Context, params ReleaseParams) error {
	return c.send(ctx, "partial", c.cfg.TemplatePartialID, params)
}

// SendReset delivers a password reset link.
func (c *Client) SendReset(ctx context.Context, params ResetParams) error {
	return c.send(ctx, "reset", c.cfg.TemplateResetID, params)
}

func (c *Client) send(ctx context.Context, kind, templateID string, params any) error {
	if !c.cfg.Configured() || strings.TrimSpace(templateID) == "" {
		c.logger.Warn(ctx, fmt.Sprintf("email configuration missing, skipping %s email", kind))
		return nil
	}

	payload, err := json.Marshal(map[string]any{
		"service_id":      c.cfg.ServiceID,
		"template_id":     templateID,
		"user_id":         c.cfg.PublicKey,
		"template_params": params,
	})
	if err != nil {
		return fmt.Errorf("encode %s email: %w", kind, err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + sendPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s email request: %w", kind, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send %s email: %w", kind, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<12))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("send %s email: status %d", kind, resp.StatusCode)
	}

	c.logger.Info(c.logger.WithField(ctx, "kind", kind), "notification email sent")
	return nil
}

// OrderDelivered satisfies the state store's notifier hook: a release email
// for the order, logged on failure and never propagated.
func (c *Client) OrderDelivered(ctx context.Context, order backend.Order) {
	err := c.SendRelease(ctx, ReleaseParams{
		ToEmail: order.Email,
		ToName:  order.Customer,
		OrderID: order.ID,
		Total:   strconv.FormatFloat(order.Total, 'f', -1, 64),
	})
	if err != nil {
		c.logger.Error(c.logger.WithOrderID(ctx, order.ID), "release email failed", err)
	}
}
