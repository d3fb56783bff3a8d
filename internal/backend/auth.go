package backend

import (
	"context"
	"net/http"
)

// AuthResult is the session material returned by register and login.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Register creates an account and returns a fresh session.
func (c *Client) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/api/auth/register",
		body:    map[string]string{"email": email, "password": password, "name": name},
		op:      "register",
		failMsg: "Registration failed",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var out AuthResult
	err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/api/auth/login",
		body:    map[string]string{"email": email, "password": password},
		op:      "login",
		failMsg: "Login failed",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Me fetches the profile behind the installed bearer token.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	err := c.do(ctx, request{
		method:  http.MethodGet,
		path:    "/api/auth/me",
		op:      "me",
		failMsg: "Failed to load user",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out.User, nil
}

// RequestPasswordReset asks the backend for a reset token for the address.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/api/auth/request-reset",
		body:    map[string]string{"email": email},
		op:      "request_reset",
		failMsg: "Failed to request reset",
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Token, nil
}

// ResetPassword redeems a reset token for a new password.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	return c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/api/auth/reset",
		body:    map[string]string{"token": token, "newPassword": newPassword},
		op:      "reset_password",
		failMsg: "Failed to reset password",
	}, nil)
}
