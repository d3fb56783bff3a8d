package state

import (
	"context"

	"github.com/doubleteemedia40-oss/doublet/internal/backend"
)

// SignupInput carries the registration form. Password strength beyond the
// minimum length is the backend's call.
type SignupInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
}

// LoginInput carries the login form.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ResetInput redeems a password reset token.
type ResetInput struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// Signup registers an account and installs the fresh session. Admin accounts
// trigger an eager orders fetch.
func (s *Store) Signup(ctx context.Context, input SignupInput) error {
	if err := validateInput(input); err != nil {
		return err
	}

	s.setLoading(true)
	s.clearError()
	defer s.setLoading(false)

	result, err := s.client.Register(ctx, input.Email, input.Password, input.Name)
	if err != nil {
		s.setError("Registration failed")
		return err
	}
	s.installSession(ctx, result.Token, result.User)
	return nil
}

// Login exchanges credentials for a session and installs it.
func (s *Store) Login(ctx context.Context, input LoginInput) error {
	if err := validateInput(input); err != nil {
		return err
	}

	s.setLoading(true)
	s.clearError()
	defer s.setLoading(false)

	result, err := s.client.Login(ctx, input.Email, input.Password)
	if err != nil {
		s.setError("Login failed")
		return err
	}
	s.installSession(ctx, result.Token, result.User)
	return nil
}

func (s *Store) installSession(ctx context.Context, token string, user backend.User) {
	s.mu.Lock()
	s.token = token
	u := user
	s.user = &u
	s.mu.Unlock()

	s.client.SetToken(token)
	s.persist()

	if user.IsAdmin {
		if err := s.FetchOrders(ctx, 0, ""); err != nil {
			s.logger.Warn(ctx, "eager admin orders fetch failed")
		}
	}
}

// Logout drops the session, the cart and the cached orders.
func (s *Store) Logout() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.cartItems = nil
	s.orders = nil
	s.ordersCursor = ""
	s.mu.Unlock()

	s.client.SetToken("")
	s.persist()
}

// RequestPasswordReset asks the backend for a reset token.
func (s *Store) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	return s.client.RequestPasswordReset(ctx, email)
}

// ResetPassword redeems a reset token for a new password.
func (s *Store) ResetPassword(ctx context.Context, input ResetInput) error {
	if err := validateInput(input); err != nil {
		return err
	}
	return s.client.ResetPassword(ctx, input.Token, input.NewPassword)
}
