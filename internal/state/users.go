package state

import (
	"context"

	"github.com/doubleteemedia40-oss/doublet/internal/backend"
)

// FetchAllUsers replaces the admin user list with the backend's current set.
func (s *Store) FetchAllUsers(ctx context.Context) error {
	users, err := s.client.ListUsers(ctx)
	if err != nil {
		s.setError("Failed to fetch users")
		return err
	}

	s.mu.Lock()
	s.allUsers = users
	s.mu.Unlock()
	return nil
}

// UpdateUserRole flips the admin flag remotely and patches the cached entry.
func (s *Store) UpdateUserRole(ctx context.Context, userID string, isAdmin bool) error {
	if err := s.client.UpdateUserRole(ctx, userID, isAdmin); err != nil {
		s.setError("Failed to update user role")
		return err
	}

	s.mu.Lock()
	for i := range s.allUsers {
		if s.allUsers[i].ID == userID {
			s.allUsers[i].IsAdmin = isAdmin
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// SetUserActive enables or disables an account remotely and patches the
// cached entry.
func (s *Store) SetUserActive(ctx context.Context, userID string, active bool) error {
	if err := s.client.SetUserActive(ctx, userID, active); err != nil {
		s.setError("Failed to update user")
		return err
	}

	s.mu.Lock()
	for i := range s.allUsers {
		if s.allUsers[i].ID == userID {
			a := active
			s.allUsers[i].Active = &a
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// AllUsers returns a copy of the cached admin user list.
func (s *Store) AllUsers() []backend.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]backend.User(nil), s.allUsers...)
}
