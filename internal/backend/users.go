package backend

import (
	"context"
	"net/http"
	"net/url"
)

// ListUsers returns every registered account. Admin only.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var out struct {
		Items []User `json:"items"`
	}
	err := c.do(ctx, request{
		method:  http.MethodGet,
		path:    "/api/users",
		op:      "list_users",
		failMsg: "Failed to fetch users",
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Items, nil
}

// UpdateUserRole flips the admin flag on an account.
func (c *Client) UpdateUserRole(ctx context.Context, id string, isAdmin bool) error {
	return c.do(ctx, request{
		method:  http.MethodPut,
		path:    "/api/users/" + url.PathEscape(id) + "/role",
		body:    map[string]bool{"isAdmin": isAdmin},
		op:      "update_user_role",
		failMsg: "Failed to update user role",
	}, nil)
}

// SetUserActive enables or disables an account.
func (c *Client) SetUserActive(ctx context.Context, id string, active bool) error {
	return c.do(ctx, request{
		method:  http.MethodPut,
		path:    "/api/users/" + url.PathEscape(id) + "/active",
		body:    map[string]bool{"active": active},
		op:      "set_user_active",
		failMsg: "Failed to update user active",
	}, nil)
}
