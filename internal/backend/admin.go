package backend

import (
	"context"
	"net/http"
)

// Health fetches the backend's configuration/maintenance snapshot.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var out HealthStatus
	err := c.do(ctx, request{
		method:  http.MethodGet,
		path:    "/api/health",
		op:      "health",
		failMsg: "Failed to fetch health",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SetMaintenance toggles the backend maintenance flag and returns the stored
// value.
func (c *Client) SetMaintenance(ctx context.Context, enabled bool) (bool, error) {
	var out struct {
		Config struct {
			Maintenance bool `json:"maintenance"`
		} `json:"config"`
	}
	err := c.do(ctx, request{
		method:  http.MethodPut,
		path:    "/api/config",
		body:    map[string]bool{"maintenance": enabled},
		op:      "set_maintenance",
		failMsg: "Failed to update maintenance",
	}, &out)
	if err != nil {
		return false, err
	}
	return out.Config.Maintenance, nil
}
