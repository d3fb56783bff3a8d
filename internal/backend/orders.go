package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/doubleteemedia40-oss/doublet/pkg/pagination"
)

// ListOrders fetches one cursor page. Unlike the catalog, order listing is
// genuinely incremental: pass the previous page's NextCursor as
// params.Cursor to continue.
func (c *Client) ListOrders(ctx context.Context, params pagination.Params) (*OrderPage, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(pagination.NormalizeLimit(params.Limit)))
	if params.Cursor != "" {
		query.Set("afterDate", params.Cursor)
	}
	if params.UserID != "" {
		query.Set("userId", params.UserID)
	}

	var out OrderPage
	err := c.do(ctx, request{
		method:  http.MethodGet,
		path:    "/api/orders",
		query:   query,
		op:      "list_orders",
		failMsg: "Failed to fetch orders",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateOrder posts a new order and returns the backend-assigned record.
func (c *Client) CreateOrder(ctx context.Context, input OrderInput) (*Order, error) {
	var out Order
	err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/api/orders",
		body:    input,
		op:      "create_order",
		failMsg: "Failed to create order",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateOrderStatus sets the order status. Transitions are admin-driven and
// unconstrained here.
func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status OrderStatus) error {
	return c.do(ctx, request{
		method:  http.MethodPut,
		path:    "/api/orders/" + url.PathEscape(id) + "/status",
		body:    map[string]OrderStatus{"status": status},
		op:      "update_order_status",
		failMsg: "Failed to update order status",
	}, nil)
}

// UpdateOrderDelivery attaches the credential payload to an order and returns
// the stored delivery record.
func (c *Client) UpdateOrderDelivery(ctx context.Context, id, details string) (*Delivery, error) {
	var out struct {
		Delivery *Delivery `json:"delivery"`
	}
	err := c.do(ctx, request{
		method:  http.MethodPut,
		path:    "/api/orders/" + url.PathEscape(id) + "/delivery",
		body:    map[string]string{"details": details},
		op:      "update_order_delivery",
		failMsg: "Failed to update delivery",
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Delivery, nil
}
