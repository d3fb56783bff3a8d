package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/doubleteemedia40-oss/doublet/pkg/pagination"
)

// ListProductsParams narrows a catalog fetch. Source selects the backend's
// db or file catalog when set; the listing has no cursor, only a limit.
type ListProductsParams struct {
	Limit  int
	Source string
}

// ListProducts returns the top-limit slice of the catalog.
func (c *Client) ListProducts(ctx context.Context, params ListProductsParams) ([]Product, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(pagination.NormalizeLimit(params.Limit)))
	if params.Source != "" {
		query.Set("source", params.Source)
	}

	var out struct {
		Items []Product `json:"items"`
	}
	err := c.do(ctx, request{
		method:  http.MethodGet,
		path:    "/api/products",
		query:   query,
		op:      "list_products",
		failMsg: "Failed to fetch products",
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Items, nil
}

// CreateProduct adds a catalog entry and returns the stored record.
func (c *Client) CreateProduct(ctx context.Context, input ProductInput) (*Product, error) {
	var out Product
	err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/api/products",
		body:    input,
		op:      "create_product",
		failMsg: "Failed to create product",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProduct replaces a catalog entry and returns the stored record.
func (c *Client) UpdateProduct(ctx context.Context, id string, input ProductInput) (*Product, error) {
	var out Product
	err := c.do(ctx, request{
		method:  http.MethodPut,
		path:    "/api/products/" + url.PathEscape(id),
		body:    input,
		op:      "update_product",
		failMsg: "Failed to update product",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProduct removes a catalog entry. A 204 is a success.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, request{
		method:  http.MethodDelete,
		path:    "/api/products/" + url.PathEscape(id),
		accept:  []int{http.StatusOK, http.StatusNoContent},
		op:      "delete_product",
		failMsg: "Failed to delete product",
	}, nil)
}
