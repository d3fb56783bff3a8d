package state

import (
	"context"
	"strings"

	"github.com/doubleteemedia40-oss/doublet/internal/backend"
	"github.com/doubleteemedia40-oss/doublet/pkg/pagination"
)

// FetchProducts replaces the whole catalog slice with the backend's
// top-limit result. A limit of zero reuses the current window size.
func (s *Store) FetchProducts(ctx context.Context, limit int) error {
	s.mu.Lock()
	if limit <= 0 {
		limit = s.productsLimit
	}
	s.mu.Unlock()

	items, err := s.client.ListProducts(ctx, backend.ListProductsParams{Limit: limit})
	if err != nil {
		s.setError("Failed to fetch products")
		return err
	}

	s.mu.Lock()
	s.products = items
	s.mu.Unlock()
	return nil
}

// LoadMoreProducts grows the catalog window by one page and re-fetches the
// whole window. The products endpoint has no cursor, so this replaces the
// slice rather than appending a page.
func (s *Store) LoadMoreProducts(ctx context.Context) error {
	s.mu.Lock()
	nextLimit := len(s.products) + pagination.Step
	s.productsLimit = nextLimit
	s.mu.Unlock()

	return s.FetchProducts(ctx, nextLimit)
}

// Products returns a copy of the cached catalog slice.
func (s *Store) Products() []backend.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]backend.Product(nil), s.products...)
}

// SearchProducts filters the cached catalog by a case-insensitive match on
// name, category or description.
func (s *Store) SearchProducts(query string) []backend.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return s.Products()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []backend.Product
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Category), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			matched = append(matched, p)
		}
	}
	return matched
}

// AddProduct creates a catalog entry and appends the stored record.
func (s *Store) AddProduct(ctx context.Context, input backend.ProductInput) (*backend.Product, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	s.setLoading(true)
	s.clearError()
	defer s.setLoading(false)

	created, err := s.client.CreateProduct(ctx, input)
	if err != nil {
		s.setError("Failed to create product")
		return nil, err
	}

	s.mu.Lock()
	s.products = append(s.products, *created)
	s.mu.Unlock()
	return created, nil
}

// UpdateProduct replaces a catalog entry and patches the cached slice by id.
func (s *Store) UpdateProduct(ctx context.Context, id string, input backend.ProductInput) (*backend.Product, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	s.setLoading(true)
	s.clearError()
	defer s.setLoading(false)

	updated, err := s.client.UpdateProduct(ctx, id, input)
	if err != nil {
		s.setError("Failed to update product")
		return nil, err
	}

	s.mu.Lock()
	for i := range s.products {
		if s.products[i].ID == updated.ID {
			s.products[i] = *updated
			break
		}
	}
	s.mu.Unlock()
	return updated, nil
}

// DeleteProduct removes a catalog entry and filters it out of the cache.
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	s.setLoading(true)
	s.clearError()
	defer s.setLoading(false)

	if err := s.client.DeleteProduct(ctx, id); err != nil {
		s.setError("Failed to delete product")
		return err
	}

	s.mu.Lock()
	kept := s.products[:0]
	for _, p := range s.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.products = kept
	s.mu.Unlock()
	return nil
}
