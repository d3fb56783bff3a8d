package state

import (
	"context"

	"github.com/doubleteemedia40-oss/doublet/internal/backend"
	"github.com/doubleteemedia40-oss/doublet/pkg/pagination"
)

// FetchOrders replaces the order slice with one page and stores the next
// cursor. Pass an empty cursor for the first page.
func (s *Store) FetchOrders(ctx context.Context, limit int, cursor string) error {
	page, err := s.client.ListOrders(ctx, pagination.Params{Limit: limit, Cursor: cursor})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.orders = page.Items
	s.ordersCursor = page.NextCursor
	s.mu.Unlock()
	return nil
}

// LoadMoreOrders appends the next cursor page to the order slice. A no-op
// when the listing is already exhausted.
func (s *Store) LoadMoreOrders(ctx context.Context) error {
	return s.loadMore(ctx, "")
}

// FetchUserOrders replaces the order slice with one page of a single user's
// orders.
func (s *Store) FetchUserOrders(ctx context.Context, userID string, limit int, cursor string) error {
	page, err := s.client.ListOrders(ctx, pagination.Params{Limit: limit, Cursor: cursor, UserID: userID})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.orders = page.Items
	s.ordersCursor = page.NextCursor
	s.mu.Unlock()
	return nil
}

// LoadMoreUserOrders appends the next page of a single user's orders.
func (s *Store) LoadMoreUserOrders(ctx context.Context, userID string) error {
	return s.loadMore(ctx, userID)
}

func (s *Store) loadMore(ctx context.Context, userID string) error {
	s.mu.Lock()
	cursor := s.ordersCursor
	s.mu.Unlock()
	if cursor == "" {
		return nil
	}

	page, err := s.client.ListOrders(ctx, pagination.Params{Cursor: cursor, UserID: userID})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.orders = append(s.orders, page.Items...)
	s.ordersCursor = page.NextCursor
	s.mu.Unlock()
	return nil
}

// CreateOrder posts the order and prepends the backend-assigned record.
// Nothing is applied locally before the server confirms.
func (s *Store) CreateOrder(ctx context.Context, input backend.OrderInput) (*backend.Order, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	s.clearError()

	created, err := s.client.CreateOrder(ctx, input)
	if err != nil {
		s.setError("Failed to create order")
		return nil, err
	}

	s.mu.Lock()
	s.orders = append([]backend.Order{*created}, s.orders...)
	s.mu.Unlock()
	return created, nil
}

// UpdateOrderStatus sets the status remotely, patches the cached order, and
// for Delivered fires the release notification after the change committed.
// The notification is a side channel: its failure never rolls the status
// back or reaches the caller.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID string, status backend.OrderStatus) error {
	s.setLoading(true)
	s.clearError()
	defer s.setLoading(false)

	if err := s.client.UpdateOrderStatus(ctx, orderID, status); err != nil {
		s.setError("Failed to update order status")
		return err
	}

	var delivered *backend.Order
	s.mu.Lock()
	for i := range s.orders {
		if s.orders[i].ID == orderID {
			s.orders[i].Status = status
			if status == backend.OrderDelivered {
				o := s.orders[i]
				delivered = &o
			}
			break
		}
	}
	s.mu.Unlock()

	if delivered != nil && s.notifier != nil {
		order := *delivered
		go s.notifier.OrderDelivered(context.WithoutCancel(ctx), order)
	}
	return nil
}

// UpdateOrderDelivery attaches the credential payload to an order and
// patches the cached copy with the stored delivery record.
func (s *Store) UpdateOrderDelivery(ctx context.Context, orderID, details string) error {
	delivery, err := s.client.UpdateOrderDelivery(ctx, orderID, details)
	if err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.orders {
		if s.orders[i].ID == orderID {
			s.orders[i].Delivery = delivery
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// Orders returns a copy of the cached order slice.
func (s *Store) Orders() []backend.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]backend.Order(nil), s.orders...)
}

// OrdersCursor returns the cursor for the next order page, empty when
// exhausted.
func (s *Store) OrdersCursor() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ordersCursor
}
