package state

import (
	"github.com/doubleteemedia40-oss/doublet/internal/backend"
)

// AddToCart puts quantity units of the product in the cart, merging into an
// existing line for the same product id instead of duplicating it. Stock is
// not checked here; the calling surface decides whether to offer the action.
// A quantity below 1 falls back to 1.
func (s *Store) AddToCart(product backend.Product, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	merged := false
	for i := range s.cartItems {
		if s.cartItems[i].ID == product.ID {
			s.cartItems[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		s.cartItems = append(s.cartItems, backend.CartItem{Product: product, Quantity: quantity})
	}
	bump := s.cartBump
	s.mu.Unlock()

	s.persist()
	fireCartBump(bump)
}

// fireCartBump invokes the UI listener best-effort; a panicking listener
// must not break the cart mutation that already happened.
func fireCartBump(bump func()) {
	if bump == nil {
		return
	}
	defer func() {
		recover()
	}()
	bump()
}

// OnCartBump registers the listener pinged after every AddToCart.
func (s *Store) OnCartBump(fn func()) {
	s.mu.Lock()
	s.cartBump = fn
	s.mu.Unlock()
}

// RemoveFromCart drops the line for the product id, if present.
func (s *Store) RemoveFromCart(productID string) {
	s.mu.Lock()
	kept := s.cartItems[:0]
	for _, item := range s.cartItems {
		if item.ID != productID {
			kept = append(kept, item)
		}
	}
	s.cartItems = kept
	s.mu.Unlock()
	s.persist()
}

// UpdateCartQuantity overwrites the quantity of an existing line. The value
// is stored as given; interactive callers clamp with ClampQuantity first.
func (s *Store) UpdateCartQuantity(productID string, quantity int) {
	s.mu.Lock()
	for i := range s.cartItems {
		if s.cartItems[i].ID == productID {
			s.cartItems[i].Quantity = quantity
			break
		}
	}
	s.mu.Unlock()
	s.persist()
}

// ClampQuantity is the call-site guard interactive surfaces apply before
// UpdateCartQuantity: never below one.
func ClampQuantity(quantity int) int {
	if quantity < 1 {
		return 1
	}
	return quantity
}

// ClearCart empties the cart (post-checkout or logout).
func (s *Store) ClearCart() {
	s.mu.Lock()
	s.cartItems = nil
	s.mu.Unlock()
	s.persist()
}

// CartItems returns a copy of the cart lines.
func (s *Store) CartItems() []backend.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]backend.CartItem(nil), s.cartItems...)
}
