// Package state is the application state container behind every storefront
// and admin surface: cart, session, catalog cache, order pagination and
// reference data, with a narrow action interface. All slices live here;
// callers hold no independent copies. A subset of the state (cart, session,
// reference lists) is persisted to a JSON snapshot and rehydrated wholesale
// at startup; products, orders and users are caches re-fetched from the
// backend, never sources of truth.
package state

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/doubleteemedia40-oss/doublet/internal/backend"
	pkgerrors "github.com/doubleteemedia40-oss/doublet/pkg/errors"
	"github.com/doubleteemedia40-oss/doublet/pkg/logger"
	"github.com/doubleteemedia40-oss/doublet/pkg/pagination"
)

// Notifier receives best-effort order notifications after the matching state
// mutation has committed. Implementations must not block for long and must
// never panic the caller; failures stay inside the notifier.
type Notifier interface {
	OrderDelivered(ctx context.Context, order backend.Order)
}

// Params wires the store's dependencies.
type Params struct {
	Client      *backend.Client
	Logger      *logger.Logger
	StoragePath string
	Notifier    Notifier
}

// Store owns every state slice. All exported methods are safe for concurrent
// use; getters return copies.
type Store struct {
	client      *backend.Client
	logger      *logger.Logger
	persistPath string
	notifier    Notifier

	mu            sync.Mutex
	cartItems     []backend.CartItem
	user          *backend.User
	token         string
	products      []backend.Product
	productsLimit int
	orders        []backend.Order
	ordersCursor  string
	allUsers      []backend.User
	categories    []string
	regions       []string
	platforms     []string
	lastError     string
	loading       bool

	cartBump func()
}

var (
	defaultCategories = []string{"Streaming", "Gaming", "Software", "VPN"}
	defaultRegions    = []string{"Global (Worldwide)", "United States", "United Kingdom", "European Union", "Asia Pacific"}
	defaultPlatforms  = []string{"Netflix", "Spotify", "Steam", "Disney+", "Amazon Prime", "Other"}
)

// New builds the store and rehydrates the persisted snapshot. A missing
// snapshot file is a clean first run, not an error.
func New(params Params) (*Store, error) {
	if params.Client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "backend client required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}

	s := &Store{
		client:        params.Client,
		logger:        params.Logger,
		persistPath:   params.StoragePath,
		notifier:      params.Notifier,
		productsLimit: pagination.DefaultLimit,
		categories:    append([]string(nil), defaultCategories...),
		regions:       append([]string(nil), defaultRegions...),
		platforms:     append([]string(nil), defaultPlatforms...),
	}

	if err := s.loadSnapshot(); err != nil {
		return nil, err
	}
	s.client.SetToken(s.token)
	return s, nil
}

// Initialize refreshes the catalog and restores the persisted session in
// parallel. A failing profile lookup leaves the session logged out without
// erroring; a failing catalog fetch only sets the shared error string.
func (s *Store) Initialize(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.FetchProducts(gctx, 0); err != nil {
			s.logger.Warn(gctx, "initial catalog fetch failed")
		}
		return nil
	})
	g.Go(func() error {
		s.restoreSession(gctx)
		return nil
	})
	return g.Wait()
}

func (s *Store) restoreSession(ctx context.Context) {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if token == "" {
		s.mu.Lock()
		s.user = nil
		s.orders = nil
		s.mu.Unlock()
		return
	}

	user, err := s.client.Me(ctx)
	if err != nil {
		s.logger.Warn(s.logger.WithField(ctx, "error", err.Error()), "session restore failed")
		s.mu.Lock()
		s.user = nil
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	s.persist()

	if user.IsAdmin {
		if err := s.FetchOrders(ctx, 0, ""); err != nil {
			s.logger.Warn(ctx, "eager admin orders fetch failed")
		}
	}
}

// User returns the cached session profile, nil for guests.
func (s *Store) User() *backend.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Token returns the persisted bearer token, empty for guests.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// IsLoading reports whether a user-visible action is in flight.
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// LastError returns the shared error string set by failed fetches.
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Store) setError(msg string) {
	s.mu.Lock()
	s.lastError = msg
	s.mu.Unlock()
}

func (s *Store) clearError() {
	s.setError("")
}
