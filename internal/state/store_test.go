package state_test

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/doubleteemedia40-oss/doublet/internal/backend"
	"github.com/doubleteemedia40-oss/doublet/internal/backend/backendtest"
	"github.com/doubleteemedia40-oss/doublet/internal/state"
	"github.com/doubleteemedia40-oss/doublet/pkg/config"
	pkgerrors "github.com/doubleteemedia40-oss/doublet/pkg/errors"
	"github.com/doubleteemedia40-oss/doublet/pkg/logger"
)

type storeFixture struct {
	srv   *backendtest.Server
	store *state.Store
	path  string
}

func newFixture(t *testing.T, opts ...func(*state.Params)) *storeFixture {
	t.Helper()
	srv := backendtest.New()
	t.Cleanup(srv.Close)

	path := filepath.Join(t.TempDir(), "doublet-storage.json")
	st := newStoreAt(t, srv, path, opts...)
	return &storeFixture{srv: srv, store: st, path: path}
}

func newStoreAt(t *testing.T, srv *backendtest.Server, path string, opts ...func(*state.Params)) *state.Store {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	client, err := backend.NewClient(config.APIConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, logg)
	require.NoError(t, err)

	params := state.Params{Client: client, Logger: logg, StoragePath: path}
	for _, opt := range opts {
		opt(&params)
	}
	st, err := state.New(params)
	require.NoError(t, err)
	return st
}

func seedProducts(srv *backendtest.Server, n int) {
	for i := 0; i < n; i++ {
		srv.Products = append(srv.Products, backend.Product{
			ID:       fmt.Sprintf("p-%d", i+1),
			Name:     fmt.Sprintf("Product %d", i+1),
			Price:    1000,
			Stock:    5,
			Category: "Streaming",
		})
	}
}

func TestAddToCartMergesByProductID(t *testing.T) {
	fx := newFixture(t)
	p := backend.Product{ID: "p-1", Name: "Netflix Premium", Price: 8500, Stock: 10}

	fx.store.AddToCart(p, 1)
	fx.store.AddToCart(p, 2)
	fx.store.AddToCart(backend.Product{ID: "p-2", Name: "Spotify", Price: 4000, Stock: 3}, 0)

	items := fx.store.CartItems()
	require.Len(t, items, 2)
	require.Equal(t, 3, items[0].Quantity)
	// Below-1 add quantity falls back to 1.
	require.Equal(t, 1, items[1].Quantity)

	fx.store.RemoveFromCart("p-1")
	items = fx.store.CartItems()
	require.Len(t, items, 1)
	require.Equal(t, "p-2", items[0].ID)
}

func TestUpdateCartQuantityIsUnguarded(t *testing.T) {
	fx := newFixture(t)
	fx.store.AddToCart(backend.Product{ID: "p-1", Name: "Netflix", Price: 8500}, 2)

	// The raw action stores whatever it is given; clamping is the caller's job.
	fx.store.UpdateCartQuantity("p-1", 0)
	require.Equal(t, 0, fx.store.CartItems()[0].Quantity)

	require.Equal(t, 1, state.ClampQuantity(0))
	require.Equal(t, 1, state.ClampQuantity(-3))
	require.Equal(t, 7, state.ClampQuantity(7))

	fx.store.UpdateCartQuantity("p-1", state.ClampQuantity(0))
	require.Equal(t, 1, fx.store.CartItems()[0].Quantity)
}

func TestCartBumpListenerPanicIsContained(t *testing.T) {
	fx := newFixture(t)
	fx.store.OnCartBump(func() { panic("listener bug") })

	fx.store.AddToCart(backend.Product{ID: "p-1", Name: "Netflix", Price: 8500}, 1)
	require.Len(t, fx.store.CartItems(), 1)
}

func TestSnapshotRoundTrip(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	require.NoError(t, fx.store.Signup(ctx, state.SignupInput{
		Email: "jo@example.com", Password: "hunter2hunter2", Name: "Jo",
	}))
	fx.store.AddToCart(backend.Product{ID: "p-1", Name: "Netflix", Price: 8500}, 2)
	fx.store.AddCategory("Education")

	raw, err := os.ReadFile(fx.path)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"cartItems"`)
	require.Contains(t, string(raw), `"token"`)

	// A fresh store on the same path rehydrates the snapshot wholesale.
	reloaded := newStoreAt(t, fx.srv, fx.path)
	require.Len(t, reloaded.CartItems(), 1)
	require.NotEmpty(t, reloaded.Token())
	require.NotNil(t, reloaded.User())
	require.Contains(t, reloaded.Categories(), "Education")
}

func TestInitializeRestoresSession(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	seedProducts(fx.srv, 5)

	require.NoError(t, fx.store.Signup(ctx, state.SignupInput{
		Email: "jo@example.com", Password: "hunter2hunter2", Name: "Jo",
	}))

	reloaded := newStoreAt(t, fx.srv, fx.path)
	require.NoError(t, reloaded.Initialize(ctx))
	require.NotNil(t, reloaded.User())
	require.Equal(t, "jo@example.com", reloaded.User().Email)
	require.Len(t, reloaded.Products(), 5)
}

func TestInitializeSurvivesProfileFailure(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	require.NoError(t, fx.store.Signup(ctx, state.SignupInput{
		Email: "jo@example.com", Password: "hunter2hunter2", Name: "Jo",
	}))

	fx.srv.Lock()
	fx.srv.FailMe = true
	fx.srv.Unlock()

	reloaded := newStoreAt(t, fx.srv, fx.path)
	require.NoError(t, reloaded.Initialize(ctx))
	// Session ends up logged out, but startup does not fail.
	require.Nil(t, reloaded.User())
	require.NotEmpty(t, reloaded.Token())
}

func TestLogoutClearsSessionCartAndOrders(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	require.NoError(t, fx.store.Signup(ctx, state.SignupInput{
		Email: "jo@example.com", Password: "hunter2hunter2", Name: "Jo",
	}))
	fx.store.AddToCart(backend.Product{ID: "p-1", Name: "Netflix", Price: 8500}, 1)

	fx.store.Logout()
	require.Nil(t, fx.store.User())
	require.Empty(t, fx.store.Token())
	require.Empty(t, fx.store.CartItems())
	require.Empty(t, fx.store.Orders())

	reloaded := newStoreAt(t, fx.srv, fx.path)
	require.Empty(t, reloaded.Token())
	require.Empty(t, reloaded.CartItems())
}

func TestSignupValidation(t *testing.T) {
	fx := newFixture(t)
	err := fx.store.Signup(context.Background(), state.SignupInput{
		Email: "not-an-email", Password: "short", Name: "",
	})
	require.Error(t, err)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestLoginFailureSetsSharedError(t *testing.T) {
	fx := newFixture(t)
	err := fx.store.Login(context.Background(), state.LoginInput{
		Email: "jo@example.com", Password: "wrong-password",
	})
	require.Error(t, err)
	require.Equal(t, "Login failed", fx.store.LastError())
	require.Nil(t, fx.store.User())
}

func TestLoadMoreProductsGrowsWindowAndReplaces(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	seedProducts(fx.srv, 50)

	require.NoError(t, fx.store.FetchProducts(ctx, 0))
	require.Len(t, fx.store.Products(), 20)

	require.NoError(t, fx.store.LoadMoreProducts(ctx))
	require.Len(t, fx.store.Products(), 40)

	fx.srv.Lock()
	limit := fx.srv.LastProductLimit
	fx.srv.Unlock()
	// The catalog endpoint has no cursor; load-more re-fetches the grown window.
	require.Equal(t, 40, limit)
}

func TestSearchProductsFiltersCachedCatalog(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.srv.Products = []backend.Product{
		{ID: "p-1", Name: "Netflix Premium", Category: "Streaming"},
		{ID: "p-2", Name: "NordVPN", Category: "VPN", Description: "secure tunnel"},
		{ID: "p-3", Name: "Spotify Family", Category: "Streaming"},
	}
	require.NoError(t, fx.store.FetchProducts(ctx, 0))

	require.Len(t, fx.store.SearchProducts("streaming"), 2)
	require.Len(t, fx.store.SearchProducts("tunnel"), 1)
	require.Len(t, fx.store.SearchProducts(""), 3)
	require.Empty(t, fx.store.SearchProducts("minecraft"))
}

func TestOrdersCursorPagination(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.srv.SeedOrders(30)

	require.NoError(t, fx.store.FetchOrders(ctx, 0, ""))
	require.Len(t, fx.store.Orders(), 20)
	require.NotEmpty(t, fx.store.OrdersCursor())

	// Load-more appends the next page instead of replacing the slice.
	require.NoError(t, fx.store.LoadMoreOrders(ctx))
	orders := fx.store.Orders()
	require.Len(t, orders, 30)
	require.Empty(t, fx.store.OrdersCursor())

	seen := map[string]bool{}
	for _, o := range orders {
		require.False(t, seen[o.ID], "order %s appeared twice", o.ID)
		seen[o.ID] = true
	}

	// Exhausted cursor makes load-more a no-op.
	require.NoError(t, fx.store.LoadMoreOrders(ctx))
	require.Len(t, fx.store.Orders(), 30)
}

func TestCreateOrderPrependsServerRecord(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.srv.SeedOrders(2)
	require.NoError(t, fx.store.FetchOrders(ctx, 0, ""))

	created, err := fx.store.CreateOrder(ctx, backend.OrderInput{
		Customer: "Jo",
		Email:    "jo@example.com",
		Items:    []backend.CartItem{{Product: backend.Product{ID: "p-1", Name: "Netflix", Price: 8500}, Quantity: 2}},
		Total:    18700,
		Date:     time.Now().UTC().Format(time.RFC3339),
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	orders := fx.store.Orders()
	require.Len(t, orders, 3)
	require.Equal(t, created.ID, orders[0].ID)
}

type captureNotifier struct {
	delivered chan backend.Order
}

func (n *captureNotifier) OrderDelivered(ctx context.Context, order backend.Order) {
	n.delivered <- order
}

func TestDeliveredStatusFiresNotification(t *testing.T) {
	notifier := &captureNotifier{delivered: make(chan backend.Order, 1)}
	fx := newFixture(t, func(p *state.Params) { p.Notifier = notifier })
	ctx := context.Background()

	fx.srv.SeedOrders(1)
	require.NoError(t, fx.store.FetchOrders(ctx, 0, ""))
	orderID := fx.store.Orders()[0].ID

	require.NoError(t, fx.store.UpdateOrderStatus(ctx, orderID, backend.OrderDelivered))
	require.Equal(t, backend.OrderDelivered, fx.store.Orders()[0].Status)

	select {
	case got := <-notifier.delivered:
		require.Equal(t, orderID, got.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("delivered notification never fired")
	}
}

func TestNonDeliveredStatusDoesNotNotify(t *testing.T) {
	notifier := &captureNotifier{delivered: make(chan backend.Order, 1)}
	fx := newFixture(t, func(p *state.Params) { p.Notifier = notifier })
	ctx := context.Background()

	fx.srv.SeedOrders(1)
	require.NoError(t, fx.store.FetchOrders(ctx, 0, ""))
	orderID := fx.store.Orders()[0].ID

	require.NoError(t, fx.store.UpdateOrderStatus(ctx, orderID, backend.OrderProcessing))
	select {
	case <-notifier.delivered:
		t.Fatal("notification fired for a non-delivered status")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUpdateOrderDeliveryPatchesCache(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.srv.SeedOrders(1)
	require.NoError(t, fx.store.FetchOrders(ctx, 0, ""))
	orderID := fx.store.Orders()[0].ID

	require.NoError(t, fx.store.UpdateOrderDelivery(ctx, orderID, "user: jo / pass: s3cret"))
	order := fx.store.Orders()[0]
	require.NotNil(t, order.Delivery)
	require.Equal(t, "user: jo / pass: s3cret", order.Delivery.Details)
	require.NotZero(t, order.Delivery.UpdatedAt)
}

func TestUserAdministration(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	user, _ := fx.srv.RegisterUser("admin@example.com", "hunter2hunter2", "Admin", true)

	require.NoError(t, fx.store.FetchAllUsers(ctx))
	require.Len(t, fx.store.AllUsers(), 1)

	require.NoError(t, fx.store.UpdateUserRole(ctx, user.ID, false))
	require.False(t, fx.store.AllUsers()[0].IsAdmin)

	require.NoError(t, fx.store.SetUserActive(ctx, user.ID, false))
	active := fx.store.AllUsers()[0].Active
	require.NotNil(t, active)
	require.False(t, *active)
}

func TestReferenceListsAreLocal(t *testing.T) {
	fx := newFixture(t)

	require.Contains(t, fx.store.Categories(), "Streaming")
	require.Contains(t, fx.store.Regions(), "Global (Worldwide)")
	require.Contains(t, fx.store.Platforms(), "Netflix")

	fx.store.AddCategory("Education")
	fx.store.AddCategory("Education")
	fx.store.AddCategory("")
	count := 0
	for _, c := range fx.store.Categories() {
		if c == "Education" {
			count++
		}
	}
	require.Equal(t, 1, count)

	fx.store.DeleteRegion("United States")
	require.NotContains(t, fx.store.Regions(), "United States")

	fx.store.AddPlatform("Twitch")
	reloaded := newStoreAt(t, fx.srv, fx.path)
	require.Contains(t, reloaded.Platforms(), "Twitch")
	require.NotContains(t, reloaded.Regions(), "United States")
}
