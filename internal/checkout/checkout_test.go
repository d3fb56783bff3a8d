package checkout_test

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/doubleteemedia40-oss/doublet/internal/backend"
	"github.com/doubleteemedia40-oss/doublet/internal/backend/backendtest"
	"github.com/doubleteemedia40-oss/doublet/internal/checkout"
	"github.com/doubleteemedia40-oss/doublet/internal/state"
	"github.com/doubleteemedia40-oss/doublet/pkg/config"
	pkgerrors "github.com/doubleteemedia40-oss/doublet/pkg/errors"
	"github.com/doubleteemedia40-oss/doublet/pkg/logger"
)

type fixture struct {
	srv   *backendtest.Server
	store *state.Store
	svc   *checkout.Service
	now   *time.Time
}

func newFixture(t *testing.T, gateway backend.Gateway) *fixture {
	t.Helper()
	srv := backendtest.New()
	t.Cleanup(srv.Close)

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	client, err := backend.NewClient(config.APIConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, logg)
	require.NoError(t, err)

	st, err := state.New(state.Params{
		Client:      client,
		Logger:      logg,
		StoragePath: filepath.Join(t.TempDir(), "doublet-storage.json"),
	})
	require.NoError(t, err)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	fx := &fixture{srv: srv, store: st, now: &now}
	svc, err := checkout.NewService(checkout.Params{
		Store:   st,
		Client:  client,
		Logger:  logg,
		Gateway: gateway,
		Now:     func() time.Time { return *fx.now },
	})
	require.NoError(t, err)
	fx.svc = svc
	return fx
}

func (fx *fixture) fillCart() {
	fx.store.AddToCart(backend.Product{ID: "p-1", Name: "High Quality Indonesia Facebook", Price: 8500, Stock: 50}, 2)
}

func TestNewServiceValidation(t *testing.T) {
	fx := newFixture(t, backend.GatewayFlutterwave)

	_, err := checkout.NewService(checkout.Params{Client: nil, Store: fx.store})
	require.Error(t, err)

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	_, err = checkout.NewService(checkout.Params{
		Store: fx.store, Client: clientOf(t, fx), Logger: logg, Gateway: backend.Gateway("stripe"),
	})
	require.Error(t, err)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func clientOf(t *testing.T, fx *fixture) *backend.Client {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	client, err := backend.NewClient(config.APIConfig{BaseURL: fx.srv.URL, Timeout: 5 * time.Second}, logg)
	require.NoError(t, err)
	return client
}

func TestNewReferenceShape(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		ref := checkout.NewReference()
		require.True(t, strings.HasPrefix(ref, "DT-"))
		require.Len(t, ref, 3+24)
		require.False(t, seen[ref], "reference %s repeated", ref)
		seen[ref] = true
	}
}

func TestBeginRequiresItems(t *testing.T) {
	fx := newFixture(t, backend.GatewayFlutterwave)
	_, err := fx.svc.Begin(context.Background(), checkout.BeginInput{Customer: "Jo", Email: "jo@example.com"})
	require.Error(t, err)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestBeginComputesTotalsAndCreatesPendingOrder(t *testing.T) {
	fx := newFixture(t, backend.GatewayFlutterwave)
	fx.fillCart()

	saga, err := fx.svc.Begin(context.Background(), checkout.BeginInput{Customer: "Jo", Email: "jo@example.com"})
	require.NoError(t, err)
	require.Equal(t, checkout.StateCreated, saga.State())

	totals := saga.Totals()
	require.True(t, totals.Subtotal.Equal(decimal.NewFromInt(17000)), "subtotal %s", totals.Subtotal)
	require.True(t, totals.Tax.Equal(decimal.NewFromInt(1700)), "tax %s", totals.Tax)
	require.True(t, totals.Total.Equal(decimal.NewFromInt(18700)), "total %s", totals.Total)

	order := saga.Order()
	require.NotEmpty(t, order.ID)
	require.Equal(t, backend.OrderPending, order.Status)
	require.Equal(t, saga.Reference(), order.Reference)
	require.InDelta(t, 18700, order.Total, 0.001)

	// The Pending order is already in the store's order cache.
	require.Len(t, fx.store.Orders(), 1)
	// The cart survives until the payment is verified.
	require.Len(t, fx.store.CartItems(), 1)
}

func TestInitiateReturnsGatewayLink(t *testing.T) {
	for _, gateway := range []backend.Gateway{backend.GatewayFlutterwave, backend.GatewayPaystack} {
		t.Run(string(gateway), func(t *testing.T) {
			fx := newFixture(t, gateway)
			fx.fillCart()

			saga, err := fx.svc.Begin(context.Background(), checkout.BeginInput{Customer: "Jo", Email: "jo@example.com"})
			require.NoError(t, err)

			link, err := saga.Initiate(context.Background())
			require.NoError(t, err)
			require.Contains(t, link, string(gateway))
			require.Contains(t, link, saga.Reference())
			require.Equal(t, checkout.StatePaymentInitiated, saga.State())
			require.Equal(t, link, saga.RedirectURL())
		})
	}
}

func TestInitiateFailureLeavesOrderPending(t *testing.T) {
	fx := newFixture(t, backend.GatewayFlutterwave)
	fx.fillCart()

	saga, err := fx.svc.Begin(context.Background(), checkout.BeginInput{Customer: "Jo", Email: "jo@example.com"})
	require.NoError(t, err)

	fx.srv.Lock()
	fx.srv.FailInitiate = true
	fx.srv.Unlock()

	_, err = saga.Initiate(context.Background())
	require.Error(t, err)
	require.Equal(t, checkout.StateCreated, saga.State())
	require.Equal(t, backend.OrderPending, fx.store.Orders()[0].Status)

	// Manual retry works once the gateway recovers.
	fx.srv.Lock()
	fx.srv.FailInitiate = false
	fx.srv.Unlock()
	_, err = saga.Initiate(context.Background())
	require.NoError(t, err)
	require.Equal(t, checkout.StatePaymentInitiated, saga.State())
}

func TestVerifyOnce(t *testing.T) {
	fx := newFixture(t, backend.GatewayPaystack)
	fx.fillCart()
	ctx := context.Background()

	saga, err := fx.svc.Begin(ctx, checkout.BeginInput{Customer: "Jo", Email: "jo@example.com"})
	require.NoError(t, err)

	// Verification before initiation is an illegal transition.
	_, err = saga.VerifyOnce(ctx)
	require.Error(t, err)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	_, err = saga.Initiate(ctx)
	require.NoError(t, err)

	// Unknown reference: the poll errors and the saga keeps waiting.
	st, err := saga.VerifyOnce(ctx)
	require.Error(t, err)
	require.Equal(t, checkout.StatePaymentInitiated, st)

	// Paid but still unconfirmed keeps the saga open and the cart intact.
	fx.srv.Lock()
	fx.srv.Verifications[saga.Reference()] = backend.PaymentVerification{Paid: true, Status: backend.OrderPending}
	fx.srv.Unlock()
	st, err = saga.VerifyOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, checkout.StatePaymentInitiated, st)
	require.Len(t, fx.store.CartItems(), 1)

	// Confirmation lands: Verified, and only now is the cart cleared.
	fx.srv.Lock()
	fx.srv.Verifications[saga.Reference()] = backend.PaymentVerification{Paid: true, Status: backend.OrderProcessing}
	fx.srv.Unlock()
	st, err = saga.VerifyOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, checkout.StateVerified, st)
	require.Empty(t, fx.store.CartItems())

	// Terminal states accept no further calls.
	_, err = saga.VerifyOnce(ctx)
	require.Error(t, err)
	_, err = saga.Initiate(ctx)
	require.Error(t, err)
}

func TestVerifyOnceCancelledFails(t *testing.T) {
	fx := newFixture(t, backend.GatewayFlutterwave)
	fx.fillCart()
	ctx := context.Background()

	saga, err := fx.svc.Begin(ctx, checkout.BeginInput{Customer: "Jo", Email: "jo@example.com"})
	require.NoError(t, err)
	_, err = saga.Initiate(ctx)
	require.NoError(t, err)

	fx.srv.Lock()
	fx.srv.Verifications[saga.Reference()] = backend.PaymentVerification{Paid: false, Status: backend.OrderCancelled}
	fx.srv.Unlock()

	st, err := saga.VerifyOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, checkout.StateFailed, st)
	// A failed payment never touches the cart.
	require.Len(t, fx.store.CartItems(), 1)
}

func TestSagaExpires(t *testing.T) {
	fx := newFixture(t, backend.GatewayFlutterwave)
	fx.fillCart()
	ctx := context.Background()

	saga, err := fx.svc.Begin(ctx, checkout.BeginInput{Customer: "Jo", Email: "jo@example.com"})
	require.NoError(t, err)
	_, err = saga.Initiate(ctx)
	require.NoError(t, err)

	*fx.now = fx.now.Add(checkout.DefaultTTL + time.Minute)

	_, err = saga.VerifyOnce(ctx)
	require.Error(t, err)
	require.Equal(t, checkout.StateExpired, saga.State())
	_, err = saga.Initiate(ctx)
	require.Error(t, err)
}
