// Package checkout runs the payment flow as an explicit saga. Each checkout
// owns one correlation reference; the order is created before any gateway
// call, payment initiation yields a hosted redirect URL, and verification is
// a one-shot poll per call. A failed initiation leaves the order Pending for
// a manual retry; nothing is ever rolled back automatically.
package checkout

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/doubleteemedia40-oss/doublet/internal/backend"
	"github.com/doubleteemedia40-oss/doublet/internal/state"
	pkgerrors "github.com/doubleteemedia40-oss/doublet/pkg/errors"
	"github.com/doubleteemedia40-oss/doublet/pkg/logger"
	"github.com/doubleteemedia40-oss/doublet/pkg/money"
)

// State is a saga phase. Transitions only move forward:
// Created -> PaymentInitiated -> Verified | Failed, and either of the first
// two phases may lapse to Expired once the saga deadline passes.
type State string

const (
	StateCreated          State = "created"
	StatePaymentInitiated State = "payment_initiated"
	StateVerified         State = "verified"
	StateFailed           State = "failed"
	StateExpired          State = "expired"
)

// DefaultTTL bounds how long a saga accepts initiate and verify calls.
const DefaultTTL = 30 * time.Minute

// Service begins checkout sagas against one configured gateway.
type Service struct {
	store   *state.Store
	client  *backend.Client
	logger  *logger.Logger
	gateway backend.Gateway
	ttl     time.Duration
	now     func() time.Time
}

// Params wires the service dependencies.
type Params struct {
	Store   *state.Store
	Client  *backend.Client
	Logger  *logger.Logger
	Gateway backend.Gateway

	// TTL defaults to DefaultTTL; Now defaults to time.Now.
	TTL time.Duration
	Now func() time.Time
}

// NewService validates the wiring and returns a checkout service.
func NewService(params Params) (*Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "state store required")
	}
	if params.Client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "backend client required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	if params.Gateway != backend.GatewayFlutterwave && params.Gateway != backend.GatewayPaystack {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported payment gateway %q", params.Gateway))
	}

	ttl := params.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:   params.Store,
		client:  params.Client,
		logger:  params.Logger,
		gateway: params.Gateway,
		ttl:     ttl,
		now:     now,
	}, nil
}

// NewReference mints a payment correlation reference: "DT-" plus 12 random
// bytes in hex.
func NewReference() string {
	u := uuid.New()
	return "DT-" + hex.EncodeToString(u[:12])
}

// Saga is one in-flight checkout. Methods are safe for concurrent use.
type Saga struct {
	svc *Service

	mu        sync.Mutex
	state     State
	reference string
	order     backend.Order
	totals    money.Totals
	email     string
	link      string
	deadline  time.Time
}

// BeginInput names the buyer for the order record.
type BeginInput struct {
	Customer string `json:"customer" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
}

// Begin snapshots the cart into a Pending order on the backend and opens the
// saga. The cart must not be empty. If order creation fails the saga never
// starts and no payment call is made.
func (s *Service) Begin(ctx context.Context, input BeginInput) (*Saga, error) {
	items := s.store.CartItems()
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	lines := make([]money.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, money.Line{Price: item.Price, Quantity: item.Quantity})
	}
	totals := money.Calculate(lines)

	reference := NewReference()
	now := s.now()
	orderInput := backend.OrderInput{
		Customer:  input.Customer,
		Email:     input.Email,
		Items:     items,
		Total:     totals.TotalAmount(),
		Status:    backend.OrderPending,
		Date:      now.UTC().Format(time.RFC3339),
		Reference: reference,
	}
	if user := s.store.User(); user != nil {
		orderInput.UserID = user.ID
	}

	order, err := s.store.CreateOrder(ctx, orderInput)
	if err != nil {
		return nil, err
	}

	s.logger.Info(s.logger.WithReference(ctx, reference), "checkout saga opened")
	return &Saga{
		svc:       s,
		state:     StateCreated,
		reference: reference,
		order:     *order,
		totals:    totals,
		email:     input.Email,
		deadline:  now.Add(s.ttl),
	}, nil
}

// Initiate opens a hosted checkout session with the gateway and returns the
// redirect URL. Allowed from Created, and again from PaymentInitiated when
// the buyer needs a fresh link. On failure the saga stays where it was and
// the order remains Pending.
func (s *Saga) Initiate(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.lapsedLocked() {
		s.mu.Unlock()
		return "", s.expiredError()
	}
	if s.state != StateCreated && s.state != StatePaymentInitiated {
		st := s.state
		s.mu.Unlock()
		return "", transitionError(st, StatePaymentInitiated)
	}
	amount := s.totals.TotalAmount()
	email := s.email
	reference := s.reference
	orderID := s.order.ID
	s.mu.Unlock()

	session, err := s.svc.client.InitiatePayment(ctx, s.svc.gateway, backend.InitiatePaymentInput{
		Amount:    amount,
		Email:     email,
		Reference: reference,
		Metadata:  map[string]any{"orderId": orderID},
	})
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.state = StatePaymentInitiated
	s.link = session.Link
	s.mu.Unlock()
	return session.Link, nil
}

// VerifyOnce polls the verify endpoint a single time. A confirmed payment
// moves the saga to Verified and clears the cart; an explicit cancellation
// moves it to Failed; anything else leaves it awaiting another poll.
func (s *Saga) VerifyOnce(ctx context.Context) (State, error) {
	s.mu.Lock()
	if s.lapsedLocked() {
		st := s.state
		s.mu.Unlock()
		return st, s.expiredError()
	}
	if s.state != StatePaymentInitiated {
		st := s.state
		s.mu.Unlock()
		return st, transitionError(st, StateVerified)
	}
	reference := s.reference
	s.mu.Unlock()

	verification, err := s.svc.client.VerifyPayment(ctx, reference)
	if err != nil {
		return StatePaymentInitiated, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case verification.Confirmed():
		s.state = StateVerified
		s.svc.store.ClearCart()
		s.svc.logger.Info(s.svc.logger.WithReference(ctx, reference), "payment verified")
	case !verification.Paid && verification.Status == backend.OrderCancelled:
		s.state = StateFailed
		s.svc.logger.Warn(s.svc.logger.WithReference(ctx, reference), "payment cancelled")
	}
	return s.state, nil
}

// State returns the current saga phase, lapsing to Expired when the deadline
// has passed before a terminal phase was reached.
func (s *Saga) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lapsedLocked()
	return s.state
}

// Reference returns the payment correlation reference.
func (s *Saga) Reference() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reference
}

// Order returns the Pending order created at Begin.
func (s *Saga) Order() backend.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order
}

// Totals returns the decimal breakdown charged for this checkout.
func (s *Saga) Totals() money.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals
}

// RedirectURL returns the last hosted checkout link, empty before Initiate.
func (s *Saga) RedirectURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.link
}

func (s *Saga) lapsedLocked() bool {
	if s.state == StateCreated || s.state == StatePaymentInitiated {
		if s.svc.now().After(s.deadline) {
			s.state = StateExpired
			return true
		}
	}
	return s.state == StateExpired
}

func (s *Saga) expiredError() error {
	return pkgerrors.New(pkgerrors.CodeConflict, "checkout session expired")
}

func transitionError(from, to State) error {
	return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("illegal checkout transition %s -> %s", from, to))
}
