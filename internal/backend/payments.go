package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	pkgerrors "github.com/doubleteemedia40-oss/doublet/pkg/errors"
)

var gatewayPaths = map[Gateway]string{
	GatewayFlutterwave: "/api/payments/flutterwave/initiate",
	GatewayPaystack:    "/api/payments/paystack/initiate",
}

// InitiatePaymentInput correlates a payment attempt with its order through
// the client-generated reference.
type InitiatePaymentInput struct {
	Amount    float64        `json:"amount"`
	Email     string         `json:"email"`
	Reference string         `json:"reference"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// InitiatePayment asks the backend to open a hosted checkout session with the
// selected gateway and returns its redirect URL.
func (c *Client) InitiatePayment(ctx context.Context, gateway Gateway, input InitiatePaymentInput) (*PaymentSession, error) {
	path, ok := gatewayPaths[gateway]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported payment gateway %q", gateway))
	}

	var out struct {
		Data struct {
			Link             string `json:"link"`
			AuthorizationURL string `json:"authorization_url"`
		} `json:"data"`
	}
	err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    path,
		body:    input,
		op:      "initiate_payment",
		failMsg: "Failed to initiate payment",
	}, &out)
	if err != nil {
		return nil, err
	}

	link := out.Data.Link
	if link == "" {
		link = out.Data.AuthorizationURL
	}
	if link == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "Payment provider error")
	}
	return &PaymentSession{Link: link}, nil
}

// VerifyPayment polls the verify endpoint once for the given reference.
func (c *Client) VerifyPayment(ctx context.Context, reference string) (*PaymentVerification, error) {
	var out PaymentVerification
	err := c.do(ctx, request{
		method:  http.MethodGet,
		path:    "/api/payments/verify/" + url.PathEscape(reference),
		op:      "verify_payment",
		failMsg: "Failed to verify payment",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
