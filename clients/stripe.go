package clients

import (
	"sync"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/tourvia/booking-service/config"
)

// CheckoutGatewayWrapper provides an interface for hosted checkout
// operations. This interface allows for easier testing by mocking the
// gateway interactions.
type CheckoutGatewayWrapper interface {
	CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// StripeClient implements CheckoutGatewayWrapper using the Stripe SDK.
type StripeClient struct {
	API *client.API
}

// NewStripeClient initializes the underlying SDK client with the secret
// key selected for the active gateway mode.
func NewStripeClient(secretKey string) *StripeClient {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeClient{API: api}
}

// CreateCheckoutSession creates a hosted checkout session. The session
// carries the line items, the success/cancel URLs and the reservation
// identifier as client_reference_id.
func (s *StripeClient) CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return s.API.CheckoutSessions.New(params)
}

var (
	gatewayClient *StripeClient
	gatewayOnce   sync.Once
)

// GetCheckoutGateway returns a singleton gateway client for the given
// credential. The once guard keeps the SDK client from being rebuilt on
// every route registration.
func GetCheckoutGateway(cfg *config.GatewayConfig) *StripeClient {
	gatewayOnce.Do(func() {
		gatewayClient = NewStripeClient(cfg.SecretKey)
	})
	return gatewayClient
}
