package service

import (
	"context"
	"net/http"

	"go.lumeweb.com/checkout-bridge/internal/api/messages"
	"go.lumeweb.com/checkout-bridge/internal/domain"
	"go.lumeweb.com/checkout-bridge/internal/service"
)

const (
	ORDER_SERVICE       = service.ORDER_SERVICE
	WEBHOOK_SERVICE     = service.WEBHOOK_SERVICE
	FULFILLMENT_SERVICE = service.FULFILLMENT_SERVICE
	CUSTOMER_SERVICE    = service.CUSTOMER_SERVICE
)

var (
	_ OrderService       = (*service.OrderServiceDefault)(nil)
	_ WebhookService     = (*service.WebhookServiceDefault)(nil)
	_ FulfillmentService = (*service.FulfillmentServiceDefault)(nil)
	_ CustomerService    = (*service.CustomerServiceDefault)(nil)
)

// ErrWebhookRejected is wrapped by HandleWebhook errors caused by the request
// itself rather than by this service.
var ErrWebhookRejected = service.ErrWebhookRejected

type OrderService interface {
	ID() string

	// CreateOrder creates a gateway order for email and records it.
	CreateOrder(ctx context.Context, email string) (*messages.CreateOrderResponse, error)

	// Gateway names the payment provider in use.
	Gateway() string

	// ClientKey is the gateway's publishable key.
	ClientKey() string

	// Amount is the configured charge in minor units.
	Amount() int64

	Currency() string
}

type WebhookService interface {
	ID() string

	// HandleWebhook verifies and processes a webhook body exactly as received.
	HandleWebhook(ctx context.Context, body []byte, header http.Header) (*domain.WebhookResult, error)
}

type FulfillmentService interface {
	ID() string

	// Dispatch delivers the product for order and reports the outcome.
	Dispatch(ctx context.Context, order *domain.PaymentOrder) error

	// Fulfill delivers the product for order, logging failures.
	Fulfill(ctx context.Context, order *domain.PaymentOrder, claimed bool)

	// Close waits for in-flight deliveries.
	Close(ctx context.Context) error
}

type CustomerService interface {
	ID() string

	Start(ctx context.Context) error

	// EnsureCustomer creates a billing account for email if none exists.
	EnsureCustomer(ctx context.Context, email string) error
}
