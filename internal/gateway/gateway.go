package gateway

import (
	"context"
	"fmt"
	"net/http"

	"go.lumeweb.com/checkout-bridge/internal/client/phonepe"
	"go.lumeweb.com/checkout-bridge/internal/client/razorpay"
	"go.lumeweb.com/checkout-bridge/internal/config"
	"go.lumeweb.com/checkout-bridge/internal/domain"
	"go.uber.org/zap"
)

// Gateway is the capability a payment provider has to offer. Adding a
// provider means implementing this interface; the order and webhook flow is
// shared.
type Gateway interface {
	Name() string

	// ClientKey is the publishable identifier rendered to the buyer.
	ClientKey() string

	// CreateOrder asks the provider for a payment intent bound to req.Email.
	CreateOrder(ctx context.Context, req OrderRequest) (*OrderIntent, error)

	// VerifyWebhook authenticates the exact bytes received. It must run
	// before anything in body is trusted.
	VerifyWebhook(body []byte, header http.Header) error

	// ParseEvent extracts the event from a verified body.
	ParseEvent(body []byte) (*domain.PaymentEvent, error)
}

type OrderRequest struct {
	Email    string
	Amount   int64
	Currency string
}

// OrderIntent is what the client needs to complete payment.
type OrderIntent struct {
	OrderID  string
	Amount   int64
	Currency string
	// ClientKey is the publishable key for the provider's payment widget.
	ClientKey string
	// RedirectURL is set by redirect-based providers.
	RedirectURL string
}

// New builds the gateway selected by cfg.Gateway.Provider.
func New(cfg *config.Config, logger *zap.Logger) (Gateway, error) {
	switch cfg.Gateway.Provider {
	case config.GatewayRazorpay:
		client := razorpay.NewClient(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, logger.Named("razorpay-client"))
		return NewRazorpay(client, cfg.Razorpay.WebhookSecret, cfg.Gateway.ReceiptPrefix, cfg.Razorpay.SuccessEvents), nil
	case config.GatewayPhonePe:
		client := phonepe.NewClient(phonepe.ClientConfig{
			BaseURL:        cfg.PhonePe.Host,
			MerchantID:     cfg.PhonePe.MerchantID,
			SaltKey:        cfg.PhonePe.SaltKey,
			SaltIndex:      cfg.PhonePe.SaltIndex,
			MaxRetries:     cfg.PhonePe.MaxRetries,
			RetryDelay:     cfg.PhonePe.RetryDelay,
			RequestTimeout: cfg.Gateway.RequestTimeout,
		}, logger.Named("phonepe-client"))
		return NewPhonePe(client, cfg.PhonePe.SaltKey, cfg.PhonePe.SaltIndex, cfg.PhonePe.RedirectURL, cfg.PhonePe.CallbackURL), nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedGateway, cfg.Gateway.Provider)
	}
}
