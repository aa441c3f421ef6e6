package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.lumeweb.com/checkout-bridge/internal/client/razorpay"
	"go.lumeweb.com/checkout-bridge/internal/config"
	"go.lumeweb.com/checkout-bridge/internal/domain"
)

const RazorpaySignatureHeader = "X-Razorpay-Signature"

var _ Gateway = (*Razorpay)(nil)

type Razorpay struct {
	client        *razorpay.Client
	webhookSecret string
	receiptPrefix string
	successEvents []string
}

func NewRazorpay(client *razorpay.Client, webhookSecret, receiptPrefix string, successEvents []string) *Razorpay {
	if len(successEvents) == 0 {
		successEvents = []string{razorpay.EventPaymentCaptured}
	}

	return &Razorpay{
		client:        client,
		webhookSecret: webhookSecret,
		receiptPrefix: receiptPrefix,
		successEvents: successEvents,
	}
}

func (r *Razorpay) Name() string {
	return config.GatewayRazorpay
}

func (r *Razorpay) ClientKey() string {
	return r.client.KeyID()
}

func (r *Razorpay) CreateOrder(ctx context.Context, req OrderRequest) (*OrderIntent, error) {
	order, err := r.client.CreateOrder(ctx, &razorpay.OrderRequest{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  r.receipt(),
		Notes:    map[string]string{"email": req.Email},
	})
	if err != nil {
		return nil, err
	}

	return &OrderIntent{
		OrderID:   order.ID,
		Amount:    lo.Ternary(order.Amount > 0, order.Amount, req.Amount),
		Currency:  lo.Ternary(order.Currency != "", order.Currency, req.Currency),
		ClientKey: r.client.KeyID(),
	}, nil
}

// receipt is limited to 40 characters by the provider.
func (r *Razorpay) receipt() string {
	receipt := r.receiptPrefix + uuid.NewString()
	if len(receipt) > 40 {
		receipt = receipt[:40]
	}
	return receipt
}

func (r *Razorpay) VerifyWebhook(body []byte, header http.Header) error {
	return VerifyHMACSHA256(body, header.Get(RazorpaySignatureHeader), r.webhookSecret)
}

func (r *Razorpay) ParseEvent(body []byte) (*domain.PaymentEvent, error) {
	var event razorpay.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	if event.Event == "" {
		return nil, fmt.Errorf("%w: missing event type", domain.ErrMalformedPayload)
	}

	return &domain.PaymentEvent{
		Type:      event.Event,
		OrderID:   event.OrderID(),
		PaymentID: event.PaymentID(),
		Success:   lo.Contains(r.successEvents, event.Event),
	}, nil
}
