package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.lumeweb.com/checkout-bridge/internal/client/phonepe"
	"go.lumeweb.com/checkout-bridge/internal/config"
	"go.lumeweb.com/checkout-bridge/internal/domain"
)

var _ Gateway = (*PhonePe)(nil)

// PhonePe implements the checksum redirect flow. The merchant transaction id
// generated here is the order id.
type PhonePe struct {
	client      *phonepe.Client
	saltKey     string
	saltIndex   int
	redirectURL string
	callbackURL string
}

func NewPhonePe(client *phonepe.Client, saltKey string, saltIndex int, redirectURL, callbackURL string) *PhonePe {
	return &PhonePe{
		client:      client,
		saltKey:     saltKey,
		saltIndex:   saltIndex,
		redirectURL: redirectURL,
		callbackURL: callbackURL,
	}
}

func (p *PhonePe) Name() string {
	return config.GatewayPhonePe
}

func (p *PhonePe) ClientKey() string {
	return p.client.MerchantID()
}

func (p *PhonePe) CreateOrder(ctx context.Context, req OrderRequest) (*OrderIntent, error) {
	txnID := uuid.NewString()

	resp, err := p.client.Pay(ctx, &phonepe.PaymentRequest{
		MerchantTransactionID: txnID,
		MerchantUserID:        req.Email,
		Amount:                req.Amount,
		RedirectURL:           p.redirectURL,
		RedirectMode:          http.MethodPost,
		CallbackURL:           p.callbackURL,
		PaymentInstrument:     phonepe.PaymentInstrument{Type: "PAY_PAGE"},
	})
	if err != nil {
		return nil, err
	}

	return &OrderIntent{
		OrderID:     txnID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		ClientKey:   p.client.MerchantID(),
		RedirectURL: resp.Data.InstrumentResponse.RedirectInfo.URL,
	}, nil
}

// VerifyWebhook checks X-VERIFY against the base64 response field. The field
// is taken from the received document as is; only its JSON string escaping is
// undone.
func (p *PhonePe) VerifyWebhook(body []byte, header http.Header) error {
	if len(body) == 0 {
		return domain.ErrEmptyPayload
	}

	checksum := header.Get(phonepe.VerifyHeader)
	if checksum == "" {
		return domain.ErrMissingSignature
	}

	envelope, err := decodeEnvelope(body)
	if err != nil {
		return err
	}

	expected := phonepe.Checksum(envelope.Response, "", p.saltKey, p.saltIndex)
	if !constantTimeEqual(checksum, expected) {
		return domain.ErrSignatureMismatch
	}

	return nil
}

func (p *PhonePe) ParseEvent(body []byte) (*domain.PaymentEvent, error) {
	envelope, err := decodeEnvelope(body)
	if err != nil {
		return nil, err
	}

	decoded, err := base64.StdEncoding.DecodeString(envelope.Response)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	var payload phonepe.CallbackPayload
	if err := json.Unmarshal(decoded, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	return &domain.PaymentEvent{
		Type:      payload.Code,
		OrderID:   payload.Data.MerchantTransactionID,
		PaymentID: payload.Data.TransactionID,
		Success:   payload.Success && payload.Code == phonepe.CodePaymentSuccess,
	}, nil
}

func decodeEnvelope(body []byte) (*phonepe.CallbackEnvelope, error) {
	var envelope phonepe.CallbackEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	if envelope.Response == "" {
		return nil, fmt.Errorf("%w: missing response", domain.ErrMalformedPayload)
	}

	return &envelope, nil
}
