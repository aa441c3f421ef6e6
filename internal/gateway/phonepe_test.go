package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.lumeweb.com/checkout-bridge/internal/client/phonepe"
	"go.lumeweb.com/checkout-bridge/internal/domain"
	"go.uber.org/zap"
)

func newTestPhonePe(baseURL string) *PhonePe {
	client := phonepe.NewClient(phonepe.ClientConfig{
		BaseURL:        baseURL,
		MerchantID:     "MERCHANTUAT",
		SaltKey:        "salt",
		SaltIndex:      1,
		RetryDelay:     time.Millisecond,
		RequestTimeout: time.Second,
	}, zap.NewNop())

	return NewPhonePe(client, "salt", 1, "https://shop.example.com/return", "https://shop.example.com/callback")
}

func callbackBody(t *testing.T, payload phonepe.CallbackPayload) ([]byte, string) {
	t.Helper()

	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	encoded := base64.StdEncoding.EncodeToString(raw)

	body, err := json.Marshal(phonepe.CallbackEnvelope{Response: encoded})
	if err != nil {
		t.Fatal(err)
	}

	return body, phonepe.Checksum(encoded, "", "salt", 1)
}

func TestPhonePe_CreateOrder(t *testing.T) {
	var sent phonepe.PaymentRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var envelope phonepe.PayEnvelope
		_ = json.NewDecoder(r.Body).Decode(&envelope)
		decoded, _ := base64.StdEncoding.DecodeString(envelope.Request)
		_ = json.Unmarshal(decoded, &sent)

		_, _ = w.Write([]byte(`{"success":true,"data":{"instrumentResponse":{"redirectInfo":{"url":"https://pay.example.com/txn"}}}}`))
	}))
	defer server.Close()

	intent, err := newTestPhonePe(server.URL).CreateOrder(context.Background(), OrderRequest{Email: "a@b.com", Amount: 9900, Currency: "INR"})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	if intent.RedirectURL != "https://pay.example.com/txn" {
		t.Errorf("RedirectURL = %q", intent.RedirectURL)
	}
	if intent.OrderID == "" || intent.OrderID != sent.MerchantTransactionID {
		t.Errorf("OrderID = %q, sent transaction id %q", intent.OrderID, sent.MerchantTransactionID)
	}
	if sent.MerchantUserID != "a@b.com" || sent.RedirectMode != http.MethodPost || sent.PaymentInstrument.Type != "PAY_PAGE" {
		t.Errorf("payload = %+v", sent)
	}
}

func TestPhonePe_Webhook(t *testing.T) {
	gw := newTestPhonePe("http://unused")

	body, checksum := callbackBody(t, phonepe.CallbackPayload{
		Success: true,
		Code:    phonepe.CodePaymentSuccess,
		Data:    phonepe.CallbackData{MerchantTransactionID: "txn-1", TransactionID: "T1", State: "COMPLETED"},
	})

	header := http.Header{}
	header.Set(phonepe.VerifyHeader, checksum)

	if err := gw.VerifyWebhook(body, header); err != nil {
		t.Fatalf("VerifyWebhook() error = %v", err)
	}

	event, err := gw.ParseEvent(body)
	if err != nil {
		t.Fatalf("ParseEvent() error = %v", err)
	}
	if !event.Success || event.OrderID != "txn-1" || event.PaymentID != "T1" {
		t.Errorf("event = %+v", event)
	}
}

func TestPhonePe_WebhookRejected(t *testing.T) {
	gw := newTestPhonePe("http://unused")

	body, _ := callbackBody(t, phonepe.CallbackPayload{Success: true, Code: phonepe.CodePaymentSuccess})
	forged := phonepe.Checksum("other", "", "salt", 1)

	tests := []struct {
		name    string
		body    []byte
		header  string
		wantErr error
	}{
		{name: "forged checksum", body: body, header: forged, wantErr: domain.ErrSignatureMismatch},
		{name: "missing header", body: body, wantErr: domain.ErrMissingSignature},
		{name: "empty body", header: forged, wantErr: domain.ErrEmptyPayload},
		{name: "no response field", body: []byte(`{}`), header: forged, wantErr: domain.ErrMalformedPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.header != "" {
				header.Set(phonepe.VerifyHeader, tt.header)
			}
			if err := gw.VerifyWebhook(tt.body, header); !errors.Is(err, tt.wantErr) {
				t.Errorf("VerifyWebhook() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPhonePe_FailedPaymentIsNotSuccess(t *testing.T) {
	gw := newTestPhonePe("http://unused")

	body, _ := callbackBody(t, phonepe.CallbackPayload{
		Success: false,
		Code:    "PAYMENT_ERROR",
		Data:    phonepe.CallbackData{MerchantTransactionID: "txn-2"},
	})

	event, err := gw.ParseEvent(body)
	if err != nil {
		t.Fatal(err)
	}
	if event.Success {
		t.Error("failed payment treated as success")
	}
}
