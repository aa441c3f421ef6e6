package gateway

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"go.lumeweb.com/checkout-bridge/internal/client/razorpay"
	"go.lumeweb.com/checkout-bridge/internal/domain"
	"go.uber.org/zap"
)

type stubOrders struct {
	data map[string]interface{}
	body map[string]interface{}
	err  error
}

func (s *stubOrders) Create(data map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	s.data = data
	return s.body, s.err
}

func newTestRazorpay(orders *stubOrders) *Razorpay {
	client := razorpay.NewClientWithOrders("rzp_test_key", orders, zap.NewNop())
	return NewRazorpay(client, "whsec", "rcpt_", nil)
}

func TestRazorpay_CreateOrder(t *testing.T) {
	orders := &stubOrders{body: map[string]interface{}{"id": "order_123", "amount": float64(9900), "currency": "INR"}}
	gw := newTestRazorpay(orders)

	intent, err := gw.CreateOrder(context.Background(), OrderRequest{Email: "a@b.com", Amount: 9900, Currency: "INR"})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	if intent.OrderID != "order_123" || intent.Amount != 9900 || intent.ClientKey != "rzp_test_key" {
		t.Errorf("intent = %+v", intent)
	}

	receipt, _ := orders.data["receipt"].(string)
	if !strings.HasPrefix(receipt, "rcpt_") || len(receipt) > 40 {
		t.Errorf("receipt = %q", receipt)
	}
}

func TestRazorpay_CreateOrderFailure(t *testing.T) {
	gw := newTestRazorpay(&stubOrders{err: errors.New("authentication failed")})

	if _, err := gw.CreateOrder(context.Background(), OrderRequest{Email: "a@b.com", Amount: 9900, Currency: "INR"}); err == nil {
		t.Fatal("CreateOrder() error = nil")
	}
}

func TestRazorpay_VerifyWebhook(t *testing.T) {
	gw := newTestRazorpay(&stubOrders{})
	body := []byte(`{"event":"payment.captured"}`)

	header := http.Header{}
	header.Set(RazorpaySignatureHeader, SignHMACSHA256(body, "whsec"))
	if err := gw.VerifyWebhook(body, header); err != nil {
		t.Errorf("VerifyWebhook() error = %v", err)
	}

	header.Set(RazorpaySignatureHeader, SignHMACSHA256(body, "forged"))
	if err := gw.VerifyWebhook(body, header); !errors.Is(err, domain.ErrSignatureMismatch) {
		t.Errorf("VerifyWebhook() error = %v, want ErrSignatureMismatch", err)
	}
}

func TestRazorpay_ParseEvent(t *testing.T) {
	gw := newTestRazorpay(&stubOrders{})

	tests := []struct {
		name        string
		body        string
		wantOrder   string
		wantSuccess bool
		wantErr     error
	}{
		{
			name:        "captured",
			body:        `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_123","notes":[]}}}}`,
			wantOrder:   "order_123",
			wantSuccess: true,
		},
		{
			name:      "failed payment",
			body:      `{"event":"payment.failed","payload":{"payment":{"entity":{"order_id":"order_123"}}}}`,
			wantOrder: "order_123",
		},
		{
			name:      "order paid uses order entity",
			body:      `{"event":"order.paid","payload":{"order":{"entity":{"id":"order_9"}}}}`,
			wantOrder: "order_9",
		},
		{name: "not json", body: `event=payment.captured`, wantErr: domain.ErrMalformedPayload},
		{name: "no event", body: `{"payload":{}}`, wantErr: domain.ErrMalformedPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := gw.ParseEvent([]byte(tt.body))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseEvent() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseEvent() error = %v", err)
			}
			if event.OrderID != tt.wantOrder || event.Success != tt.wantSuccess {
				t.Errorf("event = %+v", event)
			}
		})
	}
}

func TestRazorpay_CustomSuccessEvents(t *testing.T) {
	client := razorpay.NewClientWithOrders("key", &stubOrders{}, zap.NewNop())
	gw := NewRazorpay(client, "whsec", "rcpt_", []string{razorpay.EventOrderPaid})

	event, err := gw.ParseEvent([]byte(`{"event":"order.paid","payload":{"order":{"entity":{"id":"order_9"}}}}`))
	if err != nil {
		t.Fatal(err)
	}
	if !event.Success {
		t.Error("order.paid not treated as success")
	}
}
