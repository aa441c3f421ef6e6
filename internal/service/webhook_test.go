package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"go.lumeweb.com/checkout-bridge/internal/config"
	"go.lumeweb.com/checkout-bridge/internal/domain"
	"go.lumeweb.com/checkout-bridge/internal/gateway"
	"go.lumeweb.com/checkout-bridge/internal/store"
	"go.uber.org/zap"
)

const capturedOrder123 = `{"event":"payment.captured","payload":{"payment":{"entity":{"order_id":"order_123"}}}}`

type harness struct {
	orders      store.OrderStore
	sender      *recordingSender
	orderSvc    *OrderServiceDefault
	webhookSvc  *WebhookServiceDefault
	fulfillment *FulfillmentServiceDefault
}

func newHarness(t *testing.T, idempotent, async bool) *harness {
	t.Helper()

	gw := &fakeGateway{orderID: "order_123"}
	orders := store.NewMemoryStore()
	sender := &recordingSender{}

	fulfillment := NewFulfillmentService(sender, orders, nil, config.MailConfig{
		Username:   "shop@example.com",
		Subject:    "Your CodeSage Master Notes",
		Attachment: "master_notes.pdf",
	}, config.FulfillmentConfig{Async: async, Idempotent: idempotent, Timeout: time.Second}, zap.NewNop())

	return &harness{
		orders:      orders,
		sender:      sender,
		orderSvc:    NewOrderService(gw, orders, testGatewayConfig(), zap.NewNop()),
		webhookSvc:  NewWebhookService(gw, orders, fulfillment, idempotent, zap.NewNop()),
		fulfillment: fulfillment,
	}
}

func signed(body string) http.Header {
	header := http.Header{}
	header.Set("X-Test-Signature", gateway.SignHMACSHA256([]byte(body), testSecret))
	return header
}

func (h *harness) deliver(t *testing.T, body string, header http.Header) (*domain.WebhookResult, error) {
	t.Helper()
	return h.webhookSvc.HandleWebhook(context.Background(), []byte(body), header)
}

func (h *harness) drain(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := h.fulfillment.Close(ctx); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestWebhook_OrderThenCapturedDispatchesOnce(t *testing.T) {
	h := newHarness(t, true, true)

	resp, err := h.orderSvc.CreateOrder(context.Background(), "a@b.com")
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	if resp.OrderID != "order_123" {
		t.Fatalf("OrderID = %q, want order_123", resp.OrderID)
	}

	result, err := h.deliver(t, capturedOrder123, signed(capturedOrder123))
	if err != nil {
		t.Fatalf("HandleWebhook() error = %v", err)
	}
	if result.Outcome != domain.WebhookDispatched {
		t.Errorf("Outcome = %q, want dispatched", result.Outcome)
	}

	h.drain(t)

	got := h.sender.recipients()
	if len(got) != 1 || got[0] != "a@b.com" {
		t.Errorf("dispatches = %v, want [a@b.com]", got)
	}

	order, _ := h.orders.Lookup(context.Background(), "order_123")
	if !order.Fulfilled() {
		t.Error("order not marked fulfilled")
	}
}

func TestWebhook_BadSignatureNeverDispatches(t *testing.T) {
	h := newHarness(t, true, false)

	if _, err := h.orderSvc.CreateOrder(context.Background(), "a@b.com"); err != nil {
		t.Fatal(err)
	}

	forged := http.Header{}
	forged.Set("X-Test-Signature", gateway.SignHMACSHA256([]byte(capturedOrder123), "attacker"))

	tests := []struct {
		name    string
		body    string
		header  http.Header
		wantErr error
	}{
		{name: "forged", body: capturedOrder123, header: forged, wantErr: domain.ErrSignatureMismatch},
		{name: "missing", body: capturedOrder123, header: http.Header{}, wantErr: domain.ErrMissingSignature},
		{name: "empty body", body: "", header: signed("x"), wantErr: domain.ErrEmptyPayload},
		{name: "tampered", body: `{"event":"payment.captured","payload":{"payment":{"entity":{"order_id":"order_999"}}}}`, header: signed(capturedOrder123), wantErr: domain.ErrSignatureMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.deliver(t, tt.body, tt.header)
			if !errors.Is(err, ErrWebhookRejected) || !errors.Is(err, tt.wantErr) {
				t.Errorf("HandleWebhook() error = %v, want rejected %v", err, tt.wantErr)
			}
		})
	}

	if got := h.sender.recipients(); len(got) != 0 {
		t.Errorf("dispatches = %v, want none", got)
	}
}

func TestWebhook_UnknownOrderAcknowledged(t *testing.T) {
	h := newHarness(t, true, false)
	body := `{"event":"payment.captured","payload":{"payment":{"entity":{"order_id":"order_never"}}}}`

	result, err := h.deliver(t, body, signed(body))
	if err != nil {
		t.Fatalf("HandleWebhook() error = %v", err)
	}
	if result.Outcome != domain.WebhookUnresolved {
		t.Errorf("Outcome = %q, want unresolved", result.Outcome)
	}
	if got := h.sender.recipients(); len(got) != 0 {
		t.Errorf("dispatches = %v, want none", got)
	}
}

func TestWebhook_NonSuccessEventIgnored(t *testing.T) {
	h := newHarness(t, true, false)

	if _, err := h.orderSvc.CreateOrder(context.Background(), "a@b.com"); err != nil {
		t.Fatal(err)
	}

	body := `{"event":"payment.failed","payload":{"payment":{"entity":{"order_id":"order_123"}}}}`
	result, err := h.deliver(t, body, signed(body))
	if err != nil {
		t.Fatalf("HandleWebhook() error = %v", err)
	}
	if result.Outcome != domain.WebhookIgnored {
		t.Errorf("Outcome = %q, want ignored", result.Outcome)
	}
	if got := h.sender.recipients(); len(got) != 0 {
		t.Errorf("dispatches = %v, want none", got)
	}
}

func TestWebhook_MalformedVerifiedPayloadRejected(t *testing.T) {
	h := newHarness(t, true, false)
	body := `not json`

	if _, err := h.deliver(t, body, signed(body)); !errors.Is(err, domain.ErrMalformedPayload) {
		t.Errorf("HandleWebhook() error = %v, want ErrMalformedPayload", err)
	}
}

// Without idempotency a redelivered event is fulfilled twice.
func TestWebhook_DuplicateDeliveryWithoutIdempotency(t *testing.T) {
	h := newHarness(t, false, false)

	if _, err := h.orderSvc.CreateOrder(context.Background(), "a@b.com"); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		result, err := h.deliver(t, capturedOrder123, signed(capturedOrder123))
		if err != nil {
			t.Fatalf("delivery %d error = %v", i, err)
		}
		if result.Outcome != domain.WebhookDispatched {
			t.Errorf("delivery %d outcome = %q", i, result.Outcome)
		}
	}

	if got := h.sender.recipients(); len(got) != 2 {
		t.Errorf("dispatches = %v, want two", got)
	}
}

func TestWebhook_DuplicateDeliveryIdempotent(t *testing.T) {
	h := newHarness(t, true, false)

	if _, err := h.orderSvc.CreateOrder(context.Background(), "a@b.com"); err != nil {
		t.Fatal(err)
	}

	first, err := h.deliver(t, capturedOrder123, signed(capturedOrder123))
	if err != nil {
		t.Fatal(err)
	}
	second, err := h.deliver(t, capturedOrder123, signed(capturedOrder123))
	if err != nil {
		t.Fatal(err)
	}

	if first.Outcome != domain.WebhookDispatched || second.Outcome != domain.WebhookDuplicate {
		t.Errorf("outcomes = %q, %q", first.Outcome, second.Outcome)
	}
	if got := h.sender.recipients(); len(got) != 1 {
		t.Errorf("dispatches = %v, want one", got)
	}
}

func TestWebhook_ConcurrentDuplicateDeliveryIdempotent(t *testing.T) {
	h := newHarness(t, true, true)

	if _, err := h.orderSvc.CreateOrder(context.Background(), "a@b.com"); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := h.deliver(t, capturedOrder123, signed(capturedOrder123)); err != nil {
				t.Errorf("HandleWebhook() error = %v", err)
			}
		}()
	}
	wg.Wait()
	h.drain(t)

	if got := h.sender.recipients(); len(got) != 1 {
		t.Errorf("dispatches = %v, want one", got)
	}
}

func TestWebhook_FailedDispatchReleasesClaim(t *testing.T) {
	h := newHarness(t, true, false)

	if _, err := h.orderSvc.CreateOrder(context.Background(), "a@b.com"); err != nil {
		t.Fatal(err)
	}

	h.sender.err = errors.New("smtp: connection refused")
	result, err := h.deliver(t, capturedOrder123, signed(capturedOrder123))
	if err != nil {
		t.Fatalf("HandleWebhook() error = %v", err)
	}
	if result.Outcome != domain.WebhookDispatched {
		t.Errorf("Outcome = %q", result.Outcome)
	}

	order, _ := h.orders.Lookup(context.Background(), "order_123")
	if order.Fulfilled() {
		t.Fatal("claim kept after failed dispatch")
	}

	h.sender.err = nil
	if _, err := h.deliver(t, capturedOrder123, signed(capturedOrder123)); err != nil {
		t.Fatal(err)
	}
	if got := h.sender.recipients(); len(got) != 1 || got[0] != "a@b.com" {
		t.Errorf("dispatches = %v, want [a@b.com]", got)
	}
}

type failingLookupStore struct {
	store.OrderStore
}

func (failingLookupStore) Lookup(context.Context, string) (*domain.PaymentOrder, error) {
	return nil, errors.New("connection reset")
}

func TestWebhook_StoreFailureIsNotAcknowledged(t *testing.T) {
	sender := &recordingSender{}
	orders := failingLookupStore{OrderStore: store.NewMemoryStore()}
	fulfillment := NewFulfillmentService(sender, orders, nil, config.MailConfig{}, config.FulfillmentConfig{Timeout: time.Second}, zap.NewNop())
	svc := NewWebhookService(&fakeGateway{}, orders, fulfillment, true, zap.NewNop())

	_, err := svc.HandleWebhook(context.Background(), []byte(capturedOrder123), signed(capturedOrder123))
	if err == nil || errors.Is(err, ErrWebhookRejected) {
		t.Errorf("HandleWebhook() error = %v, want transient failure", err)
	}
}
