package domain

// PaymentEvent is the gateway-neutral view of a verified webhook.
type PaymentEvent struct {
	Type      string
	OrderID   string
	PaymentID string
	// Success is set only for the event types that mean money was captured.
	Success bool
}

type WebhookOutcome string

const (
	// WebhookIgnored is a verified event that does not mean payment success.
	WebhookIgnored WebhookOutcome = "ignored"
	// WebhookUnresolved is a success event for an order id that was never recorded.
	WebhookUnresolved WebhookOutcome = "unresolved"
	// WebhookDuplicate is a redelivery for an order that was already claimed.
	WebhookDuplicate WebhookOutcome = "duplicate"
	// WebhookDispatched means fulfillment was handed off.
	WebhookDispatched WebhookOutcome = "dispatched"
)

// WebhookResult describes how an authenticated webhook was handled. Every
// outcome is acknowledged to the gateway.
type WebhookResult struct {
	Outcome   WebhookOutcome
	EventType string
	OrderID   string
}
