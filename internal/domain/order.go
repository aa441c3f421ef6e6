package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusFulfilled OrderStatus = "fulfilled"
)

// PaymentOrder correlates a gateway-issued order id with the customer who
// initiated it. The correlation is write-once.
type PaymentOrder struct {
	OrderID     string      `json:"order_id"`
	Email       string      `json:"email"`
	Amount      int64       `json:"amount"`
	Currency    string      `json:"currency"`
	Gateway     string      `json:"gateway"`
	Status      OrderStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	FulfilledAt *time.Time  `json:"fulfilled_at,omitempty"`
}

func (o *PaymentOrder) Fulfilled() bool {
	return o.Status == OrderStatusFulfilled
}
