package messages

type CreateOrderRequest struct {
	Email string `json:"email"`
}

type CreateOrderResponse struct {
	// Key is the gateway's publishable key for the client-side widget.
	Key      string `json:"key"`
	Amount   int64  `json:"amount"`
	OrderID  string `json:"order_id"`
	Currency string `json:"currency,omitempty"`
	// RedirectURL is set when the gateway hosts the payment page itself.
	RedirectURL string `json:"redirect_url,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
