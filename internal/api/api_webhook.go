package api

import (
	"errors"
	"io"
	"net/http"

	"go.lumeweb.com/checkout-bridge/service"
	"go.uber.org/zap"
)

// paymentWebhook reads the body once, unparsed, and hands those exact bytes
// to verification. Anything that passes verification is acknowledged with an
// empty 200.
func (a *API) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Payload too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := a.webhooks.HandleWebhook(r.Context(), body, r.Header)
	if err != nil {
		if errors.Is(err, service.ErrWebhookRejected) {
			http.Error(w, "Invalid signature", http.StatusBadRequest)
			return
		}
		http.Error(w, "Temporary failure", http.StatusInternalServerError)
		return
	}

	a.logger.Debug("webhook acknowledged",
		zap.String("event", result.EventType),
		zap.String("order_id", result.OrderID),
		zap.String("outcome", string(result.Outcome)),
	)

	w.WriteHeader(http.StatusOK)
}
