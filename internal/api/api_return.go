package api

import (
	"net/http"

	"go.lumeweb.com/checkout-bridge/internal/client/phonepe"
	"go.uber.org/zap"
)

type returnPageData struct {
	Success bool
	OrderID string
}

// paymentReturn is where the buyer's browser lands after paying. The form it
// carries is unsigned, so it only picks the message to show; delivery is
// driven by the signed server-to-server callback.
func (a *API) paymentReturn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	data := returnPageData{
		Success: r.Form.Get("code") == phonepe.CodePaymentSuccess,
		OrderID: r.Form.Get("transactionId"),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.pages.ExecuteTemplate(w, "return.html", data); err != nil {
		a.logger.Error("failed to render return page", zap.Error(err))
	}
}
