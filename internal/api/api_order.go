package api

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
	"go.lumeweb.com/checkout-bridge/internal/api/messages"
	"go.lumeweb.com/checkout-bridge/internal/domain"
	"go.lumeweb.com/httputil"
	"go.uber.org/zap"
)

func (a *API) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx := httputil.Context(r, w)

	var req messages.CreateOrderRequest
	if err := ctx.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, &messages.ErrorResponse{Error: "invalid request body"})
		return
	}

	resp, err := a.orders.CreateOrder(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidEmail) {
			writeError(w, r, http.StatusBadRequest, &messages.ErrorResponse{Error: err.Error()})
			return
		}

		writeError(w, r, http.StatusInternalServerError, &messages.ErrorResponse{
			Error:   "Failed to create order",
			Details: err.Error(),
		})
		return
	}

	ctx.Encode(resp)
}

// pay is the form flow: it creates the order and sends the browser on to
// pay for it.
func (a *API) pay(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	resp, err := a.orders.CreateOrder(r.Context(), r.PostForm.Get("email"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidEmail) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		a.logger.Error("payment initiation failed", zap.Error(err))
		http.Error(w, "Payment initiation failed", http.StatusBadGateway)
		return
	}

	target := resp.RedirectURL
	if target == "" {
		target = "/?" + url.Values{"order_id": {resp.OrderID}}.Encode()
	}

	http.Redirect(w, r, target, http.StatusSeeOther)
}

type checkoutPageData struct {
	Gateway  string
	Key      string
	Amount   int64
	Display  string
	Currency string
	OrderID  string
}

func (a *API) checkoutPage(w http.ResponseWriter, r *http.Request) {
	data := checkoutPageData{
		Gateway:  a.orders.Gateway(),
		Key:      a.orders.ClientKey(),
		Amount:   a.orders.Amount(),
		Display:  decimal.New(a.orders.Amount(), -2).StringFixed(2),
		Currency: a.orders.Currency(),
		OrderID:  r.URL.Query().Get("order_id"),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.pages.ExecuteTemplate(w, "checkout.html", data); err != nil {
		a.logger.Error("failed to render checkout page", zap.Error(err))
	}
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	ctx := httputil.Context(r, w)
	ctx.Encode(&messages.HealthResponse{Status: "ok"})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, body *messages.ErrorResponse) {
	ctx := httputil.Context(r, w)
	ctx.Response.Header().Set("Content-Type", "application/json")
	ctx.Response.WriteHeader(status)
	ctx.Encode(body)
}
