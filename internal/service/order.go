package service

import (
	"context"
	"fmt"
	netmail "net/mail"
	"strings"

	"github.com/go-openapi/strfmt"
	"go.lumeweb.com/checkout-bridge/internal/api/messages"
	"go.lumeweb.com/checkout-bridge/internal/config"
	"go.lumeweb.com/checkout-bridge/internal/domain"
	"go.lumeweb.com/checkout-bridge/internal/gateway"
	"go.lumeweb.com/checkout-bridge/internal/store"
	"go.uber.org/zap"
)

const ORDER_SERVICE = "order"

type OrderServiceDefault struct {
	gateway gateway.Gateway
	store   store.OrderStore
	cfg     config.GatewayConfig
	logger  *zap.Logger
}

func NewOrderService(gw gateway.Gateway, orders store.OrderStore, cfg config.GatewayConfig, logger *zap.Logger) *OrderServiceDefault {
	return &OrderServiceDefault{
		gateway: gw,
		store:   orders,
		cfg:     cfg,
		logger:  logger,
	}
}

func (o *OrderServiceDefault) ID() string {
	return ORDER_SERVICE
}

// CreateOrder asks the gateway for an order in the customer's name and
// records the correlation. Nothing is recorded if the gateway call fails.
func (o *OrderServiceDefault) CreateOrder(ctx context.Context, email string) (*messages.CreateOrderResponse, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	gwCtx, cancel := context.WithTimeout(ctx, o.cfg.RequestTimeout)
	defer cancel()

	intent, err := o.gateway.CreateOrder(gwCtx, gateway.OrderRequest{
		Email:    email,
		Amount:   o.cfg.MinorAmount(),
		Currency: o.cfg.Currency,
	})
	if err != nil {
		o.logger.Error("gateway order creation failed", zap.String("gateway", o.gateway.Name()), zap.Error(err))
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	order := &domain.PaymentOrder{
		OrderID:  intent.OrderID,
		Email:    email,
		Amount:   intent.Amount,
		Currency: intent.Currency,
		Gateway:  o.gateway.Name(),
		Status:   domain.OrderStatusPending,
	}

	if err := o.store.Record(ctx, order); err != nil {
		o.logger.Error("failed to record order", zap.String("order_id", intent.OrderID), zap.Error(err))
		return nil, fmt.Errorf("failed to record order: %w", err)
	}

	o.logger.Info("order created",
		zap.String("order_id", intent.OrderID),
		zap.String("gateway", o.gateway.Name()),
		zap.Int64("amount", intent.Amount))

	return &messages.CreateOrderResponse{
		Key:         intent.ClientKey,
		Amount:      intent.Amount,
		OrderID:     intent.OrderID,
		Currency:    intent.Currency,
		RedirectURL: intent.RedirectURL,
	}, nil
}

// normalizeEmail accepts a bare addr-spec only and returns it lower-cased, so
// one customer always maps to one identity. Display names, angle brackets,
// quoted local parts and dotless domains are rejected.
func normalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || !strfmt.IsEmail(raw) {
		return "", domain.ErrInvalidEmail
	}

	addr, err := netmail.ParseAddress(raw)
	if err != nil || addr.Name != "" || addr.Address != raw {
		return "", domain.ErrInvalidEmail
	}

	at := strings.LastIndex(addr.Address, "@")
	domainPart := addr.Address[at+1:]
	if !strings.Contains(domainPart, ".") || strings.HasPrefix(domainPart, ".") || strings.HasSuffix(domainPart, ".") {
		return "", domain.ErrInvalidEmail
	}

	return strings.ToLower(addr.Address), nil
}

func (o *OrderServiceDefault) Gateway() string {
	return o.gateway.Name()
}

// ClientKey is the publishable key rendered into the checkout page.
func (o *OrderServiceDefault) ClientKey() string {
	return o.gateway.ClientKey()
}

func (o *OrderServiceDefault) Amount() int64 {
	return o.cfg.MinorAmount()
}

func (o *OrderServiceDefault) Currency() string {
	return o.cfg.Currency
}
