package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.lumeweb.com/checkout-bridge/internal/domain"
	"go.lumeweb.com/checkout-bridge/internal/gateway"
	"go.lumeweb.com/checkout-bridge/internal/store"
	"go.uber.org/zap"
)

const WEBHOOK_SERVICE = "webhook"

var ErrWebhookRejected = errors.New("webhook rejected")

// Fulfiller hands a correlated order to delivery.
type Fulfiller interface {
	Fulfill(ctx context.Context, order *domain.PaymentOrder, claimed bool)
}

type WebhookServiceDefault struct {
	gateway    gateway.Gateway
	store      store.OrderStore
	fulfiller  Fulfiller
	idempotent bool
	logger     *zap.Logger
}

func NewWebhookService(gw gateway.Gateway, orders store.OrderStore, fulfiller Fulfiller, idempotent bool, logger *zap.Logger) *WebhookServiceDefault {
	return &WebhookServiceDefault{
		gateway:    gw,
		store:      orders,
		fulfiller:  fulfiller,
		idempotent: idempotent,
		logger:     logger,
	}
}

func (s *WebhookServiceDefault) ID() string {
	return WEBHOOK_SERVICE
}

// HandleWebhook authenticates body and, for a payment success on a known
// order, triggers fulfillment. Errors wrapping ErrWebhookRejected mean the
// request failed authentication or could not be read; any other error is a
// transient store failure the gateway should retry. A nil error is always
// acknowledged, including unknown orders and redeliveries.
func (s *WebhookServiceDefault) HandleWebhook(ctx context.Context, body []byte, header http.Header) (*domain.WebhookResult, error) {
	if err := s.gateway.VerifyWebhook(body, header); err != nil {
		s.logger.Warn("webhook verification failed", zap.String("gateway", s.gateway.Name()), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrWebhookRejected, err)
	}

	event, err := s.gateway.ParseEvent(body)
	if err != nil {
		s.logger.Warn("verified webhook could not be parsed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrWebhookRejected, err)
	}

	result := &domain.WebhookResult{
		EventType: event.Type,
		OrderID:   event.OrderID,
	}

	logger := s.logger.With(zap.String("event", event.Type), zap.String("order_id", event.OrderID))

	if !event.Success {
		logger.Debug("ignoring webhook event")
		result.Outcome = domain.WebhookIgnored
		return result, nil
	}

	if event.OrderID == "" {
		logger.Warn("payment success event carries no order id")
		result.Outcome = domain.WebhookUnresolved
		return result, nil
	}

	order, err := s.store.Lookup(ctx, event.OrderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			logger.Warn("payment for unknown order")
			result.Outcome = domain.WebhookUnresolved
			return result, nil
		}
		logger.Error("order lookup failed", zap.Error(err))
		return nil, err
	}

	if s.idempotent {
		if err := s.store.ClaimFulfillment(ctx, order.OrderID); err != nil {
			if errors.Is(err, domain.ErrAlreadyFulfilled) {
				logger.Info("duplicate payment event, order already fulfilled")
				result.Outcome = domain.WebhookDuplicate
				return result, nil
			}
			logger.Error("failed to claim order", zap.Error(err))
			return nil, err
		}
	}

	s.fulfiller.Fulfill(ctx, order, s.idempotent)

	logger.Info("payment confirmed", zap.String("payment_id", event.PaymentID))
	result.Outcome = domain.WebhookDispatched

	return result, nil
}
