package service

import (
	"context"
	"fmt"
	"sync"

	"go.lumeweb.com/checkout-bridge/internal/config"
	"go.lumeweb.com/checkout-bridge/internal/domain"
	"go.lumeweb.com/checkout-bridge/internal/mail"
	"go.lumeweb.com/checkout-bridge/internal/store"
	"go.uber.org/zap"
)

const FULFILLMENT_SERVICE = "fulfillment"

// CustomerSync is told about every customer that received a fulfillment.
type CustomerSync interface {
	EnsureCustomer(ctx context.Context, email string) error
}

type FulfillmentServiceDefault struct {
	sender   mail.Sender
	store    store.OrderStore
	customer CustomerSync
	mailCfg  config.MailConfig
	cfg      config.FulfillmentConfig
	logger   *zap.Logger

	mu      sync.Mutex
	closing bool
	wg      sync.WaitGroup
}

// NewFulfillmentService builds the dispatcher. customer may be nil.
func NewFulfillmentService(sender mail.Sender, orders store.OrderStore, customer CustomerSync, mailCfg config.MailConfig, cfg config.FulfillmentConfig, logger *zap.Logger) *FulfillmentServiceDefault {
	return &FulfillmentServiceDefault{
		sender:   sender,
		store:    orders,
		customer: customer,
		mailCfg:  mailCfg,
		cfg:      cfg,
		logger:   logger,
	}
}

func (f *FulfillmentServiceDefault) ID() string {
	return FULFILLMENT_SERVICE
}

// Dispatch emails the product to the order's customer.
func (f *FulfillmentServiceDefault) Dispatch(ctx context.Context, order *domain.PaymentOrder) error {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()

	err := f.sender.Send(ctx, &mail.Message{
		From:       f.mailCfg.Sender(),
		To:         order.Email,
		Subject:    f.mailCfg.Subject,
		Body:       f.mailCfg.Body,
		Attachment: f.mailCfg.Attachment,
	})
	if err != nil {
		return fmt.Errorf("failed to dispatch order %s: %w", order.OrderID, err)
	}

	return nil
}

// Fulfill dispatches order in the background, or inline when async delivery
// is disabled or Close has been called. Failures are logged and never reach
// the caller. When claimed is set, a failed dispatch releases the claim so a
// gateway retry can deliver.
func (f *FulfillmentServiceDefault) Fulfill(ctx context.Context, order *domain.PaymentOrder, claimed bool) {
	if !f.cfg.Async || !f.track() {
		f.fulfill(ctx, order, claimed)
		return
	}

	go func() {
		defer f.wg.Done()
		f.fulfill(context.WithoutCancel(ctx), order, claimed)
	}()
}

// track registers a background dispatch unless the service is closing.
func (f *FulfillmentServiceDefault) track() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closing {
		return false
	}

	f.wg.Add(1)
	return true
}

func (f *FulfillmentServiceDefault) fulfill(ctx context.Context, order *domain.PaymentOrder, claimed bool) {
	logger := f.logger.With(zap.String("order_id", order.OrderID))

	if err := f.Dispatch(ctx, order); err != nil {
		logger.Error("fulfillment failed", zap.Error(err))

		if claimed {
			if err := f.store.ReleaseFulfillment(ctx, order.OrderID); err != nil {
				logger.Error("failed to release fulfillment claim", zap.Error(err))
			}
		}
		return
	}

	logger.Info("fulfillment dispatched")

	if f.customer == nil {
		return
	}

	if err := f.customer.EnsureCustomer(ctx, order.Email); err != nil {
		logger.Warn("customer sync failed", zap.Error(err))
	}
}

// Close waits for in-flight dispatches or until ctx ends. Dispatches requested
// after Close run inline.
func (f *FulfillmentServiceDefault) Close(ctx context.Context) error {
	f.mu.Lock()
	f.closing = true
	f.mu.Unlock()

	done := make(chan struct{})
	go func() {
		f.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for fulfillments: %w", ctx.Err())
	}
}
