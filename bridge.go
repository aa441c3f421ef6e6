package bridge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"go.lumeweb.com/checkout-bridge/internal/api"
	"go.lumeweb.com/checkout-bridge/internal/config"
	"go.lumeweb.com/checkout-bridge/internal/cron"
	"go.lumeweb.com/checkout-bridge/internal/cron/tasks"
	"go.lumeweb.com/checkout-bridge/internal/gateway"
	"go.lumeweb.com/checkout-bridge/internal/mail"
	"go.lumeweb.com/checkout-bridge/internal/repository"
	"go.lumeweb.com/checkout-bridge/internal/service"
	"go.lumeweb.com/checkout-bridge/internal/store"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Bridge wires the checkout flow: order creation, webhook verification and
// product delivery, plus the background tasks that support them.
type Bridge struct {
	cfg         *config.Config
	logger      *zap.Logger
	store       store.OrderStore
	fulfillment *service.FulfillmentServiceDefault
	cron        *cron.Cron
	server      *http.Server

	closeOnce sync.Once
	closeErr  error
}

// Option overrides a collaborator, mostly for tests.
type Option func(*options)

type options struct {
	sender mail.Sender
}

func WithMailSender(sender mail.Sender) Option {
	return func(o *options) {
		o.sender = sender
	}
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*Bridge, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if o.sender == nil {
		o.sender = mail.NewSMTPSender(cfg.Mail, logger.Named("mail"))
	}

	orders, err := store.New(ctx, cfg.Store, logger.Named("store"))
	if err != nil {
		return nil, fmt.Errorf("failed to open order store: %w", err)
	}

	b, err := assemble(ctx, cfg, logger, orders, o)
	if err != nil {
		_ = orders.Close()
		return nil, err
	}

	return b, nil
}

func assemble(ctx context.Context, cfg *config.Config, logger *zap.Logger, orders store.OrderStore, o *options) (*Bridge, error) {
	gw, err := gateway.New(cfg, logger.Named("gateway"))
	if err != nil {
		return nil, err
	}

	var customer service.CustomerSync
	if cfg.KillBill.Enabled {
		repo := repository.NewKillBillRepository(repository.NewKillBillClient(cfg.KillBill))
		customers := service.NewCustomerService(repo, logger.Named(service.CUSTOMER_SERVICE))
		if err := customers.Start(ctx); err != nil {
			return nil, err
		}
		customer = customers
	}

	fulfillment := service.NewFulfillmentService(o.sender, orders, customer, cfg.Mail, cfg.Fulfillment, logger.Named(service.FULFILLMENT_SERVICE))
	orderService := service.NewOrderService(gw, orders, cfg.Gateway, logger.Named(service.ORDER_SERVICE))
	webhookService := service.NewWebhookService(gw, orders, fulfillment, cfg.Fulfillment.Idempotent, logger.Named(service.WEBHOOK_SERVICE))

	checkout, err := api.NewAPI(orderService, webhookService, cfg.Server, logger.Named("api"))
	if err != nil {
		return nil, fmt.Errorf("failed to build api: %w", err)
	}

	handler, err := checkout.Handler()
	if err != nil {
		return nil, err
	}

	scheduler, err := cron.NewCron(logger.Named("cron"))
	if err != nil {
		return nil, err
	}

	scheduler.RegisterTasks(tasks.NewPrune(orders, cfg.Store.Retention, cfg.Prune.Interval, logger.Named("prune")))
	if cfg.Keepalive.Enabled() {
		scheduler.RegisterTasks(tasks.NewKeepalive(cfg.Keepalive.URL, cfg.Keepalive.Interval, logger.Named("keepalive")))
	}

	return &Bridge{
		cfg:         cfg,
		logger:      logger,
		store:       orders,
		fulfillment: fulfillment,
		cron:        scheduler,
		server: &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           handler,
			ReadHeaderTimeout: cfg.Server.ReadTimeout,
			ReadTimeout:       cfg.Server.ReadTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
		},
	}, nil
}

func (b *Bridge) Handler() http.Handler {
	return b.server.Handler
}

// Run serves until ctx is cancelled or the listener fails, then shuts down
// gracefully and releases every resource.
func (b *Bridge) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	if err := b.cron.ScheduleJobs(gctx); err != nil {
		return multierr.Append(err, b.Close())
	}

	g.Go(func() error {
		b.logger.Info("listening", zap.String("addr", b.server.Addr), zap.String("gateway", b.cfg.Gateway.Provider))

		if err := b.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		b.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), b.cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := b.server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	return multierr.Append(g.Wait(), b.Close())
}

// Close stops the scheduler, waits for in-flight fulfillments and closes the
// order store. Run calls it on return; further calls return the first result.
func (b *Bridge) Close() error {
	b.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), b.cfg.Server.ShutdownTimeout)
		defer cancel()

		b.closeErr = multierr.Combine(
			b.cron.Shutdown(),
			b.fulfillment.Close(ctx),
			b.store.Close(),
		)
	})

	return b.closeErr
}
