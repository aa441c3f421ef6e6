package store

import (
	"context"
	"fmt"
	"time"

	"go.lumeweb.com/checkout-bridge/internal/config"
	"go.lumeweb.com/checkout-bridge/internal/db"
	"go.lumeweb.com/checkout-bridge/internal/domain"
	"go.uber.org/zap"
)

// OrderStore holds the order id to customer correlation. Records are
// write-once: Record never overwrites an existing order id.
type OrderStore interface {
	// Record inserts order, returning domain.ErrOrderExists if its id is
	// already known.
	Record(ctx context.Context, order *domain.PaymentOrder) error

	// Lookup returns domain.ErrOrderNotFound for unknown ids.
	Lookup(ctx context.Context, orderID string) (*domain.PaymentOrder, error)

	// ClaimFulfillment atomically moves a pending order to fulfilled. A second
	// claim returns domain.ErrAlreadyFulfilled.
	ClaimFulfillment(ctx context.Context, orderID string) error

	// ReleaseFulfillment moves a claimed order back to pending.
	ReleaseFulfillment(ctx context.Context, orderID string) error

	// Prune drops orders created before the cutoff and reports how many.
	Prune(ctx context.Context, before time.Time) (int, error)

	Close() error
}

// New builds the store selected by cfg.Driver.
func New(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (OrderStore, error) {
	switch cfg.Driver {
	case config.StoreMemory:
		return NewMemoryStore(), nil
	case config.StoreSQLite, config.StoreMySQL:
		conn, err := db.Open(cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return NewGormStore(conn, logger), nil
	case config.StoreRedis:
		return NewRedisStore(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}
}

func prepare(order *domain.PaymentOrder, now time.Time) {
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}
}
