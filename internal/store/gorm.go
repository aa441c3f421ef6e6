package store

import (
	"context"
	"errors"
	"time"

	"go.lumeweb.com/checkout-bridge/internal/db"
	"go.lumeweb.com/checkout-bridge/internal/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ OrderStore = (*GormStore)(nil)

// GormStore persists orders in a SQL database. The unique index on order_id
// makes Record an insert-if-absent across processes.
type GormStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewGormStore(conn *gorm.DB, logger *zap.Logger) *GormStore {
	return &GormStore{db: conn, logger: logger}
}

func (g *GormStore) Record(ctx context.Context, order *domain.PaymentOrder) error {
	prepare(order, time.Now())

	row := &db.PaymentOrder{
		OrderID:  order.OrderID,
		Email:    order.Email,
		Amount:   order.Amount,
		Currency: order.Currency,
		Gateway:  order.Gateway,
		Status:   string(order.Status),
	}
	row.CreatedAt = order.CreatedAt

	var res *gorm.DB
	if err := db.RetryableTransaction(ctx, g.db, func(tx *gorm.DB) *gorm.DB {
		res = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
		return res
	}); err != nil {
		g.logger.Error("failed to record order", zap.String("order_id", order.OrderID), zap.Error(err))
		return err
	}

	if res.RowsAffected == 0 {
		return domain.ErrOrderExists
	}

	return nil
}

func (g *GormStore) Lookup(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	var row db.PaymentOrder

	if err := db.RetryableTransaction(ctx, g.db, func(tx *gorm.DB) *gorm.DB {
		return tx.Model(&db.PaymentOrder{}).Where(&db.PaymentOrder{OrderID: orderID}).First(&row)
	}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}

	return toDomain(&row), nil
}

func (g *GormStore) ClaimFulfillment(ctx context.Context, orderID string) error {
	now := time.Now()

	var res *gorm.DB
	if err := db.RetryableTransaction(ctx, g.db, func(tx *gorm.DB) *gorm.DB {
		res = tx.Model(&db.PaymentOrder{}).
			Where("order_id = ? AND status = ?", orderID, string(domain.OrderStatusPending)).
			Updates(map[string]any{
				"status":       string(domain.OrderStatusFulfilled),
				"fulfilled_at": now,
			})
		return res
	}); err != nil {
		return err
	}

	if res.RowsAffected == 1 {
		return nil
	}

	if _, err := g.Lookup(ctx, orderID); err != nil {
		return err
	}

	return domain.ErrAlreadyFulfilled
}

func (g *GormStore) ReleaseFulfillment(ctx context.Context, orderID string) error {
	var res *gorm.DB
	if err := db.RetryableTransaction(ctx, g.db, func(tx *gorm.DB) *gorm.DB {
		res = tx.Model(&db.PaymentOrder{}).
			Where("order_id = ?", orderID).
			Updates(map[string]any{
				"status":       string(domain.OrderStatusPending),
				"fulfilled_at": nil,
			})
		return res
	}); err != nil {
		return err
	}

	if res.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}

	return nil
}

func (g *GormStore) Prune(ctx context.Context, before time.Time) (int, error) {
	var res *gorm.DB
	if err := db.RetryableTransaction(ctx, g.db, func(tx *gorm.DB) *gorm.DB {
		res = tx.Unscoped().Where("created_at < ?", before).Delete(&db.PaymentOrder{})
		return res
	}); err != nil {
		return 0, err
	}

	return int(res.RowsAffected), nil
}

func (g *GormStore) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toDomain(row *db.PaymentOrder) *domain.PaymentOrder {
	return &domain.PaymentOrder{
		OrderID:     row.OrderID,
		Email:       row.Email,
		Amount:      row.Amount,
		Currency:    row.Currency,
		Gateway:     row.Gateway,
		Status:      domain.OrderStatus(row.Status),
		CreatedAt:   row.CreatedAt,
		FulfilledAt: row.FulfilledAt,
	}
}
