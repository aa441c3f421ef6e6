package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.lumeweb.com/checkout-bridge/internal/config"
	"go.lumeweb.com/checkout-bridge/internal/domain"
	"go.uber.org/zap"
)

var _ OrderStore = (*RedisStore)(nil)

// RedisStore shares orders between instances. Record and ClaimFulfillment are
// both SETNX, so concurrent instances agree on a single winner. Keys expire
// after the retention period, which makes Prune a no-op.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisStore(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		MaxRetries:   3,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client, cfg.KeyPrefix, cfg.Retention, logger), nil
}

func NewRedisStoreWithClient(client *redis.Client, prefix string, ttl time.Duration, logger *zap.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

func (r *RedisStore) orderKey(orderID string) string {
	return r.prefix + "order:" + orderID
}

func (r *RedisStore) fulfilledKey(orderID string) string {
	return r.prefix + "fulfilled:" + orderID
}

func (r *RedisStore) Record(ctx context.Context, order *domain.PaymentOrder) error {
	prepare(order, time.Now())

	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.orderKey(order.OrderID), data, r.ttl).Result()
	if err != nil {
		r.logger.Error("failed to record order", zap.String("order_id", order.OrderID), zap.Error(err))
		return err
	}

	if !ok {
		return domain.ErrOrderExists
	}

	return nil
}

func (r *RedisStore) Lookup(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	data, err := r.client.Get(ctx, r.orderKey(orderID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}

	var order domain.PaymentOrder
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("decode order %s: %w", orderID, err)
	}

	fulfilledAt, err := r.client.Get(ctx, r.fulfilledKey(orderID)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		order.Status = domain.OrderStatusPending
	case err != nil:
		return nil, err
	default:
		order.Status = domain.OrderStatusFulfilled
		if t, parseErr := time.Parse(time.RFC3339Nano, fulfilledAt); parseErr == nil {
			order.FulfilledAt = &t
		}
	}

	return &order, nil
}

func (r *RedisStore) ClaimFulfillment(ctx context.Context, orderID string) error {
	exists, err := r.client.Exists(ctx, r.orderKey(orderID)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return domain.ErrOrderNotFound
	}

	ok, err := r.client.SetNX(ctx, r.fulfilledKey(orderID), time.Now().UTC().Format(time.RFC3339Nano), r.ttl).Result()
	if err != nil {
		return err
	}

	if !ok {
		return domain.ErrAlreadyFulfilled
	}

	return nil
}

func (r *RedisStore) ReleaseFulfillment(ctx context.Context, orderID string) error {
	return r.client.Del(ctx, r.fulfilledKey(orderID)).Err()
}

func (r *RedisStore) Prune(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
