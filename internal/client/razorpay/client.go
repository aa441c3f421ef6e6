package razorpay

import (
	"context"
	"errors"
	"fmt"

	rzpsdk "github.com/razorpay/razorpay-go"
	"go.uber.org/zap"
)

// OrderResource is the part of the SDK order resource used here.
type OrderResource interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// Client wraps the Razorpay SDK. SDK calls take no context, so every call runs
// in its own goroutine and is abandoned when ctx ends.
type Client struct {
	keyID  string
	orders OrderResource
	logger *zap.Logger
}

func NewClient(keyID, keySecret string, logger *zap.Logger) *Client {
	sdk := rzpsdk.NewClient(keyID, keySecret)
	return NewClientWithOrders(keyID, sdk.Order, logger)
}

func NewClientWithOrders(keyID string, orders OrderResource, logger *zap.Logger) *Client {
	return &Client{
		keyID:  keyID,
		orders: orders,
		logger: logger,
	}
}

func (c *Client) KeyID() string {
	return c.keyID
}

// CreateOrder creates an order for amount minor units.
func (c *Client) CreateOrder(ctx context.Context, req *OrderRequest) (*Order, error) {
	data := map[string]interface{}{
		"amount":   req.Amount,
		"currency": req.Currency,
		"receipt":  req.Receipt,
	}

	if len(req.Notes) > 0 {
		notes := make(map[string]interface{}, len(req.Notes))
		for k, v := range req.Notes {
			notes[k] = v
		}
		data["notes"] = notes
	}

	c.logger.Info("creating order",
		zap.Int64("amount", req.Amount),
		zap.String("currency", req.Currency),
		zap.String("receipt", req.Receipt),
	)

	type result struct {
		body map[string]interface{}
		err  error
	}

	done := make(chan result, 1)
	go func() {
		body, err := c.orders.Create(data, nil)
		done <- result{body: body, err: err}
	}()

	var res result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("create order: %w", ctx.Err())
	case res = <-done:
	}

	if res.err != nil {
		c.logger.Error("failed to create order", zap.Error(res.err))
		return nil, fmt.Errorf("create order failed: %w", res.err)
	}

	order, err := decodeOrder(res.body)
	if err != nil {
		return nil, err
	}

	c.logger.Info("order created successfully", zap.String("order_id", order.ID))

	return order, nil
}

func decodeOrder(body map[string]interface{}) (*Order, error) {
	id, _ := body["id"].(string)
	if id == "" {
		return nil, errors.New("create order failed: response carries no order id")
	}

	order := &Order{ID: id}
	order.Currency, _ = body["currency"].(string)
	order.Receipt, _ = body["receipt"].(string)
	order.Status, _ = body["status"].(string)

	switch amount := body["amount"].(type) {
	case float64:
		order.Amount = int64(amount)
	case int64:
		order.Amount = amount
	case int:
		order.Amount = int64(amount)
	}

	return order, nil
}
