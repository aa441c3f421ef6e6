package phonepe

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	PayEndpoint        = "/pg/v1/pay"
	CodePaymentSuccess = "PAYMENT_SUCCESS"
)

// ClientConfig contains configuration for the PhonePe client
type ClientConfig struct {
	BaseURL        string
	MerchantID     string
	SaltKey        string
	SaltIndex      int
	MaxRetries     int
	RetryDelay     time.Duration
	RequestTimeout time.Duration
}

// Client handles communication with the PhonePe PG API
type Client struct {
	config ClientConfig
	http   *resty.Client
	logger *zap.Logger
}

// NewClient creates a new PhonePe API client
func NewClient(config ClientConfig, logger *zap.Logger) *Client {
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = 1 * time.Second
	}
	if config.RequestTimeout == 0 {
		config.RequestTimeout = 30 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.RequestTimeout).
		SetHeader("Accept", "application/json")

	return &Client{
		config: config,
		http:   httpClient,
		logger: logger,
	}
}

func (c *Client) MerchantID() string {
	return c.config.MerchantID
}

// Pay initiates a pay-page payment and returns the gateway response carrying
// the redirect URL.
func (c *Client) Pay(ctx context.Context, req *PaymentRequest) (*PaymentResponse, error) {
	req.MerchantID = c.config.MerchantID

	c.logger.Info("creating payment",
		zap.Int64("amount", req.Amount),
		zap.String("merchant_transaction_id", req.MerchantTransactionID),
	)

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal payload failed: %w", err)
	}

	encoded := base64.StdEncoding.EncodeToString(payload)
	checksum := Checksum(encoded, PayEndpoint, c.config.SaltKey, c.config.SaltIndex)

	var paymentResp PaymentResponse
	if err := c.makeRequest(ctx, PayEndpoint, &PayEnvelope{Request: encoded}, checksum, &paymentResp); err != nil {
		c.logger.Error("failed to create payment", zap.Error(err))
		return nil, fmt.Errorf("create payment failed: %w", err)
	}

	if !paymentResp.Success {
		return nil, &APIError{
			StatusCode: http.StatusOK,
			Code:       paymentResp.Code,
			Message:    paymentResp.Message,
		}
	}

	if paymentResp.Data.InstrumentResponse.RedirectInfo.URL == "" {
		return nil, &APIError{
			StatusCode: http.StatusOK,
			Code:       paymentResp.Code,
			Message:    "response carries no redirect url",
		}
	}

	c.logger.Info("payment created successfully",
		zap.String("merchant_transaction_id", req.MerchantTransactionID),
	)

	return &paymentResp, nil
}

// makeRequest posts payload with the checksum header, retrying transport
// failures and 5xx responses with backoff. 4xx responses are returned as is.
func (c *Client) makeRequest(ctx context.Context, endpoint string, payload any, checksum string, result any) error {
	c.logger.Debug("preparing phonepe request",
		zap.String("endpoint", endpoint),
	)

	return retry.Do(
		func() error {
			resp, err := c.http.R().
				SetContext(ctx).
				SetHeader("Content-Type", "application/json").
				SetHeader(VerifyHeader, checksum).
				SetBody(payload).
				Post(endpoint)
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}

			if resp.StatusCode() >= 400 && resp.StatusCode() < 500 {
				return retry.Unrecoverable(&APIError{
					StatusCode: resp.StatusCode(),
					Message:    resp.String(),
				})
			}

			if resp.StatusCode() >= 500 {
				return &APIError{
					StatusCode: resp.StatusCode(),
					Message:    resp.String(),
				}
			}

			if err := json.Unmarshal(resp.Body(), result); err != nil {
				return retry.Unrecoverable(fmt.Errorf("decode response failed: %w", err))
			}

			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.config.MaxRetries)+1),
		retry.Delay(c.config.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Info("retrying request",
				zap.String("endpoint", endpoint),
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	)
}

// APIError represents an error returned by the PhonePe API
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("phonepe API error (status %d, code %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("phonepe API error (status %d): %s", e.StatusCode, e.Message)
}

func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
