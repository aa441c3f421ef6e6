package domain

import "errors"

var (
	ErrInvalidEmail       = errors.New("a valid email is required")
	ErrOrderExists        = errors.New("order already recorded")
	ErrOrderNotFound      = errors.New("order not found")
	ErrAlreadyFulfilled   = errors.New("order already fulfilled")
	ErrMissingSignature   = errors.New("missing webhook signature")
	ErrEmptyPayload       = errors.New("empty webhook payload")
	ErrSignatureMismatch  = errors.New("webhook signature mismatch")
	ErrMalformedPayload   = errors.New("malformed webhook payload")
	ErrUnsupportedGateway = errors.New("unsupported payment gateway")
)
