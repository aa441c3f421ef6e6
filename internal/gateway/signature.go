package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"go.lumeweb.com/checkout-bridge/internal/domain"
)

// VerifyHMACSHA256 checks a hex HMAC-SHA256 of payload. payload must be the
// body exactly as received; a re-encoded JSON document will not match.
func VerifyHMACSHA256(payload []byte, signature, secret string) error {
	if len(payload) == 0 {
		return domain.ErrEmptyPayload
	}

	if signature == "" {
		return domain.ErrMissingSignature
	}

	if !hmac.Equal([]byte(signature), []byte(SignHMACSHA256(payload, secret))) {
		return domain.ErrSignatureMismatch
	}

	return nil
}

func SignHMACSHA256(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
