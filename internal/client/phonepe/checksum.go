package phonepe

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

const (
	VerifyHeader      = "X-VERIFY"
	checksumSeparator = "###"
)

// Checksum computes the X-VERIFY value: sha256(payload + path + saltKey) in
// hex, followed by ### and the salt index.
func Checksum(payload, path, saltKey string, saltIndex int) string {
	sum := sha256.Sum256([]byte(payload + path + saltKey))
	return hex.EncodeToString(sum[:]) + checksumSeparator + strconv.Itoa(saltIndex)
}
