// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

func randomFromCharset(length int, charset string) (string, error) {
	b := make([]byte, length)

	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}

func GenerateRandomString(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	return randomFromCharset(length, charset)
}

// GenerateOrderNumber builds a human-readable order token:
// ORD-<last 6 digits of the unix-ms timestamp>-<6 uppercase alphanumerics>.
// Uniqueness is probabilistic; callers retry on conflict.
func GenerateOrderNumber() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	ts := fmt.Sprintf("%d", time.Now().UnixMilli())
	if len(ts) > 6 {
		ts = ts[len(ts)-6:]
	}
	code, err := randomFromCharset(6, charset)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%s-%s", ts, code), nil
}

// GenerateSKU builds a catalog SKU for products created without one.
func GenerateSKU() (string, error) {
	code, err := GenerateRandomString(9)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("SKU-%d-%s", time.Now().UnixMilli(), code), nil
}
