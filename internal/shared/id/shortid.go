package id

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/orris-inc/zlpay/internal/shared/biztime"
)

const (
	// Base62 alphabet: 0-9, A-Z, a-z
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// DefaultLength is the default length for generated short IDs
	DefaultLength = 12

	// randomTailLength is appended to the time component of unique suffixes
	// so two instances generating in the same microsecond do not collide.
	randomTailLength = 4

	// OrderKeyPrefix marks buyer-facing order keys.
	OrderKeyPrefix = "order"
)

// Generate creates a random short ID with the specified length using Base62 encoding.
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}

	result := make([]byte, length)
	alphabetLen := big.NewInt(int64(len(alphabet)))

	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		result[i] = alphabet[num.Int64()]
	}

	return string(result), nil
}

// MustGenerate creates a random short ID and panics on error.
func MustGenerate(length int) string {
	id, err := Generate(length)
	if err != nil {
		panic(err)
	}
	return id
}

// UniqueSuffix returns a time-ordered unique token: 13 hex digits of the
// current unix time in microseconds followed by a short random tail.
func UniqueSuffix(now time.Time) (string, error) {
	tail, err := Generate(randomTailLength)
	if err != nil {
		return "", err
	}
	micros := now.UnixMicro()
	sec := micros / 1_000_000
	usec := micros % 1_000_000
	return fmt.Sprintf("%08x%05x%s", sec, usec, tail), nil
}

// NewAppTransID generates a merchant transaction id in the form yymmdd_<unique>.
// The date is taken in the business timezone.
func NewAppTransID(now time.Time) (string, error) {
	suffix, err := UniqueSuffix(now)
	if err != nil {
		return "", err
	}
	return biztime.DatePrefix(now) + "_" + suffix, nil
}

// NewRefundID generates a merchant refund id in the form yymmdd_<appID>_<unique>.
func NewRefundID(now time.Time, appID int) (string, error) {
	suffix, err := UniqueSuffix(now)
	if err != nil {
		return "", err
	}
	return biztime.DatePrefix(now) + "_" + strconv.Itoa(appID) + "_" + suffix, nil
}

// ParseAppTransID splits a merchant transaction id into its date prefix and suffix.
func ParseAppTransID(appTransID string) (datePrefix, suffix string, err error) {
	parts := strings.SplitN(appTransID, "_", 2)
	if len(parts) != 2 || len(parts[0]) != 6 || parts[1] == "" {
		return "", "", fmt.Errorf("invalid app trans id format: %s", appTransID)
	}
	if _, err := time.Parse("060102", parts[0]); err != nil {
		return "", "", fmt.Errorf("invalid app trans id date: %s", appTransID)
	}
	return parts[0], parts[1], nil
}

// NewOrderKey generates the opaque key a buyer presents when returning from the provider.
func NewOrderKey() (string, error) {
	short, err := Generate(13)
	if err != nil {
		return "", err
	}
	return OrderKeyPrefix + "_" + short, nil
}
