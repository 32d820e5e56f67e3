// Package mac computes and verifies HMAC-SHA256 message authentication codes
// over the pipe-joined canonical strings used by the ZaloPay wire protocol.
package mac

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Separator joins the fields of a canonical mac preimage.
const Separator = "|"

// Sign returns the lowercase hex HMAC-SHA256 of data keyed with key.
func Sign(key, data string) string {
	h := hmac.New(sha256.New, []byte(key))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// Verify reports whether candidate is the mac of data under key.
// The comparison runs in constant time over the decoded digests; a candidate
// that is not valid hex never verifies.
func Verify(key, data, candidate string) bool {
	got, err := hex.DecodeString(strings.ToLower(candidate))
	if err != nil || len(got) != sha256.Size {
		return false
	}

	h := hmac.New(sha256.New, []byte(key))
	h.Write([]byte(data))
	return hmac.Equal(h.Sum(nil), got)
}

// Join builds a canonical preimage from fields in the given order.
func Join(fields ...string) string {
	return strings.Join(fields, Separator)
}
