package utils

import "strings"

// MaskEmail masks an email address for safe logging.
// Example: "user@example.com" -> "u***@example.com"
func MaskEmail(email string) string {
	parts := strings.SplitN(email, "@", 2)
	if len(parts) != 2 {
		return "***"
	}
	local := parts[0]
	if len(local) <= 1 {
		return local + "***@" + parts[1]
	}
	return string(local[0]) + "***@" + parts[1]
}

// MaskSecret keeps the first and last four characters of a credential.
// Example: "sdngKKJmqEMzvh5QQcdD2A9XBSKUNaYn" -> "sdng***NaYn"
func MaskSecret(secret string) string {
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:4] + "***" + secret[len(secret)-4:]
}

// maskedParams lists request fields never logged in clear.
var maskedParams = map[string]bool{
	"mac":  true,
	"key1": true,
	"key2": true,
}

// MaskParams returns a copy of params with credential-bearing fields masked.
func MaskParams(params map[string]string) map[string]string {
	out := make(map[string]string, len(params))
	for k, v := range params {
		if maskedParams[k] {
			out[k] = MaskSecret(v)
			continue
		}
		out[k] = v
	}
	return out
}
