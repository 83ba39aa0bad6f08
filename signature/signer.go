// Package signature provides HMAC-SHA256 webhook signing and verification
// for the platform's X-Notion-Signature header.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Header is the request header carrying the signature.
const Header = "X-Notion-Signature"

const prefix = "sha256="

// Sign returns the signature of payload under secret in the format
// "sha256=<hex>". The secret is the subscription's verification token.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return prefix + hex.EncodeToString(mac.Sum(nil))
}
