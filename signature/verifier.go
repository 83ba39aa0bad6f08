package signature

import (
	"crypto/hmac"
	"errors"
	"strings"
)

var (
	// ErrMissingSignature is returned when a request carries no signature.
	ErrMissingSignature = errors.New("scribe: missing signature")

	// ErrInvalidSignature is returned when a signature does not match the body.
	ErrInvalidSignature = errors.New("scribe: invalid signature")
)

// Verify checks whether sig matches the signature of payload under secret.
func Verify(payload []byte, secret, sig string) bool {
	expected := Sign(payload, secret)
	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(sig)))
}

// Verifier checks inbound request signatures against a fixed secret.
type Verifier struct {
	secret string
}

// NewVerifier returns a Verifier for secret. An empty secret disables
// verification.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

// Enabled reports whether a secret is configured.
func (v *Verifier) Enabled() bool {
	return v != nil && v.secret != ""
}

// Check validates the header value for payload. It always succeeds when the
// verifier is disabled.
func (v *Verifier) Check(payload []byte, header string) error {
	if !v.Enabled() {
		return nil
	}
	if strings.TrimSpace(header) == "" {
		return ErrMissingSignature
	}
	if !Verify(payload, v.secret, header) {
		return ErrInvalidSignature
	}
	return nil
}
