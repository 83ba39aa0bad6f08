package signature_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/xraph/scribe/signature"
)

func TestSignKnownVector(t *testing.T) {
	payload := []byte(`{"type":"page.created"}`)
	secret := "secret_testtoken123"

	got := signature.Sign(payload, secret)

	// Compute expected HMAC-SHA256 independently.
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	if got != expected {
		t.Errorf("Sign() = %q, want %q", got, expected)
	}
}

func TestSignatureFormat(t *testing.T) {
	sig := signature.Sign([]byte("test"), "secret")

	if len(sig) < 7 || sig[:7] != "sha256=" {
		t.Errorf("signature should start with 'sha256=', got %q", sig)
	}

	// sha256= prefix (7) + 64 hex chars
	if len(sig) != 71 {
		t.Errorf("expected signature length 71, got %d", len(sig))
	}
}

func TestVerify(t *testing.T) {
	payload := []byte(`{"id":"evt"}`)
	secret := "secret_roundtrip"
	sig := signature.Sign(payload, secret)

	if !signature.Verify(payload, secret, sig) {
		t.Error("Verify() returned false for valid signature")
	}
	if signature.Verify([]byte(`{"id":"other"}`), secret, sig) {
		t.Error("Verify() returned true for tampered payload")
	}
	if signature.Verify(payload, "secret_wrong", sig) {
		t.Error("Verify() returned true for wrong secret")
	}
}

func TestVerifierCheck(t *testing.T) {
	payload := []byte(`{"id":"evt"}`)
	v := signature.NewVerifier("secret_x")

	if err := v.Check(payload, signature.Sign(payload, "secret_x")); err != nil {
		t.Errorf("valid signature rejected: %v", err)
	}
	if err := v.Check(payload, ""); !errors.Is(err, signature.ErrMissingSignature) {
		t.Errorf("expected ErrMissingSignature, got %v", err)
	}
	if err := v.Check(payload, "sha256=deadbeef"); !errors.Is(err, signature.ErrInvalidSignature) {
		t.Errorf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifierDisabled(t *testing.T) {
	v := signature.NewVerifier("")
	if v.Enabled() {
		t.Error("empty secret should disable verification")
	}
	if err := v.Check([]byte("x"), ""); err != nil {
		t.Errorf("disabled verifier should accept, got %v", err)
	}

	var nilV *signature.Verifier
	if err := nilV.Check([]byte("x"), ""); err != nil {
		t.Errorf("nil verifier should accept, got %v", err)
	}
}
