// Package validation provides functionality for validating webhook signatures to verify request authenticity.
package validation

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // GitHub signs X-Hub-Signature with HMAC-SHA1.
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/google/go-github/v84/github"
)

// SignaturePrefix is prepended to the hex digest carried by the signature header.
const SignaturePrefix = "sha1="

// ErrInvalidSignature is returned when the request signature does not match the payload.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Sign returns the signature header value GitHub would send for body keyed by secret.
func Sign(body, secret []byte) string {
	mac := hmac.New(sha1.New, secret)
	_, _ = mac.Write(body)
	return SignaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signatureHeader is the HMAC-SHA1 signature of body keyed by secret.
// The comparison runs in constant time over the formatted header value.
// A missing header or an unset secret never verifies.
func Verify(signatureHeader string, body, secret []byte) bool {
	if len(signatureHeader) == 0 || len(secret) == 0 {
		return false
	}
	expected := Sign(body, secret)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signatureHeader)) == 1
}

// WebhookSecret represents a secret used to validate webhook signatures for verifying request authenticity.
type WebhookSecret []byte

// NewWebhookSecret creates a new WebhookSecret from the provided secret string.
func NewWebhookSecret(secret string) WebhookSecret {
	return WebhookSecret(secret)
}

// IsSet reports whether a non-empty secret is configured.
func (s WebhookSecret) IsSet() bool {
	return len(s) > 0
}

// ValidateSignature validates the X-Hub-Signature header found in headers against body.
// Header keys are expected to be lower-cased.
func (s WebhookSecret) ValidateSignature(body []byte, headers map[string]string) error {
	signature := headers[strings.ToLower(github.SHA1SignatureHeader)]
	if !Verify(signature, body, s) {
		return ErrInvalidSignature
	}
	return nil
}
