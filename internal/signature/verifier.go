// Package signature authenticates inbound triggers: platform webhooks and
// durable-scheduler callbacks. Both schemes are HMAC-SHA256 over the raw
// request body with constant-time comparison; the scheduler scheme
// additionally binds the signature to the callback URL so a signature
// captured for one endpoint cannot be replayed against another.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrMissingSecret is returned by the constructors when a signing secret is
// absent. This is a fatal configuration error: it must stop startup, never
// degrade into per-request 401s.
var ErrMissingSecret = errors.New("signature: signing secret is not configured")

// ErrMissingBaseURL is returned when the callback verifier has no base URL
// to reconstruct expected callback URLs from.
var ErrMissingBaseURL = errors.New("signature: app base URL is not configured")

// WebhookVerifier validates platform webhook signatures: HMAC-SHA256 over
// the raw body, base64 (std) encoded, supplied in a request header.
type WebhookVerifier struct {
	secret []byte
}

// NewWebhookVerifier builds a verifier for the given shared secret.
func NewWebhookVerifier(secret string) (*WebhookVerifier, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &WebhookVerifier{secret: []byte(secret)}, nil
}

// Verify reports whether providedSig is a valid signature of body.
// It never panics; malformed or empty signatures are simply invalid.
func (v *WebhookVerifier) Verify(body []byte, providedSig string) bool {
	if providedSig == "" {
		return false
	}
	provided, err := base64.StdEncoding.DecodeString(providedSig)
	if err != nil {
		return false
	}
	expected := computeHMAC(v.secret, body)
	if len(provided) != len(expected) {
		return false
	}
	return hmac.Equal(provided, expected)
}

// Sign computes the base64 signature of body. Used by tests and tooling.
func (v *WebhookVerifier) Sign(body []byte) string {
	return base64.StdEncoding.EncodeToString(computeHMAC(v.secret, body))
}

// CallbackVerifier validates durable-scheduler callbacks. The signed message
// is "<callback URL>.<body>", hex encoded, where the callback URL is
// reconstructed from the configured base URL plus the request path. Two keys
// are active at once (current + next) for zero-downtime rotation; a
// signature matching either is accepted.
type CallbackVerifier struct {
	baseURL string
	keys    [][]byte
}

// NewCallbackVerifier builds a verifier for the given base URL and keys.
// nextKey may be empty when no rotation is in progress.
func NewCallbackVerifier(baseURL, currentKey, nextKey string) (*CallbackVerifier, error) {
	if currentKey == "" {
		return nil, ErrMissingSecret
	}
	if baseURL == "" {
		return nil, ErrMissingBaseURL
	}
	keys := [][]byte{[]byte(currentKey)}
	if nextKey != "" {
		keys = append(keys, []byte(nextKey))
	}
	return &CallbackVerifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		keys:    keys,
	}, nil
}

// Verify reports whether providedSig is a valid signature for a callback
// delivered to the given request path with the given raw body.
func (v *CallbackVerifier) Verify(path string, body []byte, providedSig string) bool {
	if providedSig == "" {
		return false
	}
	provided, err := hex.DecodeString(providedSig)
	if err != nil {
		return false
	}
	msg := v.message(path, body)
	for _, key := range v.keys {
		expected := computeHMAC(key, msg)
		if len(provided) == len(expected) && hmac.Equal(provided, expected) {
			return true
		}
	}
	return false
}

// Sign computes the hex signature the scheduler would send for the given
// path and body, using the current key. Used by tests and tooling.
func (v *CallbackVerifier) Sign(path string, body []byte) string {
	return hex.EncodeToString(computeHMAC(v.keys[0], v.message(path, body)))
}

func (v *CallbackVerifier) message(path string, body []byte) []byte {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	msg := make([]byte, 0, len(v.baseURL)+len(path)+1+len(body))
	msg = append(msg, v.baseURL...)
	msg = append(msg, path...)
	msg = append(msg, '.')
	msg = append(msg, body...)
	return msg
}

func computeHMAC(key, message []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(message)
	return h.Sum(nil)
}
