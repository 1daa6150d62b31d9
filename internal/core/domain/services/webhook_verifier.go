package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"orderflow/internal/pkg/errs"
)

// ProviderMode selects which signature field of a webhook header is
// authoritative. It is a closed variant resolved once from configuration;
// the header itself never selects the mode, so a live deployment can never
// accept a test signature or vice versa.
type ProviderMode string

const (
	// ModeTest validates the "te" signature field.
	ModeTest ProviderMode = "test"
	// ModeLive validates the "li" signature field.
	ModeLive ProviderMode = "live"
)

// ParseProviderMode resolves a configuration string into a ProviderMode.
func ParseProviderMode(s string) (ProviderMode, error) {
	switch ProviderMode(s) {
	case ModeTest, ModeLive:
		return ProviderMode(s), nil
	}
	return "", errs.NewValueIsInvalidErrorWithCause("providerMode",
		fmt.Errorf("%q is not a valid provider mode", s))
}

// signatureField returns the header key carrying the mode's signature.
func (m ProviderMode) signatureField() string {
	if m == ModeLive {
		return "li"
	}
	return "te"
}

// signatureMaxAge is the replay/freshness window. A notification whose
// timestamp differs from the current time by more than this is rejected
// even when its signature is valid. The boundary is inclusive.
const signatureMaxAge = 300 * time.Second

// WebhookVerifier authenticates inbound payment-provider notifications.
//
// The provider signs the exact raw request bytes: the signature header carries
// comma-separated key=value pairs with a unix timestamp "t" and per-mode
// signatures, and the signature is HMAC-SHA256(secret, "{t}.{rawBody}") in
// lowercase hex. Verification recomputes the digest, compares it in constant
// time, and enforces the freshness window.
//
// Verify never panics; any malformed header, missing field, or length
// mismatch yields false.
type WebhookVerifier struct {
	secret []byte
	mode   ProviderMode
	now    func() time.Time
}

// NewWebhookVerifier creates a verifier for the given signing secret and mode.
func NewWebhookVerifier(secret string, mode ProviderMode) (WebhookVerifier, error) {
	if secret == "" {
		return WebhookVerifier{}, errs.NewValueIsRequiredError("webhookSecret")
	}
	if _, err := ParseProviderMode(string(mode)); err != nil {
		return WebhookVerifier{}, err
	}

	return WebhookVerifier{
		secret: []byte(secret),
		mode:   mode,
		now:    time.Now,
	}, nil
}

// Mode returns the verifier's configured provider mode.
func (v WebhookVerifier) Mode() ProviderMode {
	return v.mode
}

// Verify reports whether the signature header authenticates rawBody.
//
// The check fails when:
//   - the header cannot be parsed into key=value pairs
//   - the "t" timestamp or the mode's signature field is missing
//   - the recomputed HMAC does not match (constant-time comparison)
//   - |now - t| exceeds the freshness window (300 s inclusive)
func (v WebhookVerifier) Verify(rawBody []byte, signatureHeader string) bool {
	if len(v.secret) == 0 || signatureHeader == "" {
		return false
	}

	pairs := parseSignatureHeader(signatureHeader)

	rawTS, ok := pairs["t"]
	if !ok {
		return false
	}
	ts, err := strconv.ParseInt(rawTS, 10, 64)
	if err != nil {
		return false
	}

	sigHex, ok := pairs[v.mode.signatureField()]
	if !ok || sigHex == "" {
		return false
	}
	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(rawTS))
	mac.Write([]byte("."))
	mac.Write(rawBody)
	expected := mac.Sum(nil)

	// hmac.Equal is constant-time and false on length mismatch.
	if !hmac.Equal(expected, sig) {
		return false
	}

	age := v.now().Unix() - ts
	if age < 0 {
		age = -age
	}
	return age <= int64(signatureMaxAge/time.Second)
}

// parseSignatureHeader splits "k1=v1,k2=v2" into a map.
// Malformed segments are ignored; later duplicates win.
func parseSignatureHeader(header string) map[string]string {
	pairs := make(map[string]string)
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 || kv[0] == "" {
			continue
		}
		pairs[kv[0]] = kv[1]
	}
	return pairs
}
