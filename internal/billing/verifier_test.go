package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v83"
)

const testSecret = "whsec_test_secret"

// signPayload builds a Stripe-Signature header the way Stripe computes it:
// HMAC-SHA256 over "<timestamp>.<payload>".
func signPayload(secret string, payload []byte, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%d.%s", ts.Unix(), payload)))
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func testEventPayload() []byte {
	return []byte(fmt.Sprintf(
		`{"id":"evt_123","object":"event","type":"customer.subscription.updated","api_version":%q,"data":{"object":{"id":"sub_123"}}}`,
		stripe.APIVersion,
	))
}

func TestVerifyAcceptsSignedPayload(t *testing.T) {
	v := NewVerifier(testSecret)
	payload := testEventPayload()

	event, err := v.Verify(payload, signPayload(testSecret, payload, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "evt_123", event.ID)
	assert.Equal(t, "customer.subscription.updated", string(event.Type))
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	v := NewVerifier(testSecret)
	payload := testEventPayload()
	sig := signPayload(testSecret, payload, time.Now())

	tampered := append([]byte{}, payload...)
	tampered[len(tampered)-2] = 'X'

	_, err := v.Verify(tampered, sig)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	v := NewVerifier(testSecret)
	payload := testEventPayload()

	_, err := v.Verify(payload, signPayload("whsec_other", payload, time.Now()))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyRejectsStaleTimestamp(t *testing.T) {
	v := NewVerifier(testSecret)
	payload := testEventPayload()

	_, err := v.Verify(payload, signPayload(testSecret, payload, time.Now().Add(-time.Hour)))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyNotConfigured(t *testing.T) {
	payload := testEventPayload()

	_, err := NewVerifier("").Verify(payload, signPayload(testSecret, payload, time.Now()))
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewVerifier(testSecret).Verify(payload, "")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewVerifier("   ").Verify(payload, " ")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
