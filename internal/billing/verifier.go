package billing

import (
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v83"
)

// Verifier authenticates inbound webhook payloads against the shared
// endpoint secret. Verification is the only authentication this endpoint
// has; no handler code runs on failure.
type Verifier struct {
	secret string
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: strings.TrimSpace(secret)}
}

// Verify checks the Stripe-Signature header against the raw body and parses
// the event. Pure validation: no side effects.
func (v *Verifier) Verify(body []byte, sigHeader string) (stripe.Event, error) {
	if v.secret == "" || strings.TrimSpace(sigHeader) == "" {
		return stripe.Event{}, ErrNotConfigured
	}

	event, err := stripe.ConstructEvent(body, sigHeader, v.secret)
	if err != nil {
		return stripe.Event{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return event, nil
}
