package billing

import "errors"

var (
	// ErrNotConfigured is returned when the webhook secret or the signature
	// header is absent. A deployment problem, not a forged request.
	ErrNotConfigured = errors.New("webhook verification not configured")

	// ErrInvalidSignature is returned when the payload fails cryptographic
	// verification. Nothing downstream may run after this.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrMalformedEvent is returned when a recognized event type is missing
	// required fields. Surfaced as a processing failure so Stripe redelivers.
	ErrMalformedEvent = errors.New("malformed webhook event")

	// ErrUpstreamUnavailable is returned when the subscription fetch from
	// Stripe fails. Never swallowed: membership decisions must come from
	// authoritative status, not the event's embedded copy.
	ErrUpstreamUnavailable = errors.New("stripe subscription fetch failed")
)
