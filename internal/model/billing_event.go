package model

import "time"

// BillingEventOutcome classifies how a verified webhook event ended up.
type BillingEventOutcome string

const (
	OutcomeProcessed BillingEventOutcome = "processed"
	OutcomeIgnored   BillingEventOutcome = "ignored"
	OutcomeAnomaly   BillingEventOutcome = "anomaly"
	OutcomeFailed    BillingEventOutcome = "failed"
)

func (o BillingEventOutcome) String() string { return string(o) }

func (o BillingEventOutcome) Valid() bool {
	switch o {
	case OutcomeProcessed, OutcomeIgnored, OutcomeAnomaly, OutcomeFailed:
		return true
	}
	return false
}

// BillingEvent is the append-only audit row written to ClickHouse for every
// verified webhook delivery.
type BillingEvent struct {
	EventID          string              `db:"event_id"           json:"event_id"`
	Type             string              `db:"type"               json:"type"`
	UserID           string              `db:"user_id"            json:"user_id,omitempty"` // empty when the event carries none
	StripeCustomerID string              `db:"stripe_customer_id" json:"stripe_customer_id,omitempty"`
	SubscriptionID   string              `db:"subscription_id"    json:"subscription_id,omitempty"`
	Outcome          BillingEventOutcome `db:"outcome"            json:"outcome"`
	Detail           string              `db:"detail"             json:"detail,omitempty"`
	CreatedAt        time.Time           `db:"created_at"         json:"created_at"`
}
