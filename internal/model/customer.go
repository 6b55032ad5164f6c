package model

import "time"

// Customer links an internal user to their Stripe identity and membership.
// user_id is the primary key; it is issued by the identity provider, never
// generated here. A row only exists once a checkout has completed.
type Customer struct {
	UserID               string     `db:"user_id"`
	Membership           Membership `db:"membership"`
	StripeCustomerID     *string    `db:"stripe_customer_id"`     // nullable until linked
	StripeSubscriptionID *string    `db:"stripe_subscription_id"` // nullable
	CreatedAt            time.Time  `db:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at"`
}

// CustomerPatch carries the fields the reconciliation flow is allowed to
// change on an existing row.
type CustomerPatch struct {
	Membership           Membership
	StripeCustomerID     string
	StripeSubscriptionID string
}
