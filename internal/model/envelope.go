package model

// MembershipChange is the payload published to Kafka (via Debezium outbox SMT)
// whenever reconciliation changes a customer row.
type MembershipChange struct {
	UserID         string     `json:"user_id"`
	Membership     Membership `json:"membership"`
	PrevMembership Membership `json:"prev_membership,omitempty"`
	SubscriptionID string     `json:"subscription_id,omitempty"`
}
