package billing

import "github.com/promptdeck/promptdeck/internal/model"

// MembershipFromSubscriptionStatus maps a Stripe subscription status to the
// internal membership tier. Total function: unknown statuses degrade to free
// (fail-closed: prefer under-granting access over over-granting it).
func MembershipFromSubscriptionStatus(status string) model.Membership {
	switch status {
	case "active", "trialing":
		return model.MembershipPro
	case "canceled", "incomplete", "incomplete_expired", "past_due", "paused", "unpaid":
		return model.MembershipFree
	default:
		return model.MembershipFree
	}
}
