package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/promptdeck/promptdeck/internal/model"
)

func TestMembershipFromSubscriptionStatus(t *testing.T) {
	cases := []struct {
		status string
		want   model.Membership
	}{
		{"active", model.MembershipPro},
		{"trialing", model.MembershipPro},
		{"canceled", model.MembershipFree},
		{"incomplete", model.MembershipFree},
		{"incomplete_expired", model.MembershipFree},
		{"past_due", model.MembershipFree},
		{"paused", model.MembershipFree},
		{"unpaid", model.MembershipFree},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, MembershipFromSubscriptionStatus(tc.status), "status %q", tc.status)
	}
}

func TestMembershipFromSubscriptionStatusUnknownDegradesToFree(t *testing.T) {
	// Statuses Stripe may introduce later must never grant pro by accident.
	for _, status := range []string{"", "ACTIVE", "Active ", "super_active", "grandfathered", "something_new"} {
		assert.Equal(t, model.MembershipFree, MembershipFromSubscriptionStatus(status), "status %q", status)
	}
}
