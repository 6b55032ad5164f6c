package model

import "strings"

type Membership string

const (
	MembershipFree Membership = "free"
	MembershipPro  Membership = "pro"
)

func (m Membership) String() string { return string(m) }

func (m Membership) Valid() bool {
	return m == MembershipFree || m == MembershipPro
}

// ParseMembership normalizes input; empty => free.
// Returns (value, true) if valid; otherwise (free, false).
func ParseMembership(s string) (Membership, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "free":
		return MembershipFree, true
	case "pro":
		return MembershipPro, true
	default:
		return MembershipFree, false
	}
}
