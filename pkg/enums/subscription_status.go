package enums

import "fmt"

// SubscriptionStatus is the canonical entitlement state stored on the user
// profile. It is only ever set from billing-provider-confirmed events.
type SubscriptionStatus string

const (
	SubscriptionStatusNone    SubscriptionStatus = "none"
	SubscriptionStatusActive  SubscriptionStatus = "active"
	SubscriptionStatusExpired SubscriptionStatus = "expired"
	SubscriptionStatusTrial   SubscriptionStatus = "trial"
)

var validSubscriptionStatuses = []SubscriptionStatus{
	SubscriptionStatusNone,
	SubscriptionStatusActive,
	SubscriptionStatusExpired,
	SubscriptionStatusTrial,
}

// String implements fmt.Stringer.
func (s SubscriptionStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s SubscriptionStatus) IsValid() bool {
	for _, candidate := range validSubscriptionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsEntitling reports whether the status grants access on its own.
func (s SubscriptionStatus) IsEntitling() bool {
	return s == SubscriptionStatusActive || s == SubscriptionStatusTrial
}

// ParseSubscriptionStatus converts raw input into a SubscriptionStatus.
func ParseSubscriptionStatus(value string) (SubscriptionStatus, error) {
	for _, candidate := range validSubscriptionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid subscription status %q", value)
}
