package enums

import "fmt"

// SubscriptionPlatform records which store the entitlement was purchased on.
type SubscriptionPlatform string

const (
	SubscriptionPlatformIOS     SubscriptionPlatform = "ios"
	SubscriptionPlatformAndroid SubscriptionPlatform = "android"
	SubscriptionPlatformWeb     SubscriptionPlatform = "web"
)

var validSubscriptionPlatforms = []SubscriptionPlatform{
	SubscriptionPlatformIOS,
	SubscriptionPlatformAndroid,
	SubscriptionPlatformWeb,
}

// String implements fmt.Stringer.
func (p SubscriptionPlatform) String() string {
	return string(p)
}

// IsValid reports whether the value is known.
func (p SubscriptionPlatform) IsValid() bool {
	for _, candidate := range validSubscriptionPlatforms {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseSubscriptionPlatform converts raw input into a SubscriptionPlatform.
func ParseSubscriptionPlatform(value string) (SubscriptionPlatform, error) {
	for _, candidate := range validSubscriptionPlatforms {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid subscription platform %q", value)
}
