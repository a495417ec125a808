package enums

// BillingOutcome is the abstract classification every provider-specific
// billing event is mapped into before it can touch entitlement state.
type BillingOutcome string

const (
	// BillingOutcomeActivation covers purchases, renewals, plan changes and
	// un-cancellations.
	BillingOutcomeActivation BillingOutcome = "activation"
	// BillingOutcomeDeactivation covers expirations, billing failures and
	// cancellations.
	BillingOutcomeDeactivation BillingOutcome = "deactivation"
	// BillingOutcomeIgnored marks event types the reconciler does not
	// recognize. Ignored events must never flip entitlement state.
	BillingOutcomeIgnored BillingOutcome = "ignored"
)

// String implements fmt.Stringer.
func (o BillingOutcome) String() string {
	return string(o)
}
