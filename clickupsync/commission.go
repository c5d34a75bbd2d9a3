package clickupsync

import (
	"os"
	"strings"
	"time"

	"github.com/begoneskadedjur/kundportal-sub005/models"
	"github.com/shopspring/decimal"
)

// CommissionPolicy names the recomputation behaviour for already-completed
// cases. The legacy system recomputed on every re-sync, silently overwriting
// a commission when a price was edited after completion; the transition-only
// policy is the default here.
type CommissionPolicy string

const (
	// CommissionOnTransition computes commission only when a sync moves a
	// case from an open status into a terminal one. While the case stays
	// terminal the stored commission is carried forward untouched.
	CommissionOnTransition CommissionPolicy = "transition"

	// CommissionRecomputeAlways recomputes on every sync of a terminal case.
	CommissionRecomputeAlways CommissionPolicy = "always"
)

func CommissionPolicyFromEnv() CommissionPolicy {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("COMMISSION_POLICY"))) {
	case string(CommissionRecomputeAlways):
		return CommissionRecomputeAlways
	default:
		return CommissionOnTransition
	}
}

var (
	commissionRate = decimal.NewFromFloat(0.05)
	// Business prices include 25% VAT; commission is computed on the net.
	businessGrossFactor = decimal.NewFromFloat(1.25)
)

// Commission computes the technician commission for a completed case.
// Missing, zero or negative prices yield nil, never an error; this runs deep
// inside batch loops where a bad record must not abort the rest.
func Commission(price *decimal.Decimal, category models.CaseFamily) *decimal.Decimal {
	if price == nil || price.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	net := *price
	if category == models.CaseFamilyBusiness {
		net = price.Div(businessGrossFactor)
	}

	amount := net.Mul(commissionRate).Round(2)
	return &amount
}

// resolveCommission applies the policy for one sync. Non-terminal statuses
// always clear the pair; a terminal status computes it fresh on the open ->
// terminal transition (or always, under the legacy policy) and otherwise
// carries the previously stored values forward.
func resolveCommission(
	policy CommissionPolicy,
	price *decimal.Decimal,
	category models.CaseFamily,
	isTerminal bool,
	wasTerminal bool,
	prevAmount *decimal.Decimal,
	prevCalculatedAt *time.Time,
	now time.Time,
) (*decimal.Decimal, *time.Time) {
	if !isTerminal {
		return nil, nil
	}

	if policy == CommissionOnTransition && wasTerminal {
		return prevAmount, prevCalculatedAt
	}

	amount := Commission(price, category)
	if amount == nil {
		return nil, nil
	}
	calculatedAt := now.UTC()
	return amount, &calculatedAt
}
