package clickupsync

import (
	"testing"
	"time"

	"github.com/begoneskadedjur/kundportal-sub005/models"
	"github.com/shopspring/decimal"
)

func decPtr(s string) *decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return &d
}

func TestCommission(t *testing.T) {
	cases := []struct {
		name     string
		price    *decimal.Decimal
		category models.CaseFamily
		expected string
	}{
		{"private flat rate", decPtr("1000"), models.CaseFamilyPrivate, "50"},
		{"contract flat rate", decPtr("1000"), models.CaseFamilyContract, "50"},
		{"business vat removed first", decPtr("1250"), models.CaseFamilyBusiness, "50"},
		{"business rounding", decPtr("999"), models.CaseFamilyBusiness, "39.96"},
		{"private rounding", decPtr("1234.56"), models.CaseFamilyPrivate, "61.73"},
	}
	for _, tc := range cases {
		got := Commission(tc.price, tc.category)
		if got == nil {
			t.Fatalf("%s: expected %s, got nil", tc.name, tc.expected)
		}
		if got.String() != tc.expected {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.expected, got)
		}
	}
}

func TestCommission_NoPriceNoCommission(t *testing.T) {
	for _, price := range []*decimal.Decimal{nil, decPtr("0"), decPtr("-500")} {
		if got := Commission(price, models.CaseFamilyPrivate); got != nil {
			t.Fatalf("price %v: expected nil commission, got %s", price, got)
		}
	}
}

func TestResolveCommission_NonTerminalClears(t *testing.T) {
	prevAt := fixedNow.Add(-24 * time.Hour)
	amount, at := resolveCommission(
		CommissionOnTransition, decPtr("1000"), models.CaseFamilyPrivate,
		false, true, decPtr("50"), &prevAt, fixedNow,
	)
	if amount != nil || at != nil {
		t.Fatalf("non-terminal status must clear commission, got %v / %v", amount, at)
	}
}

func TestResolveCommission_TransitionComputesOnce(t *testing.T) {
	// Open -> terminal: compute fresh.
	amount, at := resolveCommission(
		CommissionOnTransition, decPtr("1000"), models.CaseFamilyPrivate,
		true, false, nil, nil, fixedNow,
	)
	if amount == nil || amount.String() != "50" {
		t.Fatalf("expected fresh commission 50, got %v", amount)
	}
	if at == nil || !at.Equal(fixedNow) {
		t.Fatalf("expected calculatedAt=now, got %v", at)
	}

	// Terminal -> terminal with an edited price: carry the stored values.
	prevAt := fixedNow.Add(-24 * time.Hour)
	amount, at = resolveCommission(
		CommissionOnTransition, decPtr("9999"), models.CaseFamilyPrivate,
		true, true, decPtr("50"), &prevAt, fixedNow,
	)
	if amount == nil || amount.String() != "50" {
		t.Fatalf("expected carried commission 50, got %v", amount)
	}
	if at == nil || !at.Equal(prevAt) {
		t.Fatalf("expected carried calculatedAt, got %v", at)
	}
}

func TestResolveCommission_AlwaysRecomputes(t *testing.T) {
	prevAt := fixedNow.Add(-24 * time.Hour)
	amount, at := resolveCommission(
		CommissionRecomputeAlways, decPtr("2000"), models.CaseFamilyPrivate,
		true, true, decPtr("50"), &prevAt, fixedNow,
	)
	if amount == nil || amount.String() != "100" {
		t.Fatalf("expected recomputed commission 100, got %v", amount)
	}
	if at == nil || !at.Equal(fixedNow) {
		t.Fatalf("expected calculatedAt=now, got %v", at)
	}
}

func TestCommissionPolicyFromEnv(t *testing.T) {
	t.Setenv("COMMISSION_POLICY", "")
	if got := CommissionPolicyFromEnv(); got != CommissionOnTransition {
		t.Fatalf("expected default transition policy, got %s", got)
	}
	t.Setenv("COMMISSION_POLICY", "always")
	if got := CommissionPolicyFromEnv(); got != CommissionRecomputeAlways {
		t.Fatalf("expected always policy, got %s", got)
	}
	t.Setenv("COMMISSION_POLICY", "nonsense")
	if got := CommissionPolicyFromEnv(); got != CommissionOnTransition {
		t.Fatalf("unknown value must fall back to transition, got %s", got)
	}
}
