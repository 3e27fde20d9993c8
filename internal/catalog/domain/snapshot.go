package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Snapshot is an immutable view of the rule catalog loaded at a point in
// time. Resolution code operates on snapshots only and never reads the
// store directly, so concurrent refreshes cannot change a computation
// mid-flight.
type Snapshot struct {
	ProviderCosts []ProviderCost
	MarkupRules   []MarkupRule
	Plans         []BillingPlan
	TaxRules      []TaxRule
	Currencies    []Currency
	LoadedAt      time.Time
}

// ProviderCostFor returns the active cost row for a service type whose
// effective_from is not in the future, preferring the most recently
// effective one. A non-empty providerName restricts the lookup to that
// provider's rows. Returns nil when no active cost matches.
func (s *Snapshot) ProviderCostFor(serviceType, providerName string, at time.Time) *ProviderCost {
	serviceType = strings.TrimSpace(serviceType)
	providerName = strings.TrimSpace(providerName)
	var best *ProviderCost
	for i := range s.ProviderCosts {
		cost := &s.ProviderCosts[i]
		if !cost.IsActive || cost.ServiceType != serviceType {
			continue
		}
		if providerName != "" && !strings.EqualFold(cost.ProviderName, providerName) {
			continue
		}
		if cost.EffectiveFrom.After(at) {
			continue
		}
		if best == nil || cost.EffectiveFrom.After(best.EffectiveFrom) {
			best = cost
		}
	}
	return best
}

// PlanByID returns the active plan with the given ID, or nil.
func (s *Snapshot) PlanByID(id snowflake.ID) *BillingPlan {
	for i := range s.Plans {
		if s.Plans[i].ID == id && s.Plans[i].IsActive {
			return &s.Plans[i]
		}
	}
	return nil
}

// PlanByTier returns the active plan with the given tier name, or nil.
func (s *Snapshot) PlanByTier(tier string) *BillingPlan {
	tier = strings.TrimSpace(tier)
	for i := range s.Plans {
		if s.Plans[i].IsActive && strings.EqualFold(s.Plans[i].Tier, tier) {
			return &s.Plans[i]
		}
	}
	return nil
}

// TaxRuleFor returns the active tax rule for a country, or nil.
func (s *Snapshot) TaxRuleFor(country string) *TaxRule {
	country = strings.ToUpper(strings.TrimSpace(country))
	for i := range s.TaxRules {
		if s.TaxRules[i].IsActive && strings.ToUpper(s.TaxRules[i].Country) == country {
			return &s.TaxRules[i]
		}
	}
	return nil
}

// CurrencyFor returns the currency metadata for a code, or nil.
func (s *Snapshot) CurrencyFor(code string) *Currency {
	code = strings.ToUpper(strings.TrimSpace(code))
	for i := range s.Currencies {
		if strings.ToUpper(s.Currencies[i].Code) == code {
			return &s.Currencies[i]
		}
	}
	return nil
}
