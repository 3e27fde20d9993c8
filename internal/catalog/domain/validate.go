package domain

import "strings"

func (p *ProviderCost) Validate() error {
	if strings.TrimSpace(p.ServiceType) == "" {
		return ErrInvalidServiceType
	}
	if strings.TrimSpace(p.ProviderName) == "" {
		return ErrInvalidProviderName
	}
	if p.CostPerUnitCents < 0 {
		return ErrInvalidCost
	}
	if strings.TrimSpace(p.Currency) == "" {
		return ErrInvalidCurrency
	}
	if p.EffectiveFrom.IsZero() {
		return ErrInvalidEffectiveFrom
	}
	return nil
}

func (r *MarkupRule) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	if strings.TrimSpace(r.ServiceType) == "" {
		return ErrInvalidServiceType
	}
	switch r.Scope {
	case ScopeGlobal:
		if r.TargetOrgID != nil {
			return ErrInvalidScope
		}
	case ScopeOrganization:
		if r.TargetOrgID == nil || *r.TargetOrgID == 0 {
			return ErrInvalidScope
		}
	default:
		return ErrInvalidScope
	}
	switch r.MarkupType {
	case MarkupFixed:
		if r.FixedMarkupCents == nil || *r.FixedMarkupCents < 0 {
			return ErrInvalidMarkupValue
		}
	case MarkupPercentage:
		if r.PercentageMarkup == nil || *r.PercentageMarkup < 0 {
			return ErrInvalidMarkupValue
		}
	case MarkupBoth:
		if r.FixedMarkupCents == nil || *r.FixedMarkupCents < 0 {
			return ErrInvalidMarkupValue
		}
		if r.PercentageMarkup == nil || *r.PercentageMarkup < 0 {
			return ErrInvalidMarkupValue
		}
	default:
		return ErrInvalidMarkupType
	}
	if r.EffectiveFrom.IsZero() {
		return ErrInvalidEffectiveFrom
	}
	return nil
}

// ValidateProgressiveTiers enforces that every component's brackets are
// ascending, contiguous, and non-overlapping, with an optional open-ended
// final bracket.
func ValidateProgressiveTiers(components []ComponentTiers) error {
	for _, component := range components {
		if strings.TrimSpace(component.Component) == "" {
			return ErrInvalidServiceType
		}
		if err := validateTierSet(component.Tiers); err != nil {
			return err
		}
	}
	return nil
}

func validateTierSet(tiers []PriceTier) error {
	if len(tiers) == 0 {
		return ErrInvalidTierBounds
	}
	for i, tier := range tiers {
		if tier.FromQuantity < 1 {
			return ErrInvalidTierBounds
		}
		if tier.UnitPriceCents < 0 {
			return ErrInvalidCost
		}
		if tier.ToQuantity != nil && *tier.ToQuantity < tier.FromQuantity {
			return ErrInvalidTierBounds
		}
		if i < len(tiers)-1 {
			// only the last bracket may be open-ended
			if tier.ToQuantity == nil {
				return ErrInvalidTierBounds
			}
			if tiers[i+1].FromQuantity != *tier.ToQuantity+1 {
				return ErrInvalidTierBounds
			}
		}
	}
	return nil
}

func (p *BillingPlan) Validate() error {
	if strings.TrimSpace(p.Tier) == "" {
		return ErrInvalidName
	}
	if p.BasePriceCents < 0 {
		return ErrInvalidCost
	}
	if strings.TrimSpace(p.Currency) == "" {
		return ErrInvalidCurrency
	}
	for _, price := range p.ComponentPricing.Data() {
		if price < 0 {
			return ErrInvalidCost
		}
	}
	for _, regional := range p.RegionalPricing {
		if regional.RegionType != RegionCountry && regional.RegionType != RegionContinent {
			return ErrInvalidMultiplier
		}
		if strings.TrimSpace(regional.RegionCode) == "" || regional.Multiplier <= 0 {
			return ErrInvalidMultiplier
		}
	}
	if err := ValidateProgressiveTiers(p.ProgressiveTiers); err != nil {
		return err
	}
	promo := p.PromotionalPricing.Data()
	if promo.IsActive {
		if promo.DiscountPercentage < 0 || promo.DiscountPercentage > 100 {
			return ErrInvalidDiscount
		}
		if !promo.EndAt.After(promo.StartAt) {
			return ErrInvalidDiscount
		}
	}
	for _, discount := range p.OrganizationDiscounts {
		if discount.OrgID == 0 || discount.DiscountPercentage < 0 || discount.DiscountPercentage > 100 {
			return ErrInvalidDiscount
		}
	}
	multiYear := p.MultiYearDiscounts.Data()
	if multiYear.TwoYear < 0 || multiYear.TwoYear > 100 || multiYear.ThreeYear < 0 || multiYear.ThreeYear > 100 {
		return ErrInvalidDiscount
	}
	return nil
}

func (t *TaxRule) Validate() error {
	if len(strings.TrimSpace(t.Country)) != 2 {
		return ErrInvalidCountry
	}
	if t.Rate < 0 || t.Rate > 100 {
		return ErrInvalidTaxRate
	}
	if strings.TrimSpace(t.TaxCode) == "" {
		return ErrInvalidTaxRate
	}
	return nil
}
