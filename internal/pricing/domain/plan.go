package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"

	catalogdomain "github.com/smallbiznis/fareway/internal/catalog/domain"
)

type ModifierKind string

const (
	ModifierTier        ModifierKind = "progressive_tier"
	ModifierRegional    ModifierKind = "regional_multiplier"
	ModifierPromo       ModifierKind = "promotional_discount"
	ModifierOrgDiscount ModifierKind = "organization_discount"
	ModifierMultiYear   ModifierKind = "multi_year_discount"
)

// Modifier is one step of the plan price fold. Building the chain and
// applying it are separate so the applied steps can be reported back to
// the caller in order.
type Modifier interface {
	Kind() ModifierKind
	Apply(cents int64) int64
	Detail() string
}

// tierOverride replaces the running price with a bracket's flat unit
// price, ignoring the incoming amount.
type tierOverride struct {
	unitPriceCents int64
	from           int64
	to             *int64
}

func (m tierOverride) Kind() ModifierKind     { return ModifierTier }
func (m tierOverride) Apply(int64) int64      { return m.unitPriceCents }
func (m tierOverride) Detail() string {
	if m.to == nil {
		return fmt.Sprintf("bracket %d+", m.from)
	}
	return fmt.Sprintf("bracket %d-%d", m.from, *m.to)
}

// multiplier scales the running price by a factor with round-half-up.
type multiplier struct {
	kind   ModifierKind
	factor float64
	detail string
}

func (m multiplier) Kind() ModifierKind { return m.kind }
func (m multiplier) Apply(cents int64) int64 {
	return MultiplyCents(cents, m.factor)
}
func (m multiplier) Detail() string { return m.detail }

// AppliedModifier records one fold step and the price after it ran.
type AppliedModifier struct {
	Kind            ModifierKind `json:"kind"`
	Detail          string       `json:"detail"`
	PriceAfterCents int64        `json:"price_after_cents"`
}

// PlanRequest asks for the price of one plan component. PlanID wins when
// both PlanID and PlanTier are set. BusinessTaxID marks a VAT-registered
// business buyer, which makes reverse charge applicable where the
// country's tax rule allows it.
type PlanRequest struct {
	OrgID         snowflake.ID `json:"organization_id"`
	PlanID        snowflake.ID `json:"plan_id,omitempty"`
	PlanTier      string       `json:"plan_tier,omitempty"`
	ServiceType   string       `json:"service_type,omitempty"`
	CountryCode   string       `json:"country_code,omitempty"`
	Quantity      int64        `json:"quantity"`
	TermYears     int          `json:"term_years,omitempty"`
	BusinessTaxID string       `json:"business_tax_id,omitempty"`
	Timestamp     time.Time    `json:"timestamp,omitempty"`
}

// PlanResolution is the priced outcome of the plan path.
type PlanResolution struct {
	PlanID         snowflake.ID      `json:"plan_id"`
	PlanTier       string            `json:"plan_tier"`
	Component      string            `json:"component"`
	Currency       string            `json:"currency"`
	BasePriceCents int64             `json:"base_price_cents"`
	UnitPriceCents int64             `json:"unit_price_cents"`
	Quantity       int64             `json:"quantity"`
	SubtotalCents  int64             `json:"subtotal_cents"`
	TaxCents       int64             `json:"tax_cents"`
	TotalCents     int64             `json:"total_cents"`
	TaxCode        string            `json:"tax_code,omitempty"`
	ReverseCharge  bool              `json:"reverse_charge"`
	Applied        []AppliedModifier `json:"applied_modifiers"`
	Warnings       []string          `json:"warnings,omitempty"`
}

// tierFor finds the bracket admitting the quantity. A malformed bracket
// set fails closed: no override, one warning.
func tierFor(plan *catalogdomain.BillingPlan, component string, quantity int64) (Modifier, string) {
	for _, set := range plan.ProgressiveTiers {
		if set.Component != component {
			continue
		}
		if err := catalogdomain.ValidateProgressiveTiers([]catalogdomain.ComponentTiers{set}); err != nil {
			return nil, ConfigurationWarning("plan %s component %s has malformed tiers, using base price", plan.Tier, component)
		}
		for _, tier := range set.Tiers {
			if quantity < tier.FromQuantity {
				continue
			}
			if tier.ToQuantity != nil && quantity > *tier.ToQuantity {
				continue
			}
			return tierOverride{
				unitPriceCents: tier.UnitPriceCents,
				from:           tier.FromQuantity,
				to:             tier.ToQuantity,
			}, ""
		}
		return nil, ""
	}
	return nil, ""
}

// regionalFor matches a country entry first, then a continent entry.
func regionalFor(plan *catalogdomain.BillingPlan, country string) Modifier {
	if country == "" {
		return nil
	}
	continent := ContinentOf(country)
	var continentMatch *catalogdomain.RegionalPrice
	for i := range plan.RegionalPricing {
		entry := &plan.RegionalPricing[i]
		switch entry.RegionType {
		case catalogdomain.RegionCountry:
			if strings.EqualFold(entry.RegionCode, country) {
				return multiplier{
					kind:   ModifierRegional,
					factor: entry.Multiplier,
					detail: fmt.Sprintf("country %s x%g", strings.ToUpper(country), entry.Multiplier),
				}
			}
		case catalogdomain.RegionContinent:
			if continent != "" && continentMatch == nil && strings.EqualFold(entry.RegionCode, continent) {
				continentMatch = entry
			}
		}
	}
	if continentMatch != nil {
		return multiplier{
			kind:   ModifierRegional,
			factor: continentMatch.Multiplier,
			detail: fmt.Sprintf("continent %s x%g", continent, continentMatch.Multiplier),
		}
	}
	return nil
}

// buildModifiers assembles the fold chain in its fixed order:
// tier, regional, promo, organization discount, multi-year. Missing
// modifiers are simply absent from the chain.
func buildModifiers(plan *catalogdomain.BillingPlan, component string, req PlanRequest) ([]Modifier, []string) {
	var chain []Modifier
	var warnings []string

	if tier, warning := tierFor(plan, component, req.Quantity); warning != "" {
		warnings = append(warnings, warning)
	} else if tier != nil {
		chain = append(chain, tier)
	}

	if regional := regionalFor(plan, req.CountryCode); regional != nil {
		chain = append(chain, regional)
	}

	promo := plan.PromotionalPricing.Data()
	if promo.IsActive && !req.Timestamp.Before(promo.StartAt) && !req.Timestamp.After(promo.EndAt) {
		chain = append(chain, multiplier{
			kind:   ModifierPromo,
			factor: 1 - promo.DiscountPercentage/100,
			detail: fmt.Sprintf("promo -%g%%", promo.DiscountPercentage),
		})
	}

	for _, discount := range plan.OrganizationDiscounts {
		if discount.OrgID == req.OrgID {
			chain = append(chain, multiplier{
				kind:   ModifierOrgDiscount,
				factor: 1 - discount.DiscountPercentage/100,
				detail: fmt.Sprintf("org discount -%g%%", discount.DiscountPercentage),
			})
			break
		}
	}

	multiYear := plan.MultiYearDiscounts.Data()
	var termPct float64
	switch req.TermYears {
	case 2:
		termPct = multiYear.TwoYear
	case 3:
		termPct = multiYear.ThreeYear
	}
	if termPct > 0 {
		chain = append(chain, multiplier{
			kind:   ModifierMultiYear,
			factor: 1 - termPct/100,
			detail: fmt.Sprintf("%d-year term -%g%%", req.TermYears, termPct),
		})
	}

	return chain, warnings
}

// ResolvePlanPrice prices a plan component against the catalog snapshot.
// The modifier fold order is fixed; reordering changes results.
func ResolvePlanPrice(snap *catalogdomain.Snapshot, req PlanRequest) (*PlanResolution, error) {
	if req.Quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.TermYears < 0 || req.TermYears > 3 {
		return nil, ErrInvalidTerm
	}
	if req.Timestamp.IsZero() {
		req.Timestamp = time.Now().UTC()
	}
	req.CountryCode = strings.ToUpper(strings.TrimSpace(req.CountryCode))

	var plan *catalogdomain.BillingPlan
	switch {
	case req.PlanID != 0:
		plan = snap.PlanByID(req.PlanID)
	case strings.TrimSpace(req.PlanTier) != "":
		plan = snap.PlanByTier(req.PlanTier)
	default:
		return nil, ErrInvalidPlanRef
	}
	if plan == nil {
		return nil, ErrNoApplicableRule
	}

	component := strings.TrimSpace(req.ServiceType)
	base := plan.BasePriceCents
	if component != "" {
		price, ok := plan.ComponentPricing.Data()[component]
		if !ok {
			return nil, ErrNoApplicableRule
		}
		base = price
	} else {
		component = "base"
	}

	chain, warnings := buildModifiers(plan, component, req)

	price := base
	applied := make([]AppliedModifier, 0, len(chain))
	for _, modifier := range chain {
		price = modifier.Apply(price)
		applied = append(applied, AppliedModifier{
			Kind:            modifier.Kind(),
			Detail:          modifier.Detail(),
			PriceAfterCents: price,
		})
	}

	subtotal := price * req.Quantity

	var taxCents int64
	var taxCode string
	var reverseCharge bool
	if req.CountryCode != "" {
		if rule := snap.TaxRuleFor(req.CountryCode); rule != nil {
			taxCode = rule.TaxCode
			if rule.ReverseChargeEligible && req.BusinessTaxID != "" {
				reverseCharge = true
			} else {
				taxCents = PercentOf(subtotal, rule.Rate)
			}
		}
	}

	return &PlanResolution{
		PlanID:         plan.ID,
		PlanTier:       plan.Tier,
		Component:      component,
		Currency:       plan.Currency,
		BasePriceCents: base,
		UnitPriceCents: price,
		Quantity:       req.Quantity,
		SubtotalCents:  subtotal,
		TaxCents:       taxCents,
		TotalCents:     subtotal + taxCents,
		TaxCode:        taxCode,
		ReverseCharge:  reverseCharge,
		Applied:        applied,
		Warnings:       warnings,
	}, nil
}
