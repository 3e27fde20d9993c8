package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	CreateProviderCost(ctx context.Context, req CreateProviderCostRequest) (*ProviderCost, error)
	DeactivateProviderCost(ctx context.Context, id string) (*ProviderCost, error)
	ListProviderCosts(ctx context.Context) ([]ProviderCost, error)

	CreateMarkupRule(ctx context.Context, req CreateMarkupRuleRequest) (*MarkupRule, error)
	DeactivateMarkupRule(ctx context.Context, id string) error
	ListMarkupRules(ctx context.Context) ([]MarkupRule, error)

	CreatePlan(ctx context.Context, req CreatePlanRequest) (*BillingPlan, error)
	ListPlans(ctx context.Context) ([]BillingPlan, error)

	CreateTaxRule(ctx context.Context, req CreateTaxRuleRequest) (*TaxRule, error)
	ListTaxRules(ctx context.Context) ([]TaxRule, error)
	ListCurrencies(ctx context.Context) ([]Currency, error)
}

type CreateProviderCostRequest struct {
	ServiceType      string     `json:"service_type"`
	ProviderName     string     `json:"provider_name"`
	CostPerUnitCents int64      `json:"cost_per_unit_cents"`
	Currency         string     `json:"currency"`
	EffectiveFrom    *time.Time `json:"effective_from"`
}

type CreateMarkupRuleRequest struct {
	Name             string      `json:"name"`
	ServiceType      string      `json:"service_type"`
	Scope            MarkupScope `json:"scope"`
	TargetOrgID      string      `json:"target_organization_id"`
	MarkupType       MarkupType  `json:"markup_type"`
	FixedMarkupCents *int64      `json:"fixed_markup_cents"`
	PercentageMarkup *float64    `json:"percentage_markup"`
	Priority         int32       `json:"priority"`
	EffectiveFrom    *time.Time  `json:"effective_from"`
}

type CreatePlanRequest struct {
	Tier                  string                 `json:"tier"`
	Name                  string                 `json:"name"`
	BasePriceCents        int64                  `json:"base_price_cents"`
	Currency              string                 `json:"currency"`
	ComponentPricing      map[string]int64       `json:"component_pricing"`
	RegionalPricing       []RegionalPrice        `json:"regional_pricing"`
	ProgressiveTiers      []ComponentTiers       `json:"progressive_tiers"`
	PromotionalPricing    *PromotionalPricing    `json:"promotional_pricing"`
	OrganizationDiscounts []OrganizationDiscount `json:"organization_discounts"`
	MultiYearDiscounts    *MultiYearDiscounts    `json:"multi_year_discounts"`
	WhiteLabelPricing     *WhiteLabelPricing     `json:"white_label_pricing"`
}

type CreateTaxRuleRequest struct {
	Country               string  `json:"country"`
	Rate                  float64 `json:"rate"`
	ReverseChargeEligible bool    `json:"reverse_charge_eligible"`
	TaxCode               string  `json:"tax_code"`
}

// SnapshotProvider yields the current rule-catalog snapshot. Implemented
// by the snapshot holder; consumed by pricing and routing.
type SnapshotProvider interface {
	Current() *Snapshot
}

// ParseID parses a string form snowflake identifier.
func ParseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(raw)
}
