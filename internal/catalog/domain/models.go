package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ServiceTypeAll is the wildcard a markup rule may target instead of a
// single service type.
const ServiceTypeAll = "all_services"

type MarkupScope string

const (
	ScopeGlobal       MarkupScope = "global"
	ScopeOrganization MarkupScope = "organization"
)

type MarkupType string

const (
	MarkupFixed      MarkupType = "fixed"
	MarkupPercentage MarkupType = "percentage"
	MarkupBoth       MarkupType = "both"
)

type RegionType string

const (
	RegionCountry   RegionType = "country"
	RegionContinent RegionType = "continent"
)

// Engine-facing tax codes. Immutable once referenced by ledger rows.
const (
	TaxCodeNoTax         = "NO_TAX"
	TaxCodeUSSalesTax    = "US_SALES_TAX"
	TaxCodeEUVATStandard = "EU_VAT_STANDARD"
	TaxCodeSGGST         = "SG_GST"
	TaxCodeJPJCT         = "JP_JCT"
)

// ProviderCost is what a provider charges the platform per unit of a
// service type. Rows are deactivated, never deleted, while ledger rows
// reference them.
type ProviderCost struct {
	ID               snowflake.ID `json:"id" gorm:"primaryKey"`
	ServiceType      string       `json:"service_type" gorm:"type:text;not null;index"`
	ProviderName     string       `json:"provider_name" gorm:"type:text;not null;index"`
	CostPerUnitCents int64        `json:"cost_per_unit_cents" gorm:"not null"`
	Currency         string       `json:"currency" gorm:"type:text;not null"`
	IsActive         bool         `json:"is_active" gorm:"not null;default:true"`
	EffectiveFrom    time.Time    `json:"effective_from" gorm:"not null"`
	CreatedAt        time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ProviderCost) TableName() string { return "provider_costs" }

// MarkupRule adds margin on top of a provider cost. Organization-scoped
// rules outrank global ones regardless of priority.
type MarkupRule struct {
	ID               snowflake.ID  `json:"id" gorm:"primaryKey"`
	Name             string        `json:"name" gorm:"type:text;not null"`
	Code             string        `json:"code" gorm:"type:text;not null;uniqueIndex"`
	ServiceType      string        `json:"service_type" gorm:"type:text;not null;index"`
	Scope            MarkupScope   `json:"scope" gorm:"type:text;not null"`
	TargetOrgID      *snowflake.ID `json:"target_organization_id,omitempty" gorm:"index"`
	MarkupType       MarkupType    `json:"markup_type" gorm:"type:text;not null"`
	FixedMarkupCents *int64        `json:"fixed_markup_cents,omitempty"`
	PercentageMarkup *float64      `json:"percentage_markup,omitempty" gorm:"type:numeric"`
	Priority         int32         `json:"priority" gorm:"not null;default:0"`
	IsActive         bool          `json:"is_active" gorm:"not null;default:true"`
	EffectiveFrom    time.Time     `json:"effective_from" gorm:"not null"`
	CreatedAt        time.Time     `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time     `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (MarkupRule) TableName() string { return "markup_rules" }

// RegionalPrice multiplies a plan price for a country or continent.
type RegionalPrice struct {
	RegionType RegionType `json:"region_type"`
	RegionCode string     `json:"region_code"`
	Multiplier float64    `json:"multiplier"`
}

// PriceTier is one bracket of a progressive component price. To is nil
// for the open-ended final bracket.
type PriceTier struct {
	FromQuantity   int64  `json:"from"`
	ToQuantity     *int64 `json:"to,omitempty"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// ComponentTiers holds the progressive brackets for one plan component.
type ComponentTiers struct {
	Component string      `json:"component"`
	Tiers     []PriceTier `json:"tiers"`
}

type PromotionalPricing struct {
	IsActive           bool      `json:"is_active"`
	StartAt            time.Time `json:"start_at"`
	EndAt              time.Time `json:"end_at"`
	DiscountPercentage float64   `json:"discount_percentage"`
	PromoCode          string    `json:"promo_code,omitempty"`
}

type OrganizationDiscount struct {
	OrgID              snowflake.ID `json:"organization_id"`
	DiscountPercentage float64      `json:"discount_percentage"`
}

// MultiYearDiscounts holds discount percentages for longer billing terms.
type MultiYearDiscounts struct {
	TwoYear   float64 `json:"two_year"`
	ThreeYear float64 `json:"three_year"`
}

type WhiteLabelPricing struct {
	IsEnabled         bool    `json:"is_enabled"`
	WholesaleDiscount float64 `json:"wholesale_discount"`
	MinimumVolume     int64   `json:"minimum_volume"`
}

// BillingPlan is a subscription plan with per-component pricing and an
// ordered stack of optional modifiers.
type BillingPlan struct {
	ID                    snowflake.ID                                `json:"id" gorm:"primaryKey"`
	Tier                  string                                      `json:"tier" gorm:"type:text;not null;uniqueIndex"`
	Name                  string                                      `json:"name" gorm:"type:text;not null"`
	BasePriceCents        int64                                       `json:"base_price_cents" gorm:"not null"`
	Currency              string                                      `json:"currency" gorm:"type:text;not null"`
	ComponentPricing      datatypes.JSONType[map[string]int64]        `json:"component_pricing" gorm:"type:jsonb"`
	RegionalPricing       datatypes.JSONSlice[RegionalPrice]          `json:"regional_pricing" gorm:"type:jsonb"`
	ProgressiveTiers      datatypes.JSONSlice[ComponentTiers]         `json:"progressive_tiers" gorm:"type:jsonb"`
	PromotionalPricing    datatypes.JSONType[PromotionalPricing]      `json:"promotional_pricing" gorm:"type:jsonb"`
	OrganizationDiscounts datatypes.JSONSlice[OrganizationDiscount]   `json:"organization_discounts" gorm:"type:jsonb"`
	MultiYearDiscounts    datatypes.JSONType[MultiYearDiscounts]      `json:"multi_year_discounts" gorm:"type:jsonb"`
	WhiteLabelPricing     datatypes.JSONType[WhiteLabelPricing]       `json:"white_label_pricing" gorm:"type:jsonb"`
	IsActive              bool                                        `json:"is_active" gorm:"not null;default:true"`
	CreatedAt             time.Time                                   `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt             time.Time                                   `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (BillingPlan) TableName() string { return "billing_plans" }

// TaxRule maps a country to its rate and reverse-charge eligibility.
type TaxRule struct {
	ID                    snowflake.ID `json:"id" gorm:"primaryKey"`
	Country               string       `json:"country" gorm:"type:text;not null;uniqueIndex"`
	Rate                  float64      `json:"rate" gorm:"type:numeric;not null"`
	ReverseChargeEligible bool         `json:"reverse_charge_eligible" gorm:"not null;default:false"`
	TaxCode               string       `json:"tax_code" gorm:"type:text;not null"`
	IsActive              bool         `json:"is_active" gorm:"not null;default:true"`
	CreatedAt             time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt             time.Time    `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (TaxRule) TableName() string { return "tax_rules" }

// Currency is reference metadata for supported settlement currencies.
type Currency struct {
	Code          string    `json:"code" gorm:"primaryKey;type:text"`
	Symbol        string    `json:"symbol" gorm:"type:text;not null"`
	DecimalPlaces int16     `json:"decimal_places" gorm:"type:smallint;not null;default:2"`
	IsActive      bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt     time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Currency) TableName() string { return "currencies" }
