package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	catalogdomain "github.com/smallbiznis/fareway/internal/catalog/domain"
)

func planSnapshot(plan catalogdomain.BillingPlan, taxRules ...catalogdomain.TaxRule) *catalogdomain.Snapshot {
	return &catalogdomain.Snapshot{
		Plans:    []catalogdomain.BillingPlan{plan},
		TaxRules: taxRules,
	}
}

func basePlan() catalogdomain.BillingPlan {
	return catalogdomain.BillingPlan{
		ID:             1,
		Tier:           "growth",
		Name:           "Growth",
		BasePriceCents: 9900,
		Currency:       "USD",
		IsActive:       true,
		ComponentPricing: datatypes.NewJSONType(map[string]int64{
			"sms":   5000,
			"email": 1200,
		}),
	}
}

func TestResolvePlanPriceRegionalMultiplier(t *testing.T) {
	plan := basePlan()
	plan.RegionalPricing = datatypes.NewJSONSlice([]catalogdomain.RegionalPrice{
		{RegionType: catalogdomain.RegionCountry, RegionCode: "IN", Multiplier: 0.6},
	})

	res, err := ResolvePlanPrice(planSnapshot(plan), PlanRequest{
		PlanTier:    "growth",
		ServiceType: "sms",
		CountryCode: "IN",
		Quantity:    1,
		Timestamp:   baseTime,
	})
	require.NoError(t, err)
	require.Equal(t, int64(3000), res.UnitPriceCents)
	require.Len(t, res.Applied, 1)
	require.Equal(t, ModifierRegional, res.Applied[0].Kind)
}

func TestResolvePlanPriceCountryBeatsContinent(t *testing.T) {
	plan := basePlan()
	plan.RegionalPricing = datatypes.NewJSONSlice([]catalogdomain.RegionalPrice{
		{RegionType: catalogdomain.RegionContinent, RegionCode: "AS", Multiplier: 0.8},
		{RegionType: catalogdomain.RegionCountry, RegionCode: "IN", Multiplier: 0.6},
	})

	res, err := ResolvePlanPrice(planSnapshot(plan), PlanRequest{
		PlanTier:    "growth",
		ServiceType: "sms",
		CountryCode: "IN",
		Timestamp:   baseTime,
	})
	require.NoError(t, err)
	require.Equal(t, int64(3000), res.UnitPriceCents)

	// A different Asian country falls through to the continent entry.
	res, err = ResolvePlanPrice(planSnapshot(plan), PlanRequest{
		PlanTier:    "growth",
		ServiceType: "sms",
		CountryCode: "SG",
		Timestamp:   baseTime,
	})
	require.NoError(t, err)
	require.Equal(t, int64(4000), res.UnitPriceCents)
}

func TestResolvePlanPriceProgressiveTier(t *testing.T) {
	plan := basePlan()
	to100 := int64(100)
	plan.ProgressiveTiers = datatypes.NewJSONSlice([]catalogdomain.ComponentTiers{{
		Component: "sms",
		Tiers: []catalogdomain.PriceTier{
			{FromQuantity: 1, ToQuantity: &to100, UnitPriceCents: 5000},
			{FromQuantity: 101, UnitPriceCents: 4000},
		},
	}})

	res, err := ResolvePlanPrice(planSnapshot(plan), PlanRequest{
		PlanTier:    "growth",
		ServiceType: "sms",
		Quantity:    150,
		Timestamp:   baseTime,
	})
	require.NoError(t, err)
	require.Equal(t, int64(4000), res.UnitPriceCents)
	require.Equal(t, int64(4000*150), res.SubtotalCents)
	require.Len(t, res.Applied, 1)
	require.Equal(t, ModifierTier, res.Applied[0].Kind)
}

func TestResolvePlanPriceMalformedTiersFallBack(t *testing.T) {
	plan := basePlan()
	to90 := int64(90)
	plan.ProgressiveTiers = datatypes.NewJSONSlice([]catalogdomain.ComponentTiers{{
		Component: "sms",
		Tiers: []catalogdomain.PriceTier{
			{FromQuantity: 1, ToQuantity: &to90, UnitPriceCents: 5000},
			{FromQuantity: 80, UnitPriceCents: 4000}, // overlaps previous bracket
		},
	}})

	res, err := ResolvePlanPrice(planSnapshot(plan), PlanRequest{
		PlanTier:    "growth",
		ServiceType: "sms",
		Quantity:    150,
		Timestamp:   baseTime,
	})
	require.NoError(t, err)
	require.Equal(t, int64(5000), res.UnitPriceCents)
	require.Len(t, res.Warnings, 1)
	require.Contains(t, res.Warnings[0], "malformed tiers")
	require.Empty(t, res.Applied)
}

func TestResolvePlanPricePromoWindow(t *testing.T) {
	plan := basePlan()
	plan.PromotionalPricing = datatypes.NewJSONType(catalogdomain.PromotionalPricing{
		IsActive:           true,
		StartAt:            baseTime.Add(-24 * time.Hour),
		EndAt:              baseTime.Add(24 * time.Hour),
		DiscountPercentage: 25,
	})

	res, err := ResolvePlanPrice(planSnapshot(plan), PlanRequest{
		PlanTier:    "growth",
		ServiceType: "sms",
		Timestamp:   baseTime,
	})
	require.NoError(t, err)
	require.Equal(t, int64(3750), res.UnitPriceCents)

	// Outside the window the promo is identity.
	res, err = ResolvePlanPrice(planSnapshot(plan), PlanRequest{
		PlanTier:    "growth",
		ServiceType: "sms",
		Timestamp:   baseTime.Add(48 * time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, int64(5000), res.UnitPriceCents)
}

func TestResolvePlanPriceModifierOrder(t *testing.T) {
	plan := basePlan()
	to100 := int64(100)
	plan.ProgressiveTiers = datatypes.NewJSONSlice([]catalogdomain.ComponentTiers{{
		Component: "sms",
		Tiers: []catalogdomain.PriceTier{
			{FromQuantity: 1, ToQuantity: &to100, UnitPriceCents: 3333},
			{FromQuantity: 101, UnitPriceCents: 2000},
		},
	}})
	plan.RegionalPricing = datatypes.NewJSONSlice([]catalogdomain.RegionalPrice{
		{RegionType: catalogdomain.RegionCountry, RegionCode: "ID", Multiplier: 0.7},
	})
	plan.OrganizationDiscounts = datatypes.NewJSONSlice([]catalogdomain.OrganizationDiscount{
		{OrgID: 7, DiscountPercentage: 10},
	})
	plan.MultiYearDiscounts = datatypes.NewJSONType(catalogdomain.MultiYearDiscounts{TwoYear: 5})

	res, err := ResolvePlanPrice(planSnapshot(plan), PlanRequest{
		OrgID:       7,
		PlanTier:    "growth",
		ServiceType: "sms",
		CountryCode: "ID",
		Quantity:    50,
		TermYears:   2,
		Timestamp:   baseTime,
	})
	require.NoError(t, err)

	// 3333 → x0.7 = 2333.1 → 2333 → -10% = 2099.7 → 2100 → -5% = 1995.
	require.Equal(t, []AppliedModifier{
		{Kind: ModifierTier, Detail: "bracket 1-100", PriceAfterCents: 3333},
		{Kind: ModifierRegional, Detail: "country ID x0.7", PriceAfterCents: 2333},
		{Kind: ModifierOrgDiscount, Detail: "org discount -10%", PriceAfterCents: 2100},
		{Kind: ModifierMultiYear, Detail: "2-year term -5%", PriceAfterCents: 1995},
	}, res.Applied)
	require.Equal(t, int64(1995), res.UnitPriceCents)
}

func TestResolvePlanPriceTax(t *testing.T) {
	plan := basePlan()
	snap := planSnapshot(plan, catalogdomain.TaxRule{
		ID:       5,
		Country:  "SG",
		Rate:     9,
		TaxCode:  catalogdomain.TaxCodeSGGST,
		IsActive: true,
	})

	res, err := ResolvePlanPrice(snap, PlanRequest{
		PlanTier:    "growth",
		ServiceType: "email",
		Quantity:    10,
		CountryCode: "SG",
		Timestamp:   baseTime,
	})
	require.NoError(t, err)
	require.Equal(t, int64(12000), res.SubtotalCents)
	require.Equal(t, int64(1080), res.TaxCents)
	require.Equal(t, int64(13080), res.TotalCents)
	require.Equal(t, catalogdomain.TaxCodeSGGST, res.TaxCode)
	require.False(t, res.ReverseCharge)
}

func TestResolvePlanPriceReverseCharge(t *testing.T) {
	plan := basePlan()
	snap := planSnapshot(plan, catalogdomain.TaxRule{
		ID:                    6,
		Country:               "DE",
		Rate:                  19,
		ReverseChargeEligible: true,
		TaxCode:               catalogdomain.TaxCodeEUVATStandard,
		IsActive:              true,
	})

	res, err := ResolvePlanPrice(snap, PlanRequest{
		PlanTier:      "growth",
		ServiceType:   "email",
		CountryCode:   "DE",
		BusinessTaxID: "DE123456789",
		Timestamp:     baseTime,
	})
	require.NoError(t, err)
	require.True(t, res.ReverseCharge)
	require.Equal(t, int64(0), res.TaxCents)

	// Without a business tax ID the standard rate applies.
	res, err = ResolvePlanPrice(snap, PlanRequest{
		PlanTier:    "growth",
		ServiceType: "email",
		CountryCode: "DE",
		Timestamp:   baseTime,
	})
	require.NoError(t, err)
	require.False(t, res.ReverseCharge)
	require.Equal(t, int64(228), res.TaxCents)
}

func TestResolvePlanPriceBaseFlatFee(t *testing.T) {
	res, err := ResolvePlanPrice(planSnapshot(basePlan()), PlanRequest{
		PlanTier:  "growth",
		Timestamp: baseTime,
	})
	require.NoError(t, err)
	require.Equal(t, "base", res.Component)
	require.Equal(t, int64(9900), res.UnitPriceCents)
}

func TestResolvePlanPriceMissingComponent(t *testing.T) {
	_, err := ResolvePlanPrice(planSnapshot(basePlan()), PlanRequest{
		PlanTier:    "growth",
		ServiceType: "voice",
		Timestamp:   baseTime,
	})
	require.ErrorIs(t, err, ErrNoApplicableRule)
}

func TestResolvePlanPriceUnknownPlan(t *testing.T) {
	_, err := ResolvePlanPrice(planSnapshot(basePlan()), PlanRequest{
		PlanTier:  "enterprise",
		Timestamp: baseTime,
	})
	require.ErrorIs(t, err, ErrNoApplicableRule)

	_, err = ResolvePlanPrice(planSnapshot(basePlan()), PlanRequest{Timestamp: baseTime})
	require.ErrorIs(t, err, ErrInvalidPlanRef)
}
