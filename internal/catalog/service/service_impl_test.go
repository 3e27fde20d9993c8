package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	catalogdomain "github.com/smallbiznis/fareway/internal/catalog/domain"
	"github.com/smallbiznis/fareway/internal/catalog/repository"
)

func newTestService(t *testing.T) (catalogdomain.Service, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&catalogdomain.ProviderCost{},
		&catalogdomain.MarkupRule{},
		&catalogdomain.BillingPlan{},
		&catalogdomain.TaxRule{},
		&catalogdomain.Currency{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, node
}

func TestCreateProviderCost(t *testing.T) {
	svc, _ := newTestService(t)

	cost, err := svc.CreateProviderCost(context.Background(), catalogdomain.CreateProviderCostRequest{
		ServiceType:      "sms",
		ProviderName:     "twilio",
		CostPerUnitCents: 75,
		Currency:         "usd",
	})
	require.NoError(t, err)
	require.NotZero(t, cost.ID)
	require.Equal(t, "USD", cost.Currency)
	require.True(t, cost.IsActive)

	costs, err := svc.ListProviderCosts(context.Background())
	require.NoError(t, err)
	require.Len(t, costs, 1)
}

func TestCreateProviderCostValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateProviderCost(context.Background(), catalogdomain.CreateProviderCostRequest{
		ServiceType:      "",
		ProviderName:     "twilio",
		CostPerUnitCents: 75,
		Currency:         "USD",
	})
	require.ErrorIs(t, err, catalogdomain.ErrInvalidServiceType)

	_, err = svc.CreateProviderCost(context.Background(), catalogdomain.CreateProviderCostRequest{
		ServiceType:      "sms",
		ProviderName:     "twilio",
		CostPerUnitCents: -1,
		Currency:         "USD",
	})
	require.ErrorIs(t, err, catalogdomain.ErrInvalidCost)
}

func TestDeactivateProviderCostKeepsRow(t *testing.T) {
	svc, _ := newTestService(t)

	cost, err := svc.CreateProviderCost(context.Background(), catalogdomain.CreateProviderCostRequest{
		ServiceType:      "email",
		ProviderName:     "sendgrid",
		CostPerUnitCents: 3,
		Currency:         "USD",
	})
	require.NoError(t, err)

	retired, err := svc.DeactivateProviderCost(context.Background(), cost.ID.String())
	require.NoError(t, err)
	require.False(t, retired.IsActive)

	// Retired rows stay listable for historical transactions.
	costs, err := svc.ListProviderCosts(context.Background())
	require.NoError(t, err)
	require.Len(t, costs, 1)
	require.False(t, costs[0].IsActive)
}

func TestDeactivateProviderCostUnknownID(t *testing.T) {
	svc, node := newTestService(t)

	_, err := svc.DeactivateProviderCost(context.Background(), node.Generate().String())
	require.ErrorIs(t, err, catalogdomain.ErrNotFound)

	_, err = svc.DeactivateProviderCost(context.Background(), "not-an-id")
	require.ErrorIs(t, err, catalogdomain.ErrInvalidID)
}

func TestCreateMarkupRuleSlugsCode(t *testing.T) {
	svc, _ := newTestService(t)

	pct := 20.0
	rule, err := svc.CreateMarkupRule(context.Background(), catalogdomain.CreateMarkupRuleRequest{
		Name:             "SMS Standard Markup",
		ServiceType:      "sms",
		Scope:            catalogdomain.ScopeGlobal,
		MarkupType:       catalogdomain.MarkupPercentage,
		PercentageMarkup: &pct,
		Priority:         10,
	})
	require.NoError(t, err)
	require.Equal(t, "sms-standard-markup", rule.Code)
}

func TestCreateMarkupRuleDuplicatePriority(t *testing.T) {
	svc, node := newTestService(t)

	pct := 10.0
	_, err := svc.CreateMarkupRule(context.Background(), catalogdomain.CreateMarkupRuleRequest{
		Name:             "global sms",
		ServiceType:      "sms",
		Scope:            catalogdomain.ScopeGlobal,
		MarkupType:       catalogdomain.MarkupPercentage,
		PercentageMarkup: &pct,
		Priority:         5,
	})
	require.NoError(t, err)

	_, err = svc.CreateMarkupRule(context.Background(), catalogdomain.CreateMarkupRuleRequest{
		Name:             "global sms again",
		ServiceType:      "sms",
		Scope:            catalogdomain.ScopeGlobal,
		MarkupType:       catalogdomain.MarkupPercentage,
		PercentageMarkup: &pct,
		Priority:         5,
	})
	require.ErrorIs(t, err, catalogdomain.ErrDuplicatePriority)

	// Same priority is fine for a different service type.
	_, err = svc.CreateMarkupRule(context.Background(), catalogdomain.CreateMarkupRuleRequest{
		Name:             "global email",
		ServiceType:      "email",
		Scope:            catalogdomain.ScopeGlobal,
		MarkupType:       catalogdomain.MarkupPercentage,
		PercentageMarkup: &pct,
		Priority:         5,
	})
	require.NoError(t, err)

	// And for an org-scoped rule targeting a different organization.
	_, err = svc.CreateMarkupRule(context.Background(), catalogdomain.CreateMarkupRuleRequest{
		Name:             "org sms",
		ServiceType:      "sms",
		Scope:            catalogdomain.ScopeOrganization,
		TargetOrgID:      node.Generate().String(),
		MarkupType:       catalogdomain.MarkupPercentage,
		PercentageMarkup: &pct,
		Priority:         5,
	})
	require.NoError(t, err)
}

func TestCreateMarkupRuleValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateMarkupRule(context.Background(), catalogdomain.CreateMarkupRuleRequest{
		Name:        "broken",
		ServiceType: "sms",
		Scope:       catalogdomain.ScopeGlobal,
		MarkupType:  catalogdomain.MarkupPercentage,
		Priority:    1,
	})
	require.ErrorIs(t, err, catalogdomain.ErrInvalidMarkupValue)

	pct := 10.0
	_, err = svc.CreateMarkupRule(context.Background(), catalogdomain.CreateMarkupRuleRequest{
		Name:             "orphan org rule",
		ServiceType:      "sms",
		Scope:            catalogdomain.ScopeOrganization,
		MarkupType:       catalogdomain.MarkupPercentage,
		PercentageMarkup: &pct,
		Priority:         2,
	})
	require.ErrorIs(t, err, catalogdomain.ErrInvalidScope)
}

func TestDeactivateMarkupRule(t *testing.T) {
	svc, _ := newTestService(t)

	fixed := int64(100)
	rule, err := svc.CreateMarkupRule(context.Background(), catalogdomain.CreateMarkupRuleRequest{
		Name:             "flat voice",
		ServiceType:      "voice",
		Scope:            catalogdomain.ScopeGlobal,
		MarkupType:       catalogdomain.MarkupFixed,
		FixedMarkupCents: &fixed,
		Priority:         1,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeactivateMarkupRule(context.Background(), rule.ID.String()))

	rules, err := svc.ListMarkupRules(context.Background())
	require.NoError(t, err)
	require.Len(t, rules, 1)
	require.False(t, rules[0].IsActive)
}

func TestCreatePlan(t *testing.T) {
	svc, _ := newTestService(t)

	plan, err := svc.CreatePlan(context.Background(), catalogdomain.CreatePlanRequest{
		Tier:           "pro",
		Name:           "Pro",
		BasePriceCents: 9900,
		Currency:       "usd",
		ComponentPricing: map[string]int64{
			"api_calls": 2,
			"storage":   10,
		},
	})
	require.NoError(t, err)
	require.Equal(t, "USD", plan.Currency)

	plans, err := svc.ListPlans(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 1)
	require.Equal(t, int64(2), plans[0].ComponentPricing.Data()["api_calls"])
}

func TestCreatePlanRejectsOverlappingTiers(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreatePlan(context.Background(), catalogdomain.CreatePlanRequest{
		Tier:           "scale",
		Name:           "Scale",
		BasePriceCents: 0,
		Currency:       "USD",
		ProgressiveTiers: []catalogdomain.ComponentTiers{
			{
				Component: "api_calls",
				Tiers: []catalogdomain.PriceTier{
					{FromQuantity: 1, ToQuantity: ptrInt64(100), UnitPriceCents: 10},
					{FromQuantity: 50, ToQuantity: nil, UnitPriceCents: 20},
				},
			},
		},
	})
	require.ErrorIs(t, err, catalogdomain.ErrInvalidTierBounds)
}

func TestCreateTaxRuleNormalizesCountry(t *testing.T) {
	svc, _ := newTestService(t)

	rule, err := svc.CreateTaxRule(context.Background(), catalogdomain.CreateTaxRuleRequest{
		Country: " sg ",
		Rate:    0.09,
		TaxCode: "GST",
	})
	require.NoError(t, err)
	require.Equal(t, "SG", rule.Country)

	_, err = svc.CreateTaxRule(context.Background(), catalogdomain.CreateTaxRuleRequest{
		Country: "DE",
		Rate:    -0.1,
		TaxCode: "VAT",
	})
	require.ErrorIs(t, err, catalogdomain.ErrInvalidTaxRate)
}

func ptrInt64(v int64) *int64 { return &v }
