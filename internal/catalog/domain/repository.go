package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertProviderCost(ctx context.Context, db *gorm.DB, cost *ProviderCost) error
	UpdateProviderCost(ctx context.Context, db *gorm.DB, cost *ProviderCost) error
	FindProviderCostByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*ProviderCost, error)
	ListProviderCosts(ctx context.Context, db *gorm.DB, activeOnly bool) ([]ProviderCost, error)

	InsertMarkupRule(ctx context.Context, db *gorm.DB, rule *MarkupRule) error
	FindMarkupRuleByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*MarkupRule, error)
	ListMarkupRules(ctx context.Context, db *gorm.DB, activeOnly bool) ([]MarkupRule, error)
	DeactivateMarkupRule(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	InsertPlan(ctx context.Context, db *gorm.DB, plan *BillingPlan) error
	FindPlanByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*BillingPlan, error)
	ListPlans(ctx context.Context, db *gorm.DB, activeOnly bool) ([]BillingPlan, error)

	InsertTaxRule(ctx context.Context, db *gorm.DB, rule *TaxRule) error
	ListTaxRules(ctx context.Context, db *gorm.DB, activeOnly bool) ([]TaxRule, error)

	InsertCurrency(ctx context.Context, db *gorm.DB, currency *Currency) error
	ListCurrencies(ctx context.Context, db *gorm.DB, activeOnly bool) ([]Currency, error)
}
