package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/fareway/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() catalogdomain.Repository {
	return &repo{}
}

func (r *repo) InsertProviderCost(ctx context.Context, db *gorm.DB, cost *catalogdomain.ProviderCost) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO provider_costs (
			id, service_type, provider_name, cost_per_unit_cents, currency,
			is_active, effective_from, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cost.ID,
		cost.ServiceType,
		cost.ProviderName,
		cost.CostPerUnitCents,
		cost.Currency,
		cost.IsActive,
		cost.EffectiveFrom,
		cost.CreatedAt,
		cost.UpdatedAt,
	).Error
}

func (r *repo) UpdateProviderCost(ctx context.Context, db *gorm.DB, cost *catalogdomain.ProviderCost) error {
	return db.WithContext(ctx).Exec(
		`UPDATE provider_costs
		 SET cost_per_unit_cents = ?, currency = ?, is_active = ?, effective_from = ?, updated_at = ?
		 WHERE id = ?`,
		cost.CostPerUnitCents,
		cost.Currency,
		cost.IsActive,
		cost.EffectiveFrom,
		time.Now().UTC(),
		cost.ID,
	).Error
}

func (r *repo) FindProviderCostByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*catalogdomain.ProviderCost, error) {
	var cost catalogdomain.ProviderCost
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&cost).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cost, nil
}

func (r *repo) ListProviderCosts(ctx context.Context, db *gorm.DB, activeOnly bool) ([]catalogdomain.ProviderCost, error) {
	var items []catalogdomain.ProviderCost
	stmt := db.WithContext(ctx).Model(&catalogdomain.ProviderCost{})
	if activeOnly {
		stmt = stmt.Where("is_active = ?", true)
	}
	err := stmt.Order("service_type ASC, effective_from DESC").Find(&items).Error
	return items, err
}

func (r *repo) InsertMarkupRule(ctx context.Context, db *gorm.DB, rule *catalogdomain.MarkupRule) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO markup_rules (
			id, name, code, service_type, scope, target_org_id, markup_type,
			fixed_markup_cents, percentage_markup, priority, is_active,
			effective_from, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID,
		rule.Name,
		rule.Code,
		rule.ServiceType,
		rule.Scope,
		rule.TargetOrgID,
		rule.MarkupType,
		rule.FixedMarkupCents,
		rule.PercentageMarkup,
		rule.Priority,
		rule.IsActive,
		rule.EffectiveFrom,
		rule.CreatedAt,
		rule.UpdatedAt,
	).Error
}

func (r *repo) FindMarkupRuleByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*catalogdomain.MarkupRule, error) {
	var rule catalogdomain.MarkupRule
	err := db.WithContext(ctx).Where("id = ?", id).First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *repo) ListMarkupRules(ctx context.Context, db *gorm.DB, activeOnly bool) ([]catalogdomain.MarkupRule, error) {
	var items []catalogdomain.MarkupRule
	stmt := db.WithContext(ctx).Model(&catalogdomain.MarkupRule{})
	if activeOnly {
		stmt = stmt.Where("is_active = ?", true)
	}
	err := stmt.Order("scope ASC, priority DESC, effective_from DESC").Find(&items).Error
	return items, err
}

func (r *repo) DeactivateMarkupRule(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE markup_rules SET is_active = ?, updated_at = ? WHERE id = ?`,
		false,
		time.Now().UTC(),
		id,
	).Error
}

func (r *repo) InsertPlan(ctx context.Context, db *gorm.DB, plan *catalogdomain.BillingPlan) error {
	return db.WithContext(ctx).Create(plan).Error
}

func (r *repo) FindPlanByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*catalogdomain.BillingPlan, error) {
	var plan catalogdomain.BillingPlan
	err := db.WithContext(ctx).Where("id = ?", id).First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

func (r *repo) ListPlans(ctx context.Context, db *gorm.DB, activeOnly bool) ([]catalogdomain.BillingPlan, error) {
	var items []catalogdomain.BillingPlan
	stmt := db.WithContext(ctx).Model(&catalogdomain.BillingPlan{})
	if activeOnly {
		stmt = stmt.Where("is_active = ?", true)
	}
	err := stmt.Order("tier ASC").Find(&items).Error
	return items, err
}

func (r *repo) InsertTaxRule(ctx context.Context, db *gorm.DB, rule *catalogdomain.TaxRule) error {
	return db.WithContext(ctx).Create(rule).Error
}

func (r *repo) ListTaxRules(ctx context.Context, db *gorm.DB, activeOnly bool) ([]catalogdomain.TaxRule, error) {
	var items []catalogdomain.TaxRule
	stmt := db.WithContext(ctx).Model(&catalogdomain.TaxRule{})
	if activeOnly {
		stmt = stmt.Where("is_active = ?", true)
	}
	err := stmt.Order("country ASC").Find(&items).Error
	return items, err
}

func (r *repo) InsertCurrency(ctx context.Context, db *gorm.DB, currency *catalogdomain.Currency) error {
	return db.WithContext(ctx).Create(currency).Error
}

func (r *repo) ListCurrencies(ctx context.Context, db *gorm.DB, activeOnly bool) ([]catalogdomain.Currency, error) {
	var items []catalogdomain.Currency
	stmt := db.WithContext(ctx).Model(&catalogdomain.Currency{})
	if activeOnly {
		stmt = stmt.Where("is_active = ?", true)
	}
	err := stmt.Order("code ASC").Find(&items).Error
	return items, err
}
