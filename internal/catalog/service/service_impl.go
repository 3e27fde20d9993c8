package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	catalogdomain "github.com/smallbiznis/fareway/internal/catalog/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  catalogdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  catalogdomain.Repository
}

func New(p Params) catalogdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) CreateProviderCost(ctx context.Context, req catalogdomain.CreateProviderCostRequest) (*catalogdomain.ProviderCost, error) {
	now := time.Now().UTC()
	effectiveFrom := now
	if req.EffectiveFrom != nil {
		effectiveFrom = req.EffectiveFrom.UTC()
	}

	entity := &catalogdomain.ProviderCost{
		ID:               s.genID.Generate(),
		ServiceType:      strings.TrimSpace(req.ServiceType),
		ProviderName:     strings.TrimSpace(req.ProviderName),
		CostPerUnitCents: req.CostPerUnitCents,
		Currency:         strings.ToUpper(strings.TrimSpace(req.Currency)),
		IsActive:         true,
		EffectiveFrom:    effectiveFrom,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := entity.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.InsertProviderCost(ctx, s.db, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

// DeactivateProviderCost retires a cost row. Rows referenced by ledger
// transactions are never deleted.
func (s *Service) DeactivateProviderCost(ctx context.Context, id string) (*catalogdomain.ProviderCost, error) {
	costID, err := catalogdomain.ParseID(id)
	if err != nil {
		return nil, catalogdomain.ErrInvalidID
	}

	cost, err := s.repo.FindProviderCostByID(ctx, s.db, costID)
	if err != nil {
		return nil, err
	}
	if cost == nil {
		return nil, catalogdomain.ErrNotFound
	}

	cost.IsActive = false
	if err := s.repo.UpdateProviderCost(ctx, s.db, cost); err != nil {
		return nil, err
	}
	return cost, nil
}

func (s *Service) ListProviderCosts(ctx context.Context) ([]catalogdomain.ProviderCost, error) {
	return s.repo.ListProviderCosts(ctx, s.db, false)
}

func (s *Service) CreateMarkupRule(ctx context.Context, req catalogdomain.CreateMarkupRuleRequest) (*catalogdomain.MarkupRule, error) {
	now := time.Now().UTC()
	effectiveFrom := now
	if req.EffectiveFrom != nil {
		effectiveFrom = req.EffectiveFrom.UTC()
	}

	var targetOrgID *snowflake.ID
	if trimmed := strings.TrimSpace(req.TargetOrgID); trimmed != "" {
		parsed, err := catalogdomain.ParseID(trimmed)
		if err != nil {
			return nil, catalogdomain.ErrInvalidID
		}
		targetOrgID = &parsed
	}

	name := strings.TrimSpace(req.Name)
	entity := &catalogdomain.MarkupRule{
		ID:               s.genID.Generate(),
		Name:             name,
		Code:             slug.Make(name),
		ServiceType:      strings.TrimSpace(req.ServiceType),
		Scope:            req.Scope,
		TargetOrgID:      targetOrgID,
		MarkupType:       req.MarkupType,
		FixedMarkupCents: req.FixedMarkupCents,
		PercentageMarkup: req.PercentageMarkup,
		Priority:         req.Priority,
		IsActive:         true,
		EffectiveFrom:    effectiveFrom,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := entity.Validate(); err != nil {
		return nil, err
	}

	// Priority ties within the same scope and service type are rejected
	// up front so resolution never needs a tie-break.
	if err := s.ensureUniquePriority(ctx, entity); err != nil {
		return nil, err
	}

	if err := s.repo.InsertMarkupRule(ctx, s.db, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *Service) ensureUniquePriority(ctx context.Context, candidate *catalogdomain.MarkupRule) error {
	existing, err := s.repo.ListMarkupRules(ctx, s.db, true)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if rule.Scope != candidate.Scope || rule.Priority != candidate.Priority {
			continue
		}
		if rule.ServiceType != candidate.ServiceType {
			continue
		}
		if candidate.Scope == catalogdomain.ScopeOrganization {
			if rule.TargetOrgID == nil || candidate.TargetOrgID == nil || *rule.TargetOrgID != *candidate.TargetOrgID {
				continue
			}
		}
		return catalogdomain.ErrDuplicatePriority
	}
	return nil
}

func (s *Service) DeactivateMarkupRule(ctx context.Context, id string) error {
	ruleID, err := catalogdomain.ParseID(id)
	if err != nil {
		return catalogdomain.ErrInvalidID
	}

	rule, err := s.repo.FindMarkupRuleByID(ctx, s.db, ruleID)
	if err != nil {
		return err
	}
	if rule == nil {
		return catalogdomain.ErrNotFound
	}
	return s.repo.DeactivateMarkupRule(ctx, s.db, ruleID)
}

func (s *Service) ListMarkupRules(ctx context.Context) ([]catalogdomain.MarkupRule, error) {
	return s.repo.ListMarkupRules(ctx, s.db, false)
}

func (s *Service) CreatePlan(ctx context.Context, req catalogdomain.CreatePlanRequest) (*catalogdomain.BillingPlan, error) {
	now := time.Now().UTC()

	entity := &catalogdomain.BillingPlan{
		ID:             s.genID.Generate(),
		Tier:           strings.TrimSpace(req.Tier),
		Name:           strings.TrimSpace(req.Name),
		BasePriceCents: req.BasePriceCents,
		Currency:       strings.ToUpper(strings.TrimSpace(req.Currency)),
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.ComponentPricing != nil {
		entity.ComponentPricing = datatypes.NewJSONType(req.ComponentPricing)
	}
	entity.RegionalPricing = datatypes.NewJSONSlice(req.RegionalPricing)
	entity.ProgressiveTiers = datatypes.NewJSONSlice(req.ProgressiveTiers)
	if req.PromotionalPricing != nil {
		entity.PromotionalPricing = datatypes.NewJSONType(*req.PromotionalPricing)
	}
	entity.OrganizationDiscounts = datatypes.NewJSONSlice(req.OrganizationDiscounts)
	if req.MultiYearDiscounts != nil {
		entity.MultiYearDiscounts = datatypes.NewJSONType(*req.MultiYearDiscounts)
	}
	if req.WhiteLabelPricing != nil {
		entity.WhiteLabelPricing = datatypes.NewJSONType(*req.WhiteLabelPricing)
	}

	if err := entity.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.InsertPlan(ctx, s.db, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *Service) ListPlans(ctx context.Context) ([]catalogdomain.BillingPlan, error) {
	return s.repo.ListPlans(ctx, s.db, false)
}

func (s *Service) CreateTaxRule(ctx context.Context, req catalogdomain.CreateTaxRuleRequest) (*catalogdomain.TaxRule, error) {
	now := time.Now().UTC()
	entity := &catalogdomain.TaxRule{
		ID:                    s.genID.Generate(),
		Country:               strings.ToUpper(strings.TrimSpace(req.Country)),
		Rate:                  req.Rate,
		ReverseChargeEligible: req.ReverseChargeEligible,
		TaxCode:               strings.TrimSpace(req.TaxCode),
		IsActive:              true,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := entity.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.InsertTaxRule(ctx, s.db, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *Service) ListTaxRules(ctx context.Context) ([]catalogdomain.TaxRule, error) {
	return s.repo.ListTaxRules(ctx, s.db, false)
}

func (s *Service) ListCurrencies(ctx context.Context) ([]catalogdomain.Currency, error) {
	return s.repo.ListCurrencies(ctx, s.db, true)
}
