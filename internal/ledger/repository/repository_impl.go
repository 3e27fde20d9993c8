package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/smallbiznis/fareway/internal/ledger/domain"
)

type repo struct{}

func Provide() domain.Repository { return &repo{} }

func (r *repo) Insert(ctx context.Context, db *gorm.DB, txn *domain.CostTransaction) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO cost_transactions (
			id, org_id, service_type, provider_name,
			provider_cost_cents, markup_applied_cents, total_charged_cents,
			currency, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID,
		txn.OrgID,
		txn.ServiceType,
		txn.ProviderName,
		txn.ProviderCostCents,
		txn.MarkupAppliedCents,
		txn.TotalChargedCents,
		txn.Currency,
		txn.CreatedAt,
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.CostTransaction, error) {
	stmt := db.WithContext(ctx).Model(&domain.CostTransaction{}).
		Where("org_id = ?", filter.OrgID)

	if serviceType := strings.TrimSpace(filter.ServiceType); serviceType != "" {
		stmt = stmt.Where("service_type = ?", serviceType)
	}
	if provider := strings.TrimSpace(filter.ProviderName); provider != "" {
		stmt = stmt.Where("provider_name = ?", provider)
	}
	if filter.StartAt != nil {
		stmt = stmt.Where("created_at >= ?", filter.StartAt.UTC())
	}
	if filter.EndAt != nil {
		stmt = stmt.Where("created_at <= ?", filter.EndAt.UTC())
	}
	if filter.Cursor != nil {
		stmt = stmt.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			filter.Cursor.CreatedAt,
			filter.Cursor.CreatedAt,
			filter.Cursor.ID,
		)
	}

	stmt = stmt.Order("created_at desc, id desc")
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit + 1)
	}

	var txns []*domain.CostTransaction
	if err := stmt.Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *repo) Aggregate(ctx context.Context, db *gorm.DB, req domain.ProfitSummaryRequest) (*domain.ProfitSummary, error) {
	base := db.WithContext(ctx).Model(&domain.CostTransaction{}).
		Where("org_id = ?", req.OrgID)
	if req.StartAt != nil {
		base = base.Where("created_at >= ?", req.StartAt.UTC())
	}
	if req.EndAt != nil {
		base = base.Where("created_at <= ?", req.EndAt.UTC())
	}

	summary := &domain.ProfitSummary{
		OrgID:   req.OrgID,
		GroupBy: req.GroupBy,
		StartAt: req.StartAt,
		EndAt:   req.EndAt,
	}

	var totals struct {
		ProviderCostCents int64
		TotalChargedCents int64
	}
	if err := base.Session(&gorm.Session{}).
		Select("COALESCE(SUM(provider_cost_cents), 0) AS provider_cost_cents, COALESCE(SUM(total_charged_cents), 0) AS total_charged_cents").
		Scan(&totals).Error; err != nil {
		return nil, err
	}
	summary.ProviderCostCents = totals.ProviderCostCents
	summary.TotalChargedCents = totals.TotalChargedCents
	summary.ProfitCents = totals.TotalChargedCents - totals.ProviderCostCents

	groupColumn := ""
	switch req.GroupBy {
	case domain.GroupByService:
		groupColumn = "service_type"
	case domain.GroupByProvider:
		groupColumn = "provider_name"
	}
	if groupColumn != "" {
		var rows []struct {
			Key               string
			TransactionCount  int64
			ProviderCostCents int64
			TotalChargedCents int64
		}
		if err := base.Session(&gorm.Session{}).
			Select(groupColumn+" AS key, COUNT(*) AS transaction_count, COALESCE(SUM(provider_cost_cents), 0) AS provider_cost_cents, COALESCE(SUM(total_charged_cents), 0) AS total_charged_cents").
			Group(groupColumn).
			Order(groupColumn).
			Scan(&rows).Error; err != nil {
			return nil, err
		}
		for _, row := range rows {
			summary.Groups = append(summary.Groups, domain.ProfitGroup{
				Key:               row.Key,
				TransactionCount:  row.TransactionCount,
				ProviderCostCents: row.ProviderCostCents,
				TotalChargedCents: row.TotalChargedCents,
				ProfitCents:       row.TotalChargedCents - row.ProviderCostCents,
			})
		}
	}

	return summary, nil
}
