package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// CostTransaction is one immutable charge record: what the provider
// billed the platform, the markup added, and the total charged to the
// organization. Rows are appended and never updated or deleted; profit
// is always derived from the ledger, not stored.
type CostTransaction struct {
	ID                 snowflake.ID `json:"id" gorm:"primaryKey"`
	OrgID              snowflake.ID `json:"organization_id" gorm:"not null;index"`
	ServiceType        string       `json:"service_type" gorm:"type:text;not null;index"`
	ProviderName       string       `json:"provider_name" gorm:"type:text;not null;index"`
	ProviderCostCents  int64        `json:"provider_cost_cents" gorm:"not null"`
	MarkupAppliedCents int64        `json:"markup_applied_cents" gorm:"not null"`
	TotalChargedCents  int64        `json:"total_charged_cents" gorm:"not null"`
	Currency           string       `json:"currency" gorm:"type:text;not null"`
	CreatedAt          time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

func (CostTransaction) TableName() string { return "cost_transactions" }

// ProfitGroup is one aggregation bucket of a profit summary.
type ProfitGroup struct {
	Key               string `json:"key"`
	TransactionCount  int64  `json:"transaction_count"`
	ProviderCostCents int64  `json:"provider_cost_cents"`
	TotalChargedCents int64  `json:"total_charged_cents"`
	ProfitCents       int64  `json:"profit_cents"`
}

// ProfitSummary is computed on demand from the ledger rows.
type ProfitSummary struct {
	OrgID             snowflake.ID  `json:"organization_id"`
	GroupBy           string        `json:"group_by"`
	StartAt           *time.Time    `json:"start_at,omitempty"`
	EndAt             *time.Time    `json:"end_at,omitempty"`
	ProviderCostCents int64         `json:"provider_cost_cents"`
	TotalChargedCents int64         `json:"total_charged_cents"`
	ProfitCents       int64         `json:"profit_cents"`
	Groups            []ProfitGroup `json:"groups,omitempty"`
}
