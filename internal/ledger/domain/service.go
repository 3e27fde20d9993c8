package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/smallbiznis/fareway/pkg/db/pagination"
)

const (
	GroupByService  = "service"
	GroupByProvider = "provider"
)

var (
	ErrInvalidOrganization   = errors.New("invalid_organization")
	ErrInvalidServiceType    = errors.New("invalid_service_type")
	ErrInvalidProviderName   = errors.New("invalid_provider_name")
	ErrInvalidAmount         = errors.New("invalid_amount")
	ErrInvalidCurrency       = errors.New("invalid_currency")
	ErrUnbalancedTransaction = errors.New("unbalanced_transaction")
	ErrInvalidGroupBy        = errors.New("invalid_group_by")
	ErrInvalidTimeRange      = errors.New("invalid_time_range")
	ErrInvalidPageToken      = errors.New("invalid_page_token")
)

// RecordTransactionRequest carries one charge to append. Total must
// equal cost plus markup; the service rejects anything else.
type RecordTransactionRequest struct {
	OrgID              snowflake.ID `json:"organization_id"`
	ServiceType        string       `json:"service_type"`
	ProviderName       string       `json:"provider_name"`
	ProviderCostCents  int64        `json:"provider_cost_cents"`
	MarkupAppliedCents int64        `json:"markup_applied_cents"`
	TotalChargedCents  int64        `json:"total_charged_cents"`
	Currency           string       `json:"currency"`
}

type ListTransactionsRequest struct {
	pagination.Pagination
	OrgID        snowflake.ID
	ServiceType  string
	ProviderName string
	StartAt      *time.Time
	EndAt        *time.Time
}

type ListTransactionsResponse struct {
	pagination.PageInfo
	Transactions []CostTransaction `json:"transactions"`
}

type ProfitSummaryRequest struct {
	OrgID   snowflake.ID
	GroupBy string
	StartAt *time.Time
	EndAt   *time.Time
}

type TransactionCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

type ListFilter struct {
	OrgID        snowflake.ID
	ServiceType  string
	ProviderName string
	StartAt      *time.Time
	EndAt        *time.Time
	Cursor       *TransactionCursor
	Limit        int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, txn *CostTransaction) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*CostTransaction, error)
	Aggregate(ctx context.Context, db *gorm.DB, req ProfitSummaryRequest) (*ProfitSummary, error)
}

type Service interface {
	RecordTransaction(ctx context.Context, req RecordTransactionRequest) (*CostTransaction, error)
	ListTransactions(ctx context.Context, req ListTransactionsRequest) (ListTransactionsResponse, error)
	ProfitSummary(ctx context.Context, req ProfitSummaryRequest) (*ProfitSummary, error)
}
