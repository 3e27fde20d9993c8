package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/smallbiznis/fareway/internal/audit/domain"
	ledgerdomain "github.com/smallbiznis/fareway/internal/ledger/domain"
	obsmetrics "github.com/smallbiznis/fareway/internal/observability/metrics"
	"github.com/smallbiznis/fareway/pkg/db/pagination"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       ledgerdomain.Repository
	AuditSvc   auditdomain.Service `optional:"true"`
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       ledgerdomain.Repository
	auditSvc   auditdomain.Service
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) ledgerdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("ledger.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		auditSvc:   p.AuditSvc,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) RecordTransaction(ctx context.Context, req ledgerdomain.RecordTransactionRequest) (*ledgerdomain.CostTransaction, error) {
	if req.OrgID == 0 {
		return nil, ledgerdomain.ErrInvalidOrganization
	}
	req.ServiceType = strings.TrimSpace(req.ServiceType)
	if req.ServiceType == "" {
		return nil, ledgerdomain.ErrInvalidServiceType
	}
	req.ProviderName = strings.TrimSpace(req.ProviderName)
	if req.ProviderName == "" {
		return nil, ledgerdomain.ErrInvalidProviderName
	}
	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	if req.Currency == "" {
		return nil, ledgerdomain.ErrInvalidCurrency
	}
	if req.ProviderCostCents < 0 || req.MarkupAppliedCents < 0 || req.TotalChargedCents < 0 {
		return nil, ledgerdomain.ErrInvalidAmount
	}
	if req.TotalChargedCents != req.ProviderCostCents+req.MarkupAppliedCents {
		return nil, ledgerdomain.ErrUnbalancedTransaction
	}

	txn := &ledgerdomain.CostTransaction{
		ID:                 s.genID.Generate(),
		OrgID:              req.OrgID,
		ServiceType:        req.ServiceType,
		ProviderName:       req.ProviderName,
		ProviderCostCents:  req.ProviderCostCents,
		MarkupAppliedCents: req.MarkupAppliedCents,
		TotalChargedCents:  req.TotalChargedCents,
		Currency:           req.Currency,
		CreatedAt:          time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, s.db, txn); err != nil {
		return nil, err
	}

	txnID := txn.ID.String()
	if s.auditSvc != nil {
		metadata := map[string]any{
			"service_type":         txn.ServiceType,
			"provider_name":        txn.ProviderName,
			"total_charged_cents":  txn.TotalChargedCents,
			"provider_cost_cents":  txn.ProviderCostCents,
			"markup_applied_cents": txn.MarkupAppliedCents,
		}
		if err := s.auditSvc.AuditLog(ctx, &req.OrgID, "", nil, "ledger.transaction_recorded", "cost_transaction", &txnID, metadata); err != nil {
			s.log.Warn("failed to write ledger audit log", zap.Error(err))
		}
	} else {
		s.log.Warn("audit service unavailable for cost transaction", zap.String("transaction_id", txnID))
	}

	s.obsMetrics.RecordLedgerAppend(ctx, txn.ServiceType)
	return txn, nil
}

func (s *Service) ListTransactions(ctx context.Context, req ledgerdomain.ListTransactionsRequest) (ledgerdomain.ListTransactionsResponse, error) {
	if req.OrgID == 0 {
		return ledgerdomain.ListTransactionsResponse{}, ledgerdomain.ErrInvalidOrganization
	}
	if req.StartAt != nil && req.EndAt != nil && req.StartAt.After(*req.EndAt) {
		return ledgerdomain.ListTransactionsResponse{}, ledgerdomain.ErrInvalidTimeRange
	}

	var cursor *ledgerdomain.TransactionCursor
	if strings.TrimSpace(req.PageToken) != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return ledgerdomain.ListTransactionsResponse{}, ledgerdomain.ErrInvalidPageToken
		}
		createdAt, err := time.Parse(time.RFC3339, decoded.CreatedAt)
		if err != nil {
			return ledgerdomain.ListTransactionsResponse{}, ledgerdomain.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(strings.TrimSpace(decoded.ID))
		if err != nil || id == 0 {
			return ledgerdomain.ListTransactionsResponse{}, ledgerdomain.ErrInvalidPageToken
		}
		cursor = &ledgerdomain.TransactionCursor{ID: id, CreatedAt: createdAt}
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > 250 {
		pageSize = 250
	}

	items, err := s.repo.List(ctx, s.db, ledgerdomain.ListFilter{
		OrgID:        req.OrgID,
		ServiceType:  req.ServiceType,
		ProviderName: req.ProviderName,
		StartAt:      req.StartAt,
		EndAt:        req.EndAt,
		Cursor:       cursor,
		Limit:        pageSize,
	})
	if err != nil {
		return ledgerdomain.ListTransactionsResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int32(pageSize), func(item *ledgerdomain.CostTransaction) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        item.ID.String(),
			CreatedAt: item.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	txns := make([]ledgerdomain.CostTransaction, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		txns = append(txns, *item)
	}

	resp := ledgerdomain.ListTransactionsResponse{Transactions: txns}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) ProfitSummary(ctx context.Context, req ledgerdomain.ProfitSummaryRequest) (*ledgerdomain.ProfitSummary, error) {
	if req.OrgID == 0 {
		return nil, ledgerdomain.ErrInvalidOrganization
	}
	switch req.GroupBy {
	case "", ledgerdomain.GroupByService, ledgerdomain.GroupByProvider:
	default:
		return nil, ledgerdomain.ErrInvalidGroupBy
	}
	if req.StartAt != nil && req.EndAt != nil && req.StartAt.After(*req.EndAt) {
		return nil, ledgerdomain.ErrInvalidTimeRange
	}
	return s.repo.Aggregate(ctx, s.db, req)
}
