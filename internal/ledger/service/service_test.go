package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	ledgerdomain "github.com/smallbiznis/fareway/internal/ledger/domain"
	"github.com/smallbiznis/fareway/internal/ledger/repository"
)

func newTestService(t *testing.T) (ledgerdomain.Service, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&ledgerdomain.CostTransaction{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return svc, node
}

func TestRecordTransaction(t *testing.T) {
	svc, node := newTestService(t)
	orgID := node.Generate()

	txn, err := svc.RecordTransaction(context.Background(), ledgerdomain.RecordTransactionRequest{
		OrgID:              orgID,
		ServiceType:        "sms",
		ProviderName:       "acme",
		ProviderCostCents:  1000,
		MarkupAppliedCents: 200,
		TotalChargedCents:  1200,
		Currency:           "usd",
	})
	require.NoError(t, err)
	require.NotZero(t, txn.ID)
	require.Equal(t, "USD", txn.Currency)
	require.Equal(t, int64(1200), txn.TotalChargedCents)

	resp, err := svc.ListTransactions(context.Background(), ledgerdomain.ListTransactionsRequest{OrgID: orgID})
	require.NoError(t, err)
	require.Len(t, resp.Transactions, 1)
}

func TestListTransactionsRejectsMalformedPageToken(t *testing.T) {
	svc, node := newTestService(t)
	orgID := node.Generate()

	for _, token := range []string{
		"not-base64!!",
		// {"id":"abc","created_at":"not-a-time"}
		"eyJpZCI6ImFiYyIsImNyZWF0ZWRfYXQiOiJub3QtYS10aW1lIn0=",
		// {"id":"not-a-snowflake","created_at":"2026-03-01T12:00:00Z"}
		"eyJpZCI6Im5vdC1hLXNub3dmbGFrZSIsImNyZWF0ZWRfYXQiOiIyMDI2LTAzLTAxVDEyOjAwOjAwWiJ9",
	} {
		_, err := svc.ListTransactions(context.Background(), ledgerdomain.ListTransactionsRequest{
			OrgID:     orgID,
			PageToken: token,
		})
		require.ErrorIs(t, err, ledgerdomain.ErrInvalidPageToken, "token %q", token)
	}
}

func TestRecordTransactionRejectsUnbalanced(t *testing.T) {
	svc, node := newTestService(t)

	_, err := svc.RecordTransaction(context.Background(), ledgerdomain.RecordTransactionRequest{
		OrgID:              node.Generate(),
		ServiceType:        "sms",
		ProviderName:       "acme",
		ProviderCostCents:  1000,
		MarkupAppliedCents: 200,
		TotalChargedCents:  1300,
		Currency:           "USD",
	})
	require.ErrorIs(t, err, ledgerdomain.ErrUnbalancedTransaction)
}

func TestRecordTransactionValidation(t *testing.T) {
	svc, node := newTestService(t)
	orgID := node.Generate()

	_, err := svc.RecordTransaction(context.Background(), ledgerdomain.RecordTransactionRequest{
		ServiceType: "sms", ProviderName: "acme", Currency: "USD",
	})
	require.ErrorIs(t, err, ledgerdomain.ErrInvalidOrganization)

	_, err = svc.RecordTransaction(context.Background(), ledgerdomain.RecordTransactionRequest{
		OrgID: orgID, ProviderName: "acme", Currency: "USD",
	})
	require.ErrorIs(t, err, ledgerdomain.ErrInvalidServiceType)

	_, err = svc.RecordTransaction(context.Background(), ledgerdomain.RecordTransactionRequest{
		OrgID: orgID, ServiceType: "sms", ProviderName: "acme", Currency: "USD",
		ProviderCostCents: -1, TotalChargedCents: -1,
	})
	require.ErrorIs(t, err, ledgerdomain.ErrInvalidAmount)
}

func TestProfitSummaryGroups(t *testing.T) {
	svc, node := newTestService(t)
	orgID := node.Generate()
	ctx := context.Background()

	records := []ledgerdomain.RecordTransactionRequest{
		{OrgID: orgID, ServiceType: "sms", ProviderName: "acme", ProviderCostCents: 1000, MarkupAppliedCents: 200, TotalChargedCents: 1200, Currency: "USD"},
		{OrgID: orgID, ServiceType: "sms", ProviderName: "globex", ProviderCostCents: 800, MarkupAppliedCents: 400, TotalChargedCents: 1200, Currency: "USD"},
		{OrgID: orgID, ServiceType: "email", ProviderName: "acme", ProviderCostCents: 100, MarkupAppliedCents: 50, TotalChargedCents: 150, Currency: "USD"},
	}
	for _, req := range records {
		_, err := svc.RecordTransaction(ctx, req)
		require.NoError(t, err)
	}

	// Rows for another org stay out of the summary.
	_, err := svc.RecordTransaction(ctx, ledgerdomain.RecordTransactionRequest{
		OrgID: node.Generate(), ServiceType: "sms", ProviderName: "acme",
		ProviderCostCents: 9999, MarkupAppliedCents: 1, TotalChargedCents: 10000, Currency: "USD",
	})
	require.NoError(t, err)

	summary, err := svc.ProfitSummary(ctx, ledgerdomain.ProfitSummaryRequest{
		OrgID:   orgID,
		GroupBy: ledgerdomain.GroupByService,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1900), summary.ProviderCostCents)
	require.Equal(t, int64(2550), summary.TotalChargedCents)
	require.Equal(t, int64(650), summary.ProfitCents)
	require.Len(t, summary.Groups, 2)

	byKey := map[string]ledgerdomain.ProfitGroup{}
	for _, group := range summary.Groups {
		byKey[group.Key] = group
	}
	require.Equal(t, int64(600), byKey["sms"].ProfitCents)
	require.Equal(t, int64(50), byKey["email"].ProfitCents)

	byProvider, err := svc.ProfitSummary(ctx, ledgerdomain.ProfitSummaryRequest{
		OrgID:   orgID,
		GroupBy: ledgerdomain.GroupByProvider,
	})
	require.NoError(t, err)
	require.Len(t, byProvider.Groups, 2)
}

func TestProfitSummaryWindow(t *testing.T) {
	svc, node := newTestService(t)
	orgID := node.Generate()
	ctx := context.Background()

	_, err := svc.RecordTransaction(ctx, ledgerdomain.RecordTransactionRequest{
		OrgID: orgID, ServiceType: "sms", ProviderName: "acme",
		ProviderCostCents: 1000, MarkupAppliedCents: 200, TotalChargedCents: 1200, Currency: "USD",
	})
	require.NoError(t, err)

	past := time.Now().UTC().Add(-time.Hour)
	earlier := past.Add(-time.Hour)
	summary, err := svc.ProfitSummary(ctx, ledgerdomain.ProfitSummaryRequest{
		OrgID:   orgID,
		StartAt: &earlier,
		EndAt:   &past,
	})
	require.NoError(t, err)
	require.Equal(t, int64(0), summary.ProfitCents)

	_, err = svc.ProfitSummary(ctx, ledgerdomain.ProfitSummaryRequest{
		OrgID:   orgID,
		StartAt: &past,
		EndAt:   &earlier,
	})
	require.ErrorIs(t, err, ledgerdomain.ErrInvalidTimeRange)

	_, err = svc.ProfitSummary(ctx, ledgerdomain.ProfitSummaryRequest{
		OrgID:   orgID,
		GroupBy: "region",
	})
	require.ErrorIs(t, err, ledgerdomain.ErrInvalidGroupBy)
}
