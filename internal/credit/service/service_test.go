package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	creditdomain "github.com/smallbiznis/fareway/internal/credit/domain"
)

func newTestService(t *testing.T) (creditdomain.Service, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&creditdomain.CreditBalance{},
		&creditdomain.CreditTransaction{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
	})
	return svc, node
}

func requireInvariants(t *testing.T, balance *creditdomain.CreditBalance) {
	t.Helper()
	require.Equal(t, balance.PromotionalCents+balance.ReferralCents+balance.PrepaidCents, balance.TotalCents)
	require.Equal(t, balance.TotalCents-balance.UsedCents, balance.AvailableCents)
	require.GreaterOrEqual(t, balance.AvailableCents, int64(0))
}

func TestApplyCreditGrantAndUsage(t *testing.T) {
	svc, node := newTestService(t)
	orgID := node.Generate()
	ctx := context.Background()

	txn, err := svc.ApplyCredit(ctx, creditdomain.ApplyCreditRequest{
		OrgID:       orgID,
		Type:        creditdomain.CreditPromotional,
		AmountCents: 5000,
		Description: "signup bonus",
	})
	require.NoError(t, err)
	require.Equal(t, int64(5000), txn.BalanceAfterCents)

	_, err = svc.ApplyCredit(ctx, creditdomain.ApplyCreditRequest{
		OrgID:       orgID,
		Type:        creditdomain.CreditPrepaid,
		AmountCents: 2000,
	})
	require.NoError(t, err)

	txn, err = svc.ApplyCredit(ctx, creditdomain.ApplyCreditRequest{
		OrgID:       orgID,
		Type:        creditdomain.CreditUsage,
		AmountCents: -3000,
		Description: "march usage",
	})
	require.NoError(t, err)
	require.Equal(t, int64(4000), txn.BalanceAfterCents)

	balance, err := svc.GetBalance(ctx, orgID)
	require.NoError(t, err)
	require.Equal(t, int64(7000), balance.TotalCents)
	require.Equal(t, int64(3000), balance.UsedCents)
	require.Equal(t, int64(4000), balance.AvailableCents)
	require.Equal(t, int64(5000), balance.PromotionalCents)
	require.Equal(t, int64(2000), balance.PrepaidCents)
	requireInvariants(t, balance)
}

func TestApplyCreditInvariantsHoldAfterEveryMutation(t *testing.T) {
	svc, node := newTestService(t)
	orgID := node.Generate()
	ctx := context.Background()

	steps := []creditdomain.ApplyCreditRequest{
		{OrgID: orgID, Type: creditdomain.CreditPromotional, AmountCents: 1000},
		{OrgID: orgID, Type: creditdomain.CreditReferral, AmountCents: 2500},
		{OrgID: orgID, Type: creditdomain.CreditUsage, AmountCents: -1500},
		{OrgID: orgID, Type: creditdomain.CreditPrepaid, AmountCents: 100},
		{OrgID: orgID, Type: creditdomain.CreditUsage, AmountCents: -2100},
	}
	for _, step := range steps {
		_, err := svc.ApplyCredit(ctx, step)
		require.NoError(t, err)

		balance, err := svc.GetBalance(ctx, orgID)
		require.NoError(t, err)
		requireInvariants(t, balance)
	}

	balance, err := svc.GetBalance(ctx, orgID)
	require.NoError(t, err)
	require.Equal(t, int64(0), balance.AvailableCents)
}

func TestApplyCreditRejectsOverdraw(t *testing.T) {
	svc, node := newTestService(t)
	orgID := node.Generate()
	ctx := context.Background()

	_, err := svc.ApplyCredit(ctx, creditdomain.ApplyCreditRequest{
		OrgID:       orgID,
		Type:        creditdomain.CreditPromotional,
		AmountCents: 1000,
	})
	require.NoError(t, err)

	_, err = svc.ApplyCredit(ctx, creditdomain.ApplyCreditRequest{
		OrgID:       orgID,
		Type:        creditdomain.CreditUsage,
		AmountCents: -1500,
	})
	require.ErrorIs(t, err, creditdomain.ErrNegativeBalance)

	// The failed draw must leave no transaction row behind.
	txns, err := svc.ListTransactions(ctx, orgID, 10)
	require.NoError(t, err)
	require.Len(t, txns, 1)

	balance, err := svc.GetBalance(ctx, orgID)
	require.NoError(t, err)
	require.Equal(t, int64(1000), balance.AvailableCents)
	requireInvariants(t, balance)
}

func TestApplyCreditRejectsNegativeCategory(t *testing.T) {
	svc, node := newTestService(t)
	orgID := node.Generate()

	_, err := svc.ApplyCredit(context.Background(), creditdomain.ApplyCreditRequest{
		OrgID:       orgID,
		Type:        creditdomain.CreditReferral,
		AmountCents: -100,
	})
	require.ErrorIs(t, err, creditdomain.ErrNegativeBalance)
}

func TestApplyCreditValidation(t *testing.T) {
	svc, node := newTestService(t)

	_, err := svc.ApplyCredit(context.Background(), creditdomain.ApplyCreditRequest{
		Type: creditdomain.CreditPrepaid, AmountCents: 100,
	})
	require.ErrorIs(t, err, creditdomain.ErrInvalidOrganization)

	_, err = svc.ApplyCredit(context.Background(), creditdomain.ApplyCreditRequest{
		OrgID: node.Generate(), Type: "gift", AmountCents: 100,
	})
	require.ErrorIs(t, err, creditdomain.ErrInvalidCreditType)

	_, err = svc.ApplyCredit(context.Background(), creditdomain.ApplyCreditRequest{
		OrgID: node.Generate(), Type: creditdomain.CreditPrepaid,
	})
	require.ErrorIs(t, err, creditdomain.ErrInvalidAmount)
}

func TestGetBalanceMissingOrgIsZero(t *testing.T) {
	svc, node := newTestService(t)

	balance, err := svc.GetBalance(context.Background(), node.Generate())
	require.NoError(t, err)
	require.Equal(t, int64(0), balance.TotalCents)
	require.Equal(t, int64(0), balance.AvailableCents)
}

func TestListTransactionsNewestFirst(t *testing.T) {
	svc, node := newTestService(t)
	orgID := node.Generate()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.ApplyCredit(ctx, creditdomain.ApplyCreditRequest{
			OrgID:       orgID,
			Type:        creditdomain.CreditPrepaid,
			AmountCents: int64(100 * (i + 1)),
		})
		require.NoError(t, err)
	}

	txns, err := svc.ListTransactions(ctx, orgID, 2)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	require.Equal(t, int64(300), txns[0].AmountCents)
}
