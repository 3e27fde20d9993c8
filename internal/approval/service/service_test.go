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

	approvaldomain "github.com/smallbiznis/fareway/internal/approval/domain"
	"github.com/smallbiznis/fareway/internal/approval/repository"
	catalogdomain "github.com/smallbiznis/fareway/internal/catalog/domain"
	catalogrepository "github.com/smallbiznis/fareway/internal/catalog/repository"
)

type fixture struct {
	svc  approvaldomain.Service
	db   *gorm.DB
	node *snowflake.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&approvaldomain.PriceChangeRequest{},
		&catalogdomain.ProviderCost{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Repo:        repository.Provide(),
		CatalogRepo: catalogrepository.Provide(),
	})
	return &fixture{svc: svc, db: db, node: node}
}

func (f *fixture) seedProviderCost(t *testing.T, costCents int64) *catalogdomain.ProviderCost {
	t.Helper()
	cost := &catalogdomain.ProviderCost{
		ID:               f.node.Generate(),
		ServiceType:      "sms",
		ProviderName:     "acme",
		CostPerUnitCents: costCents,
		Currency:         "USD",
		IsActive:         true,
		EffectiveFrom:    time.Now().UTC().Add(-time.Hour),
	}
	require.NoError(t, f.db.Create(cost).Error)
	return cost
}

func TestApproveAppliesNewCost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cost := f.seedProviderCost(t, 1000)

	change, err := f.svc.Create(ctx, approvaldomain.CreateRequest{
		ProviderCostID:   cost.ID,
		CurrentCostCents: 1000,
		NewCostCents:     1150,
	})
	require.NoError(t, err)
	require.Equal(t, approvaldomain.StatusPendingReview, change.Status)

	decided, err := f.svc.Approve(ctx, change.ID, "ops@fareway.dev")
	require.NoError(t, err)
	require.Equal(t, approvaldomain.StatusApproved, decided.Status)
	require.NotNil(t, decided.ReviewedBy)
	require.NotNil(t, decided.ReviewedAt)

	var updated catalogdomain.ProviderCost
	require.NoError(t, f.db.First(&updated, "id = ?", cost.ID).Error)
	require.Equal(t, int64(1150), updated.CostPerUnitCents)
}

func TestApproveTwiceFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cost := f.seedProviderCost(t, 1000)

	change, err := f.svc.Create(ctx, approvaldomain.CreateRequest{
		ProviderCostID:   cost.ID,
		CurrentCostCents: 1000,
		NewCostCents:     1150,
	})
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, change.ID, "first")
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, change.ID, "second")
	require.ErrorIs(t, err, approvaldomain.ErrInvalidTransition)
}

func TestRejectLeavesCostUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cost := f.seedProviderCost(t, 1000)

	change, err := f.svc.Create(ctx, approvaldomain.CreateRequest{
		ProviderCostID:   cost.ID,
		CurrentCostCents: 1000,
		NewCostCents:     2000,
	})
	require.NoError(t, err)

	decided, err := f.svc.Reject(ctx, change.ID, "ops@fareway.dev")
	require.NoError(t, err)
	require.Equal(t, approvaldomain.StatusRejected, decided.Status)

	var unchanged catalogdomain.ProviderCost
	require.NoError(t, f.db.First(&unchanged, "id = ?", cost.ID).Error)
	require.Equal(t, int64(1000), unchanged.CostPerUnitCents)

	// A rejected request cannot later be approved.
	_, err = f.svc.Approve(ctx, change.ID, "ops@fareway.dev")
	require.ErrorIs(t, err, approvaldomain.ErrInvalidTransition)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, approvaldomain.CreateRequest{
		CurrentCostCents: 1000, NewCostCents: 1200,
	})
	require.ErrorIs(t, err, approvaldomain.ErrUnknownProviderCost)

	_, err = f.svc.Create(ctx, approvaldomain.CreateRequest{
		ProviderCostID: f.node.Generate(), CurrentCostCents: 1000, NewCostCents: 1200,
	})
	require.ErrorIs(t, err, approvaldomain.ErrUnknownProviderCost)

	cost := f.seedProviderCost(t, 1000)
	_, err = f.svc.Create(ctx, approvaldomain.CreateRequest{
		ProviderCostID: cost.ID, CurrentCostCents: -1, NewCostCents: 1200,
	})
	require.ErrorIs(t, err, approvaldomain.ErrInvalidCost)
}

func TestListPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cost := f.seedProviderCost(t, 1000)

	first, err := f.svc.Create(ctx, approvaldomain.CreateRequest{
		ProviderCostID: cost.ID, CurrentCostCents: 1000, NewCostCents: 1100,
		DetectedAt: time.Now().UTC().Add(-2 * time.Hour),
	})
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, approvaldomain.CreateRequest{
		ProviderCostID: cost.ID, CurrentCostCents: 1000, NewCostCents: 1200,
		DetectedAt: time.Now().UTC().Add(-time.Hour),
	})
	require.NoError(t, err)

	_, err = f.svc.Reject(ctx, second.ID, "ops")
	require.NoError(t, err)

	pending, err := f.svc.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, first.ID, pending[0].ID)

	_, err = f.svc.Get(ctx, first.ID)
	require.NoError(t, err)
	_, err = f.svc.Get(ctx, f.node.Generate())
	require.ErrorIs(t, err, approvaldomain.ErrNotFound)
}
