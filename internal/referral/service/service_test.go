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
	creditservice "github.com/smallbiznis/fareway/internal/credit/service"
	referraldomain "github.com/smallbiznis/fareway/internal/referral/domain"
	"github.com/smallbiznis/fareway/internal/referral/repository"
)

type fixture struct {
	svc       referraldomain.Service
	creditSvc creditdomain.Service
	db        *gorm.DB
	node      *snowflake.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&referraldomain.Referral{},
		&creditdomain.CreditBalance{},
		&creditdomain.CreditTransaction{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	creditSvc := creditservice.NewService(creditservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
	})
	svc := NewService(Params{
		DB:        db,
		Log:       zap.NewNop(),
		GenID:     node,
		Repo:      repository.Provide(),
		CreditSvc: creditSvc,
	})
	return &fixture{svc: svc, creditSvc: creditSvc, db: db, node: node}
}

func (f *fixture) createReferral(t *testing.T) *referraldomain.Referral {
	t.Helper()
	referral, err := f.svc.Create(context.Background(), referraldomain.CreateReferralRequest{
		ReferrerOrgID:            f.node.Generate(),
		ReferrerEmail:            "alice@example.com",
		RefereeEmail:             "bob@example.com",
		CreditAmountCents:        2500,
		RefereeCreditAmountCents: 1000,
	})
	require.NoError(t, err)
	return referral
}

func TestCreateGeneratesUniqueCodes(t *testing.T) {
	f := newFixture(t)

	first := f.createReferral(t)
	second := f.createReferral(t)
	require.NotEmpty(t, first.ReferralCode)
	require.NotEqual(t, first.ReferralCode, second.ReferralCode)
	require.Equal(t, referraldomain.StatusPending, first.Status)

	found, err := f.svc.GetByCode(context.Background(), first.ReferralCode)
	require.NoError(t, err)
	require.Equal(t, first.ID, found.ID)
}

func TestCompleteAndCredit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	referral := f.createReferral(t)
	refereeOrg := f.node.Generate()

	completed, err := f.svc.Complete(ctx, referral.ReferralCode, refereeOrg)
	require.NoError(t, err)
	require.Equal(t, referraldomain.StatusCompleted, completed.Status)
	require.Equal(t, refereeOrg, *completed.RefereeOrgID)

	credited, err := f.svc.CreditReferral(ctx, referral.ID)
	require.NoError(t, err)
	require.Equal(t, referraldomain.StatusCredited, credited.Status)
	require.NotNil(t, credited.CreditedAt)

	referrerBalance, err := f.creditSvc.GetBalance(ctx, referral.ReferrerOrgID)
	require.NoError(t, err)
	require.Equal(t, int64(2500), referrerBalance.ReferralCents)
	require.Equal(t, int64(2500), referrerBalance.AvailableCents)

	refereeBalance, err := f.creditSvc.GetBalance(ctx, refereeOrg)
	require.NoError(t, err)
	require.Equal(t, int64(1000), refereeBalance.ReferralCents)

	// Exactly two credit transactions exist: referrer and referee.
	var count int64
	require.NoError(t, f.db.Model(&creditdomain.CreditTransaction{}).Count(&count).Error)
	require.Equal(t, int64(2), count)
}

func TestCreditReferralIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	referral := f.createReferral(t)

	_, err := f.svc.Complete(ctx, referral.ReferralCode, f.node.Generate())
	require.NoError(t, err)
	_, err = f.svc.CreditReferral(ctx, referral.ID)
	require.NoError(t, err)

	_, err = f.svc.CreditReferral(ctx, referral.ID)
	require.ErrorIs(t, err, referraldomain.ErrInvalidTransition)

	// The failed second attempt wrote no further transactions.
	var count int64
	require.NoError(t, f.db.Model(&creditdomain.CreditTransaction{}).Count(&count).Error)
	require.Equal(t, int64(2), count)
}

func TestCreditRequiresCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	referral := f.createReferral(t)

	_, err := f.svc.CreditReferral(ctx, referral.ID)
	require.ErrorIs(t, err, referraldomain.ErrInvalidTransition)

	var count int64
	require.NoError(t, f.db.Model(&creditdomain.CreditTransaction{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestCompleteTwiceFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	referral := f.createReferral(t)

	_, err := f.svc.Complete(ctx, referral.ReferralCode, f.node.Generate())
	require.NoError(t, err)

	_, err = f.svc.Complete(ctx, referral.ReferralCode, f.node.Generate())
	require.ErrorIs(t, err, referraldomain.ErrInvalidTransition)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, referraldomain.CreateReferralRequest{
		ReferrerOrgID: f.node.Generate(),
		ReferrerEmail: "not-an-email",
		RefereeEmail:  "bob@example.com",
	})
	require.ErrorIs(t, err, referraldomain.ErrInvalidEmail)

	_, err = f.svc.Create(ctx, referraldomain.CreateReferralRequest{
		ReferrerOrgID: f.node.Generate(),
		ReferrerEmail: "alice@example.com",
		RefereeEmail:  "bob@example.com",
		// zero credit amounts
	})
	require.ErrorIs(t, err, referraldomain.ErrInvalidAmount)

	_, err = f.svc.Complete(ctx, "missing-code", f.node.Generate())
	require.ErrorIs(t, err, referraldomain.ErrNotFound)
}
