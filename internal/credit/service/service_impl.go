package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	creditdomain "github.com/smallbiznis/fareway/internal/credit/domain"
	obsmetrics "github.com/smallbiznis/fareway/internal/observability/metrics"
	"github.com/smallbiznis/fareway/internal/ratelimit"
	"github.com/smallbiznis/fareway/pkg/db"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Limiter    *ratelimit.QuoteLimiter `optional:"true"`
	ObsMetrics *obsmetrics.Metrics     `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	limiter    *ratelimit.QuoteLimiter
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) creditdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("credit.service"),
		genID:      p.GenID,
		limiter:    p.Limiter,
		obsMetrics: p.ObsMetrics,
	}
}

func validCreditType(t creditdomain.CreditType) bool {
	switch t {
	case creditdomain.CreditPromotional, creditdomain.CreditReferral,
		creditdomain.CreditPrepaid, creditdomain.CreditUsage:
		return true
	}
	return false
}

func (s *Service) ApplyCredit(ctx context.Context, req creditdomain.ApplyCreditRequest) (*creditdomain.CreditTransaction, error) {
	if req.OrgID == 0 {
		return nil, creditdomain.ErrInvalidOrganization
	}

	// Redis lock shortens contention windows across instances; the row
	// lock inside the transaction is what guarantees correctness.
	if s.limiter.Enabled() {
		token, ok, err := s.limiter.TryLockCredit(ctx, req.OrgID.String())
		if err != nil {
			s.log.Warn("credit lock unavailable", zap.Error(err))
		} else if !ok {
			return nil, creditdomain.ErrConcurrentModification
		} else {
			defer func() {
				if err := s.limiter.ReleaseCredit(ctx, req.OrgID.String(), token); err != nil {
					s.log.Warn("failed to release credit lock", zap.Error(err))
				}
			}()
		}
	}

	var txn *creditdomain.CreditTransaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		applied, err := s.ApplyCreditTx(ctx, tx, req)
		if err != nil {
			return err
		}
		txn = applied
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *Service) ApplyCreditTx(ctx context.Context, tx *gorm.DB, req creditdomain.ApplyCreditRequest) (*creditdomain.CreditTransaction, error) {
	if req.OrgID == 0 {
		return nil, creditdomain.ErrInvalidOrganization
	}
	if !validCreditType(req.Type) {
		return nil, creditdomain.ErrInvalidCreditType
	}
	if req.AmountCents == 0 {
		return nil, creditdomain.ErrInvalidAmount
	}

	balance, err := s.loadBalanceForUpdate(ctx, tx, req.OrgID)
	if err != nil {
		return nil, err
	}

	switch req.Type {
	case creditdomain.CreditPromotional:
		balance.PromotionalCents += req.AmountCents
	case creditdomain.CreditReferral:
		balance.ReferralCents += req.AmountCents
	case creditdomain.CreditPrepaid:
		balance.PrepaidCents += req.AmountCents
	case creditdomain.CreditUsage:
		// Usage amounts are negative draws against the balance.
		balance.UsedCents += -req.AmountCents
	}

	if balance.PromotionalCents < 0 || balance.ReferralCents < 0 ||
		balance.PrepaidCents < 0 || balance.UsedCents < 0 {
		return nil, creditdomain.ErrNegativeBalance
	}

	balance.TotalCents = balance.PromotionalCents + balance.ReferralCents + balance.PrepaidCents
	balance.AvailableCents = balance.TotalCents - balance.UsedCents
	if balance.AvailableCents < 0 {
		return nil, creditdomain.ErrNegativeBalance
	}
	balance.LastUpdated = time.Now().UTC()

	if err := tx.WithContext(ctx).Exec(
		`UPDATE credit_balances SET
			total_cents = ?, available_cents = ?, used_cents = ?,
			promotional_cents = ?, referral_cents = ?, prepaid_cents = ?,
			last_updated = ?
		 WHERE org_id = ?`,
		balance.TotalCents,
		balance.AvailableCents,
		balance.UsedCents,
		balance.PromotionalCents,
		balance.ReferralCents,
		balance.PrepaidCents,
		balance.LastUpdated,
		balance.OrgID,
	).Error; err != nil {
		return nil, err
	}

	txn := &creditdomain.CreditTransaction{
		ID:                s.genID.Generate(),
		OrgID:             req.OrgID,
		Type:              req.Type,
		AmountCents:       req.AmountCents,
		BalanceAfterCents: balance.AvailableCents,
		Description:       strings.TrimSpace(req.Description),
		CreatedAt:         time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Exec(
		`INSERT INTO credit_transactions (
			id, org_id, type, amount_cents, balance_after_cents, description, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		txn.ID,
		txn.OrgID,
		string(txn.Type),
		txn.AmountCents,
		txn.BalanceAfterCents,
		txn.Description,
		txn.CreatedAt,
	).Error; err != nil {
		return nil, err
	}

	s.obsMetrics.RecordCreditMutation(ctx, string(req.Type))
	return txn, nil
}

// loadBalanceForUpdate locks the balance row for the transaction,
// creating a zeroed row first when the organization has none. The row
// lock is skipped on sqlite, which serializes writers anyway.
func (s *Service) loadBalanceForUpdate(ctx context.Context, tx *gorm.DB, orgID snowflake.ID) (*creditdomain.CreditBalance, error) {
	now := time.Now().UTC()
	if err := tx.WithContext(ctx).Exec(
		`INSERT INTO credit_balances (
			org_id, total_cents, available_cents, used_cents,
			promotional_cents, referral_cents, prepaid_cents, last_updated
		) VALUES (?, 0, 0, 0, 0, 0, 0, ?)
		ON CONFLICT (org_id) DO NOTHING`,
		orgID,
		now,
	).Error; err != nil {
		if !db.IsDuplicateKeyErr(err) {
			return nil, err
		}
	}

	query := `SELECT org_id, total_cents, available_cents, used_cents,
		promotional_cents, referral_cents, prepaid_cents, last_updated
		FROM credit_balances WHERE org_id = ?`
	if tx.Dialector.Name() != "sqlite" {
		query += " FOR UPDATE"
	}

	var balance creditdomain.CreditBalance
	if err := tx.WithContext(ctx).Raw(query, orgID).Scan(&balance).Error; err != nil {
		return nil, err
	}
	if balance.OrgID == 0 {
		return nil, errors.New("credit balance row missing after upsert")
	}
	return &balance, nil
}

func (s *Service) GetBalance(ctx context.Context, orgID snowflake.ID) (*creditdomain.CreditBalance, error) {
	if orgID == 0 {
		return nil, creditdomain.ErrInvalidOrganization
	}

	var balance creditdomain.CreditBalance
	err := s.db.WithContext(ctx).Where("org_id = ?", orgID).First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &creditdomain.CreditBalance{OrgID: orgID}, nil
		}
		return nil, err
	}
	return &balance, nil
}

func (s *Service) ListTransactions(ctx context.Context, orgID snowflake.ID, limit int) ([]creditdomain.CreditTransaction, error) {
	if orgID == 0 {
		return nil, creditdomain.ErrInvalidOrganization
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 250 {
		limit = 250
	}

	var txns []creditdomain.CreditTransaction
	err := s.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}
