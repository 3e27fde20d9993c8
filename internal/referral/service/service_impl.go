package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/smallbiznis/fareway/internal/audit/domain"
	creditdomain "github.com/smallbiznis/fareway/internal/credit/domain"
	referraldomain "github.com/smallbiznis/fareway/internal/referral/domain"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      referraldomain.Repository
	CreditSvc creditdomain.Service
	AuditSvc  auditdomain.Service `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      referraldomain.Repository
	creditSvc creditdomain.Service
	auditSvc  auditdomain.Service
}

func NewService(p Params) referraldomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("referral.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		creditSvc: p.CreditSvc,
		auditSvc:  p.AuditSvc,
	}
}

func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1
}

func (s *Service) Create(ctx context.Context, req referraldomain.CreateReferralRequest) (*referraldomain.Referral, error) {
	if req.ReferrerOrgID == 0 {
		return nil, referraldomain.ErrInvalidReferee
	}
	if !validEmail(req.ReferrerEmail) || !validEmail(req.RefereeEmail) {
		return nil, referraldomain.ErrInvalidEmail
	}
	if req.CreditAmountCents <= 0 || req.RefereeCreditAmountCents <= 0 {
		return nil, referraldomain.ErrInvalidAmount
	}

	now := time.Now().UTC()
	referral := &referraldomain.Referral{
		ID:                       s.genID.Generate(),
		ReferrerOrgID:            req.ReferrerOrgID,
		ReferrerEmail:            strings.TrimSpace(req.ReferrerEmail),
		RefereeEmail:             strings.TrimSpace(req.RefereeEmail),
		CreditAmountCents:        req.CreditAmountCents,
		RefereeCreditAmountCents: req.RefereeCreditAmountCents,
		ReferralCode:             ulid.Make().String(),
		Status:                   referraldomain.StatusPending,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
	if err := s.repo.Insert(ctx, s.db, referral); err != nil {
		return nil, err
	}

	s.log.Info("referral created",
		zap.String("referral_id", referral.ID.String()),
		zap.String("referral_code", referral.ReferralCode),
	)
	return referral, nil
}

func (s *Service) Complete(ctx context.Context, code string, refereeOrgID snowflake.ID) (*referraldomain.Referral, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, referraldomain.ErrInvalidCode
	}
	if refereeOrgID == 0 {
		return nil, referraldomain.ErrInvalidReferee
	}

	referral, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return nil, err
	}
	if referral == nil {
		return nil, referraldomain.ErrNotFound
	}

	now := time.Now().UTC()
	result := s.db.WithContext(ctx).Exec(
		`UPDATE referrals
		 SET status = ?, referee_org_id = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		string(referraldomain.StatusCompleted),
		refereeOrgID,
		now,
		referral.ID,
		string(referraldomain.StatusPending),
	)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, referraldomain.ErrInvalidTransition
	}

	referral.Status = referraldomain.StatusCompleted
	referral.RefereeOrgID = &refereeOrgID
	referral.UpdatedAt = now
	return referral, nil
}

func (s *Service) CreditReferral(ctx context.Context, id snowflake.ID) (*referraldomain.Referral, error) {
	if id == 0 {
		return nil, referraldomain.ErrInvalidID
	}

	referral, err := s.repo.Find(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if referral == nil {
		return nil, referraldomain.ErrNotFound
	}
	if referral.RefereeOrgID == nil {
		return nil, referraldomain.ErrInvalidTransition
	}

	now := time.Now().UTC()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The guarded UPDATE is the idempotency gate: a concurrent or
		// repeated credit matches zero rows and rolls back before any
		// credit transaction is written.
		result := tx.WithContext(ctx).Exec(
			`UPDATE referrals
			 SET status = ?, credited_at = ?, updated_at = ?
			 WHERE id = ? AND status = ?`,
			string(referraldomain.StatusCredited),
			now,
			now,
			id,
			string(referraldomain.StatusCompleted),
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return referraldomain.ErrInvalidTransition
		}

		description := "referral " + referral.ReferralCode
		if _, err := s.creditSvc.ApplyCreditTx(ctx, tx, creditdomain.ApplyCreditRequest{
			OrgID:       referral.ReferrerOrgID,
			Type:        creditdomain.CreditReferral,
			AmountCents: referral.CreditAmountCents,
			Description: description + " (referrer)",
		}); err != nil {
			return err
		}
		if _, err := s.creditSvc.ApplyCreditTx(ctx, tx, creditdomain.ApplyCreditRequest{
			OrgID:       *referral.RefereeOrgID,
			Type:        creditdomain.CreditReferral,
			AmountCents: referral.RefereeCreditAmountCents,
			Description: description + " (referee)",
		}); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	referral.Status = referraldomain.StatusCredited
	referral.CreditedAt = &now
	referral.UpdatedAt = now

	referralID := id.String()
	if s.auditSvc != nil {
		metadata := map[string]any{
			"referral_code":               referral.ReferralCode,
			"credit_amount_cents":         referral.CreditAmountCents,
			"referee_credit_amount_cents": referral.RefereeCreditAmountCents,
		}
		if err := s.auditSvc.AuditLog(ctx, &referral.ReferrerOrgID, "", nil, "referral.credited", "referral", &referralID, metadata); err != nil {
			s.log.Warn("failed to write referral audit log", zap.Error(err))
		}
	}
	return referral, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*referraldomain.Referral, error) {
	if id == 0 {
		return nil, referraldomain.ErrInvalidID
	}
	referral, err := s.repo.Find(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if referral == nil {
		return nil, referraldomain.ErrNotFound
	}
	return referral, nil
}

func (s *Service) GetByCode(ctx context.Context, code string) (*referraldomain.Referral, error) {
	referral, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return nil, err
	}
	if referral == nil {
		return nil, referraldomain.ErrNotFound
	}
	return referral, nil
}

func (s *Service) ListByReferrer(ctx context.Context, orgID snowflake.ID) ([]*referraldomain.Referral, error) {
	if orgID == 0 {
		return nil, referraldomain.ErrInvalidReferee
	}
	return s.repo.ListByReferrer(ctx, s.db, orgID)
}
