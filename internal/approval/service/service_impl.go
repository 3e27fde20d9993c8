package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	approvaldomain "github.com/smallbiznis/fareway/internal/approval/domain"
	auditdomain "github.com/smallbiznis/fareway/internal/audit/domain"
	catalogdomain "github.com/smallbiznis/fareway/internal/catalog/domain"
	obsmetrics "github.com/smallbiznis/fareway/internal/observability/metrics"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        approvaldomain.Repository
	CatalogRepo catalogdomain.Repository
	AuditSvc    auditdomain.Service `optional:"true"`
	ObsMetrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        approvaldomain.Repository
	catalogRepo catalogdomain.Repository
	auditSvc    auditdomain.Service
	obsMetrics  *obsmetrics.Metrics
}

func NewService(p Params) approvaldomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("approval.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		catalogRepo: p.CatalogRepo,
		auditSvc:    p.AuditSvc,
		obsMetrics:  p.ObsMetrics,
	}
}

func (s *Service) Create(ctx context.Context, req approvaldomain.CreateRequest) (*approvaldomain.PriceChangeRequest, error) {
	if req.ProviderCostID == 0 {
		return nil, approvaldomain.ErrUnknownProviderCost
	}
	if req.CurrentCostCents < 0 || req.NewCostCents < 0 {
		return nil, approvaldomain.ErrInvalidCost
	}

	cost, err := s.catalogRepo.FindProviderCostByID(ctx, s.db, req.ProviderCostID)
	if err != nil {
		return nil, err
	}
	if cost == nil {
		return nil, approvaldomain.ErrUnknownProviderCost
	}

	detectedAt := req.DetectedAt
	if detectedAt.IsZero() {
		detectedAt = time.Now().UTC()
	}

	now := time.Now().UTC()
	change := &approvaldomain.PriceChangeRequest{
		ID:               s.genID.Generate(),
		OrgID:            req.OrgID,
		ProviderCostID:   req.ProviderCostID,
		CurrentCostCents: req.CurrentCostCents,
		NewCostCents:     req.NewCostCents,
		DetectedAt:       detectedAt.UTC(),
		Status:           approvaldomain.StatusPendingReview,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Insert(ctx, s.db, change); err != nil {
		return nil, err
	}

	s.log.Info("price change request created",
		zap.String("request_id", change.ID.String()),
		zap.String("provider_cost_id", change.ProviderCostID.String()),
		zap.Int64("current_cost_cents", change.CurrentCostCents),
		zap.Int64("new_cost_cents", change.NewCostCents),
	)
	return change, nil
}

// Approve moves the request out of pending_review and applies the new
// cost to the provider cost row, both inside one transaction. A guarded
// UPDATE makes concurrent decisions race-safe: the loser matches zero
// rows and sees ErrInvalidTransition.
func (s *Service) Approve(ctx context.Context, id snowflake.ID, reviewer string) (*approvaldomain.PriceChangeRequest, error) {
	return s.decide(ctx, id, reviewer, approvaldomain.StatusApproved)
}

// Reject closes the request without touching the provider cost.
func (s *Service) Reject(ctx context.Context, id snowflake.ID, reviewer string) (*approvaldomain.PriceChangeRequest, error) {
	return s.decide(ctx, id, reviewer, approvaldomain.StatusRejected)
}

func (s *Service) decide(ctx context.Context, id snowflake.ID, reviewer string, decision approvaldomain.RequestStatus) (*approvaldomain.PriceChangeRequest, error) {
	if id == 0 {
		return nil, approvaldomain.ErrInvalidID
	}
	reviewer = strings.TrimSpace(reviewer)
	if reviewer == "" {
		return nil, approvaldomain.ErrInvalidReviewer
	}

	change, err := s.repo.Find(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if change == nil {
		return nil, approvaldomain.ErrNotFound
	}

	now := time.Now().UTC()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.WithContext(ctx).Exec(
			`UPDATE price_change_requests
			 SET status = ?, reviewed_by = ?, reviewed_at = ?, updated_at = ?
			 WHERE id = ? AND status = ?`,
			string(decision),
			reviewer,
			now,
			now,
			id,
			string(approvaldomain.StatusPendingReview),
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return approvaldomain.ErrInvalidTransition
		}

		if decision == approvaldomain.StatusApproved {
			if err := tx.WithContext(ctx).Exec(
				`UPDATE provider_costs
				 SET cost_per_unit_cents = ?, effective_from = ?, updated_at = ?
				 WHERE id = ?`,
				change.NewCostCents,
				now,
				now,
				change.ProviderCostID,
			).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	change.Status = decision
	change.ReviewedBy = &reviewer
	change.ReviewedAt = &now
	change.UpdatedAt = now

	requestID := id.String()
	if s.auditSvc != nil {
		metadata := map[string]any{
			"provider_cost_id":   change.ProviderCostID.String(),
			"current_cost_cents": change.CurrentCostCents,
			"new_cost_cents":     change.NewCostCents,
		}
		action := "approval.price_change_rejected"
		if decision == approvaldomain.StatusApproved {
			action = "approval.price_change_approved"
		}
		if err := s.auditSvc.AuditLog(ctx, change.OrgID, string(auditdomain.ActorTypeUser), &reviewer, action, "price_change_request", &requestID, metadata); err != nil {
			s.log.Warn("failed to write approval audit log", zap.Error(err))
		}
	}

	s.obsMetrics.RecordApprovalDecision(ctx, string(decision))
	return change, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*approvaldomain.PriceChangeRequest, error) {
	if id == 0 {
		return nil, approvaldomain.ErrInvalidID
	}
	change, err := s.repo.Find(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if change == nil {
		return nil, approvaldomain.ErrNotFound
	}
	return change, nil
}

func (s *Service) ListPending(ctx context.Context, limit int) ([]*approvaldomain.PriceChangeRequest, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.List(ctx, s.db, approvaldomain.StatusPendingReview, limit)
}
