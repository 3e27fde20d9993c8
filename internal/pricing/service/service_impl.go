package service

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	catalogdomain "github.com/smallbiznis/fareway/internal/catalog/domain"
	"github.com/smallbiznis/fareway/internal/clock"
	"github.com/smallbiznis/fareway/internal/observability/metrics"
	"github.com/smallbiznis/fareway/internal/pricing/domain"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Clock    clock.Clock
	Snapshot catalogdomain.SnapshotProvider
	Metrics  *metrics.Metrics `optional:"true"`
}

type service struct {
	log      *zap.Logger
	clock    clock.Clock
	snapshot catalogdomain.SnapshotProvider
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &service{
		log:      p.Log.Named("pricing.service"),
		clock:    p.Clock,
		snapshot: p.Snapshot,
		metrics:  p.Metrics,
	}
}

func (s *service) Quote(ctx context.Context, req domain.MarkupRequest) (*domain.MarkupResolution, error) {
	if req.Timestamp.IsZero() {
		req.Timestamp = s.clock.Now()
	}

	resolution, err := domain.ResolveMarkup(s.snapshot.Current(), req)
	if err != nil {
		s.log.Warn("markup quote failed",
			zap.String("service_type", req.ServiceType),
			zap.String("organization_id", req.OrgID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.metrics.RecordQuote(ctx, "markup")
	return resolution, nil
}

func (s *service) PlanQuote(ctx context.Context, req domain.PlanRequest) (*domain.PlanResolution, error) {
	if req.Timestamp.IsZero() {
		req.Timestamp = s.clock.Now()
	}

	resolution, err := domain.ResolvePlanPrice(s.snapshot.Current(), req)
	if err != nil {
		s.log.Warn("plan quote failed",
			zap.String("plan_tier", req.PlanTier),
			zap.String("service_type", req.ServiceType),
			zap.Error(err),
		)
		return nil, err
	}
	for _, warning := range resolution.Warnings {
		s.log.Warn("plan quote configuration warning",
			zap.String("plan_tier", resolution.PlanTier),
			zap.String("warning", warning),
		)
	}

	s.metrics.RecordQuote(ctx, "plan")
	return resolution, nil
}
