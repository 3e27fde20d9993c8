package snapshot

import (
	"context"
	"time"

	catalogdomain "github.com/smallbiznis/fareway/internal/catalog/domain"
	"github.com/smallbiznis/fareway/internal/config"
	obsmetrics "github.com/smallbiznis/fareway/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Repo       catalogdomain.Repository
	Holder     *Holder
	CfgHolder  *config.CatalogConfigHolder
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

// Worker refreshes the catalog snapshot on the configured interval.
type Worker struct {
	db         *gorm.DB
	log        *zap.Logger
	repo       catalogdomain.Repository
	holder     *Holder
	cfgHolder  *config.CatalogConfigHolder
	obsMetrics *obsmetrics.Metrics
}

func NewWorker(p Params) *Worker {
	return &Worker{
		db:         p.DB,
		log:        p.Log.Named("catalog.snapshot"),
		repo:       p.Repo,
		holder:     p.Holder,
		cfgHolder:  p.CfgHolder,
		obsMetrics: p.ObsMetrics,
	}
}

// RunOnce loads a fresh snapshot and publishes it. A failed load keeps
// the previous snapshot in place.
func (w *Worker) RunOnce(ctx context.Context) error {
	loadCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	snap, err := Load(loadCtx, w.db, w.repo)
	if err != nil {
		w.obsMetrics.RecordSnapshotRefresh(ctx, "error")
		return err
	}

	w.holder.store(snap)
	w.obsMetrics.RecordSnapshotRefresh(ctx, "ok")
	w.log.Debug("catalog snapshot refreshed",
		zap.Int("provider_costs", len(snap.ProviderCosts)),
		zap.Int("markup_rules", len(snap.MarkupRules)),
		zap.Int("plans", len(snap.Plans)),
	)
	return nil
}

func (w *Worker) RunForever(ctx context.Context) {
	interval := w.cfgHolder.Current().RefreshInterval
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(ctx); err != nil {
			w.log.Warn("catalog snapshot refresh failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		// pick up hot-reloaded interval changes
		if next := w.cfgHolder.Current().RefreshInterval; next != interval && next > 0 {
			interval = next
			ticker.Reset(interval)
		}
	}
}
