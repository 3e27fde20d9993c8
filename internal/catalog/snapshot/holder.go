package snapshot

import (
	"context"
	"sync/atomic"
	"time"

	catalogdomain "github.com/smallbiznis/fareway/internal/catalog/domain"
	"gorm.io/gorm"
)

// Holder keeps the most recently loaded catalog snapshot. Readers get an
// immutable view; the refresher swaps the pointer atomically.
type Holder struct {
	current atomic.Pointer[catalogdomain.Snapshot]
}

func NewHolder() *Holder {
	return &Holder{}
}

// Current returns the latest snapshot, or an empty one before the first
// successful load.
func (h *Holder) Current() *catalogdomain.Snapshot {
	if snap := h.current.Load(); snap != nil {
		return snap
	}
	return &catalogdomain.Snapshot{}
}

func (h *Holder) store(snap *catalogdomain.Snapshot) {
	h.current.Store(snap)
}

// Load reads every active catalog table into a fresh snapshot.
func Load(ctx context.Context, db *gorm.DB, repo catalogdomain.Repository) (*catalogdomain.Snapshot, error) {
	providerCosts, err := repo.ListProviderCosts(ctx, db, true)
	if err != nil {
		return nil, err
	}
	markupRules, err := repo.ListMarkupRules(ctx, db, true)
	if err != nil {
		return nil, err
	}
	plans, err := repo.ListPlans(ctx, db, true)
	if err != nil {
		return nil, err
	}
	taxRules, err := repo.ListTaxRules(ctx, db, true)
	if err != nil {
		return nil, err
	}
	currencies, err := repo.ListCurrencies(ctx, db, true)
	if err != nil {
		return nil, err
	}

	return &catalogdomain.Snapshot{
		ProviderCosts: providerCosts,
		MarkupRules:   markupRules,
		Plans:         plans,
		TaxRules:      taxRules,
		Currencies:    currencies,
		LoadedAt:      time.Now().UTC(),
	}, nil
}
