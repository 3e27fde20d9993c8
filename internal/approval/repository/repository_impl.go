package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/smallbiznis/fareway/internal/approval/domain"
)

type repo struct{}

func Provide() domain.Repository { return &repo{} }

func (r *repo) Insert(ctx context.Context, db *gorm.DB, req *domain.PriceChangeRequest) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO price_change_requests (
			id, org_id, provider_cost_id, current_cost_cents, new_cost_cents,
			detected_at, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID,
		req.OrgID,
		req.ProviderCostID,
		req.CurrentCostCents,
		req.NewCostCents,
		req.DetectedAt,
		string(req.Status),
		req.CreatedAt,
		req.UpdatedAt,
	).Error
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.PriceChangeRequest, error) {
	var req domain.PriceChangeRequest
	err := db.WithContext(ctx).Where("id = ?", id).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, status domain.RequestStatus, limit int) ([]*domain.PriceChangeRequest, error) {
	stmt := db.WithContext(ctx).Model(&domain.PriceChangeRequest{})
	if status != "" {
		stmt = stmt.Where("status = ?", string(status))
	}
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}

	var reqs []*domain.PriceChangeRequest
	if err := stmt.Order("detected_at asc, id asc").Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}
