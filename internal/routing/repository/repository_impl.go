package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/smallbiznis/fareway/internal/routing/domain"
)

type repo struct{}

func Provide() domain.Repository { return &repo{} }

func (r *repo) Insert(ctx context.Context, db *gorm.DB, provider *domain.Provider) error {
	return db.WithContext(ctx).Create(provider).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, provider *domain.Provider) error {
	return db.WithContext(ctx).Save(provider).Error
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Provider, error) {
	var provider domain.Provider
	err := db.WithContext(ctx).Where("id = ?", id).First(&provider).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &provider, nil
}

func (r *repo) FindByName(ctx context.Context, db *gorm.DB, name string) (*domain.Provider, error) {
	var provider domain.Provider
	err := db.WithContext(ctx).Where("name = ?", name).First(&provider).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &provider, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, serviceType string, activeOnly bool) ([]*domain.Provider, error) {
	query := db.WithContext(ctx).Model(&domain.Provider{})
	if serviceType != "" {
		query = query.Where("service_type IN ?", []string{serviceType, "all_services"})
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var providers []*domain.Provider
	// "IS NULL" sorts null weights last on every supported dialect;
	// NULLS LAST is not valid MySQL.
	if err := query.Order("priority_weight IS NULL, priority_weight ASC, name ASC").Find(&providers).Error; err != nil {
		return nil, err
	}
	return providers, nil
}
