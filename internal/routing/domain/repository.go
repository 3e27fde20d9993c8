package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, provider *Provider) error
	Update(ctx context.Context, db *gorm.DB, provider *Provider) error
	Find(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Provider, error)
	FindByName(ctx context.Context, db *gorm.DB, name string) (*Provider, error)
	List(ctx context.Context, db *gorm.DB, serviceType string, activeOnly bool) ([]*Provider, error)
}
