package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type RequestStatus string

const (
	StatusPendingReview RequestStatus = "pending_review"
	StatusApproved      RequestStatus = "approved"
	StatusRejected      RequestStatus = "rejected"
)

// PriceChangeRequest records a detected provider cost change awaiting
// review. Approving it updates the provider cost; the request row keeps
// old and new values either way.
type PriceChangeRequest struct {
	ID               snowflake.ID  `json:"id" gorm:"primaryKey"`
	OrgID            *snowflake.ID `json:"organization_id,omitempty" gorm:"index"`
	ProviderCostID   snowflake.ID  `json:"provider_cost_id" gorm:"not null;index"`
	CurrentCostCents int64         `json:"current_cost_cents" gorm:"not null"`
	NewCostCents     int64         `json:"new_cost_cents" gorm:"not null"`
	DetectedAt       time.Time     `json:"detected_at" gorm:"not null"`
	Status           RequestStatus `json:"status" gorm:"type:text;not null;default:'pending_review';index"`
	ReviewedBy       *string       `json:"reviewed_by,omitempty"`
	ReviewedAt       *time.Time    `json:"reviewed_at,omitempty"`
	CreatedAt        time.Time     `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time     `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (PriceChangeRequest) TableName() string { return "price_change_requests" }

var (
	ErrNotFound           = errors.New("price_change_request_not_found")
	ErrInvalidID          = errors.New("invalid_request_id")
	ErrInvalidCost        = errors.New("invalid_cost")
	ErrInvalidReviewer    = errors.New("invalid_reviewer")
	ErrInvalidTransition  = errors.New("invalid_transition")
	ErrUnknownProviderCost = errors.New("unknown_provider_cost")
)

type CreateRequest struct {
	OrgID            *snowflake.ID `json:"organization_id,omitempty"`
	ProviderCostID   snowflake.ID  `json:"provider_cost_id"`
	CurrentCostCents int64         `json:"current_cost_cents"`
	NewCostCents     int64         `json:"new_cost_cents"`
	DetectedAt       time.Time     `json:"detected_at,omitempty"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, req *PriceChangeRequest) error
	Find(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PriceChangeRequest, error)
	List(ctx context.Context, db *gorm.DB, status RequestStatus, limit int) ([]*PriceChangeRequest, error)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*PriceChangeRequest, error)
	Approve(ctx context.Context, id snowflake.ID, reviewer string) (*PriceChangeRequest, error)
	Reject(ctx context.Context, id snowflake.ID, reviewer string) (*PriceChangeRequest, error)
	Get(ctx context.Context, id snowflake.ID) (*PriceChangeRequest, error)
	ListPending(ctx context.Context, limit int) ([]*PriceChangeRequest, error)
}
