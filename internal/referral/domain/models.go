package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ReferralStatus string

const (
	StatusPending   ReferralStatus = "pending"
	StatusCompleted ReferralStatus = "completed"
	StatusCredited  ReferralStatus = "credited"
)

// Referral tracks one invitation from signup through crediting.
// Crediting writes exactly two credit transactions, referrer and
// referee, or none at all.
type Referral struct {
	ID                       snowflake.ID   `json:"id" gorm:"primaryKey"`
	ReferrerOrgID            snowflake.ID   `json:"referrer_organization_id" gorm:"not null;index"`
	ReferrerEmail            string         `json:"referrer_email" gorm:"type:text;not null"`
	RefereeEmail             string         `json:"referee_email" gorm:"type:text;not null"`
	RefereeOrgID             *snowflake.ID  `json:"referee_organization_id,omitempty" gorm:"index"`
	CreditAmountCents        int64          `json:"credit_amount_cents" gorm:"not null"`
	RefereeCreditAmountCents int64          `json:"referee_credit_amount_cents" gorm:"not null"`
	ReferralCode             string         `json:"referral_code" gorm:"type:text;not null;uniqueIndex"`
	Status                   ReferralStatus `json:"status" gorm:"type:text;not null;default:'pending';index"`
	CreditedAt               *time.Time     `json:"credited_at,omitempty"`
	CreatedAt                time.Time      `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt                time.Time      `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Referral) TableName() string { return "referrals" }

var (
	ErrNotFound          = errors.New("referral_not_found")
	ErrInvalidID         = errors.New("invalid_referral_id")
	ErrInvalidEmail      = errors.New("invalid_email")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrInvalidCode       = errors.New("invalid_referral_code")
	ErrInvalidReferee    = errors.New("invalid_referee_organization")
	ErrInvalidTransition = errors.New("invalid_transition")
)

type CreateReferralRequest struct {
	ReferrerOrgID            snowflake.ID `json:"referrer_organization_id"`
	ReferrerEmail            string       `json:"referrer_email"`
	RefereeEmail             string       `json:"referee_email"`
	CreditAmountCents        int64        `json:"credit_amount_cents"`
	RefereeCreditAmountCents int64        `json:"referee_credit_amount_cents"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, referral *Referral) error
	Find(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Referral, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Referral, error)
	ListByReferrer(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]*Referral, error)
}

type Service interface {
	Create(ctx context.Context, req CreateReferralRequest) (*Referral, error)
	// Complete marks the referee's signup against the code.
	Complete(ctx context.Context, code string, refereeOrgID snowflake.ID) (*Referral, error)
	// CreditReferral grants both sides their credit. It requires status
	// completed and is idempotent under races: the second caller gets
	// ErrInvalidTransition and no transactions are written.
	CreditReferral(ctx context.Context, id snowflake.ID) (*Referral, error)
	Get(ctx context.Context, id snowflake.ID) (*Referral, error)
	GetByCode(ctx context.Context, code string) (*Referral, error)
	ListByReferrer(ctx context.Context, orgID snowflake.ID) ([]*Referral, error)
}
