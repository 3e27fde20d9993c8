package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// CreditType classifies a balance mutation. The three grant types map
// onto balance category fields; usage draws the balance down.
type CreditType string

const (
	CreditPromotional CreditType = "promotional"
	CreditReferral    CreditType = "referral"
	CreditPrepaid     CreditType = "prepaid"
	CreditUsage       CreditType = "usage"
)

// CreditBalance holds one organization's credit position. Totals are
// always recomputed from the category fields, never incremented on
// their own: total = promotional + referral + prepaid and
// available = total - used, with available never negative.
type CreditBalance struct {
	OrgID            snowflake.ID `json:"organization_id" gorm:"primaryKey;autoIncrement:false"`
	TotalCents       int64        `json:"total_cents" gorm:"not null;default:0"`
	AvailableCents   int64        `json:"available_cents" gorm:"not null;default:0"`
	UsedCents        int64        `json:"used_cents" gorm:"not null;default:0"`
	PromotionalCents int64        `json:"promotional_cents" gorm:"not null;default:0"`
	ReferralCents    int64        `json:"referral_cents" gorm:"not null;default:0"`
	PrepaidCents     int64        `json:"prepaid_cents" gorm:"not null;default:0"`
	LastUpdated      time.Time    `json:"last_updated" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (CreditBalance) TableName() string { return "credit_balances" }

// CreditTransaction is one append-only mutation record. BalanceAfterCents
// snapshots the available balance after the mutation committed.
type CreditTransaction struct {
	ID                snowflake.ID `json:"id" gorm:"primaryKey"`
	OrgID             snowflake.ID `json:"organization_id" gorm:"not null;index"`
	Type              CreditType   `json:"type" gorm:"type:text;not null"`
	AmountCents       int64        `json:"amount_cents" gorm:"not null"`
	BalanceAfterCents int64        `json:"balance_after_cents" gorm:"not null"`
	Description       string       `json:"description" gorm:"type:text"`
	CreatedAt         time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

func (CreditTransaction) TableName() string { return "credit_transactions" }
