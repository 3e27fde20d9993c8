package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrInvalidOrganization    = errors.New("invalid_organization")
	ErrInvalidCreditType      = errors.New("invalid_credit_type")
	ErrInvalidAmount          = errors.New("invalid_amount")
	ErrNegativeBalance        = errors.New("negative_balance")
	ErrConcurrentModification = errors.New("concurrent_modification")
)

type ApplyCreditRequest struct {
	OrgID       snowflake.ID `json:"organization_id"`
	Type        CreditType   `json:"type"`
	AmountCents int64        `json:"amount_cents"`
	Description string       `json:"description,omitempty"`
}

type Service interface {
	// ApplyCredit runs the mutation in its own transaction, taking the
	// per-org redis lock when one is configured.
	ApplyCredit(ctx context.Context, req ApplyCreditRequest) (*CreditTransaction, error)
	// ApplyCreditTx joins a caller-owned transaction. The caller holds
	// any outer locks; the balance row lock is still taken.
	ApplyCreditTx(ctx context.Context, tx *gorm.DB, req ApplyCreditRequest) (*CreditTransaction, error)
	GetBalance(ctx context.Context, orgID snowflake.ID) (*CreditBalance, error)
	ListTransactions(ctx context.Context, orgID snowflake.ID, limit int) ([]CreditTransaction, error)
}
