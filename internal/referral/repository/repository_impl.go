package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/smallbiznis/fareway/internal/referral/domain"
)

type repo struct{}

func Provide() domain.Repository { return &repo{} }

func (r *repo) Insert(ctx context.Context, db *gorm.DB, referral *domain.Referral) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO referrals (
			id, referrer_org_id, referrer_email, referee_email, referee_org_id,
			credit_amount_cents, referee_credit_amount_cents, referral_code,
			status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		referral.ID,
		referral.ReferrerOrgID,
		referral.ReferrerEmail,
		referral.RefereeEmail,
		referral.RefereeOrgID,
		referral.CreditAmountCents,
		referral.RefereeCreditAmountCents,
		referral.ReferralCode,
		string(referral.Status),
		referral.CreatedAt,
		referral.UpdatedAt,
	).Error
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Referral, error) {
	var referral domain.Referral
	err := db.WithContext(ctx).Where("id = ?", id).First(&referral).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &referral, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Referral, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}

	var referral domain.Referral
	err := db.WithContext(ctx).Where("referral_code = ?", code).First(&referral).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &referral, nil
}

func (r *repo) ListByReferrer(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]*domain.Referral, error) {
	var referrals []*domain.Referral
	err := db.WithContext(ctx).
		Where("referrer_org_id = ?", orgID).
		Order("created_at desc, id desc").
		Find(&referrals).Error
	if err != nil {
		return nil, err
	}
	return referrals, nil
}
