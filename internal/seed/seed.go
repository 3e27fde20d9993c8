package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/fareway/internal/catalog/domain"
	"gorm.io/gorm"
)

var defaultCurrencies = []catalogdomain.Currency{
	{Code: "USD", Symbol: "$", DecimalPlaces: 2},
	{Code: "EUR", Symbol: "€", DecimalPlaces: 2},
	{Code: "GBP", Symbol: "£", DecimalPlaces: 2},
	{Code: "SGD", Symbol: "S$", DecimalPlaces: 2},
	{Code: "AUD", Symbol: "A$", DecimalPlaces: 2},
	{Code: "JPY", Symbol: "¥", DecimalPlaces: 0},
	{Code: "IDR", Symbol: "Rp", DecimalPlaces: 0},
}

var defaultTaxRules = []catalogdomain.TaxRule{
	{Country: "DE", Rate: 0.19, ReverseChargeEligible: true, TaxCode: "VAT"},
	{Country: "FR", Rate: 0.20, ReverseChargeEligible: true, TaxCode: "VAT"},
	{Country: "NL", Rate: 0.21, ReverseChargeEligible: true, TaxCode: "VAT"},
	{Country: "IE", Rate: 0.23, ReverseChargeEligible: true, TaxCode: "VAT"},
	{Country: "GB", Rate: 0.20, ReverseChargeEligible: true, TaxCode: "VAT"},
	{Country: "SG", Rate: 0.09, ReverseChargeEligible: false, TaxCode: "GST"},
	{Country: "JP", Rate: 0.10, ReverseChargeEligible: false, TaxCode: "JCT"},
	{Country: "US", Rate: 0, ReverseChargeEligible: false, TaxCode: "NO_TAX"},
}

// EnsureReferenceData seeds supported currencies and baseline tax rules.
// Every insert is a no-op when the row already exists, so the seeder is
// safe to run on every startup.
func EnsureReferenceData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		for _, cur := range defaultCurrencies {
			if err := tx.Exec(
				`INSERT INTO currencies (code, symbol, decimal_places, is_active, created_at)
				 VALUES (?, ?, ?, TRUE, ?)
				 ON CONFLICT (code) DO NOTHING`,
				cur.Code, cur.Symbol, cur.DecimalPlaces, now,
			).Error; err != nil {
				return err
			}
		}

		for _, rule := range defaultTaxRules {
			if err := tx.Exec(
				`INSERT INTO tax_rules (id, country, rate, reverse_charge_eligible, tax_code, is_active, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, TRUE, ?, ?)
				 ON CONFLICT (country) DO NOTHING`,
				node.Generate(), rule.Country, rule.Rate, rule.ReverseChargeEligible, rule.TaxCode, now, now,
			).Error; err != nil {
				return err
			}
		}

		return nil
	})
}
