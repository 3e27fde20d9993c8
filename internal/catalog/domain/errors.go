package domain

import "errors"

var (
	ErrNotFound             = errors.New("not_found")
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidName          = errors.New("invalid_name")
	ErrInvalidServiceType   = errors.New("invalid_service_type")
	ErrInvalidProviderName  = errors.New("invalid_provider_name")
	ErrInvalidCost          = errors.New("invalid_cost")
	ErrInvalidCurrency      = errors.New("invalid_currency")
	ErrInvalidScope         = errors.New("invalid_scope")
	ErrInvalidMarkupType    = errors.New("invalid_markup_type")
	ErrInvalidMarkupValue   = errors.New("invalid_markup_value")
	ErrDuplicatePriority    = errors.New("duplicate_priority")
	ErrInvalidTierBounds    = errors.New("invalid_tier_bounds")
	ErrInvalidMultiplier    = errors.New("invalid_multiplier")
	ErrInvalidDiscount      = errors.New("invalid_discount")
	ErrInvalidTaxRate       = errors.New("invalid_tax_rate")
	ErrInvalidCountry       = errors.New("invalid_country")
	ErrProviderCostInUse    = errors.New("provider_cost_in_use")
	ErrInvalidEffectiveFrom = errors.New("invalid_effective_from")
)
