package domain

import "errors"

var (
	ErrNotFound           = errors.New("provider_not_found")
	ErrInvalidID          = errors.New("invalid_provider_id")
	ErrInvalidName        = errors.New("invalid_provider_name")
	ErrInvalidServiceType = errors.New("invalid_service_type")
	ErrInvalidStatus      = errors.New("invalid_provider_status")
	ErrInvalidWeight      = errors.New("invalid_priority_weight")
	ErrInvalidCountry     = errors.New("invalid_country_code")
	ErrNoProvidersAvailable = errors.New("no_providers_available")
	ErrDuplicateName      = errors.New("provider_name_exists")
)
