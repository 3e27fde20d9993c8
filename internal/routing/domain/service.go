package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type CreateProviderRequest struct {
	Name           string            `json:"name"`
	ServiceType    string            `json:"service_type"`
	Status         ProviderStatus    `json:"status"`
	PriorityWeight *int32            `json:"priority_weight,omitempty"`
	CountryRouting *CountryRouting   `json:"country_routing,omitempty"`
	Credentials    map[string]string `json:"credentials,omitempty"`
}

type UpdateProviderRequest struct {
	Status         *ProviderStatus   `json:"status,omitempty"`
	IsActive       *bool             `json:"is_active,omitempty"`
	PriorityWeight *int32            `json:"priority_weight,omitempty"`
	CountryRouting *CountryRouting   `json:"country_routing,omitempty"`
	Credentials    map[string]string `json:"credentials,omitempty"`
}

type SelectRequest struct {
	ServiceType string         `json:"service_type"`
	Country     string         `json:"country,omitempty"`
	ExcludeIDs  []snowflake.ID `json:"exclude_ids,omitempty"`
}

// SelectResult carries the redacted selection for callers outside the
// trust boundary.
type SelectResult struct {
	Provider  RedactedProvider   `json:"provider"`
	Fallbacks []RedactedProvider `json:"fallbacks"`
}

type Service interface {
	CreateProvider(ctx context.Context, req CreateProviderRequest) (*Provider, error)
	UpdateProvider(ctx context.Context, id snowflake.ID, req UpdateProviderRequest) (*Provider, error)
	GetProvider(ctx context.Context, id snowflake.ID) (*Provider, error)
	ListProviders(ctx context.Context, serviceType string, activeOnly bool) ([]*Provider, error)
	Select(ctx context.Context, req SelectRequest) (*SelectResult, error)
}
