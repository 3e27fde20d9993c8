package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ProviderStatus is the operational health of a provider. Unknown values
// rank as offline.
type ProviderStatus string

const (
	StatusActive   ProviderStatus = "active"
	StatusDegraded ProviderStatus = "degraded"
	StatusOffline  ProviderStatus = "offline"
)

// DefaultPriorityWeight applies when a provider has no explicit weight.
// Lower weights are preferred.
const DefaultPriorityWeight int32 = 10

// CountryRouting restricts a provider to a set of countries. A disabled
// config or an empty allow list makes the provider globally eligible.
type CountryRouting struct {
	Enabled          bool     `json:"enabled"`
	AllowedCountries []string `json:"allowed_countries"`
	Exclusive        bool     `json:"exclusive"`
}

// Provider is a routable upstream for one service type. Credentials are
// stored but never serialized out of the trust boundary.
type Provider struct {
	ID             snowflake.ID                        `json:"id" gorm:"primaryKey"`
	Name           string                              `json:"name" gorm:"type:text;not null;uniqueIndex"`
	ServiceType    string                              `json:"service_type" gorm:"type:text;not null;index"`
	Status         ProviderStatus                      `json:"status" gorm:"type:text;not null;default:'active'"`
	IsActive       bool                                `json:"is_active" gorm:"not null;default:true"`
	PriorityWeight *int32                              `json:"priority_weight,omitempty"`
	CountryRouting datatypes.JSONType[CountryRouting]  `json:"country_routing" gorm:"type:jsonb"`
	Credentials    datatypes.JSONType[map[string]string] `json:"-" gorm:"type:jsonb"`
	CreatedAt      time.Time                           `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time                           `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Provider) TableName() string { return "providers" }

// Weight returns the effective priority weight.
func (p *Provider) Weight() int32 {
	if p.PriorityWeight != nil {
		return *p.PriorityWeight
	}
	return DefaultPriorityWeight
}

// StatusRank orders providers by health: active < degraded < offline.
func (p *Provider) StatusRank() int {
	switch p.Status {
	case StatusActive:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

// RedactedProvider is the externally visible provider shape. Credentials
// are reduced to key presence flags.
type RedactedProvider struct {
	ID             snowflake.ID    `json:"id"`
	Name           string          `json:"name"`
	ServiceType    string          `json:"service_type"`
	Status         ProviderStatus  `json:"status"`
	IsActive       bool            `json:"is_active"`
	PriorityWeight int32           `json:"priority_weight"`
	CountryRouting CountryRouting  `json:"country_routing"`
	Credentials    map[string]bool `json:"credentials"`
}

// Redacted converts a provider for use outside the trust boundary.
func (p *Provider) Redacted() RedactedProvider {
	creds := map[string]bool{}
	for key, value := range p.Credentials.Data() {
		creds[key] = value != ""
	}
	return RedactedProvider{
		ID:             p.ID,
		Name:           p.Name,
		ServiceType:    p.ServiceType,
		Status:         p.Status,
		IsActive:       p.IsActive,
		PriorityWeight: p.Weight(),
		CountryRouting: p.CountryRouting.Data(),
		Credentials:    creds,
	}
}
