package domain

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func weight(w int32) *int32 { return &w }

func buildProvider(name, serviceType string, status ProviderStatus, w *int32, routing CountryRouting) *Provider {
	return &Provider{
		Name:           name,
		ServiceType:    serviceType,
		Status:         status,
		IsActive:       true,
		PriorityWeight: w,
		CountryRouting: datatypes.NewJSONType(routing),
	}
}

func TestSelectPrefersLowerWeight(t *testing.T) {
	providers := []*Provider{
		buildProvider("beta", "sms", StatusActive, weight(20), CountryRouting{}),
		buildProvider("alpha", "sms", StatusActive, weight(5), CountryRouting{}),
	}

	sel, err := Select(providers, SelectionInput{ServiceType: "sms"})
	require.NoError(t, err)
	require.Equal(t, "alpha", sel.Provider.Name)
	require.Len(t, sel.Fallbacks, 1)
	require.Equal(t, "beta", sel.Fallbacks[0].Name)
}

func TestSelectStatusBreaksWeightTie(t *testing.T) {
	providers := []*Provider{
		buildProvider("degraded", "sms", StatusDegraded, weight(10), CountryRouting{}),
		buildProvider("healthy", "sms", StatusActive, weight(10), CountryRouting{}),
	}

	sel, err := Select(providers, SelectionInput{ServiceType: "sms"})
	require.NoError(t, err)
	require.Equal(t, "healthy", sel.Provider.Name)
}

func TestSelectSkipsOfflineAndInactive(t *testing.T) {
	offline := buildProvider("offline", "sms", StatusOffline, weight(1), CountryRouting{})
	inactive := buildProvider("inactive", "sms", StatusActive, weight(1), CountryRouting{})
	inactive.IsActive = false
	healthy := buildProvider("healthy", "sms", StatusActive, weight(50), CountryRouting{})

	sel, err := Select([]*Provider{offline, inactive, healthy}, SelectionInput{ServiceType: "sms"})
	require.NoError(t, err)
	require.Equal(t, "healthy", sel.Provider.Name)
	require.Empty(t, sel.Fallbacks)
}

func TestSelectCountryMatchWins(t *testing.T) {
	providers := []*Provider{
		buildProvider("global", "sms", StatusActive, weight(1), CountryRouting{}),
		buildProvider("local", "sms", StatusActive, weight(10), CountryRouting{
			Enabled:          true,
			AllowedCountries: []string{"ID", "SG"},
		}),
	}

	sel, err := Select(providers, SelectionInput{ServiceType: "sms", Country: "ID"})
	require.NoError(t, err)
	require.Equal(t, "global", sel.Provider.Name)
	require.Len(t, sel.Fallbacks, 1)
}

func TestSelectCountryFallbackToGlobal(t *testing.T) {
	providers := []*Provider{
		buildProvider("global", "sms", StatusActive, weight(30), CountryRouting{}),
		buildProvider("local", "sms", StatusActive, weight(1), CountryRouting{
			Enabled:          true,
			AllowedCountries: []string{"ID"},
		}),
	}

	sel, err := Select(providers, SelectionInput{ServiceType: "sms", Country: "BR"})
	require.NoError(t, err)
	require.Equal(t, "global", sel.Provider.Name)
	require.Empty(t, sel.Fallbacks)
}

func TestSelectCountryMissFallsBackToFullPool(t *testing.T) {
	providers := []*Provider{
		buildProvider("local", "sms", StatusActive, weight(1), CountryRouting{
			Enabled:          true,
			AllowedCountries: []string{"ID"},
		}),
	}

	sel, err := Select(providers, SelectionInput{ServiceType: "sms", Country: "BR"})
	require.NoError(t, err)
	require.Equal(t, "local", sel.Provider.Name)
}

func TestSelectNoProvider(t *testing.T) {
	_, err := Select(nil, SelectionInput{ServiceType: "sms"})
	require.ErrorIs(t, err, ErrNoProvidersAvailable)

	offline := buildProvider("offline", "sms", StatusOffline, weight(1), CountryRouting{})
	_, err = Select([]*Provider{offline}, SelectionInput{ServiceType: "sms"})
	require.ErrorIs(t, err, ErrNoProvidersAvailable)
}

func TestSelectExcludeIDs(t *testing.T) {
	first := buildProvider("alpha", "sms", StatusActive, weight(1), CountryRouting{})
	first.ID = 101
	second := buildProvider("beta", "sms", StatusActive, weight(2), CountryRouting{})
	second.ID = 102

	sel, err := Select([]*Provider{first, second}, SelectionInput{
		ServiceType: "sms",
		ExcludeIDs:  []snowflake.ID{101},
	})
	require.NoError(t, err)
	require.Equal(t, "beta", sel.Provider.Name)
}

func TestSelectAllServicesProviderEligible(t *testing.T) {
	providers := []*Provider{
		buildProvider("catchall", "all_services", StatusActive, weight(10), CountryRouting{}),
	}

	sel, err := Select(providers, SelectionInput{ServiceType: "email"})
	require.NoError(t, err)
	require.Equal(t, "catchall", sel.Provider.Name)
}

func TestSelectCountryCaseInsensitive(t *testing.T) {
	providers := []*Provider{
		buildProvider("local", "sms", StatusActive, weight(1), CountryRouting{
			Enabled:          true,
			AllowedCountries: []string{"id"},
		}),
	}

	sel, err := Select(providers, SelectionInput{ServiceType: "sms", Country: "ID"})
	require.NoError(t, err)
	require.Equal(t, "local", sel.Provider.Name)
}

func TestRedactedHidesCredentialValues(t *testing.T) {
	p := buildProvider("alpha", "sms", StatusActive, nil, CountryRouting{})
	p.Credentials = datatypes.NewJSONType(map[string]string{
		"api_key": "secret-value",
		"webhook": "",
	})

	redacted := p.Redacted()
	require.Equal(t, DefaultPriorityWeight, redacted.PriorityWeight)
	require.True(t, redacted.Credentials["api_key"])
	require.False(t, redacted.Credentials["webhook"])
}
