package domain

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"

	catalogdomain "github.com/smallbiznis/fareway/internal/catalog/domain"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func pct(v float64) *float64 { return &v }
func cents(v int64) *int64   { return &v }
func orgID(v int64) *snowflake.ID {
	id := snowflake.ID(v)
	return &id
}

func snapshotWithCost(costCents int64, rules ...catalogdomain.MarkupRule) *catalogdomain.Snapshot {
	return &catalogdomain.Snapshot{
		ProviderCosts: []catalogdomain.ProviderCost{{
			ID:               1,
			ServiceType:      "sms",
			ProviderName:     "acme",
			CostPerUnitCents: costCents,
			Currency:         "USD",
			IsActive:         true,
			EffectiveFrom:    baseTime.Add(-24 * time.Hour),
		}},
		MarkupRules: rules,
	}
}

func TestResolveMarkupPercentage(t *testing.T) {
	snap := snapshotWithCost(1000, catalogdomain.MarkupRule{
		ID:               10,
		ServiceType:      "sms",
		Scope:            catalogdomain.ScopeGlobal,
		MarkupType:       catalogdomain.MarkupPercentage,
		PercentageMarkup: pct(20),
		Priority:         5,
		IsActive:         true,
		EffectiveFrom:    baseTime.Add(-time.Hour),
	})

	res, err := ResolveMarkup(snap, MarkupRequest{OrgID: 7, ServiceType: "sms", Timestamp: baseTime})
	require.NoError(t, err)
	require.Equal(t, int64(1000), res.CostPerUnitCents)
	require.Equal(t, int64(200), res.MarkupCents)
	require.Equal(t, int64(1200), res.TotalCents)
	require.Equal(t, "acme", res.ProviderName)
	require.Equal(t, "USD", res.Currency)
}

func TestResolveMarkupFixedAndBoth(t *testing.T) {
	snap := snapshotWithCost(1000, catalogdomain.MarkupRule{
		ID:               11,
		ServiceType:      "sms",
		Scope:            catalogdomain.ScopeGlobal,
		MarkupType:       catalogdomain.MarkupBoth,
		FixedMarkupCents: cents(50),
		PercentageMarkup: pct(10),
		IsActive:         true,
		EffectiveFrom:    baseTime.Add(-time.Hour),
	})

	res, err := ResolveMarkup(snap, MarkupRequest{ServiceType: "sms", Timestamp: baseTime})
	require.NoError(t, err)
	require.Equal(t, int64(150), res.MarkupCents)
	require.Equal(t, int64(1150), res.TotalCents)
}

func TestResolveMarkupOrgScopeBeatsGlobalPriority(t *testing.T) {
	snap := snapshotWithCost(1000,
		catalogdomain.MarkupRule{
			ID:               20,
			ServiceType:      "sms",
			Scope:            catalogdomain.ScopeGlobal,
			MarkupType:       catalogdomain.MarkupPercentage,
			PercentageMarkup: pct(50),
			Priority:         100,
			IsActive:         true,
			EffectiveFrom:    baseTime.Add(-time.Hour),
		},
		catalogdomain.MarkupRule{
			ID:               21,
			ServiceType:      "sms",
			Scope:            catalogdomain.ScopeOrganization,
			TargetOrgID:      orgID(7),
			MarkupType:       catalogdomain.MarkupPercentage,
			PercentageMarkup: pct(5),
			Priority:         1,
			IsActive:         true,
			EffectiveFrom:    baseTime.Add(-time.Hour),
		},
	)

	res, err := ResolveMarkup(snap, MarkupRequest{OrgID: 7, ServiceType: "sms", Timestamp: baseTime})
	require.NoError(t, err)
	require.Equal(t, snowflake.ID(21), res.Rule.ID)
	require.Equal(t, int64(50), res.MarkupCents)
}

func TestResolveMarkupOrgRuleIgnoredForOtherOrg(t *testing.T) {
	snap := snapshotWithCost(1000, catalogdomain.MarkupRule{
		ID:               22,
		ServiceType:      "sms",
		Scope:            catalogdomain.ScopeOrganization,
		TargetOrgID:      orgID(7),
		MarkupType:       catalogdomain.MarkupPercentage,
		PercentageMarkup: pct(5),
		IsActive:         true,
		EffectiveFrom:    baseTime.Add(-time.Hour),
	})

	res, err := ResolveMarkup(snap, MarkupRequest{OrgID: 8, ServiceType: "sms", Timestamp: baseTime})
	require.NoError(t, err)
	require.Nil(t, res.Rule)
	require.Equal(t, int64(0), res.MarkupCents)
	require.Equal(t, int64(1000), res.TotalCents)
}

func TestResolveMarkupPriorityAndRecencyTieBreak(t *testing.T) {
	snap := snapshotWithCost(1000,
		catalogdomain.MarkupRule{
			ID:               30,
			ServiceType:      "sms",
			Scope:            catalogdomain.ScopeGlobal,
			MarkupType:       catalogdomain.MarkupPercentage,
			PercentageMarkup: pct(10),
			Priority:         5,
			IsActive:         true,
			EffectiveFrom:    baseTime.Add(-48 * time.Hour),
		},
		catalogdomain.MarkupRule{
			ID:               31,
			ServiceType:      "sms",
			Scope:            catalogdomain.ScopeGlobal,
			MarkupType:       catalogdomain.MarkupPercentage,
			PercentageMarkup: pct(15),
			Priority:         5,
			IsActive:         true,
			EffectiveFrom:    baseTime.Add(-time.Hour),
		},
		catalogdomain.MarkupRule{
			ID:               32,
			ServiceType:      "sms",
			Scope:            catalogdomain.ScopeGlobal,
			MarkupType:       catalogdomain.MarkupPercentage,
			PercentageMarkup: pct(1),
			Priority:         2,
			IsActive:         true,
			EffectiveFrom:    baseTime.Add(-time.Minute),
		},
	)

	res, err := ResolveMarkup(snap, MarkupRequest{ServiceType: "sms", Timestamp: baseTime})
	require.NoError(t, err)
	require.Equal(t, snowflake.ID(31), res.Rule.ID)
}

func TestResolveMarkupWildcardServiceType(t *testing.T) {
	snap := snapshotWithCost(1000, catalogdomain.MarkupRule{
		ID:               40,
		ServiceType:      catalogdomain.ServiceTypeAll,
		Scope:            catalogdomain.ScopeGlobal,
		MarkupType:       catalogdomain.MarkupFixed,
		FixedMarkupCents: cents(25),
		IsActive:         true,
		EffectiveFrom:    baseTime.Add(-time.Hour),
	})

	res, err := ResolveMarkup(snap, MarkupRequest{ServiceType: "sms", Timestamp: baseTime})
	require.NoError(t, err)
	require.Equal(t, int64(25), res.MarkupCents)
}

func TestResolveMarkupFutureRuleExcluded(t *testing.T) {
	snap := snapshotWithCost(1000, catalogdomain.MarkupRule{
		ID:               41,
		ServiceType:      "sms",
		Scope:            catalogdomain.ScopeGlobal,
		MarkupType:       catalogdomain.MarkupPercentage,
		PercentageMarkup: pct(20),
		IsActive:         true,
		EffectiveFrom:    baseTime.Add(time.Hour),
	})

	res, err := ResolveMarkup(snap, MarkupRequest{ServiceType: "sms", Timestamp: baseTime})
	require.NoError(t, err)
	require.Nil(t, res.Rule)
	require.Equal(t, int64(1000), res.TotalCents)
}

func TestResolveMarkupNoProviderCost(t *testing.T) {
	snap := &catalogdomain.Snapshot{}
	_, err := ResolveMarkup(snap, MarkupRequest{ServiceType: "sms", Timestamp: baseTime})
	require.ErrorIs(t, err, ErrNoApplicableRule)
}

func TestResolveMarkupUsesRoutedProviderCost(t *testing.T) {
	snap := &catalogdomain.Snapshot{
		ProviderCosts: []catalogdomain.ProviderCost{
			{
				ID:               2,
				ServiceType:      "sms",
				ProviderName:     "cheap-co",
				CostPerUnitCents: 500,
				Currency:         "USD",
				IsActive:         true,
				EffectiveFrom:    baseTime.Add(-48 * time.Hour),
			},
			{
				ID:               3,
				ServiceType:      "sms",
				ProviderName:     "pricey-co",
				CostPerUnitCents: 900,
				Currency:         "USD",
				IsActive:         true,
				EffectiveFrom:    baseTime.Add(-time.Hour),
			},
		},
	}

	res, err := ResolveMarkup(snap, MarkupRequest{ServiceType: "sms", ProviderName: "cheap-co", Timestamp: baseTime})
	require.NoError(t, err)
	require.Equal(t, "cheap-co", res.ProviderName)
	require.Equal(t, int64(500), res.CostPerUnitCents)

	// Without a routed provider the most recently effective cost wins.
	res, err = ResolveMarkup(snap, MarkupRequest{ServiceType: "sms", Timestamp: baseTime})
	require.NoError(t, err)
	require.Equal(t, "pricey-co", res.ProviderName)
	require.Equal(t, int64(900), res.CostPerUnitCents)

	_, err = ResolveMarkup(snap, MarkupRequest{ServiceType: "sms", ProviderName: "unknown-co", Timestamp: baseTime})
	require.ErrorIs(t, err, ErrNoApplicableRule)
}

func TestResolveMarkupRoundHalfUp(t *testing.T) {
	// 2.5% of $1.01 = 2.525 cents, rounds to 3.
	snap := snapshotWithCost(101, catalogdomain.MarkupRule{
		ID:               50,
		ServiceType:      "sms",
		Scope:            catalogdomain.ScopeGlobal,
		MarkupType:       catalogdomain.MarkupPercentage,
		PercentageMarkup: pct(2.5),
		IsActive:         true,
		EffectiveFrom:    baseTime.Add(-time.Hour),
	})

	res, err := ResolveMarkup(snap, MarkupRequest{ServiceType: "sms", Timestamp: baseTime})
	require.NoError(t, err)
	require.Equal(t, int64(3), res.MarkupCents)
}
