package domain

import (
	"sort"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// SelectionInput describes one routing decision. ExcludeIDs removes
// providers the caller has already tried and failed over from.
type SelectionInput struct {
	ServiceType string
	Country     string
	ExcludeIDs  []snowflake.ID
}

// Selection is the outcome of a routing decision, including the ordered
// fallback chain behind the chosen provider.
type Selection struct {
	Provider  *Provider
	Fallbacks []*Provider
}

// Eligible reports whether the provider can serve the request at all,
// before any country filtering.
func Eligible(p *Provider, serviceType string) bool {
	if !p.IsActive || p.Status == StatusOffline {
		return false
	}
	return p.ServiceType == serviceType || p.ServiceType == "all_services"
}

// servesCountry reports whether the provider's routing config admits the
// given country. Providers without an enabled allow list serve globally.
func servesCountry(p *Provider, country string) bool {
	routing := p.CountryRouting.Data()
	if !routing.Enabled || len(routing.AllowedCountries) == 0 {
		return true
	}
	for _, allowed := range routing.AllowedCountries {
		if strings.EqualFold(allowed, country) {
			return true
		}
	}
	return false
}

// Select picks the best provider for the input from the given set.
//
// Eligibility requires a service type match, is_active, and a status other
// than offline. When a country is supplied, country-restricted providers
// that admit it are preferred; if none admit it, globally eligible
// providers serve as the fallback pool. Ties break by priority weight
// ascending, then status rank, then name.
func Select(providers []*Provider, input SelectionInput) (*Selection, error) {
	excluded := make(map[snowflake.ID]struct{}, len(input.ExcludeIDs))
	for _, id := range input.ExcludeIDs {
		excluded[id] = struct{}{}
	}

	eligible := make([]*Provider, 0, len(providers))
	for _, p := range providers {
		if _, skip := excluded[p.ID]; skip {
			continue
		}
		if Eligible(p, input.ServiceType) {
			eligible = append(eligible, p)
		}
	}
	if len(eligible) == 0 {
		return nil, ErrNoProvidersAvailable
	}

	// Country filter narrows the pool; when nothing admits the country
	// the whole eligible set stays as the global fallback.
	pool := eligible
	if input.Country != "" {
		matched := make([]*Provider, 0, len(eligible))
		for _, p := range eligible {
			if servesCountry(p, input.Country) {
				matched = append(matched, p)
			}
		}
		if len(matched) > 0 {
			pool = matched
		}
	}

	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].Weight() != pool[j].Weight() {
			return pool[i].Weight() < pool[j].Weight()
		}
		if pool[i].StatusRank() != pool[j].StatusRank() {
			return pool[i].StatusRank() < pool[j].StatusRank()
		}
		return pool[i].Name < pool[j].Name
	})

	return &Selection{Provider: pool[0], Fallbacks: pool[1:]}, nil
}
