package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"

	catalogdomain "github.com/smallbiznis/fareway/internal/catalog/domain"
)

// MarkupRequest asks for the charge on one unit of an a-la-carte
// service invocation. ProviderName carries the router's selection so
// the quote prices that provider's cost row; when empty the most
// recently effective cost for the service type is used.
type MarkupRequest struct {
	OrgID        snowflake.ID `json:"organization_id"`
	ServiceType  string       `json:"service_type"`
	ProviderName string       `json:"provider_name"`
	Timestamp    time.Time    `json:"timestamp"`
}

// MarkupResolution is the priced outcome. Rule is nil when no markup
// rule matched and the charge equals the raw provider cost.
type MarkupResolution struct {
	Rule             *catalogdomain.MarkupRule `json:"rule,omitempty"`
	ServiceType      string                    `json:"service_type"`
	ProviderName     string                    `json:"provider_name"`
	Currency         string                    `json:"currency"`
	CostPerUnitCents int64                     `json:"cost_per_unit_cents"`
	MarkupCents      int64                     `json:"markup_cents"`
	TotalCents       int64                     `json:"total_cents"`
}

func ruleMatches(rule *catalogdomain.MarkupRule, req MarkupRequest) bool {
	if !rule.IsActive || rule.EffectiveFrom.After(req.Timestamp) {
		return false
	}
	if rule.ServiceType != req.ServiceType && rule.ServiceType != catalogdomain.ServiceTypeAll {
		return false
	}
	switch rule.Scope {
	case catalogdomain.ScopeGlobal:
		return true
	case catalogdomain.ScopeOrganization:
		return rule.TargetOrgID != nil && *rule.TargetOrgID == req.OrgID
	}
	return false
}

// betterRule reports whether a outranks b. Organization scope beats
// global regardless of priority; then higher priority; then the more
// recently effective rule.
func betterRule(a, b *catalogdomain.MarkupRule) bool {
	aOrg := a.Scope == catalogdomain.ScopeOrganization
	bOrg := b.Scope == catalogdomain.ScopeOrganization
	if aOrg != bOrg {
		return aOrg
	}
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	return a.EffectiveFrom.After(b.EffectiveFrom)
}

// ResolveMarkup prices one unit of a service against the catalog
// snapshot. It fails only when the service has no active provider cost;
// absence of a matching markup rule means zero markup, not an error.
func ResolveMarkup(snap *catalogdomain.Snapshot, req MarkupRequest) (*MarkupResolution, error) {
	req.ServiceType = strings.TrimSpace(req.ServiceType)
	if req.Timestamp.IsZero() {
		req.Timestamp = time.Now().UTC()
	}

	cost := snap.ProviderCostFor(req.ServiceType, req.ProviderName, req.Timestamp)
	if cost == nil {
		return nil, ErrNoApplicableRule
	}

	var selected *catalogdomain.MarkupRule
	for i := range snap.MarkupRules {
		rule := &snap.MarkupRules[i]
		if !ruleMatches(rule, req) {
			continue
		}
		if selected == nil || betterRule(rule, selected) {
			selected = rule
		}
	}

	var markup int64
	if selected != nil {
		if selected.MarkupType == catalogdomain.MarkupFixed || selected.MarkupType == catalogdomain.MarkupBoth {
			if selected.FixedMarkupCents != nil {
				markup += *selected.FixedMarkupCents
			}
		}
		if selected.MarkupType == catalogdomain.MarkupPercentage || selected.MarkupType == catalogdomain.MarkupBoth {
			if selected.PercentageMarkup != nil {
				markup += PercentOf(cost.CostPerUnitCents, *selected.PercentageMarkup)
			}
		}
	}

	return &MarkupResolution{
		Rule:             selected,
		ServiceType:      req.ServiceType,
		ProviderName:     cost.ProviderName,
		Currency:         cost.Currency,
		CostPerUnitCents: cost.CostPerUnitCents,
		MarkupCents:      markup,
		TotalCents:       cost.CostPerUnitCents + markup,
	}, nil
}
