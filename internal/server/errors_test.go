package server

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	approvaldomain "github.com/smallbiznis/fareway/internal/approval/domain"
	catalogdomain "github.com/smallbiznis/fareway/internal/catalog/domain"
	creditdomain "github.com/smallbiznis/fareway/internal/credit/domain"
	ledgerdomain "github.com/smallbiznis/fareway/internal/ledger/domain"
	pricingdomain "github.com/smallbiznis/fareway/internal/pricing/domain"
	routingdomain "github.com/smallbiznis/fareway/internal/routing/domain"
)

func TestMapErrorStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"validation sentinel", catalogdomain.ErrInvalidServiceType, http.StatusBadRequest, "validation_error"},
		{"wrapped validation sentinel", errors.Join(errors.New("create"), routingdomain.ErrInvalidWeight), http.StatusBadRequest, "validation_error"},
		{"duplicate priority", catalogdomain.ErrDuplicatePriority, http.StatusConflict, "conflict"},
		{"approval transition", approvaldomain.ErrInvalidTransition, http.StatusConflict, "conflict"},
		{"credit lock contention", creditdomain.ErrConcurrentModification, http.StatusConflict, "conflict"},
		{"unbalanced ledger row", ledgerdomain.ErrUnbalancedTransaction, http.StatusUnprocessableEntity, "unprocessable"},
		{"negative balance", creditdomain.ErrNegativeBalance, http.StatusUnprocessableEntity, "unprocessable"},
		{"no applicable rule", pricingdomain.ErrNoApplicableRule, http.StatusNotFound, "not_found"},
		{"no providers", routingdomain.ErrNoProvidersAvailable, http.StatusNotFound, "not_found"},
		{"gorm record not found", gorm.ErrRecordNotFound, http.StatusNotFound, "not_found"},
		{"rate limited", ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
		{"nil error", nil, http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			require.Equal(t, tc.status, status)
			require.Equal(t, tc.kind, payload.Type)
		})
	}
}

func TestMapErrorValidationPayload(t *testing.T) {
	status, payload := mapError(newValidationError("currency", "invalid_currency", "invalid currency"))
	require.Equal(t, http.StatusBadRequest, status)
	require.Len(t, payload.Errors, 1)
	require.Equal(t, "currency", payload.Errors[0].Field)
	require.Equal(t, "invalid_currency", payload.Errors[0].Code)

	status, payload = mapError(ledgerdomain.ErrInvalidGroupBy)
	require.Equal(t, http.StatusBadRequest, status)
	require.Len(t, payload.Errors, 1)
	require.Equal(t, "group_by", payload.Errors[0].Field)
}

func TestClassifyErrorForLog(t *testing.T) {
	class, kind := classifyErrorForLog(catalogdomain.ErrInvalidCost)
	require.Equal(t, "client", class)
	require.Equal(t, "validation_error", kind)

	class, kind = classifyErrorForLog(errors.New("boom"))
	require.Equal(t, "internal", class)
	require.Equal(t, "internal_error", kind)
}
