package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	approvaldomain "github.com/smallbiznis/fareway/internal/approval/domain"
	auditdomain "github.com/smallbiznis/fareway/internal/audit/domain"
	catalogdomain "github.com/smallbiznis/fareway/internal/catalog/domain"
	creditdomain "github.com/smallbiznis/fareway/internal/credit/domain"
	ledgerdomain "github.com/smallbiznis/fareway/internal/ledger/domain"
	pricingdomain "github.com/smallbiznis/fareway/internal/pricing/domain"
	referraldomain "github.com/smallbiznis/fareway/internal/referral/domain"
	routingdomain "github.com/smallbiznis/fareway/internal/routing/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isUnprocessableError(err):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "unprocessable",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		return "internal", payload.Type
	}
	return "client", payload.Type
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case errorsIsAny(err,
		catalogdomain.ErrInvalidID,
		catalogdomain.ErrInvalidName,
		catalogdomain.ErrInvalidServiceType,
		catalogdomain.ErrInvalidProviderName,
		catalogdomain.ErrInvalidCost,
		catalogdomain.ErrInvalidCurrency,
		catalogdomain.ErrInvalidScope,
		catalogdomain.ErrInvalidMarkupType,
		catalogdomain.ErrInvalidMarkupValue,
		catalogdomain.ErrInvalidTierBounds,
		catalogdomain.ErrInvalidMultiplier,
		catalogdomain.ErrInvalidDiscount,
		catalogdomain.ErrInvalidTaxRate,
		catalogdomain.ErrInvalidCountry,
		catalogdomain.ErrInvalidEffectiveFrom,
	):
		return true
	case errorsIsAny(err,
		routingdomain.ErrInvalidID,
		routingdomain.ErrInvalidName,
		routingdomain.ErrInvalidServiceType,
		routingdomain.ErrInvalidStatus,
		routingdomain.ErrInvalidWeight,
		routingdomain.ErrInvalidCountry,
	):
		return true
	case errorsIsAny(err,
		pricingdomain.ErrInvalidQuantity,
		pricingdomain.ErrInvalidTerm,
		pricingdomain.ErrInvalidPlanRef,
	):
		return true
	case errorsIsAny(err,
		ledgerdomain.ErrInvalidOrganization,
		ledgerdomain.ErrInvalidServiceType,
		ledgerdomain.ErrInvalidProviderName,
		ledgerdomain.ErrInvalidAmount,
		ledgerdomain.ErrInvalidCurrency,
		ledgerdomain.ErrInvalidGroupBy,
		ledgerdomain.ErrInvalidTimeRange,
		ledgerdomain.ErrInvalidPageToken,
	):
		return true
	case errorsIsAny(err,
		creditdomain.ErrInvalidOrganization,
		creditdomain.ErrInvalidCreditType,
		creditdomain.ErrInvalidAmount,
	):
		return true
	case errorsIsAny(err,
		approvaldomain.ErrInvalidID,
		approvaldomain.ErrInvalidCost,
		approvaldomain.ErrInvalidReviewer,
		approvaldomain.ErrUnknownProviderCost,
	):
		return true
	case errorsIsAny(err,
		referraldomain.ErrInvalidID,
		referraldomain.ErrInvalidEmail,
		referraldomain.ErrInvalidAmount,
		referraldomain.ErrInvalidCode,
		referraldomain.ErrInvalidReferee,
	):
		return true
	case errorsIsAny(err,
		auditdomain.ErrInvalidOrganization,
		auditdomain.ErrInvalidPageToken,
		auditdomain.ErrInvalidTimeRange,
		auditdomain.ErrInvalidAction,
	):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, catalogdomain.ErrNotFound),
		errors.Is(err, routingdomain.ErrNotFound),
		errors.Is(err, approvaldomain.ErrNotFound),
		errors.Is(err, referraldomain.ErrNotFound),
		errors.Is(err, pricingdomain.ErrNoApplicableRule),
		errors.Is(err, routingdomain.ErrNoProvidersAvailable),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, catalogdomain.ErrDuplicatePriority),
		errors.Is(err, routingdomain.ErrDuplicateName),
		errors.Is(err, approvaldomain.ErrInvalidTransition),
		errors.Is(err, referraldomain.ErrInvalidTransition),
		errors.Is(err, creditdomain.ErrConcurrentModification):
		return true
	default:
		return false
	}
}

func isUnprocessableError(err error) bool {
	switch {
	case errors.Is(err, ledgerdomain.ErrUnbalancedTransaction),
		errors.Is(err, creditdomain.ErrNegativeBalance),
		errors.Is(err, catalogdomain.ErrProviderCostInUse):
		return true
	default:
		return false
	}
}

func errorsIsAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
