package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smallbiznis/fareway/internal/auditcontext"
	obslogger "github.com/smallbiznis/fareway/internal/observability/logger"
	"github.com/smallbiznis/fareway/internal/orgcontext"
)

const (
	HeaderOrg       = "X-Org-ID"
	HeaderRequestID = "X-Request-ID"
	HeaderActorType = "X-Actor-Type"
	HeaderActorID   = "X-Actor-ID"
)

// RequestContext populates the request-scoped audit and organization
// context from headers. Unknown or malformed values are ignored here;
// handlers that require an organization enforce it themselves.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		requestID := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx = auditcontext.WithRequestID(ctx, requestID)
		ctx = auditcontext.WithIPAddress(ctx, c.ClientIP())
		ctx = auditcontext.WithUserAgent(ctx, c.Request.UserAgent())

		if actorType := strings.TrimSpace(c.GetHeader(HeaderActorType)); actorType != "" {
			ctx = auditcontext.WithActor(ctx, actorType, strings.TrimSpace(c.GetHeader(HeaderActorID)))
		}

		if raw := strings.TrimSpace(c.GetHeader(HeaderOrg)); raw != "" {
			if orgID, err := strconv.ParseInt(raw, 10, 64); err == nil && orgID > 0 {
				ctx = orgcontext.WithOrgID(ctx, orgID)
			}
		}

		c.Header(HeaderRequestID, requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// QuoteRateLimit throttles quote endpoints per organization. The
// limiter is a no-op when redis is not configured.
func (s *Server) QuoteRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.quoteLimiter.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		orgID := strings.TrimSpace(c.GetHeader(HeaderOrg))
		if orgID == "" {
			if fromCtx, ok := orgcontext.OrgIDFromContext(ctx); ok {
				orgID = fromCtx.String()
			}
		}
		if orgID == "" {
			c.Next()
			return
		}

		allowed, err := s.quoteLimiter.AllowQuote(ctx, orgID)
		if err != nil {
			// An unreachable redis never blocks quoting.
			obslogger.FromContext(ctx).Warn("quote rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			if s.obsMetrics != nil {
				s.obsMetrics.RecordRateLimitDenied(ctx, normalizeRateLimitRoute(c))
			}
			c.Header("Retry-After", "1")
			AbortWithError(c, ErrRateLimited)
			return
		}

		c.Next()
	}
}

func normalizeRateLimitRoute(c *gin.Context) string {
	route := strings.TrimSpace(c.FullPath())
	if route == "" {
		route = strings.TrimSpace(c.Request.URL.Path)
	}
	if route == "" {
		route = "unknown"
	}
	return route
}
