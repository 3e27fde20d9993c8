package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	routingdomain "github.com/smallbiznis/fareway/internal/routing/domain"
)

func (s *Server) ListProviders(c *gin.Context) {
	activeOnly, err := parseOptionalBool(c.Query("active_only"))
	if err != nil {
		AbortWithError(c, newValidationError("active_only", "invalid_active_only", "invalid active_only"))
		return
	}

	providers, err := s.routingSvc.ListProviders(
		c.Request.Context(),
		strings.TrimSpace(c.Query("service_type")),
		activeOnly != nil && *activeOnly,
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	redacted := make([]routingdomain.RedactedProvider, 0, len(providers))
	for _, provider := range providers {
		redacted = append(redacted, provider.Redacted())
	}
	c.JSON(http.StatusOK, gin.H{"data": redacted})
}

func (s *Server) CreateProvider(c *gin.Context) {
	var req routingdomain.CreateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	provider, err := s.routingSvc.CreateProvider(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, provider.Redacted())
}

func (s *Server) GetProvider(c *gin.Context) {
	id, err := parseSnowflakeParam(c.Param("id"))
	if err != nil {
		AbortWithError(c, routingdomain.ErrInvalidID)
		return
	}

	provider, err := s.routingSvc.GetProvider(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, provider.Redacted())
}

func (s *Server) UpdateProvider(c *gin.Context) {
	id, err := parseSnowflakeParam(c.Param("id"))
	if err != nil {
		AbortWithError(c, routingdomain.ErrInvalidID)
		return
	}

	var req routingdomain.UpdateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	provider, err := s.routingSvc.UpdateProvider(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, provider.Redacted())
}

func (s *Server) SelectProvider(c *gin.Context) {
	var req routingdomain.SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.routingSvc.Select(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
