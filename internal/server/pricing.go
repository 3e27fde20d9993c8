package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	pricingdomain "github.com/smallbiznis/fareway/internal/pricing/domain"
)

func (s *Server) Quote(c *gin.Context) {
	var req pricingdomain.MarkupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resolution, err := s.pricingSvc.Quote(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resolution)
}

func (s *Server) PlanQuote(c *gin.Context) {
	var req pricingdomain.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resolution, err := s.pricingSvc.PlanQuote(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resolution)
}
