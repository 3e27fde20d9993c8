package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	catalogdomain "github.com/smallbiznis/fareway/internal/catalog/domain"
)

func (s *Server) ListProviderCosts(c *gin.Context) {
	costs, err := s.catalogSvc.ListProviderCosts(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": costs})
}

func (s *Server) CreateProviderCost(c *gin.Context) {
	var req catalogdomain.CreateProviderCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	cost, err := s.catalogSvc.CreateProviderCost(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cost)
}

func (s *Server) DeactivateProviderCost(c *gin.Context) {
	cost, err := s.catalogSvc.DeactivateProviderCost(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, cost)
}

func (s *Server) ListMarkupRules(c *gin.Context) {
	rules, err := s.catalogSvc.ListMarkupRules(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rules})
}

func (s *Server) CreateMarkupRule(c *gin.Context) {
	var req catalogdomain.CreateMarkupRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	rule, err := s.catalogSvc.CreateMarkupRule(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rule)
}

func (s *Server) DeactivateMarkupRule(c *gin.Context) {
	if err := s.catalogSvc.DeactivateMarkupRule(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) ListPlans(c *gin.Context) {
	plans, err := s.catalogSvc.ListPlans(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": plans})
}

func (s *Server) CreatePlan(c *gin.Context) {
	var req catalogdomain.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	plan, err := s.catalogSvc.CreatePlan(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (s *Server) ListTaxRules(c *gin.Context) {
	rules, err := s.catalogSvc.ListTaxRules(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rules})
}

func (s *Server) CreateTaxRule(c *gin.Context) {
	var req catalogdomain.CreateTaxRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	rule, err := s.catalogSvc.CreateTaxRule(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rule)
}

func (s *Server) ListCurrencies(c *gin.Context) {
	currencies, err := s.catalogSvc.ListCurrencies(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": currencies})
}
