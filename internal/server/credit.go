package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	creditdomain "github.com/smallbiznis/fareway/internal/credit/domain"
)

func (s *Server) ApplyCredit(c *gin.Context) {
	var req creditdomain.ApplyCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	txn, err := s.creditSvc.ApplyCredit(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, txn)
}

func (s *Server) GetCreditBalance(c *gin.Context) {
	orgID, err := parseSnowflakeParam(c.Param("orgId"))
	if err != nil {
		AbortWithError(c, creditdomain.ErrInvalidOrganization)
		return
	}

	balance, err := s.creditSvc.GetBalance(c.Request.Context(), orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

func (s *Server) ListCreditTransactions(c *gin.Context) {
	orgID, err := parseSnowflakeParam(c.Param("orgId"))
	if err != nil {
		AbortWithError(c, creditdomain.ErrInvalidOrganization)
		return
	}

	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
			return
		}
		limit = parsed
	}

	transactions, err := s.creditSvc.ListTransactions(c.Request.Context(), orgID, limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": transactions})
}
