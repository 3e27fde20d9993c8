package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	approvaldomain "github.com/smallbiznis/fareway/internal/approval/domain"
)

type reviewRequest struct {
	Reviewer string `json:"reviewer"`
}

func (s *Server) CreatePriceChangeRequest(c *gin.Context) {
	var req approvaldomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	request, err := s.approvalSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, request)
}

func (s *Server) ListPendingPriceChangeRequests(c *gin.Context) {
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
			return
		}
		limit = parsed
	}

	requests, err := s.approvalSvc.ListPending(c.Request.Context(), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": requests})
}

func (s *Server) GetPriceChangeRequest(c *gin.Context) {
	id, err := parseSnowflakeParam(c.Param("id"))
	if err != nil {
		AbortWithError(c, approvaldomain.ErrInvalidID)
		return
	}

	request, err := s.approvalSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

func (s *Server) ApprovePriceChangeRequest(c *gin.Context) {
	s.decidePriceChangeRequest(c, s.approvalSvc.Approve)
}

func (s *Server) RejectPriceChangeRequest(c *gin.Context) {
	s.decidePriceChangeRequest(c, s.approvalSvc.Reject)
}

func (s *Server) decidePriceChangeRequest(c *gin.Context, decide func(ctx context.Context, id snowflake.ID, reviewer string) (*approvaldomain.PriceChangeRequest, error)) {
	id, err := parseSnowflakeParam(c.Param("id"))
	if err != nil {
		AbortWithError(c, approvaldomain.ErrInvalidID)
		return
	}

	var body reviewRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	request, err := decide(c.Request.Context(), id, strings.TrimSpace(body.Reviewer))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}
