package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	ledgerdomain "github.com/smallbiznis/fareway/internal/ledger/domain"
	"github.com/smallbiznis/fareway/pkg/db/pagination"
)

func (s *Server) RecordTransaction(c *gin.Context) {
	var req ledgerdomain.RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	txn, err := s.ledgerSvc.RecordTransaction(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, txn)
}

type listTransactionsQuery struct {
	PageToken    string `form:"page_token"`
	PageSize     int    `form:"page_size"`
	OrgID        string `form:"organization_id"`
	ServiceType  string `form:"service_type"`
	ProviderName string `form:"provider_name"`
	StartAt      string `form:"start_at"`
	EndAt        string `form:"end_at"`
}

func (s *Server) ListTransactions(c *gin.Context) {
	var query listTransactionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	orgID, err := parseSnowflakeParam(query.OrgID)
	if err != nil {
		AbortWithError(c, ledgerdomain.ErrInvalidOrganization)
		return
	}
	startAt, err := parseOptionalTime(query.StartAt, false)
	if err != nil {
		AbortWithError(c, newValidationError("start_at", "invalid_start_at", "invalid start_at"))
		return
	}
	endAt, err := parseOptionalTime(query.EndAt, true)
	if err != nil {
		AbortWithError(c, newValidationError("end_at", "invalid_end_at", "invalid end_at"))
		return
	}

	resp, err := s.ledgerSvc.ListTransactions(c.Request.Context(), ledgerdomain.ListTransactionsRequest{
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(query.PageToken),
			PageSize:  query.PageSize,
		},
		OrgID:        orgID,
		ServiceType:  strings.TrimSpace(query.ServiceType),
		ProviderName: strings.TrimSpace(query.ProviderName),
		StartAt:      startAt,
		EndAt:        endAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Transactions, "page_info": resp.PageInfo})
}

func (s *Server) GetProfitSummary(c *gin.Context) {
	orgID, err := parseSnowflakeParam(c.Query("organization_id"))
	if err != nil {
		AbortWithError(c, ledgerdomain.ErrInvalidOrganization)
		return
	}
	startAt, err := parseOptionalTime(c.Query("start_at"), false)
	if err != nil {
		AbortWithError(c, newValidationError("start_at", "invalid_start_at", "invalid start_at"))
		return
	}
	endAt, err := parseOptionalTime(c.Query("end_at"), true)
	if err != nil {
		AbortWithError(c, newValidationError("end_at", "invalid_end_at", "invalid end_at"))
		return
	}

	summary, err := s.ledgerSvc.ProfitSummary(c.Request.Context(), ledgerdomain.ProfitSummaryRequest{
		OrgID:   orgID,
		GroupBy: strings.TrimSpace(c.Query("group_by")),
		StartAt: startAt,
		EndAt:   endAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
