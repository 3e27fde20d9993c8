package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	referraldomain "github.com/smallbiznis/fareway/internal/referral/domain"
)

func (s *Server) CreateReferral(c *gin.Context) {
	var req referraldomain.CreateReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	referral, err := s.referralSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, referral)
}

func (s *Server) ListReferralsByReferrer(c *gin.Context) {
	orgID, err := parseSnowflakeParam(c.Query("referrer_organization_id"))
	if err != nil {
		AbortWithError(c, newValidationError("referrer_organization_id", "invalid_organization", "invalid organization id"))
		return
	}

	referrals, err := s.referralSvc.ListByReferrer(c.Request.Context(), orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": referrals})
}

func (s *Server) GetReferral(c *gin.Context) {
	id, err := parseSnowflakeParam(c.Param("id"))
	if err != nil {
		AbortWithError(c, referraldomain.ErrInvalidID)
		return
	}

	referral, err := s.referralSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, referral)
}

func (s *Server) GetReferralByCode(c *gin.Context) {
	referral, err := s.referralSvc.GetByCode(c.Request.Context(), strings.TrimSpace(c.Param("code")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, referral)
}

type completeReferralRequest struct {
	RefereeOrgID string `json:"referee_organization_id"`
}

func (s *Server) CompleteReferral(c *gin.Context) {
	var body completeReferralRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	refereeOrgID, err := parseSnowflakeParam(body.RefereeOrgID)
	if err != nil {
		AbortWithError(c, referraldomain.ErrInvalidReferee)
		return
	}

	id, err := parseSnowflakeParam(c.Param("id"))
	if err != nil {
		AbortWithError(c, referraldomain.ErrInvalidID)
		return
	}
	referral, err := s.referralSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	updated, err := s.referralSvc.Complete(c.Request.Context(), referral.ReferralCode, refereeOrgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) CreditReferral(c *gin.Context) {
	id, err := parseSnowflakeParam(c.Param("id"))
	if err != nil {
		AbortWithError(c, referraldomain.ErrInvalidID)
		return
	}

	referral, err := s.referralSvc.CreditReferral(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, referral)
}
