package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/smallbiznis/fareway/internal/approval"
	approvaldomain "github.com/smallbiznis/fareway/internal/approval/domain"
	"github.com/smallbiznis/fareway/internal/audit"
	auditdomain "github.com/smallbiznis/fareway/internal/audit/domain"
	"github.com/smallbiznis/fareway/internal/catalog"
	catalogdomain "github.com/smallbiznis/fareway/internal/catalog/domain"
	"github.com/smallbiznis/fareway/internal/catalog/snapshot"
	"github.com/smallbiznis/fareway/internal/config"
	"github.com/smallbiznis/fareway/internal/credit"
	creditdomain "github.com/smallbiznis/fareway/internal/credit/domain"
	"github.com/smallbiznis/fareway/internal/ledger"
	ledgerdomain "github.com/smallbiznis/fareway/internal/ledger/domain"
	"github.com/smallbiznis/fareway/internal/observability"
	obslogger "github.com/smallbiznis/fareway/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/fareway/internal/observability/metrics"
	obstracing "github.com/smallbiznis/fareway/internal/observability/tracing"
	"github.com/smallbiznis/fareway/internal/pricing"
	pricingdomain "github.com/smallbiznis/fareway/internal/pricing/domain"
	"github.com/smallbiznis/fareway/internal/ratelimit"
	"github.com/smallbiznis/fareway/internal/referral"
	referraldomain "github.com/smallbiznis/fareway/internal/referral/domain"
	"github.com/smallbiznis/fareway/internal/routing"
	routingdomain "github.com/smallbiznis/fareway/internal/routing/domain"
)

var Module = fx.Module("http.server",
	audit.Module,
	catalog.Module,
	snapshot.Module,
	routing.Module,
	pricing.Module,
	ledger.Module,
	credit.Module,
	approval.Module,
	referral.Module,
	ratelimit.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(RequestContext())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config) *gin.Engine {
	return NewEngine(obsCfg)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	db           *gorm.DB
	genID        *snowflake.Node
	catalogSvc   catalogdomain.Service
	routingSvc   routingdomain.Service
	pricingSvc   pricingdomain.Service
	ledgerSvc    ledgerdomain.Service
	creditSvc    creditdomain.Service
	approvalSvc  approvaldomain.Service
	referralSvc  referraldomain.Service
	auditSvc     auditdomain.Service
	obsMetrics   *obsmetrics.Metrics
	quoteLimiter *ratelimit.QuoteLimiter
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	DB           *gorm.DB
	GenID        *snowflake.Node
	CatalogSvc   catalogdomain.Service
	RoutingSvc   routingdomain.Service
	PricingSvc   pricingdomain.Service
	LedgerSvc    ledgerdomain.Service
	CreditSvc    creditdomain.Service
	ApprovalSvc  approvaldomain.Service
	ReferralSvc  referraldomain.Service
	AuditSvc     auditdomain.Service
	ObsMetrics   *obsmetrics.Metrics     `optional:"true"`
	QuoteLimiter *ratelimit.QuoteLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		genID:        p.GenID,
		catalogSvc:   p.CatalogSvc,
		routingSvc:   p.RoutingSvc,
		pricingSvc:   p.PricingSvc,
		ledgerSvc:    p.LedgerSvc,
		creditSvc:    p.CreditSvc,
		approvalSvc:  p.ApprovalSvc,
		referralSvc:  p.ReferralSvc,
		auditSvc:     p.AuditSvc,
		obsMetrics:   p.ObsMetrics,
		quoteLimiter: p.QuoteLimiter,
	}

	svc.RegisterAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) RegisterAPIRoutes() {
	v1 := s.engine.Group("/v1")

	// -------- Catalog --------
	cat := v1.Group("/catalog")
	cat.GET("/provider-costs", s.ListProviderCosts)
	cat.POST("/provider-costs", s.CreateProviderCost)
	cat.POST("/provider-costs/:id/deactivate", s.DeactivateProviderCost)
	cat.GET("/markup-rules", s.ListMarkupRules)
	cat.POST("/markup-rules", s.CreateMarkupRule)
	cat.POST("/markup-rules/:id/deactivate", s.DeactivateMarkupRule)
	cat.GET("/plans", s.ListPlans)
	cat.POST("/plans", s.CreatePlan)
	cat.GET("/tax-rules", s.ListTaxRules)
	cat.POST("/tax-rules", s.CreateTaxRule)
	cat.GET("/currencies", s.ListCurrencies)

	// -------- Routing --------
	rt := v1.Group("/routing")
	rt.GET("/providers", s.ListProviders)
	rt.POST("/providers", s.CreateProvider)
	rt.GET("/providers/:id", s.GetProvider)
	rt.PATCH("/providers/:id", s.UpdateProvider)
	rt.POST("/select", s.SelectProvider)

	// -------- Pricing --------
	pr := v1.Group("/pricing")
	pr.POST("/quote", s.QuoteRateLimit(), s.Quote)
	pr.POST("/plan-quote", s.QuoteRateLimit(), s.PlanQuote)

	// -------- Ledger --------
	lg := v1.Group("/ledger")
	lg.POST("/transactions", s.RecordTransaction)
	lg.GET("/transactions", s.ListTransactions)
	lg.GET("/profit-summary", s.GetProfitSummary)

	// -------- Credits --------
	cr := v1.Group("/credits")
	cr.POST("/apply", s.ApplyCredit)
	cr.GET("/:orgId/balance", s.GetCreditBalance)
	cr.GET("/:orgId/transactions", s.ListCreditTransactions)

	// -------- Price change approvals --------
	ap := v1.Group("/approvals")
	ap.POST("", s.CreatePriceChangeRequest)
	ap.GET("/pending", s.ListPendingPriceChangeRequests)
	ap.GET("/:id", s.GetPriceChangeRequest)
	ap.POST("/:id/approve", s.ApprovePriceChangeRequest)
	ap.POST("/:id/reject", s.RejectPriceChangeRequest)

	// -------- Referrals --------
	rf := v1.Group("/referrals")
	rf.POST("", s.CreateReferral)
	rf.GET("", s.ListReferralsByReferrer)
	rf.GET("/code/:code", s.GetReferralByCode)
	rf.GET("/:id", s.GetReferral)
	rf.POST("/:id/complete", s.CompleteReferral)
	rf.POST("/:id/credit", s.CreditReferral)

	v1.GET("/audit-logs", s.ListAuditLogs)
}
