package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agenthands/tempo/internal/core"
	"github.com/agenthands/tempo/internal/core/dashboard"
	"github.com/agenthands/tempo/internal/core/model"
	"github.com/agenthands/tempo/internal/core/relvalue"
	"github.com/agenthands/tempo/internal/core/risk"
	"github.com/agenthands/tempo/internal/metrics"
)

// Ledger is the persistent side of the engine the HTTP layer serves. *core.Ledger implements it.
type Ledger interface {
	UpsertNode(ctx context.Context, n model.Node) (model.Node, error)
	UpsertRelationship(ctx context.Context, r model.Relationship) (model.Relationship, error)
	RecordActivity(ctx context.Context, act model.TimeActivity) (model.TimeActivity, error)
	RecordPerformanceChange(ctx context.Context, c model.PerformanceChange) (model.PerformanceChange, error)
	SetOrgTotals(ctx context.Context, t model.OrgTotals) error

	NodeRisk(ctx context.Context, nodeID string, satisfaction float64) (model.RiskResult, error)
	BatchRisk(ctx context.Context, reqs []core.RiskRequest) ([]model.RiskResult, error)
	RiskTrend(ctx context.Context, nodeID string, satisfaction float64, weeks int) (core.RiskHistory, error)
	NodeTimeValue(ctx context.Context, nodeID string) (core.TimeValue, error)
	RelationshipValue(ctx context.Context, a, b string) (core.RelationshipValuation, error)
	Dashboard(ctx context.Context, orgID string) (dashboard.Dashboard, error)
	ExplainRisk(ctx context.Context, nodeID string, satisfaction float64) (core.RiskExplanation, error)
	ExplainRelationship(ctx context.Context, a, b string) (core.RelationshipExplanation, error)
}

type Server struct {
	Ledger   Ledger
	Settings core.Settings

	scorer  *risk.Scorer
	engine  *relvalue.Engine
	metrics *metrics.Registry
	logger  *zap.Logger
}

func NewServer(ledger Ledger, settings core.Settings, reg *metrics.Registry, logger *zap.Logger) *Server {
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		Ledger:   ledger,
		Settings: settings,
		scorer:   risk.NewScorer(settings.Risk),
		engine:   relvalue.NewEngine(settings.Policy),
		metrics:  reg,
		logger:   logger,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.observe())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	compute := r.Group("/compute")
	compute.POST("/lambda", s.ComputeLambda)
	compute.POST("/sigma", s.ComputeSigma)
	compute.POST("/density", s.ComputeDensity)
	compute.POST("/ntv", s.ComputeNTV)
	compute.POST("/relationship-value", s.ComputeRelationshipValue)
	compute.POST("/risk", s.ComputeRisk)

	r.POST("/nodes", s.UpsertNode)
	r.POST("/relationships", s.UpsertRelationship)
	r.POST("/activities", s.RecordActivity)
	r.POST("/performance-changes", s.RecordPerformanceChange)
	r.PUT("/orgs/:id/totals", s.SetOrgTotals)

	r.GET("/nodes/:id/risk", s.NodeRisk)
	r.GET("/nodes/:id/risk/trend", s.RiskTrend)
	r.GET("/nodes/:id/risk/explanation", s.ExplainRisk)
	r.GET("/nodes/:id/time-value", s.NodeTimeValue)
	r.GET("/relationships/:a/:b/value", s.RelationshipValue)
	r.GET("/relationships/:a/:b/explanation", s.ExplainRelationship)
	r.POST("/risk/batch", s.BatchRisk)
	r.GET("/orgs/:id/dashboard", s.Dashboard)

	return r
}
