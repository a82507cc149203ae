package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/tempo/internal/core/dashboard"
	"github.com/agenthands/tempo/internal/core/density"
	"github.com/agenthands/tempo/internal/core/lambda"
	"github.com/agenthands/tempo/internal/core/model"
	"github.com/agenthands/tempo/internal/core/relvalue"
	"github.com/agenthands/tempo/internal/core/risk"
	"github.com/agenthands/tempo/internal/core/sigma"
	"github.com/agenthands/tempo/internal/core/stu"
	"github.com/agenthands/tempo/internal/core/timemetrics"
)

type LambdaRequest struct {
	Role      string               `json:"role"`
	Factors   *model.LambdaFactors `json:"factors"`
	IndustryK *float64             `json:"industry_k" binding:"omitempty,gt=0"`
	// Growth projection, optional.
	GrowthRate float64 `json:"growth_rate"`
	Years      float64 `json:"years" binding:"gte=0"`
}

type LambdaResponse struct {
	Lambda    float64 `json:"lambda"`
	Projected float64 `json:"projected"`
}

func (s *Server) ComputeLambda(c *gin.Context) {
	var req LambdaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	k := s.Settings.IndustryK
	if req.IndustryK != nil {
		k = *req.IndustryK
	}
	lam := lambda.Resolve(model.Node{Role: model.ParseRole(req.Role), Factors: req.Factors}, k)
	c.JSON(http.StatusOK, LambdaResponse{
		Lambda:    lam,
		Projected: lambda.Growth(lam, req.GrowthRate, req.Years),
	})
}

type SigmaRequest struct {
	Factors       model.SynergyFactors `json:"factors"`
	TeachingStyle string               `json:"teaching_style"`
	LearningStyle string               `json:"learning_style"`
	Weights       *sigma.Weights       `json:"weights"`
}

type SigmaResponse struct {
	Sigma   float64              `json:"sigma"`
	Factors model.SynergyFactors `json:"factors"`
}

// ComputeSigma fills the style factor from the teaching × learning table when both styles
// are named and no explicit style factor is given.
func (s *Server) ComputeSigma(c *gin.Context) {
	var req SigmaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	f := req.Factors
	if f.Style == 0 && req.TeachingStyle != "" && req.LearningStyle != "" {
		f.Style = sigma.StyleCompatibility(sigma.TeachingStyle(req.TeachingStyle), sigma.LearningStyle(req.LearningStyle))
	}
	w := s.Settings.SigmaWeights
	if req.Weights != nil {
		w = req.Weights.Normalized()
	}
	c.JSON(http.StatusOK, SigmaResponse{Sigma: sigma.Compute(f, w), Factors: f})
}

type DensityRequest struct {
	Frequency        float64  `json:"frequency" binding:"gte=0"`
	ExpectedContacts float64  `json:"expected_contacts" binding:"gte=0"`
	Quality          float64  `json:"quality" binding:"gte=0,lte=1"`
	Depth            string   `json:"depth"`
	IdleDays         float64  `json:"idle_days" binding:"gte=0"`
	DecayRate        *float64 `json:"decay_rate" binding:"omitempty,gte=0"`
}

type DensityResponse struct {
	Density float64 `json:"density"`
	Decayed float64 `json:"decayed"`
}

// ComputeDensity treats frequency as a raw contact count when expected_contacts is set and
// as a score in [0,1] otherwise.
func (s *Server) ComputeDensity(c *gin.Context) {
	var req DensityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	freq := req.Frequency
	if req.ExpectedContacts > 0 {
		freq = density.FrequencyToScore(req.Frequency, req.ExpectedContacts)
	}
	delta := s.Settings.DecayRate
	if req.DecayRate != nil {
		delta = *req.DecayRate
	}
	p := density.Compute(freq, req.Quality, density.DepthFloor(model.ParseDepth(req.Depth)))
	c.JSON(http.StatusOK, DensityResponse{Density: p, Decayed: density.ApplyDecay(p, req.IdleDays, delta)})
}

type NTVRequest struct {
	Activities []model.TimeActivity `json:"activities" binding:"required"`
	Omega      float64              `json:"omega" binding:"gte=0"`
}

type NTVResponse struct {
	Time            timemetrics.NTV `json:"time"`
	EfficiencyScore int             `json:"efficiency_score"`
	Money           float64         `json:"money"`
}

func (s *Server) ComputeNTV(c *gin.Context) {
	var req NTVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	t := timemetrics.Compute(req.Activities)
	ntv := timemetrics.NetTimeValue(t.T1, t.T2, t.T3)
	c.JSON(http.StatusOK, NTVResponse{
		Time:            ntv,
		EfficiencyScore: dashboard.EfficiencyScore(t.T1, t.T2, t.T3),
		Money:           stu.ToMoney(ntv.NTV, req.Omega),
	})
}

type RelationshipValueRequest struct {
	relvalue.Input
	// Policy overrides the configured synergy policy: "saturating" or "unbounded".
	// A saturating override keeps the configured s_max and tau.
	Policy string `json:"policy" binding:"omitempty,oneof=saturating unbounded"`
}

func (s *Server) ComputeRelationshipValue(c *gin.Context) {
	var req RelationshipValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	engine := s.engine
	if req.Policy != "" {
		policy, err := relvalue.PolicyByName(req.Policy, s.Settings.SMax, s.Settings.Tau)
		if err != nil {
			badRequest(c, err)
			return
		}
		engine = relvalue.NewEngine(policy)
	}
	c.JSON(http.StatusOK, engine.Value(req.Input))
}

type RiskRequest struct {
	NodeID       string                    `json:"node_id"`
	Changes      []model.PerformanceChange `json:"changes"`
	Satisfaction *float64                  `json:"satisfaction" binding:"omitempty,gte=0,lte=1"`
	Now          *time.Time                `json:"now"`
}

// ComputeRisk scores an ad hoc change log. Satisfaction defaults to neutral.
func (s *Server) ComputeRisk(c *gin.Context) {
	var req RiskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	now := time.Now().UTC()
	if req.Now != nil {
		now = *req.Now
	}
	result := s.scorer.Score(risk.Input{
		NodeID:       req.NodeID,
		Changes:      req.Changes,
		Satisfaction: satisfactionOrNeutral(req.Satisfaction),
	}, now)
	s.metrics.RecordRisk(string(result.Level))
	c.JSON(http.StatusOK, result)
}
