package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/tempo/internal/core"
	"github.com/agenthands/tempo/internal/core/model"
)

const defaultTrendWeeks = 8

type NodeRequest struct {
	ID         string               `json:"id"`
	OrgID      string               `json:"org_id" binding:"required"`
	Name       string               `json:"name"`
	Role       string               `json:"role" binding:"required"`
	Lambda     float64              `json:"lambda" binding:"gte=0"`
	Factors    *model.LambdaFactors `json:"factors"`
	GrowthRate float64              `json:"growth_rate"`
	Goals      string               `json:"goals"`
}

func (s *Server) UpsertNode(c *gin.Context) {
	var req NodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	n, err := s.Ledger.UpsertNode(c.Request.Context(), model.Node{
		ID:         req.ID,
		OrgID:      req.OrgID,
		Name:       req.Name,
		Role:       model.Role(req.Role),
		Lambda:     req.Lambda,
		Factors:    req.Factors,
		GrowthRate: req.GrowthRate,
		Goals:      req.Goals,
	})
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

type RelationshipRequest struct {
	NodeA           string               `json:"node_a" binding:"required"`
	NodeB           string               `json:"node_b" binding:"required,nefield=NodeA"`
	OrgID           string               `json:"org_id"`
	Synergy         model.SynergyFactors `json:"synergy"`
	Sigma           float64              `json:"sigma"`
	Density         float64              `json:"density" binding:"gte=0,lte=1"`
	Frequency       float64              `json:"frequency" binding:"gte=0"`
	Quality         float64              `json:"quality" binding:"gte=0,lte=1"`
	Depth           string               `json:"depth"`
	LastInteraction time.Time            `json:"last_interaction"`
	DecayRate       float64              `json:"decay_rate" binding:"gte=0"`
	InvestedA       float64              `json:"invested_a" binding:"gte=0"`
	InvestedB       float64              `json:"invested_b" binding:"gte=0"`
	Months          float64              `json:"months" binding:"gte=0"`
}

func (s *Server) UpsertRelationship(c *gin.Context) {
	var req RelationshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	rel := model.Relationship{
		OrgID:           req.OrgID,
		NodeA:           req.NodeA,
		NodeB:           req.NodeB,
		Sigma:           req.Sigma,
		Synergy:         req.Synergy,
		Density:         req.Density,
		Frequency:       req.Frequency,
		Quality:         req.Quality,
		LastInteraction: req.LastInteraction,
		DecayRate:       req.DecayRate,
		InvestedA:       req.InvestedA,
		InvestedB:       req.InvestedB,
		Months:          req.Months,
	}
	if req.Depth != "" {
		rel.Depth = model.ParseDepth(req.Depth)
	}
	out, err := s.Ledger.UpsertRelationship(c.Request.Context(), rel)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type ActivityRequest struct {
	NodeID         string    `json:"node_id" binding:"required"`
	Nature         string    `json:"nature" binding:"required,oneof=invested saved created"`
	Hours          float64   `json:"hours" binding:"gte=0"`
	BeforeHours    float64   `json:"before_hours" binding:"gte=0"`
	AfterHours     float64   `json:"after_hours" binding:"gte=0"`
	ExpectedMonths float64   `json:"expected_months" binding:"gte=0"`
	MonthlyHours   float64   `json:"monthly_hours" binding:"gte=0"`
	Probability    float64   `json:"probability" binding:"gte=0,lte=1"`
	Lambda         float64   `json:"lambda" binding:"gte=0"`
	RecordedAt     time.Time `json:"recorded_at"`
}

func (s *Server) RecordActivity(c *gin.Context) {
	var req ActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	act, err := s.Ledger.RecordActivity(c.Request.Context(), model.TimeActivity{
		NodeID:         req.NodeID,
		Nature:         model.Nature(req.Nature),
		Hours:          req.Hours,
		BeforeHours:    req.BeforeHours,
		AfterHours:     req.AfterHours,
		ExpectedMonths: req.ExpectedMonths,
		MonthlyHours:   req.MonthlyHours,
		Probability:    req.Probability,
		Lambda:         req.Lambda,
		RecordedAt:     req.RecordedAt,
	})
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, act)
}

type PerformanceChangeRequest struct {
	NodeID    string    `json:"node_id" binding:"required"`
	Category  string    `json:"category" binding:"required,oneof=grade attendance engagement payment"`
	Delta     float64   `json:"delta"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) RecordPerformanceChange(c *gin.Context) {
	var req PerformanceChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	change, err := s.Ledger.RecordPerformanceChange(c.Request.Context(), model.PerformanceChange{
		NodeID:    req.NodeID,
		Category:  model.Category(req.Category),
		Delta:     req.Delta,
		Timestamp: req.Timestamp,
	})
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, change)
}

type OrgTotalsRequest struct {
	Revenue     float64   `json:"revenue" binding:"gte=0"`
	TotalSTU    float64   `json:"total_stu" binding:"gte=0"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
}

func (s *Server) SetOrgTotals(c *gin.Context) {
	var req OrgTotalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	totals := model.OrgTotals{
		OrgID:       c.Param("id"),
		Revenue:     req.Revenue,
		TotalSTU:    req.TotalSTU,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
	}
	if err := s.Ledger.SetOrgTotals(c.Request.Context(), totals); err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

func (s *Server) NodeRisk(c *gin.Context) {
	satisfaction, err := querySatisfaction(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	result, err := s.Ledger.NodeRisk(c.Request.Context(), c.Param("id"), satisfaction)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) RiskTrend(c *gin.Context) {
	satisfaction, err := querySatisfaction(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	weeks := defaultTrendWeeks
	if raw := c.Query("weeks"); raw != "" {
		weeks, err = strconv.Atoi(raw)
		if err != nil || weeks < 2 {
			badRequest(c, fmt.Errorf("weeks must be an integer of at least 2: %q", raw))
			return
		}
	}
	history, err := s.Ledger.RiskTrend(c.Request.Context(), c.Param("id"), satisfaction, weeks)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (s *Server) ExplainRisk(c *gin.Context) {
	satisfaction, err := querySatisfaction(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	exp, err := s.Ledger.ExplainRisk(c.Request.Context(), c.Param("id"), satisfaction)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, exp)
}

type BatchRiskRequest struct {
	Nodes []BatchRiskItem `json:"nodes" binding:"required,min=1,dive"`
}

type BatchRiskItem struct {
	NodeID       string   `json:"node_id" binding:"required"`
	Satisfaction *float64 `json:"satisfaction" binding:"omitempty,gte=0,lte=1"`
}

func (s *Server) BatchRisk(c *gin.Context) {
	var req BatchRiskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	reqs := make([]core.RiskRequest, len(req.Nodes))
	for i, item := range req.Nodes {
		reqs[i] = core.RiskRequest{NodeID: item.NodeID, Satisfaction: satisfactionOrNeutral(item.Satisfaction)}
	}
	results, err := s.Ledger.BatchRisk(c.Request.Context(), reqs)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (s *Server) NodeTimeValue(c *gin.Context) {
	v, err := s.Ledger.NodeTimeValue(c.Request.Context(), c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) RelationshipValue(c *gin.Context) {
	v, err := s.Ledger.RelationshipValue(c.Request.Context(), c.Param("a"), c.Param("b"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) ExplainRelationship(c *gin.Context) {
	exp, err := s.Ledger.ExplainRelationship(c.Request.Context(), c.Param("a"), c.Param("b"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, exp)
}

func (s *Server) Dashboard(c *gin.Context) {
	d, err := s.Ledger.Dashboard(c.Request.Context(), c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func querySatisfaction(c *gin.Context) (float64, error) {
	raw := c.Query("satisfaction")
	if raw == "" {
		return core.NeutralSatisfaction, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || v > 1 {
		return 0, fmt.Errorf("satisfaction must be a number in [0,1]: %q", raw)
	}
	return v, nil
}

func satisfactionOrNeutral(v *float64) float64 {
	if v == nil {
		return core.NeutralSatisfaction
	}
	return *v
}
