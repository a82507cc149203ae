// Package dashboard rolls up λ, time metrics, relationship value and risk for an organization.
package dashboard

import (
	"math"
	"sort"
	"time"

	"github.com/agenthands/tempo/internal/core/cohort"
	"github.com/agenthands/tempo/internal/core/density"
	"github.com/agenthands/tempo/internal/core/lambda"
	"github.com/agenthands/tempo/internal/core/model"
	"github.com/agenthands/tempo/internal/core/relvalue"
	"github.com/agenthands/tempo/internal/core/risk"
	"github.com/agenthands/tempo/internal/core/stu"
	"github.com/agenthands/tempo/internal/core/timemetrics"
)

const DefaultTopN = 5

type Options struct {
	Policy           relvalue.SynergyPolicy
	IndustryK        float64
	TopN             int
	CohortMinDensity float64
	ExpectedContacts float64
}

func DefaultOptions() Options {
	return Options{
		Policy:           relvalue.DefaultPolicy,
		IndustryK:        lambda.DefaultIndustryK,
		TopN:             DefaultTopN,
		CohortMinDensity: 0.3,
		ExpectedContacts: 8,
	}
}

// Input is an immutable snapshot of one organization.
type Input struct {
	OrgID         string
	Nodes         []model.Node
	Relationships []model.Relationship
	Activities    []model.TimeActivity
	Totals        model.OrgTotals
	Risk          []model.RiskResult
	Now           time.Time
}

type NodeLambda struct {
	NodeID string     `json:"node_id"`
	Name   string     `json:"name"`
	Role   model.Role `json:"role"`
	Lambda float64    `json:"lambda"`
}

type RelationshipValue struct {
	RelationshipID string  `json:"relationship_id"`
	NodeA          string  `json:"node_a"`
	NodeB          string  `json:"node_b"`
	Sigma          float64 `json:"sigma"`
	Density        float64 `json:"density"`
	Multiplier     float64 `json:"multiplier"`
	Value          float64 `json:"value"`
	MonetaryValue  float64 `json:"monetary_value"`
}

type Dashboard struct {
	OrgID                  string                  `json:"org_id"`
	Omega                  float64                 `json:"omega"`
	Time                   timemetrics.NTV         `json:"time"`
	EfficiencyScore        int                     `json:"efficiency_score"`
	TotalRelationshipValue float64                 `json:"total_relationship_value"`
	Relationships          []RelationshipValue     `json:"relationships"`
	SkippedRelationships   int                     `json:"skipped_relationships"`
	TopLambda              []NodeLambda            `json:"top_lambda"`
	StrongestSynergy       []RelationshipValue     `json:"strongest_synergy"`
	WeakestSynergy         []RelationshipValue     `json:"weakest_synergy"`
	RiskByLevel            map[model.RiskLevel]int `json:"risk_by_level,omitempty"`
	Cohorts                []cohort.Cohort         `json:"cohorts"`
	GeneratedAt            time.Time               `json:"generated_at"`
}

// Build computes the dashboard. Relationships that reference unknown nodes are skipped.
func Build(in Input, opts Options) Dashboard {
	if opts.Policy == nil {
		opts.Policy = relvalue.DefaultPolicy
	}
	if opts.IndustryK <= 0 {
		opts.IndustryK = lambda.DefaultIndustryK
	}
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}

	lambdas := make(map[string]float64, len(in.Nodes))
	nodeIDs := make([]string, 0, len(in.Nodes))
	for _, n := range in.Nodes {
		lambdas[n.ID] = lambda.Resolve(n, opts.IndustryK)
		nodeIDs = append(nodeIDs, n.ID)
	}

	var agg timemetrics.Aggregator
	for _, act := range in.Activities {
		if act.Lambda == 0 {
			act.Lambda = lambdas[act.NodeID]
		}
		agg.Add(act)
	}
	totals := agg.Totals()
	omega := stu.Omega(in.Totals.Revenue, in.Totals.TotalSTU)

	d := Dashboard{
		OrgID:           in.OrgID,
		Omega:           omega,
		Time:            agg.NetTimeValue(),
		EfficiencyScore: EfficiencyScore(totals.T1, totals.T2, totals.T3),
		GeneratedAt:     in.Now,
	}

	engine := relvalue.NewEngine(opts.Policy)
	var edges []cohort.Edge
	for _, rel := range in.Relationships {
		la, okA := lambdas[rel.NodeA]
		lb, okB := lambdas[rel.NodeB]
		if !okA || !okB {
			d.SkippedRelationships++
			continue
		}
		p := density.Effective(rel, opts.ExpectedContacts, in.Now)
		res := engine.Value(relvalue.Input{
			Density: p,
			Sigma:   rel.Sigma,
			Months:  rel.Months,
			LambdaA: la,
			HoursA:  rel.InvestedA,
			LambdaB: lb,
			HoursB:  rel.InvestedB,
		})
		d.Relationships = append(d.Relationships, RelationshipValue{
			RelationshipID: rel.ID,
			NodeA:          rel.NodeA,
			NodeB:          rel.NodeB,
			Sigma:          rel.Sigma,
			Density:        p,
			Multiplier:     res.Multiplier,
			Value:          res.Value,
			MonetaryValue:  stu.ToMoney(res.Value, omega),
		})
		d.TotalRelationshipValue += res.Value
		edges = append(edges, cohort.Edge{A: rel.NodeA, B: rel.NodeB, Weight: p})
	}

	d.TopLambda = topLambda(in.Nodes, lambdas, opts.TopN)
	d.StrongestSynergy, d.WeakestSynergy = synergyExtremes(d.Relationships, opts.TopN)
	if len(in.Risk) > 0 {
		d.RiskByLevel = risk.CountByLevel(in.Risk)
	}
	d.Cohorts = cohort.NewDetector(opts.CohortMinDensity).Detect(nodeIDs, edges)
	return d
}

// EfficiencyScore is clamp(0, 100, round(((T2+T3)/T1)×25)), 0 when T1 = 0.
func EfficiencyScore(t1, t2, t3 float64) int {
	if t1 == 0 {
		return 0
	}
	v := math.Round(((t2 + t3) / t1) * 25)
	return int(math.Max(0, math.Min(100, v)))
}

func topLambda(nodes []model.Node, lambdas map[string]float64, n int) []NodeLambda {
	out := make([]NodeLambda, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, NodeLambda{NodeID: node.ID, Name: node.Name, Role: node.Role, Lambda: lambdas[node.ID]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Lambda > out[j].Lambda })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func synergyExtremes(rels []RelationshipValue, n int) (top, bottom []RelationshipValue) {
	sorted := make([]RelationshipValue, len(rels))
	copy(sorted, rels)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Sigma > sorted[j].Sigma })

	k := min(n, len(sorted))
	top = append([]RelationshipValue(nil), sorted[:k]...)
	for i := len(sorted) - 1; i >= len(sorted)-k; i-- {
		bottom = append(bottom, sorted[i])
	}
	return top, bottom
}
