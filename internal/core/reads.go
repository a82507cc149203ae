package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/agenthands/tempo/internal/core/dashboard"
	"github.com/agenthands/tempo/internal/core/density"
	"github.com/agenthands/tempo/internal/core/lambda"
	"github.com/agenthands/tempo/internal/core/model"
	"github.com/agenthands/tempo/internal/core/relvalue"
	"github.com/agenthands/tempo/internal/core/risk"
	"github.com/agenthands/tempo/internal/core/stu"
	"github.com/agenthands/tempo/internal/core/timemetrics"
	"github.com/agenthands/tempo/internal/driver"
)

// NeutralSatisfaction is used where no satisfaction signal is available.
const NeutralSatisfaction = 1.0

type RiskRequest struct {
	NodeID       string  `json:"node_id"`
	Satisfaction float64 `json:"satisfaction"`
}

type TimeValue struct {
	NodeID string          `json:"node_id"`
	Lambda float64         `json:"lambda"`
	Time   timemetrics.NTV `json:"time"`
	Omega  float64         `json:"omega"`
	Badge  stu.Badge       `json:"badge"`
}

type RelationshipValuation struct {
	Relationship  model.Relationship `json:"relationship"`
	Density       float64            `json:"density"`
	Result        relvalue.Result    `json:"result"`
	MonetaryValue float64            `json:"monetary_value"`
	Badge         stu.Badge          `json:"badge"`
}

type RiskExplanation struct {
	Risk    model.RiskResult `json:"risk"`
	Summary string           `json:"summary"`
}

type RelationshipExplanation struct {
	Valuation RelationshipValuation `json:"valuation"`
	Summary   string                `json:"summary"`
}

type RiskHistory struct {
	Points []risk.ScorePoint `json:"points"`
	Trend  risk.TrendResult  `json:"trend"`
}

func (l *Ledger) observe(op string, start time.Time) {
	l.metrics.ObserveOperation(op, time.Since(start))
}

func (l *Ledger) NodeRisk(ctx context.Context, nodeID string, satisfaction float64) (model.RiskResult, error) {
	defer l.observe("node_risk", time.Now())

	if _, err := l.member(ctx, nodeID); err != nil {
		return model.RiskResult{}, err
	}
	changes, err := l.changes(ctx, driver.GetNodeChangesQuery, map[string]any{"node_id": nodeID})
	if err != nil {
		return model.RiskResult{}, err
	}

	result := l.Scorer.Score(risk.Input{NodeID: nodeID, Changes: changes, Satisfaction: satisfaction}, l.Now())
	l.recordRisk(result)
	return result, nil
}

// BatchRisk scores several nodes concurrently. Results keep request order.
func (l *Ledger) BatchRisk(ctx context.Context, reqs []RiskRequest) ([]model.RiskResult, error) {
	defer l.observe("batch_risk", time.Now())
	if len(reqs) == 0 {
		return nil, nil
	}

	ids := make([]string, len(reqs))
	for i, r := range reqs {
		ids[i] = r.NodeID
	}
	if _, err := l.membersByID(ctx, ids); err != nil {
		return nil, err
	}
	changes, err := l.changes(ctx, driver.GetChangesForNodesQuery, map[string]any{"ids": ids})
	if err != nil {
		return nil, err
	}
	byNode := groupChanges(changes)

	inputs := make([]risk.Input, len(reqs))
	for i, r := range reqs {
		inputs[i] = risk.Input{NodeID: r.NodeID, Changes: byNode[r.NodeID], Satisfaction: r.Satisfaction}
	}
	results, err := l.Scorer.Batch(ctx, inputs, l.Now(), l.Settings.BatchWorkers)
	if err != nil {
		return nil, err
	}
	for _, r := range results {
		l.recordRisk(r)
	}
	return results, nil
}

// RiskTrend replays the change log at weekly steps ending now and fits a trend through the scores.
func (l *Ledger) RiskTrend(ctx context.Context, nodeID string, satisfaction float64, weeks int) (RiskHistory, error) {
	if weeks < 2 {
		weeks = 2
	}
	if _, err := l.member(ctx, nodeID); err != nil {
		return RiskHistory{}, err
	}
	changes, err := l.changes(ctx, driver.GetNodeChangesQuery, map[string]any{"node_id": nodeID})
	if err != nil {
		return RiskHistory{}, err
	}

	now := l.Now()
	points := make([]risk.ScorePoint, 0, weeks)
	for i := weeks - 1; i >= 0; i-- {
		at := now.Add(-time.Duration(i) * 7 * 24 * time.Hour)
		var known []model.PerformanceChange
		for _, c := range changes {
			if !c.Timestamp.After(at) {
				known = append(known, c)
			}
		}
		score := l.Scorer.Score(risk.Input{NodeID: nodeID, Changes: known, Satisfaction: satisfaction}, at).Score
		points = append(points, risk.ScorePoint{At: at, Score: score})
	}
	return RiskHistory{Points: points, Trend: risk.Trend(points)}, nil
}

func (l *Ledger) NodeTimeValue(ctx context.Context, nodeID string) (TimeValue, error) {
	defer l.observe("node_time_value", time.Now())

	member, err := l.member(ctx, nodeID)
	if err != nil {
		return TimeValue{}, err
	}
	acts, err := l.activities(ctx, driver.GetNodeActivitiesQuery, map[string]any{"node_id": nodeID})
	if err != nil {
		return TimeValue{}, err
	}
	totals, err := l.orgTotals(ctx, member.OrgID)
	if err != nil {
		return TimeValue{}, err
	}

	lam := lambda.Resolve(member, l.Settings.IndustryK)
	var agg timemetrics.Aggregator
	for _, act := range acts {
		if act.Lambda == 0 {
			act.Lambda = lam
		}
		agg.Add(act)
	}
	ntv := agg.NetTimeValue()
	omega := stu.Omega(totals.Revenue, totals.TotalSTU)

	return TimeValue{
		NodeID: nodeID,
		Lambda: lam,
		Time:   ntv,
		Omega:  omega,
		Badge:  l.Badges.Badge(ntv.NTV, omega),
	}, nil
}

func (l *Ledger) RelationshipValue(ctx context.Context, a, b string) (RelationshipValuation, error) {
	defer l.observe("relationship_value", time.Now())

	res, err := l.Driver.ExecuteQuery(ctx, driver.GetRelationshipBetweenQuery, map[string]any{"node_a": a, "node_b": b})
	if err != nil {
		return RelationshipValuation{}, fmt.Errorf("failed to load relationship: %w", err)
	}
	if len(res.Records) == 0 {
		return RelationshipValuation{}, fmt.Errorf("%w: %s", ErrRelationshipNotFound, model.PairKey(a, b))
	}
	rel := decodeRelationship(res.Records[0])

	members, err := l.membersByID(ctx, []string{rel.NodeA, rel.NodeB})
	if err != nil {
		return RelationshipValuation{}, err
	}
	totals, err := l.orgTotals(ctx, rel.OrgID)
	if err != nil {
		return RelationshipValuation{}, err
	}

	p := density.Effective(rel, l.Settings.ExpectedContacts, l.Now())
	result := l.Engine.Value(relvalue.Input{
		Density: p,
		Sigma:   rel.Sigma,
		Months:  rel.Months,
		LambdaA: lambda.Resolve(members[rel.NodeA], l.Settings.IndustryK),
		HoursA:  rel.InvestedA,
		LambdaB: lambda.Resolve(members[rel.NodeB], l.Settings.IndustryK),
		HoursB:  rel.InvestedB,
	})
	omega := stu.Omega(totals.Revenue, totals.TotalSTU)

	return RelationshipValuation{
		Relationship:  rel,
		Density:       p,
		Result:        result,
		MonetaryValue: stu.ToMoney(result.Value, omega),
		Badge:         l.Badges.Badge(result.Value, omega),
	}, nil
}

// Dashboard returns the organization rollup, served from cache until a write for the
// organization invalidates it or the TTL passes. The returned value must not be mutated.
func (l *Ledger) Dashboard(ctx context.Context, orgID string) (dashboard.Dashboard, error) {
	if d, ok := l.dashboards.Get(orgID); ok {
		l.metrics.RecordCache(true)
		return d, nil
	}
	l.metrics.RecordCache(false)
	defer l.observe("dashboard", time.Now())
	gen := l.dashboards.Generation(orgID)

	var (
		members []model.Node
		rels    []model.Relationship
		acts    []model.TimeActivity
		changes []model.PerformanceChange
		totals  model.OrgTotals
	)
	params := map[string]any{"org_id": orgID}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		members, err = l.members(gctx, driver.GetOrgMembersQuery, params)
		return err
	})
	g.Go(func() error {
		var err error
		rels, err = l.relationships(gctx, driver.GetOrgRelationshipsQuery, params)
		return err
	})
	g.Go(func() error {
		var err error
		acts, err = l.activities(gctx, driver.GetOrgActivitiesQuery, params)
		return err
	})
	g.Go(func() error {
		var err error
		changes, err = l.changes(gctx, driver.GetOrgChangesQuery, params)
		return err
	})
	g.Go(func() error {
		var err error
		totals, err = l.orgTotals(gctx, orgID)
		return err
	})
	if err := g.Wait(); err != nil {
		return dashboard.Dashboard{}, err
	}
	if len(members) == 0 {
		return dashboard.Dashboard{}, fmt.Errorf("%w: %s", ErrOrgNotFound, orgID)
	}

	// Only members with a performance history are scored.
	byNode := groupChanges(changes)
	var inputs []risk.Input
	for _, m := range members {
		if hist := byNode[m.ID]; len(hist) > 0 {
			inputs = append(inputs, risk.Input{NodeID: m.ID, Changes: hist, Satisfaction: NeutralSatisfaction})
		}
	}
	now := l.Now()
	results, err := l.Scorer.Batch(ctx, inputs, now, l.Settings.BatchWorkers)
	if err != nil {
		return dashboard.Dashboard{}, err
	}

	d := dashboard.Build(dashboard.Input{
		OrgID:         orgID,
		Nodes:         members,
		Relationships: rels,
		Activities:    acts,
		Totals:        totals,
		Risk:          results,
		Now:           now,
	}, l.Settings.Dashboard)

	if d.SkippedRelationships > 0 {
		l.logger.Warn("relationships reference unknown nodes",
			zap.String("org_id", orgID), zap.Int("skipped", d.SkippedRelationships))
	}
	l.metrics.DashboardBuilds.Inc()
	if !l.dashboards.SetIfUnchanged(orgID, gen, d) {
		l.logger.Debug("dashboard not cached; org written during build", zap.String("org_id", orgID))
	}
	return d, nil
}

func (l *Ledger) ExplainRisk(ctx context.Context, nodeID string, satisfaction float64) (RiskExplanation, error) {
	result, err := l.NodeRisk(ctx, nodeID, satisfaction)
	if err != nil {
		return RiskExplanation{}, err
	}
	summary, err := l.Narrator.ExplainRisk(ctx, result)
	l.metrics.RecordNarration("risk", err)
	if err != nil {
		return RiskExplanation{}, err
	}
	return RiskExplanation{Risk: result, Summary: summary}, nil
}

func (l *Ledger) ExplainRelationship(ctx context.Context, a, b string) (RelationshipExplanation, error) {
	v, err := l.RelationshipValue(ctx, a, b)
	if err != nil {
		return RelationshipExplanation{}, err
	}
	summary, err := l.Narrator.ExplainRelationship(ctx, v.Density, v.Relationship.Sigma, v.Result)
	l.metrics.RecordNarration("relationship", err)
	if err != nil {
		return RelationshipExplanation{}, err
	}
	return RelationshipExplanation{Valuation: v, Summary: summary}, nil
}

func (l *Ledger) recordRisk(r model.RiskResult) {
	l.metrics.RecordRisk(string(r.Level))
	if len(r.AutoActions) > 0 {
		l.logger.Info("risk actuation scheduled",
			zap.String("node_id", r.NodeID),
			zap.String("level", string(r.Level)),
			zap.Float64("score", r.Score),
			zap.String("action", r.AutoActions[0].Action),
			zap.Time("scheduled_at", r.AutoActions[0].ScheduledAt),
		)
	}
}

func (l *Ledger) members(ctx context.Context, query string, params map[string]any) ([]model.Node, error) {
	res, err := l.Driver.ExecuteQuery(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to load nodes: %w", err)
	}
	out := make([]model.Node, 0, len(res.Records))
	for _, rec := range res.Records {
		out = append(out, decodeMember(rec))
	}
	return out, nil
}

func (l *Ledger) relationships(ctx context.Context, query string, params map[string]any) ([]model.Relationship, error) {
	res, err := l.Driver.ExecuteQuery(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to load relationships: %w", err)
	}
	out := make([]model.Relationship, 0, len(res.Records))
	for _, rec := range res.Records {
		out = append(out, decodeRelationship(rec))
	}
	return out, nil
}

func (l *Ledger) activities(ctx context.Context, query string, params map[string]any) ([]model.TimeActivity, error) {
	res, err := l.Driver.ExecuteQuery(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to load activities: %w", err)
	}
	out := make([]model.TimeActivity, 0, len(res.Records))
	for _, rec := range res.Records {
		out = append(out, decodeActivity(rec))
	}
	return out, nil
}

func (l *Ledger) changes(ctx context.Context, query string, params map[string]any) ([]model.PerformanceChange, error) {
	res, err := l.Driver.ExecuteQuery(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to load performance changes: %w", err)
	}
	out := make([]model.PerformanceChange, 0, len(res.Records))
	for _, rec := range res.Records {
		out = append(out, decodeChange(rec))
	}
	return out, nil
}

// orgTotals returns zero totals (ω = 0) for an organization that never set them.
func (l *Ledger) orgTotals(ctx context.Context, orgID string) (model.OrgTotals, error) {
	res, err := l.Driver.ExecuteQuery(ctx, driver.GetOrgTotalsQuery, map[string]any{"org_id": orgID})
	if err != nil {
		return model.OrgTotals{}, fmt.Errorf("failed to load org totals: %w", err)
	}
	if len(res.Records) == 0 {
		return model.OrgTotals{OrgID: orgID}, nil
	}
	return decodeOrgTotals(res.Records[0]), nil
}

func groupChanges(changes []model.PerformanceChange) map[string][]model.PerformanceChange {
	out := make(map[string][]model.PerformanceChange)
	for _, c := range changes {
		out[c.NodeID] = append(out[c.NodeID], c)
	}
	return out
}
