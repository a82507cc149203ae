package core

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/tempo/internal/core/model"
	"github.com/agenthands/tempo/internal/core/risk"
	"github.com/agenthands/tempo/internal/driver"
)

func changeRow(id, node, category string, delta float64, at time.Time) map[string]any {
	return map[string]any{
		"id":        id,
		"node_id":   node,
		"category":  category,
		"delta":     delta,
		"timestamp": ts(at),
	}
}

func TestNodeRisk(t *testing.T) {
	drv := NewMockDriver().
		On(driver.GetMemberQuery, rows(memberRow("s1", "org-1", "student"))).
		On(driver.GetNodeChangesQuery, rows(changeRow("c1", "s1", "payment", -1, testNow)))
	l := newTestLedger(t, drv, Deps{})

	r, err := l.NodeRisk(context.Background(), "s1", 1)
	require.NoError(t, err)

	// weighted sum = 1.5 × -1, raw = 1.5, score = 50 + 15
	assert.InDelta(t, 65, r.Score, 1e-9)
	assert.Equal(t, model.RiskHigh, r.Level)
	require.Len(t, r.AutoActions, 1)
	assert.Equal(t, "follow_up_call", r.AutoActions[0].Action)
	assert.Equal(t, testNow.Add(time.Hour), r.AutoActions[0].ScheduledAt)
	assert.Equal(t, "s1", drv.CallsTo(driver.GetNodeChangesQuery)[0].Params["node_id"])
}

func TestNodeRisk_NotFound(t *testing.T) {
	l := newTestLedger(t, NewMockDriver(), Deps{})
	_, err := l.NodeRisk(context.Background(), "ghost", 1)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestNodeRisk_StoreError(t *testing.T) {
	drv := NewMockDriver().
		On(driver.GetMemberQuery, rows(memberRow("s1", "org-1", "student"))).
		Fail(driver.GetNodeChangesQuery, errors.New("timeout"))
	l := newTestLedger(t, drv, Deps{})

	_, err := l.NodeRisk(context.Background(), "s1", 1)
	assert.ErrorContains(t, err, "timeout")
}

func TestBatchRisk(t *testing.T) {
	drv := NewMockDriver().
		On(driver.GetMembersByIDQuery, rows(memberRow("s1", "org-1", "student"), memberRow("s2", "org-1", "student"))).
		On(driver.GetChangesForNodesQuery, rows(
			changeRow("c1", "s2", "grade", 2, testNow),
			changeRow("c2", "s1", "attendance", -3, testNow),
		))
	l := newTestLedger(t, drv, Deps{})

	results, err := l.BatchRisk(context.Background(), []RiskRequest{
		{NodeID: "s2", Satisfaction: 1},
		{NodeID: "s1", Satisfaction: 1},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "s2", results[0].NodeID)
	assert.Equal(t, model.RiskLow, results[0].Level)
	assert.Equal(t, "s1", results[1].NodeID)
	assert.Equal(t, model.RiskCritical, results[1].Level)
}

func TestBatchRisk_UnknownNode(t *testing.T) {
	drv := NewMockDriver().On(driver.GetMembersByIDQuery, rows(memberRow("s1", "org-1", "student")))
	l := newTestLedger(t, drv, Deps{})

	_, err := l.BatchRisk(context.Background(), []RiskRequest{{NodeID: "s1"}, {NodeID: "ghost"}})
	assert.ErrorIs(t, err, ErrNodeNotFound)
	assert.ErrorContains(t, err, "ghost")

	results, err := l.BatchRisk(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestRiskTrend(t *testing.T) {
	drv := NewMockDriver().
		On(driver.GetMemberQuery, rows(memberRow("s1", "org-1", "student"))).
		On(driver.GetNodeChangesQuery, rows(
			changeRow("c1", "s1", "grade", -1, testNow.AddDate(0, 0, -20)),
			changeRow("c2", "s1", "attendance", -1, testNow.AddDate(0, 0, -10)),
			changeRow("c3", "s1", "payment", -1, testNow.AddDate(0, 0, -1)),
		))
	l := newTestLedger(t, drv, Deps{})

	h, err := l.RiskTrend(context.Background(), "s1", 1, 4)
	require.NoError(t, err)

	require.Len(t, h.Points, 4)
	assert.Equal(t, testNow, h.Points[3].At)
	assert.Equal(t, 50.0, h.Points[0].Score)
	assert.Greater(t, h.Points[3].Score, h.Points[1].Score)
	assert.Equal(t, risk.Worsening, h.Trend.Direction)
}

func TestNodeTimeValue(t *testing.T) {
	drv := NewMockDriver().
		On(driver.GetMemberQuery, rows(memberRow("t1", "org-1", "teacher"))).
		On(driver.GetNodeActivitiesQuery, rows(
			map[string]any{"id": "a1", "node_id": "t1", "nature": "invested", "hours": int64(2), "lambda": 0.0},
			map[string]any{"id": "a2", "node_id": "t1", "nature": "saved", "before_hours": 4.0, "after_hours": 1.0, "lambda": 2.5},
		)).
		On(driver.GetOrgTotalsQuery, rows(map[string]any{"org_id": "org-1", "revenue": 2000.0, "total_stu": 100.0}))
	l := newTestLedger(t, drv, Deps{})

	v, err := l.NodeTimeValue(context.Background(), "t1")
	require.NoError(t, err)

	assert.Equal(t, 2.5, v.Lambda)
	assert.InDelta(t, 5, v.Time.T1, 1e-9)
	assert.InDelta(t, 7.5, v.Time.T2, 1e-9)
	assert.InDelta(t, 2.5, v.Time.NTV, 1e-9)
	assert.Equal(t, 20.0, v.Omega)
	assert.InDelta(t, 50, v.Badge.Money, 1e-9)
	assert.Contains(t, v.Badge.Label, "2.5 STU")
}

func TestNodeTimeValue_NoTotalsMeansNoPrice(t *testing.T) {
	drv := NewMockDriver().On(driver.GetMemberQuery, rows(memberRow("t1", "org-1", "teacher")))
	l := newTestLedger(t, drv, Deps{})

	v, err := l.NodeTimeValue(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, v.Omega)
	assert.Equal(t, "0.0 STU", v.Badge.Label)
}

func relRow() map[string]any {
	return map[string]any{
		"id":               "r1",
		"org_id":           "org-1",
		"node_a":           "s1",
		"node_b":           "t1",
		"sigma":            0.0,
		"density":          0.5,
		"depth":            int64(3),
		"last_interaction": ts(testNow),
		"decay_rate":       0.01,
		"invested_a":       10.0,
		"invested_b":       10.0,
		"months":           12.0,
	}
}

func TestRelationshipValue(t *testing.T) {
	drv := NewMockDriver().
		On(driver.GetRelationshipBetweenQuery, rows(relRow())).
		On(driver.GetMembersByIDQuery, rows(memberRow("s1", "org-1", "student"), memberRow("t1", "org-1", "teacher")))
	l := newTestLedger(t, drv, Deps{})

	v, err := l.RelationshipValue(context.Background(), "t1", "s1")
	require.NoError(t, err)

	assert.Equal(t, model.DepthTrust, v.Relationship.Depth)
	assert.InDelta(t, 0.5, v.Density, 1e-12)
	assert.InDelta(t, 1.0, v.Result.Multiplier, 1e-12)
	// 0.5 × (1×10 + 2.5×10) × 1
	assert.InDelta(t, 17.5, v.Result.Value, 1e-9)
	assert.Equal(t, 0.0, v.MonetaryValue)
	assert.Len(t, v.Result.Projections, 3)
}

func TestRelationshipValue_FrequencyIsContactCount(t *testing.T) {
	row := relRow()
	row["density"] = 0.0
	row["frequency"] = 4.0
	row["quality"] = 1.0
	row["depth"] = int64(model.DepthPartnership)
	drv := NewMockDriver().
		On(driver.GetRelationshipBetweenQuery, rows(row)).
		On(driver.GetMembersByIDQuery, rows(memberRow("s1", "org-1", "student"), memberRow("t1", "org-1", "teacher")))
	l := newTestLedger(t, drv, Deps{})
	require.Equal(t, 8.0, l.Settings.ExpectedContacts)

	v, err := l.RelationshipValue(context.Background(), "s1", "t1")
	require.NoError(t, err)

	// 4 of 8 expected contacts × quality 1 × partnership 1.0
	assert.InDelta(t, 0.5, v.Density, 1e-12)
	assert.InDelta(t, 17.5, v.Result.Value, 1e-9)
}

func TestRelationshipValue_NotFound(t *testing.T) {
	l := newTestLedger(t, NewMockDriver(), Deps{})
	_, err := l.RelationshipValue(context.Background(), "a", "b")
	assert.ErrorIs(t, err, ErrRelationshipNotFound)
}

func dashboardDriver() *MockDriver {
	return NewMockDriver().
		On(driver.GetOrgMembersQuery, rows(
			memberRow("o1", "org-1", "owner"),
			memberRow("s1", "org-1", "student"),
			memberRow("t1", "org-1", "teacher"),
		)).
		On(driver.GetOrgRelationshipsQuery, rows(relRow())).
		On(driver.GetOrgActivitiesQuery, rows(
			map[string]any{"id": "a1", "node_id": "t1", "nature": "invested", "hours": 4.0, "lambda": 2.5},
			map[string]any{"id": "a2", "node_id": "t1", "nature": "created", "expected_months": 2.0, "monthly_hours": 5.0, "probability": 1.0, "lambda": 2.5},
		)).
		On(driver.GetOrgChangesQuery, rows(changeRow("c1", "s1", "payment", -1, testNow))).
		On(driver.GetOrgTotalsQuery, rows(map[string]any{"org_id": "org-1", "revenue": 1000.0, "total_stu": 100.0})).
		On(driver.GetMemberQuery, rows(memberRow("s1", "org-1", "student")))
}

func TestDashboard(t *testing.T) {
	drv := dashboardDriver()
	l := newTestLedger(t, drv, Deps{})

	d, err := l.Dashboard(context.Background(), "org-1")
	require.NoError(t, err)

	assert.Equal(t, 10.0, d.Omega)
	assert.InDelta(t, 10, d.Time.T1, 1e-9)
	assert.InDelta(t, 25, d.Time.T3, 1e-9)
	assert.Equal(t, 63, d.EfficiencyScore) // 25/10 × 25 = 62.5
	require.Len(t, d.Relationships, 1)
	assert.InDelta(t, 17.5, d.TotalRelationshipValue, 1e-9)
	assert.InDelta(t, 175, d.Relationships[0].MonetaryValue, 1e-9)
	assert.Equal(t, "o1", d.TopLambda[0].NodeID)
	assert.Equal(t, 1, d.RiskByLevel[model.RiskHigh])
	assert.Equal(t, 0, d.RiskByLevel[model.RiskLow])
	assert.Equal(t, testNow, d.GeneratedAt)
}

func TestDashboard_CachedUntilWrite(t *testing.T) {
	drv := dashboardDriver()
	l := newTestLedger(t, drv, Deps{})
	ctx := context.Background()

	_, err := l.Dashboard(ctx, "org-1")
	require.NoError(t, err)
	_, err = l.Dashboard(ctx, "org-1")
	require.NoError(t, err)
	assert.Len(t, drv.CallsTo(driver.GetOrgMembersQuery), 1)

	_, err = l.RecordPerformanceChange(ctx, model.PerformanceChange{NodeID: "s1", Category: model.CategoryGrade, Delta: 1})
	require.NoError(t, err)

	_, err = l.Dashboard(ctx, "org-1")
	require.NoError(t, err)
	assert.Len(t, drv.CallsTo(driver.GetOrgMembersQuery), 2)
}

// writeDuringRead records a performance change the first time query runs.
type writeDuringRead struct {
	*MockDriver
	query  string
	ledger *Ledger
	fired  atomic.Bool
}

func (w *writeDuringRead) ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	res, err := w.MockDriver.ExecuteQuery(ctx, query, params)
	if query == w.query && w.fired.CompareAndSwap(false, true) {
		if _, werr := w.ledger.RecordPerformanceChange(ctx, model.PerformanceChange{
			NodeID: "s1", Category: model.CategoryGrade, Delta: -1,
		}); werr != nil {
			return res, werr
		}
	}
	return res, err
}

func TestDashboard_WriteDuringBuildIsNotCached(t *testing.T) {
	drv := dashboardDriver()
	racing := &writeDuringRead{MockDriver: drv, query: driver.GetOrgChangesQuery}
	l := newTestLedger(t, drv, Deps{})
	l.Driver = racing
	racing.ledger = l
	ctx := context.Background()

	_, err := l.Dashboard(ctx, "org-1")
	require.NoError(t, err)
	require.True(t, racing.fired.Load())
	require.Len(t, drv.CallsTo(driver.SavePerformanceChangeQuery), 1)

	_, err = l.Dashboard(ctx, "org-1")
	require.NoError(t, err)
	assert.Len(t, drv.CallsTo(driver.GetOrgMembersQuery), 2)

	_, err = l.Dashboard(ctx, "org-1")
	require.NoError(t, err)
	assert.Len(t, drv.CallsTo(driver.GetOrgMembersQuery), 2)
}

func TestDashboard_UnknownOrg(t *testing.T) {
	l := newTestLedger(t, NewMockDriver(), Deps{})
	_, err := l.Dashboard(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrOrgNotFound)
}

func TestDashboard_StoreError(t *testing.T) {
	drv := dashboardDriver().Fail(driver.GetOrgActivitiesQuery, errors.New("disk full"))
	l := newTestLedger(t, drv, Deps{})

	_, err := l.Dashboard(context.Background(), "org-1")
	assert.ErrorContains(t, err, "disk full")
}

func TestExplainRisk(t *testing.T) {
	drv := NewMockDriver().
		On(driver.GetMemberQuery, rows(memberRow("s1", "org-1", "student"))).
		On(driver.GetNodeChangesQuery, rows(changeRow("c1", "s1", "grade", -0.5, testNow)))
	l := newTestLedger(t, drv, Deps{})
	l.Narrator.LLM = &MockLLM{Response: `{"summary": "Grades dipped this week."}`}

	exp, err := l.ExplainRisk(context.Background(), "s1", 1)
	require.NoError(t, err)
	assert.Equal(t, "Grades dipped this week.", exp.Summary)
	assert.Equal(t, "s1", exp.Risk.NodeID)
}

func TestExplainRelationship(t *testing.T) {
	drv := NewMockDriver().
		On(driver.GetRelationshipBetweenQuery, rows(relRow())).
		On(driver.GetMembersByIDQuery, rows(memberRow("s1", "org-1", "student"), memberRow("t1", "org-1", "teacher")))
	l := newTestLedger(t, drv, Deps{})

	_, err := l.ExplainRelationship(context.Background(), "s1", "t1")
	assert.Error(t, err)

	l.Narrator.LLM = &MockLLM{Response: "Healthy and steady."}
	exp, err := l.ExplainRelationship(context.Background(), "s1", "t1")
	require.NoError(t, err)
	assert.Equal(t, "Healthy and steady.", exp.Summary)
	assert.InDelta(t, 17.5, exp.Valuation.Result.Value, 1e-9)
}
