package dashboard

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/tempo/internal/core/model"
	"github.com/agenthands/tempo/internal/core/relvalue"
)

var now = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func fixture() Input {
	nodes := []model.Node{
		{ID: "owner", Name: "Owner", Role: model.RoleOwner},
		{ID: "t1", Name: "Teacher One", Role: model.RoleTeacher},
		{ID: "t2", Name: "Teacher Two", Role: model.RoleTeacher, Lambda: 4},
		{ID: "s1", Name: "Student One", Role: model.RoleStudent},
		{ID: "s2", Name: "Student Two", Role: model.RoleStudent},
		{ID: "p1", Name: "Parent", Role: model.RoleParent},
	}
	rels := []model.Relationship{
		{ID: "r1", NodeA: "t1", NodeB: "s1", Sigma: 0.6, Density: 0.8, Months: 6, InvestedA: 10, InvestedB: 5, LastInteraction: now},
		{ID: "r2", NodeA: "t2", NodeB: "s2", Sigma: -0.3, Density: 0.4, Months: 12, InvestedA: 4, InvestedB: 4, LastInteraction: now},
		{ID: "r3", NodeA: "s1", NodeB: "p1", Sigma: 0.1, Density: 0.5, Months: 3, InvestedA: 1, InvestedB: 2, LastInteraction: now},
		{ID: "r4", NodeA: "t1", NodeB: "ghost", Sigma: 0.9, Density: 1, Months: 1, InvestedA: 1, InvestedB: 1},
	}
	acts := []model.TimeActivity{
		{NodeID: "t1", Nature: model.NatureInvested, Hours: 4, Lambda: 2.5},
		{NodeID: "s1", Nature: model.NatureInvested, Hours: 10}, // λ filled from the node (1.0)
		{NodeID: "t1", Nature: model.NatureSaved, BeforeHours: 3, AfterHours: 1, Lambda: 2.5},
		{NodeID: "t2", Nature: model.NatureCreated, ExpectedMonths: 5, MonthlyHours: 2, Probability: 0.5, Lambda: 4},
	}
	return Input{
		OrgID:         "org-1",
		Nodes:         nodes,
		Relationships: rels,
		Activities:    acts,
		Totals:        model.OrgTotals{Revenue: 2000, TotalSTU: 100},
		Now:           now,
	}
}

func TestBuild(t *testing.T) {
	d := Build(fixture(), Options{Policy: relvalue.Unbounded{}})

	assert.Equal(t, "org-1", d.OrgID)
	assert.Equal(t, 20.0, d.Omega)

	// T1 = 4*2.5 + 10*1 = 20, T2 = 2*2.5 = 5, T3 = 5*2*0.5*4 = 20
	assert.InDelta(t, 20.0, d.Time.T1, 1e-9)
	assert.InDelta(t, 5.0, d.Time.T2, 1e-9)
	assert.InDelta(t, 20.0, d.Time.T3, 1e-9)
	assert.InDelta(t, 5.0, d.Time.NTV, 1e-9)
	// (5+20)/20*25 = 31.25
	assert.Equal(t, 31, d.EfficiencyScore)

	require.Len(t, d.Relationships, 3)
	assert.Equal(t, 1, d.SkippedRelationships)

	r2 := d.Relationships[1]
	assert.Equal(t, "r2", r2.RelationshipID)
	// Λ = 4*4 + 1*4 = 20; V = 0.4 * 20 * e^(-0.3)
	assert.InDelta(t, 0.4*20*0.7408182206817179, r2.Value, 1e-9)
	assert.InDelta(t, r2.Value*20, r2.MonetaryValue, 1e-9)

	var total float64
	for _, r := range d.Relationships {
		total += r.Value
	}
	assert.InDelta(t, total, d.TotalRelationshipValue, 1e-9)
}

func TestBuild_TopLambdaAndSynergy(t *testing.T) {
	d := Build(fixture(), DefaultOptions())

	require.Len(t, d.TopLambda, 5)
	assert.Equal(t, "owner", d.TopLambda[0].NodeID)
	assert.Equal(t, "t2", d.TopLambda[1].NodeID)
	assert.Equal(t, "t1", d.TopLambda[2].NodeID)

	require.Len(t, d.StrongestSynergy, 3)
	assert.Equal(t, "r1", d.StrongestSynergy[0].RelationshipID)
	require.Len(t, d.WeakestSynergy, 3)
	assert.Equal(t, "r2", d.WeakestSynergy[0].RelationshipID)
}

func TestBuild_Cohorts(t *testing.T) {
	d := Build(fixture(), DefaultOptions())

	// r2 (0.4) and r3 (0.5) clear the 0.3 floor along with r1 (0.8)
	require.NotEmpty(t, d.Cohorts)
	var members []string
	for _, c := range d.Cohorts {
		members = append(members, c.Members...)
	}
	assert.Contains(t, members, "t1")
	assert.NotContains(t, members, "ghost")
	assert.NotContains(t, members, "owner")
}

func TestBuild_RiskRollup(t *testing.T) {
	in := fixture()
	assert.Nil(t, Build(in, DefaultOptions()).RiskByLevel)

	in.Risk = []model.RiskResult{{Level: model.RiskHigh}, {Level: model.RiskHigh}, {Level: model.RiskLow}}
	d := Build(in, DefaultOptions())
	assert.Equal(t, 2, d.RiskByLevel[model.RiskHigh])
	assert.Equal(t, 1, d.RiskByLevel[model.RiskLow])
	assert.Equal(t, 0, d.RiskByLevel[model.RiskCritical])
}

func TestBuild_Empty(t *testing.T) {
	d := Build(Input{OrgID: "empty", Now: now}, Options{})
	assert.Equal(t, 0.0, d.Omega)
	assert.Equal(t, 0, d.EfficiencyScore)
	assert.Empty(t, d.Relationships)
	assert.Empty(t, d.TopLambda)
	assert.Empty(t, d.Cohorts)
}

func TestBuild_TopNLimits(t *testing.T) {
	in := Input{Now: now}
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("n%d", i)
		in.Nodes = append(in.Nodes, model.Node{ID: id, Lambda: float64(i + 1)})
		if i > 0 {
			in.Relationships = append(in.Relationships, model.Relationship{
				ID: fmt.Sprintf("r%d", i), NodeA: "n0", NodeB: id, Sigma: float64(i) / 10, Density: 0.5,
			})
		}
	}
	d := Build(in, DefaultOptions())

	require.Len(t, d.TopLambda, 5)
	assert.Equal(t, "n7", d.TopLambda[0].NodeID)
	require.Len(t, d.StrongestSynergy, 5)
	require.Len(t, d.WeakestSynergy, 5)
	assert.Equal(t, "r7", d.StrongestSynergy[0].RelationshipID)
	assert.Equal(t, "r1", d.WeakestSynergy[0].RelationshipID)
}

func TestEfficiencyScore(t *testing.T) {
	assert.Equal(t, 0, EfficiencyScore(0, 10, 10))
	assert.Equal(t, 63, EfficiencyScore(10, 5, 20)) // 2.5*25 = 62.5 rounds half away from zero
	assert.Equal(t, 100, EfficiencyScore(1, 10, 10))
	assert.Equal(t, 0, EfficiencyScore(10, -20, 0))
}

func TestBuild_DerivesDensityFromContactCount(t *testing.T) {
	in := Input{
		Nodes: []model.Node{{ID: "a", Lambda: 1}, {ID: "b", Lambda: 1}},
		Relationships: []model.Relationship{
			{ID: "r", NodeA: "a", NodeB: "b", Frequency: 4, Quality: 1, Depth: model.DepthPartnership, InvestedA: 1, InvestedB: 1, LastInteraction: now},
		},
		Now: now,
	}
	d := Build(in, DefaultOptions())

	require.Len(t, d.Relationships, 1)
	assert.InDelta(t, 0.5, d.Relationships[0].Density, 1e-12)
}
