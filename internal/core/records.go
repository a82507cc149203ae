package core

import (
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/tempo/internal/core/model"
)

func recString(rec *neo4j.Record, key string) string {
	v, _ := rec.Get(key)
	s, _ := v.(string)
	return s
}

func recFloat(rec *neo4j.Record, key string) float64 {
	v, _ := rec.Get(key)
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

func recInt(rec *neo4j.Record, key string) int {
	v, _ := rec.Get(key)
	switch n := v.(type) {
	case int64:
		return int(n)
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}

func recTime(rec *neo4j.Record, key string) time.Time {
	v, _ := rec.Get(key)
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}
		}
		return parsed.UTC()
	default:
		return time.Time{}
	}
}

func recPresent(rec *neo4j.Record, key string) bool {
	v, ok := rec.Get(key)
	return ok && v != nil
}

// formatTime stores zero times as null.
func formatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeMember(rec *neo4j.Record) model.Node {
	n := model.Node{
		ID:         recString(rec, "id"),
		OrgID:      recString(rec, "org_id"),
		Name:       recString(rec, "name"),
		Role:       model.ParseRole(recString(rec, "role")),
		Lambda:     recFloat(rec, "lambda"),
		GrowthRate: recFloat(rec, "growth_rate"),
		Goals:      recString(rec, "goals"),
		CreatedAt:  recTime(rec, "created_at"),
	}
	if recPresent(rec, "replaceability") {
		n.Factors = &model.LambdaFactors{
			Replaceability: recFloat(rec, "replaceability"),
			Influence:      recFloat(rec, "influence"),
			Expertise:      recFloat(rec, "expertise"),
			Network:        recFloat(rec, "network"),
		}
	}
	return n
}

func memberParams(n model.Node) map[string]any {
	params := map[string]any{
		"id":             n.ID,
		"org_id":         n.OrgID,
		"name":           n.Name,
		"role":           string(n.Role),
		"lambda":         n.Lambda,
		"replaceability": nil,
		"influence":      nil,
		"expertise":      nil,
		"network":        nil,
		"growth_rate":    n.GrowthRate,
		"goals":          n.Goals,
		"created_at":     formatTime(n.CreatedAt),
	}
	if f := n.Factors; f != nil {
		params["replaceability"] = f.Replaceability
		params["influence"] = f.Influence
		params["expertise"] = f.Expertise
		params["network"] = f.Network
	}
	return params
}

func decodeRelationship(rec *neo4j.Record) model.Relationship {
	return model.Relationship{
		ID:    recString(rec, "id"),
		OrgID: recString(rec, "org_id"),
		NodeA: recString(rec, "node_a"),
		NodeB: recString(rec, "node_b"),
		Sigma: recFloat(rec, "sigma"),
		Synergy: model.SynergyFactors{
			Style:         recFloat(rec, "style"),
			GoalAlignment: recFloat(rec, "goal_alignment"),
			ValueMatch:    recFloat(rec, "value_match"),
			RhythmSync:    recFloat(rec, "rhythm_sync"),
		},
		Density:         recFloat(rec, "density"),
		Frequency:       recFloat(rec, "frequency"),
		Quality:         recFloat(rec, "quality"),
		Depth:           model.DepthLevel(recInt(rec, "depth")),
		LastInteraction: recTime(rec, "last_interaction"),
		DecayRate:       recFloat(rec, "decay_rate"),
		InvestedA:       recFloat(rec, "invested_a"),
		InvestedB:       recFloat(rec, "invested_b"),
		Months:          recFloat(rec, "months"),
	}
}

func relationshipParams(r model.Relationship) map[string]any {
	return map[string]any{
		"id":               r.ID,
		"org_id":           r.OrgID,
		"node_a":           r.NodeA,
		"node_b":           r.NodeB,
		"sigma":            r.Sigma,
		"style":            r.Synergy.Style,
		"goal_alignment":   r.Synergy.GoalAlignment,
		"value_match":      r.Synergy.ValueMatch,
		"rhythm_sync":      r.Synergy.RhythmSync,
		"density":          r.Density,
		"frequency":        r.Frequency,
		"quality":          r.Quality,
		"depth":            int64(r.Depth),
		"last_interaction": formatTime(r.LastInteraction),
		"decay_rate":       r.DecayRate,
		"invested_a":       r.InvestedA,
		"invested_b":       r.InvestedB,
		"months":           r.Months,
	}
}

func decodeActivity(rec *neo4j.Record) model.TimeActivity {
	return model.TimeActivity{
		ID:             recString(rec, "id"),
		NodeID:         recString(rec, "node_id"),
		Nature:         model.Nature(recString(rec, "nature")),
		Hours:          recFloat(rec, "hours"),
		BeforeHours:    recFloat(rec, "before_hours"),
		AfterHours:     recFloat(rec, "after_hours"),
		ExpectedMonths: recFloat(rec, "expected_months"),
		MonthlyHours:   recFloat(rec, "monthly_hours"),
		Probability:    recFloat(rec, "probability"),
		Lambda:         recFloat(rec, "lambda"),
		RecordedAt:     recTime(rec, "recorded_at"),
	}
}

func activityParams(a model.TimeActivity) map[string]any {
	return map[string]any{
		"id":              a.ID,
		"node_id":         a.NodeID,
		"nature":          string(a.Nature),
		"hours":           a.Hours,
		"before_hours":    a.BeforeHours,
		"after_hours":     a.AfterHours,
		"expected_months": a.ExpectedMonths,
		"monthly_hours":   a.MonthlyHours,
		"probability":     a.Probability,
		"lambda":          a.Lambda,
		"recorded_at":     formatTime(a.RecordedAt),
	}
}

func decodeChange(rec *neo4j.Record) model.PerformanceChange {
	return model.PerformanceChange{
		ID:        recString(rec, "id"),
		NodeID:    recString(rec, "node_id"),
		Category:  model.Category(recString(rec, "category")),
		Delta:     recFloat(rec, "delta"),
		Timestamp: recTime(rec, "timestamp"),
	}
}

func changeParams(c model.PerformanceChange) map[string]any {
	return map[string]any{
		"id":        c.ID,
		"node_id":   c.NodeID,
		"category":  string(c.Category),
		"delta":     c.Delta,
		"timestamp": formatTime(c.Timestamp),
	}
}

func decodeOrgTotals(rec *neo4j.Record) model.OrgTotals {
	return model.OrgTotals{
		OrgID:       recString(rec, "org_id"),
		Revenue:     recFloat(rec, "revenue"),
		TotalSTU:    recFloat(rec, "total_stu"),
		PeriodStart: recTime(rec, "period_start"),
		PeriodEnd:   recTime(rec, "period_end"),
	}
}

func orgTotalsParams(t model.OrgTotals) map[string]any {
	return map[string]any{
		"org_id":       t.OrgID,
		"revenue":      t.Revenue,
		"total_stu":    t.TotalSTU,
		"period_start": formatTime(t.PeriodStart),
		"period_end":   formatTime(t.PeriodEnd),
	}
}
