package risk

import (
	"time"

	"github.com/agenthands/tempo/internal/core/model"
)

// ActionTable maps risk levels and weak categories to recommended actions.
type ActionTable struct {
	ByLevel    map[model.RiskLevel][]string `json:"by_level"`
	ByCategory map[model.Category]string    `json:"by_category"`
	// MaxCategoryActions caps how many category-specific actions are appended.
	MaxCategoryActions int `json:"max_category_actions"`
}

// DefaultActions returns a fresh copy of the stock table so callers may mutate it.
func DefaultActions() ActionTable {
	return ActionTable{
		ByLevel: map[model.RiskLevel][]string{
			model.RiskCritical: {
				"Schedule an urgent consultation with the family",
				"Assign a dedicated counselor",
				"Offer a retention incentive",
			},
			model.RiskHigh: {
				"Schedule a follow-up call within 48 hours",
				"Review recent grades and attendance with the teacher",
			},
			model.RiskMedium: {
				"Send a personalized progress report",
				"Monitor weekly",
			},
			model.RiskLow: {
				"Continue regular engagement",
			},
		},
		ByCategory: map[model.Category]string{
			model.CategoryGrade:      "Arrange supplementary tutoring",
			model.CategoryAttendance: "Contact the guardian about attendance",
			model.CategoryEngagement: "Introduce engagement activities",
			model.CategoryPayment:    "Discuss flexible payment options",
		},
		MaxCategoryActions: 2,
	}
}

// Recommend returns the level's base actions followed by actions for the most negative
// categories, de-duplicated in order. factors must already be ranked.
func (t ActionTable) Recommend(level model.RiskLevel, factors []model.RiskFactor) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(a string) {
		if a == "" || seen[a] {
			return
		}
		seen[a] = true
		out = append(out, a)
	}

	for _, a := range t.ByLevel[level] {
		add(a)
	}

	added := 0
	for _, f := range factors {
		if added >= t.MaxCategoryActions {
			break
		}
		if f.MeanDelta >= 0 {
			continue
		}
		if a, ok := t.ByCategory[f.Category]; ok {
			add(a)
			added++
		}
	}
	return out
}

// Actuation is an action the automation layer should run Delay after scoring.
type Actuation struct {
	Action string        `json:"action"`
	Delay  time.Duration `json:"delay"`
}

// ActuationPolicy decides which levels schedule an automatic action. Levels without an entry schedule nothing.
type ActuationPolicy map[model.RiskLevel]Actuation

func DefaultActuation() ActuationPolicy {
	return ActuationPolicy{
		model.RiskCritical: {Action: "urgent_consultation", Delay: 0},
		model.RiskHigh:     {Action: "follow_up_call", Delay: time.Hour},
	}
}

// Schedule returns the actions to run for level relative to now.
func (p ActuationPolicy) Schedule(level model.RiskLevel, now time.Time) []model.ScheduledAction {
	a, ok := p[level]
	if !ok || a.Action == "" {
		return nil
	}
	return []model.ScheduledAction{{
		Action:      a.Action,
		ScheduledAt: now.Add(a.Delay),
		Immediate:   a.Delay <= 0,
	}}
}
