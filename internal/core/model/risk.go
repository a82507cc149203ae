package model

import "time"

type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// RiskLevels lists levels from least to most severe.
func RiskLevels() []RiskLevel {
	return []RiskLevel{RiskLow, RiskMedium, RiskHigh, RiskCritical}
}

// RiskFactor summarizes one category of the change log.
type RiskFactor struct {
	Category  Category `json:"category"`
	Share     float64  `json:"share"` // fraction of events in this category
	MeanDelta float64  `json:"mean_delta"`
	Count     int      `json:"count"`
}

// ScheduledAction is a data value describing an action for the automation layer to run.
type ScheduledAction struct {
	Action      string    `json:"action"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Immediate   bool      `json:"immediate"`
}

// RiskResult is derived from the performance log and never stored as source of truth.
type RiskResult struct {
	NodeID             string            `json:"node_id"`
	Score              float64           `json:"score"`
	Level              RiskLevel         `json:"level"`
	RawRisk            float64           `json:"raw_risk"`
	WeightedSum        float64           `json:"weighted_sum"`
	PredictedChurnDays float64           `json:"predicted_churn_days"`
	Factors            []RiskFactor      `json:"factors"`
	Actions            []string          `json:"actions"`
	AutoActions        []ScheduledAction `json:"auto_actions"`
	ComputedAt         time.Time         `json:"computed_at"`
}

// NarrativeSummary is the JSON shape expected back from the narration prompt.
type NarrativeSummary struct {
	Summary string `json:"summary"`
}
