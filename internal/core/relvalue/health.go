package relvalue

import "math"

type Band string

const (
	BandExcellent Band = "excellent"
	BandGood      Band = "good"
	BandFair      Band = "fair"
	BandPoor      Band = "poor"
	BandCritical  Band = "critical"
)

// Health is a 0–100 assessment of a relationship.
type Health struct {
	Score           float64  `json:"score"`
	Band            Band     `json:"band"`
	Recommendations []string `json:"recommendations"`
}

const (
	RecIncreaseContact = "Increase contact frequency"
	RecSynergyRepair   = "Synergy repair needed: review style and goal alignment"
	RecBuildMomentum   = "Build momentum with a shared short-term goal"
	RecMaintain        = "Maintain current engagement rhythm"
	RecDeepen          = "Deepen the relationship with joint planning"
	RecCheckIn         = "Schedule a check-in within two weeks"
	RecIntervene       = "Plan a structured intervention"
	RecEscalate        = "Escalate to a manager for immediate review"
)

var bandRecommendations = map[Band][]string{
	BandExcellent: {RecMaintain},
	BandGood:      {RecDeepen},
	BandFair:      {RecCheckIn},
	BandPoor:      {RecIntervene},
	BandCritical:  {RecEscalate},
}

// Assess scores 40·P + 30·((σ+1)/2) + min(30, 5·multiplier) and attaches recommendations.
func Assess(density, sigma, multiplier float64) Health {
	score := 40*density + 30*((sigma+1)/2) + math.Min(30, 5*multiplier)
	score = math.Max(0, math.Min(100, score))
	band := bandFor(score)

	var recs []string
	if density < 0.3 {
		recs = append(recs, RecIncreaseContact)
	}
	if sigma < 0 {
		recs = append(recs, RecSynergyRepair)
	}
	if multiplier < 1 && sigma >= 0 {
		recs = append(recs, RecBuildMomentum)
	}
	recs = append(recs, bandRecommendations[band]...)

	return Health{Score: score, Band: band, Recommendations: recs}
}

func bandFor(score float64) Band {
	switch {
	case score >= 80:
		return BandExcellent
	case score >= 60:
		return BandGood
	case score >= 40:
		return BandFair
	case score >= 20:
		return BandPoor
	default:
		return BandCritical
	}
}
