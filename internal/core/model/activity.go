package model

import "time"

// Nature tags what a unit of recorded time did.
type Nature string

const (
	NatureInvested Nature = "invested" // T1
	NatureSaved    Nature = "saved"    // T2
	NatureCreated  Nature = "created"  // T3
)

// TimeActivity is an append-only log entry. Lambda is the λ in effect when it was recorded.
//
// Hours is used for invested time, BeforeHours/AfterHours for efficiency events, and
// ExpectedMonths/MonthlyHours/Probability for projected future time.
type TimeActivity struct {
	ID             string    `json:"id"`
	NodeID         string    `json:"node_id"`
	Nature         Nature    `json:"nature"`
	Hours          float64   `json:"hours,omitempty"`
	BeforeHours    float64   `json:"before_hours,omitempty"`
	AfterHours     float64   `json:"after_hours,omitempty"`
	ExpectedMonths float64   `json:"expected_months,omitempty"`
	MonthlyHours   float64   `json:"monthly_hours,omitempty"`
	Probability    float64   `json:"probability,omitempty"`
	Lambda         float64   `json:"lambda"`
	RecordedAt     time.Time `json:"recorded_at"`
}

// RealHours is the real time the activity stands for before λ weighting.
func (a TimeActivity) RealHours() float64 {
	switch a.Nature {
	case NatureInvested:
		return a.Hours
	case NatureSaved:
		return a.BeforeHours - a.AfterHours
	case NatureCreated:
		return a.ExpectedMonths * a.MonthlyHours * a.Probability
	default:
		return 0
	}
}

// STU is RealHours weighted by the recorded λ.
func (a TimeActivity) STU() float64 {
	return a.RealHours() * a.Lambda
}

// Category groups performance signals.
type Category string

const (
	CategoryGrade      Category = "grade"
	CategoryAttendance Category = "attendance"
	CategoryEngagement Category = "engagement"
	CategoryPayment    Category = "payment"
)

// PerformanceChange is an append-only signed delta for one node.
type PerformanceChange struct {
	ID        string    `json:"id"`
	NodeID    string    `json:"node_id"`
	Category  Category  `json:"category"`
	Delta     float64   `json:"delta"`
	Timestamp time.Time `json:"timestamp"`
}

// OrgTotals feed ω for one period.
type OrgTotals struct {
	OrgID       string    `json:"org_id"`
	Revenue     float64   `json:"revenue"`
	TotalSTU    float64   `json:"total_stu"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
}
