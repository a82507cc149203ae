package relvalue

// DefaultHorizons are the forward projection offsets in months.
var DefaultHorizons = []float64{3, 6, 12}

// Input describes one relationship at a point in time.
type Input struct {
	Density float64 `json:"density"`
	Sigma   float64 `json:"sigma"`
	Months  float64 `json:"months"`
	LambdaA float64 `json:"lambda_a"`
	HoursA  float64 `json:"hours_a"`
	LambdaB float64 `json:"lambda_b"`
	HoursB  float64 `json:"hours_b"`
}

type Projection struct {
	Months     float64 `json:"months"`
	Multiplier float64 `json:"multiplier"`
	Value      float64 `json:"value"`
}

type Result struct {
	Value           float64      `json:"value"`
	MutualTimeValue float64      `json:"mutual_time_value"`
	Multiplier      float64      `json:"multiplier"`
	Policy          string       `json:"policy"`
	Projections     []Projection `json:"projections"`
	Health          Health       `json:"health"`
}

// MutualTimeValue is Λ = λa·ta + λb·tb.
func MutualTimeValue(lambdaA, hoursA, lambdaB, hoursB float64) float64 {
	return lambdaA*hoursA + lambdaB*hoursB
}

// Engine evaluates relationship value under one synergy policy.
type Engine struct {
	Policy   SynergyPolicy
	Horizons []float64
}

func NewEngine(policy SynergyPolicy) *Engine {
	if policy == nil {
		policy = DefaultPolicy
	}
	return &Engine{Policy: policy, Horizons: DefaultHorizons}
}

// Value computes V = P × Λ × multiplier(σ, t). Projections evaluate the same formula at t+Δ
// holding σ and P constant.
func (e *Engine) Value(in Input) Result {
	mutual := MutualTimeValue(in.LambdaA, in.HoursA, in.LambdaB, in.HoursB)
	m := e.Policy.Multiplier(in.Sigma, in.Months)

	projections := make([]Projection, 0, len(e.Horizons))
	for _, h := range e.Horizons {
		pm := e.Policy.Multiplier(in.Sigma, in.Months+h)
		projections = append(projections, Projection{
			Months:     h,
			Multiplier: pm,
			Value:      in.Density * mutual * pm,
		})
	}

	return Result{
		Value:           in.Density * mutual * m,
		MutualTimeValue: mutual,
		Multiplier:      m,
		Policy:          e.Policy.Name(),
		Projections:     projections,
		Health:          Assess(in.Density, in.Sigma, m),
	}
}

// Multiplier exposes the engine's policy for a single evaluation.
func (e *Engine) Multiplier(sigma, months float64) float64 {
	return e.Policy.Multiplier(sigma, months)
}

// NetRelationshipValue monetizes a relationship: P × NTV × multiplier × ω.
func NetRelationshipValue(density, ntv, multiplier, omega float64) float64 {
	return density * ntv * multiplier * omega
}
