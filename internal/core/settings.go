package core

import (
	"fmt"
	"time"

	"github.com/agenthands/tempo/internal/config"
	"github.com/agenthands/tempo/internal/core/dashboard"
	"github.com/agenthands/tempo/internal/core/model"
	"github.com/agenthands/tempo/internal/core/relvalue"
	"github.com/agenthands/tempo/internal/core/risk"
	"github.com/agenthands/tempo/internal/core/sigma"
)

// Settings is the engine configuration in domain types.
type Settings struct {
	IndustryK        float64
	DecayRate        float64
	ExpectedContacts float64
	SigmaWeights     sigma.Weights
	Policy           relvalue.SynergyPolicy
	SMax             float64
	Tau              float64
	Risk             risk.Config
	Dashboard        dashboard.Options
	BatchWorkers     int
	DashboardTTL     time.Duration
	Locale           string
	Currency         string
	Narration        bool
}

func DefaultSettings() Settings {
	s, err := SettingsFromConfig(config.Default())
	if err != nil {
		panic(fmt.Sprintf("default config does not convert: %v", err))
	}
	return s
}

func SettingsFromConfig(cfg *config.Config) (Settings, error) {
	e := cfg.Engine
	policy, err := relvalue.PolicyByName(e.SynergyPolicy, e.SMax, e.Tau)
	if err != nil {
		return Settings{}, err
	}
	riskCfg, err := riskConfig(cfg.Risk)
	if err != nil {
		return Settings{}, err
	}

	weights := sigma.Weights{
		Compatibility: e.SigmaWeights.Compatibility,
		Goal:          e.SigmaWeights.Goal,
		Value:         e.SigmaWeights.Value,
		Rhythm:        e.SigmaWeights.Rhythm,
	}.Normalized()

	return Settings{
		IndustryK:        e.IndustryK,
		DecayRate:        e.DecayRate,
		ExpectedContacts: e.ExpectedContacts,
		SigmaWeights:     weights,
		Policy:           policy,
		SMax:             e.SMax,
		Tau:              e.Tau,
		Risk:             riskCfg,
		Dashboard: dashboard.Options{
			Policy:           policy,
			IndustryK:        e.IndustryK,
			TopN:             e.TopN,
			CohortMinDensity: e.CohortMinDensity,
			ExpectedContacts: e.ExpectedContacts,
		},
		BatchWorkers: cfg.Concurrency.BatchWorkers,
		DashboardTTL: cfg.DashboardTTL(),
		Locale:       e.Locale,
		Currency:     e.Currency,
		Narration:    cfg.Server.Narration,
	}, nil
}

func riskConfig(rc config.RiskConfig) (risk.Config, error) {
	out := risk.Config{
		Alpha:        rc.Alpha,
		HalfLifeDays: rc.HalfLifeDays,
		Actions:      risk.DefaultActions(),
		Actuation:    risk.ActuationPolicy{},
	}

	if len(rc.CategoryWeights) > 0 {
		out.CategoryWeights = make(map[model.Category]float64, len(rc.CategoryWeights))
		for cat, w := range rc.CategoryWeights {
			out.CategoryWeights[model.Category(cat)] = w
		}
	}
	for level, actions := range rc.Actions {
		out.Actions.ByLevel[model.RiskLevel(level)] = actions
	}
	for cat, action := range rc.CategoryActions {
		out.Actions.ByCategory[model.Category(cat)] = action
	}
	out.Actions.MaxCategoryActions = rc.MaxCategoryActions

	for level, a := range rc.Actuation {
		delay, err := time.ParseDuration(a.Delay)
		if err != nil {
			return risk.Config{}, fmt.Errorf("invalid actuation delay for %s: %w", level, err)
		}
		out.Actuation[model.RiskLevel(level)] = risk.Actuation{Action: a.Action, Delay: delay}
	}
	return out, nil
}
