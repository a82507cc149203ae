package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Addr      string `toml:"addr" yaml:"addr" env:"TEMPO_ADDR" validate:"required"`
	Mode      string `toml:"mode" yaml:"mode" env:"GIN_MODE" validate:"oneof=debug release test"`
	Narration bool   `toml:"narration" yaml:"narration" env:"TEMPO_NARRATION"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri" yaml:"uri" env:"MEMGRAPH_URI" validate:"required"`
	User     string `toml:"user" yaml:"user" env:"MEMGRAPH_USER"`
	Password string `toml:"password" yaml:"password" env:"MEMGRAPH_PASSWORD"`
}

type LLMConfig struct {
	Provider       string `toml:"provider" yaml:"provider" env:"LLM_PROVIDER" validate:"omitempty,oneof=openai claude anthropic gemini google ollama"`
	Model          string `toml:"model" yaml:"model" env:"LLM_MODEL"`
	EmbeddingModel string `toml:"embedding_model" yaml:"embedding_model" env:"LLM_EMBEDDING_MODEL"`
	APIKey         string `toml:"api_key" yaml:"api_key" env:"LLM_API_KEY"`
	BaseURL        string `toml:"base_url" yaml:"base_url" env:"LLM_BASE_URL"`
}

type SigmaWeights struct {
	Compatibility float64 `toml:"compatibility" yaml:"compatibility" validate:"gte=0"`
	Goal          float64 `toml:"goal" yaml:"goal" validate:"gte=0"`
	Value         float64 `toml:"value" yaml:"value" validate:"gte=0"`
	Rhythm        float64 `toml:"rhythm" yaml:"rhythm" validate:"gte=0"`
}

type EngineConfig struct {
	IndustryK        float64      `toml:"industry_k" yaml:"industry_k" env:"TEMPO_INDUSTRY_K" validate:"gt=0"`
	DecayRate        float64      `toml:"decay_rate" yaml:"decay_rate" env:"TEMPO_DECAY_RATE" validate:"gte=0,lte=1"`
	SynergyPolicy    string       `toml:"synergy_policy" yaml:"synergy_policy" env:"TEMPO_SYNERGY_POLICY" validate:"oneof=saturating unbounded"`
	SMax             float64      `toml:"s_max" yaml:"s_max" validate:"gt=0"`
	Tau              float64      `toml:"tau" yaml:"tau" validate:"gt=0"`
	SigmaWeights     SigmaWeights `toml:"sigma_weights" yaml:"sigma_weights"`
	ExpectedContacts float64      `toml:"expected_contacts" yaml:"expected_contacts" validate:"gte=0"`
	CohortMinDensity float64      `toml:"cohort_min_density" yaml:"cohort_min_density" validate:"gte=0,lte=1"`
	TopN             int          `toml:"top_n" yaml:"top_n" validate:"gte=1"`
	Locale           string       `toml:"locale" yaml:"locale" env:"TEMPO_LOCALE" validate:"required"`
	Currency         string       `toml:"currency" yaml:"currency" env:"TEMPO_CURRENCY" validate:"required,len=3"`
}

type Actuation struct {
	Action string `toml:"action" yaml:"action" validate:"required"`
	Delay  string `toml:"delay" yaml:"delay" validate:"duration"`
}

type RiskConfig struct {
	Alpha              float64              `toml:"alpha" yaml:"alpha" env:"TEMPO_RISK_ALPHA" validate:"gt=0"`
	HalfLifeDays       float64              `toml:"half_life_days" yaml:"half_life_days" env:"TEMPO_RISK_HALF_LIFE_DAYS" validate:"gt=0"`
	CategoryWeights    map[string]float64   `toml:"category_weights" yaml:"category_weights" validate:"dive,gte=0"`
	Actions            map[string][]string  `toml:"actions" yaml:"actions" validate:"dive,keys,oneof=LOW MEDIUM HIGH CRITICAL,endkeys"`
	CategoryActions    map[string]string    `toml:"category_actions" yaml:"category_actions"`
	MaxCategoryActions int                  `toml:"max_category_actions" yaml:"max_category_actions" validate:"gte=0"`
	Actuation          map[string]Actuation `toml:"actuation" yaml:"actuation" validate:"dive,keys,oneof=LOW MEDIUM HIGH CRITICAL,endkeys"`
}

// NarrativePrompts are fmt format strings with the verbs of DefaultRiskPrompt and DefaultRelationshipPrompt.
type NarrativePrompts struct {
	Risk         string `toml:"risk" yaml:"risk"`
	Relationship string `toml:"relationship" yaml:"relationship"`
}

type ConcurrencyConfig struct {
	BatchWorkers int `toml:"batch_workers" yaml:"batch_workers" env:"TEMPO_BATCH_WORKERS" validate:"gte=1"`
}

type CacheConfig struct {
	DashboardTTL string `toml:"dashboard_ttl" yaml:"dashboard_ttl" env:"TEMPO_DASHBOARD_TTL" validate:"duration"`
}

type LoggingConfig struct {
	Level   string `toml:"level" yaml:"level" env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	Format  string `toml:"format" yaml:"format" env:"LOG_FORMAT" validate:"oneof=json console"`
	Service string `toml:"service" yaml:"service"`
}

type Config struct {
	Server      ServerConfig      `toml:"server" yaml:"server"`
	Memgraph    MemgraphConfig    `toml:"memgraph" yaml:"memgraph"`
	LLM         LLMConfig         `toml:"llm" yaml:"llm"`
	Engine      EngineConfig      `toml:"engine" yaml:"engine"`
	Risk        RiskConfig        `toml:"risk" yaml:"risk"`
	Prompts     NarrativePrompts  `toml:"prompts" yaml:"prompts"`
	Concurrency ConcurrencyConfig `toml:"concurrency" yaml:"concurrency"`
	Cache       CacheConfig       `toml:"cache" yaml:"cache"`
	Logging     LoggingConfig     `toml:"logging" yaml:"logging"`
}

const (
	DefaultRiskPrompt = `You explain churn risk to school staff in plain language.
Risk score: %.1f/100 (%s). Predicted days until churn: %.0f.
Contributing factors (category, share of events, mean change):
%s
Recommended actions:
%s
Reply with JSON only: {"summary": "<two or three sentences>"}`

	DefaultRelationshipPrompt = `You explain the health of a working relationship in plain language.
Health score: %.0f/100 (%s). Density: %.2f. Synergy: %.2f. Current value: %.1f STU.
Recommendations:
%s
Reply with JSON only: {"summary": "<two or three sentences>"}`
)

// Default returns a complete configuration with every engine constant set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080", Mode: "release"},
		Memgraph: MemgraphConfig{
			URI: "bolt://localhost:7687",
		},
		LLM: LLMConfig{Model: "gpt-4o-mini", EmbeddingModel: "text-embedding-3-small"},
		Engine: EngineConfig{
			IndustryK:        0.3,
			DecayRate:        0.01,
			SynergyPolicy:    "saturating",
			SMax:             50,
			Tau:              24,
			SigmaWeights:     SigmaWeights{Compatibility: 0.3, Goal: 0.3, Value: 0.2, Rhythm: 0.2},
			ExpectedContacts: 8,
			CohortMinDensity: 0.3,
			TopN:             5,
			Locale:           "en",
			Currency:         "USD",
		},
		Risk: RiskConfig{
			Alpha:        1.5,
			HalfLifeDays: 30,
			CategoryWeights: map[string]float64{
				"grade":      1.0,
				"attendance": 1.2,
				"engagement": 0.8,
				"payment":    1.5,
			},
			MaxCategoryActions: 2,
			Actuation: map[string]Actuation{
				"CRITICAL": {Action: "urgent_consultation", Delay: "0s"},
				"HIGH":     {Action: "follow_up_call", Delay: "1h"},
			},
		},
		Prompts: NarrativePrompts{
			Risk:         DefaultRiskPrompt,
			Relationship: DefaultRelationshipPrompt,
		},
		Concurrency: ConcurrencyConfig{BatchWorkers: 8},
		Cache:       CacheConfig{DashboardTTL: "60s"},
		Logging:     LoggingConfig{Level: "info", Format: "json", Service: "tempo"},
	}
}

// Load reads a TOML or YAML file over the defaults, then applies environment overrides.
// An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse YAML: %w", err)
			}
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse TOML: %w", err)
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		_, err := time.ParseDuration(fl.Field().String())
		return err == nil
	})
	return v
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	w := c.Engine.SigmaWeights
	if w.Compatibility+w.Goal+w.Value+w.Rhythm <= 0 {
		return fmt.Errorf("invalid config: sigma weights must have a positive sum")
	}
	return nil
}

// DashboardTTL is the parsed cache TTL. Validate guarantees it parses.
func (c *Config) DashboardTTL() time.Duration {
	d, _ := time.ParseDuration(c.Cache.DashboardTTL)
	return d
}
