// Package narrative asks an LLM to explain computed results to staff in plain language.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agenthands/tempo/internal/config"
	"github.com/agenthands/tempo/internal/core/common"
	"github.com/agenthands/tempo/internal/core/model"
	"github.com/agenthands/tempo/internal/core/relvalue"
	"github.com/agenthands/tempo/internal/llm"
)

var ErrDisabled = errors.New("narration is not configured")

type Narrator struct {
	LLM     llm.LLMClient
	Prompts config.NarrativePrompts
}

func NewNarrator(client llm.LLMClient, prompts config.NarrativePrompts) *Narrator {
	if prompts.Risk == "" {
		prompts.Risk = config.DefaultRiskPrompt
	}
	if prompts.Relationship == "" {
		prompts.Relationship = config.DefaultRelationshipPrompt
	}
	return &Narrator{LLM: client, Prompts: prompts}
}

func (n *Narrator) ExplainRisk(ctx context.Context, r model.RiskResult) (string, error) {
	var factors strings.Builder
	for _, f := range r.Factors {
		fmt.Fprintf(&factors, "- %s: %.0f%% of events, mean change %+.2f\n", f.Category, f.Share*100, f.MeanDelta)
	}
	if factors.Len() == 0 {
		factors.WriteString("- none recorded\n")
	}

	prompt := fmt.Sprintf(n.Prompts.Risk, r.Score, r.Level, r.PredictedChurnDays, factors.String(), bullets(r.Actions))
	return n.generate(ctx, prompt, "risk")
}

func (n *Narrator) ExplainRelationship(ctx context.Context, density, sigma float64, res relvalue.Result) (string, error) {
	h := res.Health
	prompt := fmt.Sprintf(n.Prompts.Relationship, h.Score, h.Band, density, sigma, res.Value, bullets(h.Recommendations))
	return n.generate(ctx, prompt, "relationship")
}

func (n *Narrator) generate(ctx context.Context, prompt, subject string) (string, error) {
	if n == nil || n.LLM == nil {
		return "", ErrDisabled
	}

	response, err := n.LLM.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s narrative: %w", subject, err)
	}

	result, err := common.ParseJSON[model.NarrativeSummary](response)
	if err == nil && result.Summary != "" {
		return result.Summary, nil
	}
	// Models sometimes ignore the JSON instruction; plain text is still usable.
	return strings.TrimSpace(response), nil
}

func bullets(items []string) string {
	if len(items) == 0 {
		return "- none\n"
	}
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "- %s\n", it)
	}
	return b.String()
}
