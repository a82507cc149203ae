package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agenthands/tempo/internal/cache"
	"github.com/agenthands/tempo/internal/config"
	"github.com/agenthands/tempo/internal/core/dashboard"
	"github.com/agenthands/tempo/internal/core/lambda"
	"github.com/agenthands/tempo/internal/core/model"
	"github.com/agenthands/tempo/internal/core/narrative"
	"github.com/agenthands/tempo/internal/core/relvalue"
	"github.com/agenthands/tempo/internal/core/risk"
	"github.com/agenthands/tempo/internal/core/sigma"
	"github.com/agenthands/tempo/internal/core/stu"
	"github.com/agenthands/tempo/internal/driver"
	"github.com/agenthands/tempo/internal/llm"
	"github.com/agenthands/tempo/internal/metrics"
)

// Ledger reads snapshots from the graph store, hands them to the pure engine and
// appends to the activity and performance logs.
type Ledger struct {
	Driver   driver.GraphDriver
	Embedder llm.EmbedderClient
	Narrator *narrative.Narrator
	Scorer   *risk.Scorer
	Engine   *relvalue.Engine
	Badges   *stu.Formatter
	Settings Settings
	Now      func() time.Time

	logger     *zap.Logger
	metrics    *metrics.Registry
	dashboards *cache.TTL[dashboard.Dashboard]
}

type Deps struct {
	LLM      llm.LLMClient
	Embedder llm.EmbedderClient
	Prompts  config.NarrativePrompts
	Logger   *zap.Logger
	Metrics  *metrics.Registry
}

func NewLedger(drv driver.GraphDriver, settings Settings, deps Deps) (*Ledger, error) {
	badges, err := stu.NewFormatter(settings.Locale, settings.Currency)
	if err != nil {
		return nil, err
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewRegistry()
	}
	var narrationLLM llm.LLMClient
	if settings.Narration {
		narrationLLM = deps.LLM
	}

	return &Ledger{
		Driver:     drv,
		Embedder:   deps.Embedder,
		Narrator:   narrative.NewNarrator(narrationLLM, deps.Prompts),
		Scorer:     risk.NewScorer(settings.Risk),
		Engine:     relvalue.NewEngine(settings.Policy),
		Badges:     badges,
		Settings:   settings,
		Now:        func() time.Time { return time.Now().UTC() },
		logger:     deps.Logger,
		metrics:    deps.Metrics,
		dashboards: cache.NewTTL[dashboard.Dashboard](settings.DashboardTTL),
	}, nil
}

func (l *Ledger) BuildIndices(ctx context.Context) error {
	return l.Driver.BuildIndices(ctx)
}

func (l *Ledger) UpsertNode(ctx context.Context, n model.Node) (model.Node, error) {
	if strings.TrimSpace(n.OrgID) == "" {
		return model.Node{}, fmt.Errorf("%w: org_id is required", ErrInvalidInput)
	}
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	n.Role = model.ParseRole(string(n.Role))
	if n.CreatedAt.IsZero() {
		n.CreatedAt = l.Now()
	}

	_, err := l.Driver.ExecuteQuery(ctx, driver.UpsertMemberQuery, memberParams(n))
	l.metrics.RecordWrite("node", err)
	if err != nil {
		return model.Node{}, fmt.Errorf("failed to save node: %w", err)
	}

	l.dashboards.Invalidate(n.OrgID)
	l.logger.Debug("node saved", zap.String("node_id", n.ID), zap.String("role", string(n.Role)))
	return n, nil
}

// UpsertRelationship stores a pair with canonical orientation (NodeA < NodeB). When synergy
// factors are given, σ is derived from them; goal alignment comes from goal embeddings when
// an embedder is configured and both members state goals.
func (l *Ledger) UpsertRelationship(ctx context.Context, r model.Relationship) (model.Relationship, error) {
	if r.NodeA == "" || r.NodeB == "" || r.NodeA == r.NodeB {
		return model.Relationship{}, fmt.Errorf("%w: a relationship needs two distinct nodes", ErrInvalidInput)
	}
	if r.NodeA > r.NodeB {
		r.NodeA, r.NodeB = r.NodeB, r.NodeA
		r.InvestedA, r.InvestedB = r.InvestedB, r.InvestedA
	}

	members, err := l.membersByID(ctx, []string{r.NodeA, r.NodeB})
	if err != nil {
		return model.Relationship{}, err
	}
	a, b := members[r.NodeA], members[r.NodeB]

	if r.OrgID == "" {
		r.OrgID = a.OrgID
	}
	if r.ID == "" {
		r.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(r.Key())).String()
	}
	if r.Depth == 0 {
		r.Depth = model.DepthAwareness
	}
	if r.DecayRate == 0 {
		r.DecayRate = l.Settings.DecayRate
	}

	if l.Embedder != nil && a.Goals != "" && b.Goals != "" {
		if alignment, err := l.goalAlignment(ctx, a.Goals, b.Goals); err != nil {
			l.logger.Warn("goal alignment skipped", zap.String("relationship_id", r.ID), zap.Error(err))
		} else {
			r.Synergy.GoalAlignment = alignment
		}
	}
	if r.Synergy != (model.SynergyFactors{}) {
		r.Sigma = sigma.Compute(r.Synergy, l.Settings.SigmaWeights)
	}

	res, err := l.Driver.ExecuteQuery(ctx, driver.UpsertRelationshipQuery, relationshipParams(r))
	l.metrics.RecordWrite("relationship", err)
	if err != nil {
		return model.Relationship{}, fmt.Errorf("failed to save relationship: %w", err)
	}
	if len(res.Records) == 0 {
		return model.Relationship{}, fmt.Errorf("%w: %s or %s", ErrNodeNotFound, r.NodeA, r.NodeB)
	}

	l.dashboards.Invalidate(r.OrgID)
	return r, nil
}

func (l *Ledger) goalAlignment(ctx context.Context, goalsA, goalsB string) (float64, error) {
	va, err := l.Embedder.Embed(ctx, goalsA)
	if err != nil {
		return 0, fmt.Errorf("failed to embed goals: %w", err)
	}
	vb, err := l.Embedder.Embed(ctx, goalsB)
	if err != nil {
		return 0, fmt.Errorf("failed to embed goals: %w", err)
	}
	return sigma.CosineSimilarity(va, vb), nil
}

// RecordActivity appends to a node's time log. A zero λ is filled with the node's current λ.
func (l *Ledger) RecordActivity(ctx context.Context, act model.TimeActivity) (model.TimeActivity, error) {
	switch act.Nature {
	case model.NatureInvested, model.NatureSaved, model.NatureCreated:
	default:
		return model.TimeActivity{}, fmt.Errorf("%w: unknown nature %q", ErrInvalidInput, act.Nature)
	}

	member, err := l.member(ctx, act.NodeID)
	if err != nil {
		return model.TimeActivity{}, err
	}
	if act.Lambda == 0 {
		act.Lambda = lambda.Resolve(member, l.Settings.IndustryK)
	}
	if act.ID == "" {
		act.ID = uuid.New().String()
	}
	if act.RecordedAt.IsZero() {
		act.RecordedAt = l.Now()
	}

	_, err = l.Driver.ExecuteQuery(ctx, driver.SaveActivityQuery, activityParams(act))
	l.metrics.RecordWrite("activity", err)
	if err != nil {
		return model.TimeActivity{}, fmt.Errorf("failed to save activity: %w", err)
	}

	l.dashboards.Invalidate(member.OrgID)
	return act, nil
}

func (l *Ledger) RecordPerformanceChange(ctx context.Context, c model.PerformanceChange) (model.PerformanceChange, error) {
	if c.Category == "" {
		return model.PerformanceChange{}, fmt.Errorf("%w: category is required", ErrInvalidInput)
	}

	member, err := l.member(ctx, c.NodeID)
	if err != nil {
		return model.PerformanceChange{}, err
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Timestamp.IsZero() {
		c.Timestamp = l.Now()
	}

	_, err = l.Driver.ExecuteQuery(ctx, driver.SavePerformanceChangeQuery, changeParams(c))
	l.metrics.RecordWrite("performance_change", err)
	if err != nil {
		return model.PerformanceChange{}, fmt.Errorf("failed to save performance change: %w", err)
	}

	l.dashboards.Invalidate(member.OrgID)
	return c, nil
}

// SetOrgTotals stores the revenue and STU totals that price time for an organization.
func (l *Ledger) SetOrgTotals(ctx context.Context, t model.OrgTotals) error {
	if t.OrgID == "" {
		return fmt.Errorf("%w: org_id is required", ErrInvalidInput)
	}
	if t.Revenue < 0 || t.TotalSTU < 0 {
		return fmt.Errorf("%w: totals must not be negative", ErrInvalidInput)
	}

	_, err := l.Driver.ExecuteQuery(ctx, driver.UpsertOrgTotalsQuery, orgTotalsParams(t))
	l.metrics.RecordWrite("org_totals", err)
	if err != nil {
		return fmt.Errorf("failed to save org totals: %w", err)
	}
	l.dashboards.Invalidate(t.OrgID)
	return nil
}

func (l *Ledger) member(ctx context.Context, id string) (model.Node, error) {
	if id == "" {
		return model.Node{}, fmt.Errorf("%w: node_id is required", ErrInvalidInput)
	}
	res, err := l.Driver.ExecuteQuery(ctx, driver.GetMemberQuery, map[string]any{"id": id})
	if err != nil {
		return model.Node{}, fmt.Errorf("failed to load node: %w", err)
	}
	if len(res.Records) == 0 {
		return model.Node{}, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	return decodeMember(res.Records[0]), nil
}

// membersByID fails with ErrNodeNotFound naming the first missing ID.
func (l *Ledger) membersByID(ctx context.Context, ids []string) (map[string]model.Node, error) {
	res, err := l.Driver.ExecuteQuery(ctx, driver.GetMembersByIDQuery, map[string]any{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("failed to load nodes: %w", err)
	}
	out := make(map[string]model.Node, len(res.Records))
	for _, rec := range res.Records {
		n := decodeMember(rec)
		out[n.ID] = n
	}
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
		}
	}
	return out, nil
}
