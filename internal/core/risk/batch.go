package risk

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agenthands/tempo/internal/core/model"
)

// Batch scores every input independently on up to workers goroutines. Results keep input order.
func (s *Scorer) Batch(ctx context.Context, inputs []Input, now time.Time, workers int) ([]model.RiskResult, error) {
	results := make([]model.RiskResult, len(inputs))
	if len(inputs) == 0 {
		return results, nil
	}
	if workers <= 0 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range inputs {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = s.Score(inputs[i], now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// CountByLevel tallies results per level; every level is present.
func CountByLevel(results []model.RiskResult) map[model.RiskLevel]int {
	out := make(map[model.RiskLevel]int, 4)
	for _, l := range model.RiskLevels() {
		out[l] = 0
	}
	for _, r := range results {
		out[r.Level]++
	}
	return out
}
