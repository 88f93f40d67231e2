package simulation

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/picogrid/drone-search-sim/cmd/drone-search/config"
	"github.com/picogrid/drone-search-sim/cmd/drone-search/core"
	"github.com/picogrid/drone-search-sim/cmd/drone-search/reporting"
	"github.com/picogrid/drone-search-sim/cmd/drone-search/search"
	"golang.org/x/sync/errgroup"
)

// StrategyResult is the outcome of one search in a comparison
type StrategyResult struct {
	Strategy core.StrategyID
	Fast     *search.FeasibilityPoint
	Slow     []search.FeasibilityPoint
	Lines    []string
	Groups   int
	Trials   int
}

// CompareStrategies runs an independent search per strategy, concurrently, each from a
// copy of base with its own random source. Results are returned in the order of strategies.
// parallel caps the number of searches running at once; 0 runs them all together.
// Search events go to out, os.Stdout when nil.
func CompareStrategies(ctx context.Context, base *config.SearchConfig, strategies []core.StrategyID, parallel int, out io.Writer) ([]StrategyResult, error) {
	if len(strategies) == 0 {
		return nil, fmt.Errorf("no strategies to compare")
	}

	for _, id := range strategies {
		if !id.Valid() {
			return nil, fmt.Errorf("unknown strategy id %d", int(id))
		}
	}

	if out == nil {
		out = os.Stdout
	}

	results := make([]StrategyResult, len(strategies))
	g, ctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}

	for i, id := range strategies {
		i, id := i, id
		cfg := base.Clone()
		cfg.Drones.Strategy = id.String()
		if cfg.Simulation.Seed != 0 {
			cfg.Simulation.Seed += int64(i)
		}

		g.Go(func() error {
			simLogger := reporting.NewSimulationLogger("", out)
			simLogger.SetLabel(id.String())
			simLogger.SetVerbose(cfg.Output.Verbose)

			m, err := NewManager(cfg, NewEntityRegistry(), simLogger)
			if err != nil {
				return fmt.Errorf("%s: %w", id, err)
			}
			defer m.Close()

			for !m.Finished() {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := m.Step(cfg.Simulation.Step); err != nil {
					return fmt.Errorf("%s: %w", id, err)
				}
			}

			r := StrategyResult{
				Strategy: id,
				Slow:     m.Search().Slow(),
				Lines:    m.Results(),
				Groups:   m.Search().Groups(),
				Trials:   m.TrialCount(),
			}
			if fast, ok := m.Search().Fast(); ok {
				r.Fast = &fast
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
