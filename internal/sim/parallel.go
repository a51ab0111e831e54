package sim

import (
	"context"
	"math/rand"
	"sync"
)

// CellFactory builds an independent cell for one ensemble member. Cells
// share the read-only interaction table but never a majorant.
type CellFactory func(rng *rand.Rand) (*Cell, error)

type Ensemble struct {
	factory   CellFactory
	metrics   func() []Metric
	numRuns   int
	seedStart int64
}

// NewEnsemble runs numRuns cells seeded seedStart, seedStart+1, ...
// metrics, if not nil, returns fresh metrics for each member.
func NewEnsemble(factory CellFactory, metrics func() []Metric, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{factory: factory, metrics: metrics, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfgCopy := cfg
			cfgCopy.Seed = e.seedStart + int64(idx)

			cell, err := e.factory(rand.New(rand.NewSource(cfgCopy.Seed)))
			if err != nil {
				errs[idx] = err
				return
			}
			sim := New(cell)
			if e.metrics != nil {
				for _, m := range e.metrics() {
					sim.AddMetric(m)
				}
			}

			results[idx], errs[idx] = sim.Run(ctx, cfgCopy)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

// Merge sums the counters and channel counts of an ensemble.
func Merge(results []*Result) (Counters, map[string]int) {
	var total Counters
	channels := make(map[string]int)
	for _, r := range results {
		total.add(r.Counters)
		for k, v := range r.Channels {
			channels[k] += v
		}
	}
	return total, channels
}
