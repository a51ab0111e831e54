package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/dsmcdb/internal/config"
	"github.com/san-kum/dsmcdb/internal/metrics"
	"github.com/san-kum/dsmcdb/internal/sim"
)

// relaxationTolerance is the relative spread of species temperatures that
// counts as equilibrated.
const relaxationTolerance = 0.05

var metricFactories = map[string]func(cfg *config.Config) sim.Metric{
	"temperature":  func(*config.Config) sim.Metric { return metrics.NewTemperature() },
	"energy_drift": func(*config.Config) sim.Metric { return metrics.NewEnergyDrift() },
	"acceptance_rate": func(cfg *config.Config) sim.Metric {
		return metrics.NewAcceptanceRate(cfg.PairsPerStep)
	},
	"relaxation_step": func(*config.Config) sim.Metric { return metrics.NewRelaxation(relaxationTolerance) },
}

func GetMetric(name string, cfg *config.Config) (sim.Metric, error) {
	fn, ok := metricFactories[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(cfg), nil
}

func ListMetrics() []string {
	names := make([]string, 0, len(metricFactories))
	for name := range metricFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns one fresh instance of every known metric.
func DefaultMetrics(cfg *config.Config) []sim.Metric {
	names := ListMetrics()
	out := make([]sim.Metric, 0, len(names))
	for _, name := range names {
		m, _ := GetMetric(name, cfg)
		out = append(out, m)
	}
	return out
}
