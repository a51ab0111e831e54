package sim

import (
	"context"
	"fmt"
	"math"
)

// Simulator drives a Cell through a number of steps.
type Simulator struct {
	cell      *Cell
	metrics   []Metric
	observers []Observer
}

func New(cell *Cell) *Simulator {
	return &Simulator{
		cell:      cell,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Cell() *Cell { return s.cell }

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Snapshots: make([]Snapshot, 0, cfg.Steps/cfg.SnapshotEvery+1),
		Metrics:   make(map[string]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	initial := s.cell.Snapshot(0, 0)
	s.record(result, initial)

	for i := 1; i <= cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result, initial)
			return result, ctx.Err()
		default:
		}

		accepted, err := s.cell.Step(cfg.PairsPerStep)
		if err != nil {
			s.finish(result, initial)
			return result, fmt.Errorf("step %d: %w", i, err)
		}
		result.StepsTaken++

		if i%cfg.SnapshotEvery == 0 || i == cfg.Steps {
			s.record(result, s.cell.Snapshot(i, accepted))
		}
	}

	s.finish(result, initial)
	return result, nil
}

// RunWithCallback steps until cfg.Steps or until callback returns false.
// Nothing is recorded.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(Snapshot) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}
	if !callback(s.cell.Snapshot(0, 0)) {
		return nil
	}
	for i := 1; i <= cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		accepted, err := s.cell.Step(cfg.PairsPerStep)
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		if !callback(s.cell.Snapshot(i, accepted)) {
			return nil
		}
	}
	return nil
}

func (s *Simulator) record(result *Result, snap Snapshot) {
	result.Snapshots = append(result.Snapshots, snap)
	for _, m := range s.metrics {
		m.Observe(snap)
	}
	for _, obs := range s.observers {
		obs.OnStep(snap)
	}
}

func (s *Simulator) finish(result *Result, initial Snapshot) {
	result.Counters = s.cell.Counters()
	result.Channels = make(map[string]int, len(s.cell.channels))
	for k, v := range s.cell.channels {
		result.Channels[k] = v
	}
	if e0 := initial.Total(); e0 != 0 {
		for _, snap := range result.Snapshots {
			result.EnergyDrift = math.Max(result.EnergyDrift, math.Abs(snap.Total()-e0)/e0)
		}
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func validateConfig(cfg Config) error {
	if cfg.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", cfg.Steps)
	}
	if cfg.PairsPerStep <= 0 {
		return fmt.Errorf("pairs per step must be positive, got %d", cfg.PairsPerStep)
	}
	if cfg.SnapshotEvery <= 0 {
		return fmt.Errorf("snapshot interval must be positive, got %d", cfg.SnapshotEvery)
	}
	return nil
}
