package experiment

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/san-kum/dsmcdb/internal/config"
	"github.com/san-kum/dsmcdb/internal/crosssection"
	"github.com/san-kum/dsmcdb/internal/database"
	"github.com/san-kum/dsmcdb/internal/filter"
	"github.com/san-kum/dsmcdb/internal/interaction"
	"github.com/san-kum/dsmcdb/internal/logging"
	"github.com/san-kum/dsmcdb/internal/sim"
	"github.com/san-kum/dsmcdb/internal/species"
)

// Experiment is a configured gas: its database, the selected equations and
// the interaction table built from them. It hands out independent cells.
type Experiment struct {
	cfg       *config.Config
	db        *database.Database
	equations []*interaction.Equation
	table     *interaction.Table
	log       logging.Logger
}

func New(cfg *config.Config, log logging.Logger) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log = logging.OrNoOp(log)

	db, err := database.Load(cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("load database: %w", err)
	}

	opts := crosssection.Options{Extrapolate: cfg.Extrapolation, Logger: log}
	all, err := db.Equations(opts)
	if err != nil {
		return nil, err
	}
	eqs, err := filter.Select(all, cfg.Filter, db.Species)
	if err != nil {
		return nil, err
	}
	if len(eqs) == 0 {
		log.Warnf("no equations left after filtering %d from %s", len(all), cfg.Database)
	}

	table, err := interaction.Build(db.Species, eqs, log)
	if err != nil {
		return nil, err
	}
	log.Infof("loaded %d species, %d of %d equations from %s", db.Species.Len(), len(eqs), len(all), cfg.Database)

	return &Experiment{cfg: cfg, db: db, equations: eqs, table: table, log: log}, nil
}

func (e *Experiment) Config() *config.Config { return e.cfg }

func (e *Experiment) Species() *species.Registry { return e.db.Species }

func (e *Experiment) Equations() []*interaction.Equation { return e.equations }

func (e *Experiment) Table() *interaction.Table { return e.table }

// SpeciesNames returns names in index order.
func (e *Experiment) SpeciesNames() []string {
	all := e.db.Species.All()
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.Name
	}
	return names
}

func (e *Experiment) SimConfig() sim.Config {
	return sim.Config{
		Steps:         e.cfg.Steps,
		PairsPerStep:  e.cfg.PairsPerStep,
		SnapshotEvery: e.cfg.SnapshotEvery,
		Seed:          e.cfg.Seed,
	}
}

// NewCell populates a fresh cell from the configured populations and seeds
// its majorants.
func (e *Experiment) NewCell(rng *rand.Rand) (*sim.Cell, error) {
	pops := make([]sim.Population, len(e.cfg.Population))
	for i, p := range e.cfg.Population {
		pops[i] = sim.Population{Species: p.Species, Count: p.Count, Temperature: p.Temperature}
	}
	particles, err := sim.Populate(e.db.Species, pops, rng)
	if err != nil {
		return nil, err
	}
	cell, err := sim.NewCell(e.table, e.db.Species, particles, rng, e.log)
	if err != nil {
		return nil, err
	}
	cell.InitMajorants(e.cfg.MajorantSpeedFactor)
	return cell, nil
}

// NewSimulator returns a simulator over a fresh cell seeded with cfg.Seed,
// with the default metrics attached.
func (e *Experiment) NewSimulator() (*sim.Simulator, error) {
	cell, err := e.NewCell(rand.New(rand.NewSource(e.cfg.Seed)))
	if err != nil {
		return nil, err
	}
	s := sim.New(cell)
	for _, m := range DefaultMetrics(e.cfg) {
		s.AddMetric(m)
	}
	return s, nil
}

// Run executes cfg.Ensemble independent cells seeded Seed, Seed+1, ...
func (e *Experiment) Run(ctx context.Context) ([]*sim.Result, error) {
	ens := sim.NewEnsemble(e.NewCell, func() []sim.Metric { return DefaultMetrics(e.cfg) }, e.cfg.Ensemble, e.cfg.Seed)
	return ens.Run(ctx, e.SimConfig())
}
