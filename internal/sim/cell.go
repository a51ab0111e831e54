package sim

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/dsmcdb/internal/collision"
	"github.com/san-kum/dsmcdb/internal/crosssection"
	"github.com/san-kum/dsmcdb/internal/interaction"
	"github.com/san-kum/dsmcdb/internal/logging"
	"github.com/san-kum/dsmcdb/internal/physics"
)

// Species is what a cell needs to know about particle types.
// *species.Registry implements it.
type Species interface {
	Len() int
	Index(name string) (int, error)
	Mass(i int) float64
}

// Cell is a single well-mixed collision cell. It owns one majorant per
// species pair and must not be shared between goroutines.
type Cell struct {
	table     *interaction.Table
	species   Species
	particles []physics.Particle
	majorants []interaction.Majorant
	rng       *rand.Rand
	log       logging.Logger

	absorbed float64
	counters Counters
	channels map[string]int
}

func NewCell(table *interaction.Table, species Species, particles []physics.Particle, rng *rand.Rand, log logging.Logger) (*Cell, error) {
	if table.Species() != species.Len() {
		return nil, fmt.Errorf("%w: table has %d species, registry %d", interaction.ErrStaleTable, table.Species(), species.Len())
	}
	for i, p := range particles {
		if p.Species < 0 || p.Species >= species.Len() {
			return nil, fmt.Errorf("sim: particle %d has unknown species %d", i, p.Species)
		}
	}
	return &Cell{
		table:     table,
		species:   species,
		particles: particles,
		majorants: make([]interaction.Majorant, table.Size()),
		rng:       rng,
		log:       logging.OrNoOp(log),
		channels:  make(map[string]int),
	}, nil
}

// Populate draws Maxwellian particles for every population entry.
func Populate(species Species, pops []Population, rng *rand.Rand) ([]physics.Particle, error) {
	var out []physics.Particle
	for _, p := range pops {
		idx, err := species.Index(p.Species)
		if err != nil {
			return nil, fmt.Errorf("sim: population: %w", err)
		}
		m := species.Mass(idx)
		for k := 0; k < p.Count; k++ {
			out = append(out, physics.Particle{Species: idx, Velocity: physics.Maxwellian(rng, m, p.Temperature)})
		}
	}
	return out, nil
}

// InitMajorants seeds every pair's majorant with the summed channel maxima
// up to factor times the pair's current mean relative speed.
func (c *Cell) InitMajorants(factor float64) {
	temps := c.speciesTemperatures()
	for _, set := range c.table.Sets() {
		if set.Len() == 0 {
			continue
		}
		a, b := set.Pair()
		ma, mb := c.species.Mass(a), c.species.Mass(b)
		if ma <= 0 || mb <= 0 {
			continue
		}
		g := math.Sqrt(8 * physics.Boltzmann / math.Pi * (temps[a]/ma + temps[b]/mb))
		if g == 0 {
			continue
		}
		max, err := set.FindMaxSigmaVProduct(factor * g)
		if err != nil {
			c.log.Warnf("majorant for pair (%d, %d) left at zero: %v", a, b, err)
			continue
		}
		c.majorants[c.table.PairIndex(a, b)].Value = max
	}
}

// Majorant returns the running bound of a species pair.
func (c *Cell) Majorant(a, b int) float64 {
	return c.majorants[c.table.PairIndex(a, b)].Value
}

func (c *Cell) Particles() []physics.Particle { return c.particles }

func (c *Cell) Counters() Counters { return c.counters }

// Step runs pairs random trial pairs and returns how many collided.
func (c *Cell) Step(pairs int) (int, error) {
	accepted := 0
	for k := 0; k < pairs; k++ {
		n := len(c.particles)
		if n < 2 {
			break
		}
		i := c.rng.Intn(n)
		j := c.rng.Intn(n - 1)
		if j >= i {
			j++
		}
		ok, err := c.collide(i, j)
		if err != nil {
			return accepted, err
		}
		if ok {
			accepted++
		}
	}
	return accepted, nil
}

func (c *Cell) collide(i, j int) (bool, error) {
	a, b := &c.particles[i], &c.particles[j]
	set := c.table.Get(a.Species, b.Species)
	if set == nil || set.Len() == 0 {
		return false, nil
	}

	c.counters.Trials++
	m := &c.majorants[c.table.PairIndex(a.Species, b.Species)]
	out, err := set.SelectOutcome(m, physics.RelativeSpeed(*a, *b), c.rng)
	if errors.Is(err, crosssection.ErrOutOfDomain) {
		c.counters.DomainErrors++
		c.log.Debugf("skipped trial: %v", err)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !out.Occurred() {
		c.counters.Rejected++
		return false, nil
	}

	eq := set.Equation(out.Index)
	products, err := eq.Interact(a, b, c.rng)
	if errors.Is(err, collision.ErrBelowThreshold) {
		c.counters.BelowThreshold++
		return false, nil
	}
	if err != nil {
		return false, err
	}

	c.counters.Accepted++
	c.channels[channelKey(eq)]++
	if products != nil {
		c.absorbed += eq.Threshold
		c.replace(i, j, products)
	}
	return true, nil
}

// replace swaps out particles i and j for the products.
func (c *Cell) replace(i, j int, products []physics.Particle) {
	if i < j {
		i, j = j, i
	}
	for _, k := range []int{i, j} {
		last := len(c.particles) - 1
		c.particles[k] = c.particles[last]
		c.particles = c.particles[:last]
	}
	c.particles = append(c.particles, products...)
}

func channelKey(eq *interaction.Equation) string {
	if eq.Section == "" {
		return eq.Label
	}
	return eq.Section + ": " + eq.Label
}

func (c *Cell) mass(i int) float64 { return c.species.Mass(i) }

func (c *Cell) speciesTemperatures() []float64 {
	n := c.species.Len()
	energy := make([]float64, n)
	count := make([]int, n)
	for _, p := range c.particles {
		energy[p.Species] += physics.KineticEnergy(c.mass(p.Species), p.Velocity)
		count[p.Species]++
	}
	temps := make([]float64, n)
	for i := range temps {
		if count[i] > 0 {
			temps[i] = 2 * energy[i] / (3 * float64(count[i]) * physics.Boltzmann)
		}
	}
	return temps
}

// Snapshot records the current state of the cell.
func (c *Cell) Snapshot(step, accepted int) Snapshot {
	_, energy := physics.Totals(c.particles, c.mass)
	return Snapshot{
		Step:        step,
		Temperature: physics.Temperature(c.particles, c.mass),
		Species:     c.speciesTemperatures(),
		Energy:      energy,
		Absorbed:    c.absorbed,
		Particles:   len(c.particles),
		Accepted:    accepted,
	}
}
