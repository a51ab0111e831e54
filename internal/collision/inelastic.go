package collision

import (
	"fmt"
	"math"

	"github.com/san-kum/dsmcdb/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

// Inelastic removes the threshold energy from the pair and replaces it with
// the channel's products. Momentum is carried by the products' centre of
// mass; what is left of the energy is shared by an isotropic sequential
// two-body breakup.
type Inelastic struct {
	massA, massB float64
	threshold    float64
	products     []Product
	total        float64   // Σ product masses
	rest         []float64 // rest[i] = Σ masses of products[i+1:]
}

func NewInelastic(massA, massB, threshold float64, products []Product) (*Inelastic, error) {
	if !(massA > 0) || !(massB > 0) {
		return nil, fmt.Errorf("%w: inelastic reactant masses %g, %g", ErrBadParameter, massA, massB)
	}
	if threshold < 0 || math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return nil, fmt.Errorf("%w: threshold %g", ErrBadParameter, threshold)
	}
	if len(products) < 2 {
		return nil, fmt.Errorf("%w: inelastic channel needs at least two products, got %d", ErrBadParameter, len(products))
	}
	for _, p := range products {
		if !(p.Mass > 0) {
			return nil, fmt.Errorf("%w: product species %d has mass %g", ErrBadParameter, p.Species, p.Mass)
		}
	}
	// suffix sums, never differences: e + Hg -> e + Hg+ + e would cancel
	rest := make([]float64, len(products))
	for i := len(products) - 2; i >= 0; i-- {
		rest[i] = rest[i+1] + products[i+1].Mass
	}
	out := make([]Product, len(products))
	copy(out, products)
	return &Inelastic{
		massA:     massA,
		massB:     massB,
		threshold: threshold,
		products:  out,
		total:     rest[0] + products[0].Mass,
		rest:      rest,
	}, nil
}

func (m *Inelastic) Name() string { return "inelastic" }

// Threshold returns the energy (J) the channel absorbs.
func (m *Inelastic) Threshold() float64 { return m.threshold }

func (m *Inelastic) Interact(a, b *physics.Particle, rng Rand) ([]physics.Particle, error) {
	momentum := r3.Add(r3.Scale(m.massA, a.Velocity), r3.Scale(m.massB, b.Velocity))
	energy := physics.KineticEnergy(m.massA, a.Velocity) + physics.KineticEnergy(m.massB, b.Velocity)

	vcm := r3.Scale(1/m.total, momentum)
	avail := energy - m.threshold - 0.5*m.total*r3.Norm2(vcm)
	if avail < 0 {
		return nil, fmt.Errorf("%w: short by %g J", ErrBelowThreshold, -avail)
	}

	out := make([]physics.Particle, len(m.products))
	for i, p := range m.products {
		if i == len(m.products)-1 {
			out[i] = physics.Particle{Species: p.Species, Velocity: vcm}
			break
		}
		rest := m.rest[i]
		// the last split gets everything that is left
		share := avail
		if i < len(m.products)-2 {
			share = avail * rng.Float64()
		}
		pair := p.Mass + rest
		g := math.Sqrt(2 * share * pair / (p.Mass * rest))
		dir := r3.Scale(g, isotropic(rng))

		out[i] = physics.Particle{Species: p.Species, Velocity: r3.Add(vcm, r3.Scale(rest/pair, dir))}
		vcm = r3.Sub(vcm, r3.Scale(p.Mass/pair, dir))
		avail -= share
	}
	return out, nil
}
