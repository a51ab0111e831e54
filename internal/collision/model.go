// Package collision computes post-collision velocities once a reaction
// channel has been selected. Elastic and VSS scattering update the pair in
// place; inelastic channels replace the reactants with product particles.
package collision

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/dsmcdb/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrBelowThreshold is returned by inelastic channels when the pair does
	// not carry enough energy to pay the threshold. Callers treat it as no
	// interaction.
	ErrBelowThreshold = errors.New("collision: relative energy below threshold")

	ErrUnknownModel = errors.New("collision: unknown collision model")
	ErrBadParameter = errors.New("collision: invalid parameter")
)

// Rand is the random source consumed by the models. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// Model updates a colliding pair. a and b are ordered like the reactants of
// the equation the model belongs to.
type Model interface {
	Name() string
	// Interact returns nil when it updated a and b in place, or the product
	// particles that replace both reactants.
	Interact(a, b *physics.Particle, rng Rand) ([]physics.Particle, error)
}

// Product is one outgoing particle of an inelastic channel. Multiplicities
// are expanded, so "2 e" appears twice.
type Product struct {
	Species int
	Mass    float64
}

// Spec carries everything a model may need from its equation.
type Spec struct {
	Mass         physics.ReducedMass
	MassA, MassB float64
	VSSParamInv  float64
	Threshold    float64 // J, removed from the pair by inelastic channels
	Products     []Product
}

var registry = map[string]func(Spec) (Model, error){
	"elastic": func(s Spec) (Model, error) { return NewElastic(s.Mass) },
	"vss":     func(s Spec) (Model, error) { return NewVSS(s.Mass, s.VSSParamInv) },
	"inelastic": func(s Spec) (Model, error) {
		return NewInelastic(s.MassA, s.MassB, s.Threshold, s.Products)
	},
}

// New builds the collision model registered under label.
func New(label string, spec Spec) (Model, error) {
	fn, ok := registry[label]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, label)
	}
	return fn(spec)
}

func Labels() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// isotropic draws a uniformly distributed unit vector.
func isotropic(rng Rand) r3.Vec {
	cos := 2*rng.Float64() - 1
	sin := math.Sqrt(1 - cos*cos)
	phi := 2 * math.Pi * rng.Float64()
	return r3.Vec{X: cos, Y: sin * math.Cos(phi), Z: sin * math.Sin(phi)}
}
