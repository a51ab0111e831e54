package metrics

import (
	"math"

	"github.com/san-kum/dsmcdb/internal/sim"
)

// Relaxation records the first step at which every species present is
// within tolerance (relative) of the mixture temperature. Value is -1 until
// that happens.
type Relaxation struct {
	name      string
	tolerance float64
	step      int
}

func NewRelaxation(tolerance float64) *Relaxation {
	return &Relaxation{name: "relaxation_step", tolerance: tolerance, step: -1}
}

func (r *Relaxation) Name() string { return r.name }

func (r *Relaxation) Observe(s sim.Snapshot) {
	if r.step >= 0 || s.Temperature == 0 {
		return
	}
	for _, t := range s.Species {
		if t != 0 && math.Abs(t-s.Temperature)/s.Temperature > r.tolerance {
			return
		}
	}
	r.step = s.Step
}

func (r *Relaxation) Value() float64 {
	return float64(r.step)
}

func (r *Relaxation) Reset() {
	r.step = -1
}
