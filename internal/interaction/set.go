package interaction

import (
	"github.com/san-kum/dsmcdb/internal/collision"
	"github.com/san-kum/dsmcdb/internal/logging"
)

// Majorant is the running upper bound of Σσ·v used to reject trial pairs.
// It only ever grows. A Majorant must have a single writer at a time; the
// usual owner is one simulation cell.
type Majorant struct {
	Value float64
}

// Outcome is the result of one selection. Index is -1 when nothing
// happened.
type Outcome struct {
	Index int
	Sigma float64 // σ of the chosen channel, m²
}

var none = Outcome{Index: -1}

func (o Outcome) Occurred() bool { return o.Index >= 0 }

// Set holds every channel of one unordered species pair. Channel order is
// the load order and breaks ties.
type Set struct {
	a, b      int
	equations []*Equation
	log       logging.Logger
}

func newSet(a, b int, log logging.Logger) *Set {
	return &Set{a: a, b: b, log: log}
}

// Pair returns the species indices, lower index first.
func (s *Set) Pair() (int, int) { return s.a, s.b }

func (s *Set) Len() int { return len(s.equations) }

func (s *Set) Equation(i int) *Equation { return s.equations[i] }

// Equations returns a copy of the channel list.
func (s *Set) Equations() []*Equation {
	out := make([]*Equation, len(s.equations))
	copy(out, s.equations)
	return out
}

// SelectOutcome decides whether a trial pair with relative speed vRel
// interacts and through which channel:
//
//  1. evaluate σᵢ(vRel) for every channel
//  2. reject when r·m > Σσᵢ·vRel, with the majorant as it was on entry
//  3. on acceptance raise m to max(σᵢ)·vRel if that is larger
//  4. pick the first channel whose cumulative σ exceeds U·Σσᵢ
//
// A domain error from a channel's cross section aborts the trial with no
// outcome and is returned for the caller to count or log.
func (s *Set) SelectOutcome(m *Majorant, vRel float64, rng collision.Rand) (Outcome, error) {
	if len(s.equations) == 0 {
		return none, nil
	}

	// most pairs have a handful of channels; keep those off the heap
	var buf [8]float64
	sigmas := buf[:0]
	total, max := 0.0, 0.0
	for _, eq := range s.equations {
		sigma, err := eq.CrossSection.Sigma(vRel)
		if err != nil {
			return none, err
		}
		sigmas = append(sigmas, sigma)
		total += sigma
		if sigma > max {
			max = sigma
		}
	}
	if total == 0 {
		return none, nil
	}

	if rng.Float64()*m.Value > total*vRel {
		return none, nil
	}
	if max*vRel > m.Value {
		m.Value = max * vRel
	}

	r := rng.Float64() * total
	sum := 0.0
	for i, sigma := range sigmas {
		sum += sigma
		if sum > r {
			return Outcome{Index: i, Sigma: sigma}, nil
		}
	}

	s.log.Errorf("no channel selected for pair (%d, %d): r=%g total=%g over %d channels", s.a, s.b, r, total, len(sigmas))
	return none, nil
}

// FindMaxSigmaVProduct returns the sum of each channel's max σ·v below
// vMax. It bounds the joint maximum from above, loosely when the channels
// peak at different speeds.
func (s *Set) FindMaxSigmaVProduct(vMax float64) (float64, error) {
	total := 0.0
	for _, eq := range s.equations {
		sv, err := eq.CrossSection.MaxSigmaV(vMax)
		if err != nil {
			return 0, err
		}
		total += sv.Product
	}
	return total, nil
}
