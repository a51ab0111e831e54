package metrics

import "github.com/san-kum/dsmcdb/internal/sim"

// AcceptanceRate is the fraction of trial pairs that collided, averaged
// over the observed steps. The initial snapshot is skipped.
type AcceptanceRate struct {
	name     string
	pairs    int
	accepted int
	samples  int
}

func NewAcceptanceRate(pairsPerStep int) *AcceptanceRate {
	return &AcceptanceRate{name: "acceptance_rate", pairs: pairsPerStep}
}

func (a *AcceptanceRate) Name() string { return a.name }

func (a *AcceptanceRate) Observe(s sim.Snapshot) {
	if s.Step == 0 {
		return
	}
	a.accepted += s.Accepted
	a.samples++
}

func (a *AcceptanceRate) Value() float64 {
	if a.samples == 0 || a.pairs == 0 {
		return 0
	}
	return float64(a.accepted) / float64(a.samples*a.pairs)
}

func (a *AcceptanceRate) Reset() {
	a.accepted = 0
	a.samples = 0
}
