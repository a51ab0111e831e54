package crosssection

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/san-kum/dsmcdb/internal/logging"
)

// Point is one tabulated (relative speed, cross section) pair.
type Point struct {
	V     float64 // m/s
	Sigma float64 // m²
}

// Search range of the tail fit parameter b.
const (
	tailBMax  = 100.0
	tailBStep = 0.01
)

type tailMode int

const (
	tailNone tailMode = iota // queries past the last point are domain errors
	tailZero                 // the data already decayed to zero
	tailFit                  // f(x) = C·b·ln(ax+b)/(ax+b)
)

// tail is the asymptotic continuation fitted to the last three points,
// with x = v² - v0² and v0 the last tabulated speed.
type tail struct {
	mode    tailMode
	c, a, b float64
	v0sq    float64
}

func (t tail) eval(v float64) float64 {
	y := t.a*(v*v-t.v0sq) + t.b
	return t.c * t.b * math.Log(y) / y
}

// Tabulated interpolates linearly between sorted points, returns zero below
// the first point and follows a fitted ln(E)/E decay above the last one.
type Tabulated struct {
	points []Point
	tail   tail
	log    logging.Logger
	warned sync.Once
}

// NewTabulated copies and sorts points. Speeds must be unique.
func NewTabulated(points []Point, opts Options) (*Tabulated, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no points", ErrBadTable)
	}
	pts := make([]Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool { return pts[i].V < pts[j].V })

	for i, p := range pts {
		if math.IsNaN(p.V) || math.IsNaN(p.Sigma) || math.IsInf(p.V, 0) || math.IsInf(p.Sigma, 0) {
			return nil, fmt.Errorf("%w: non-finite point (%g, %g)", ErrBadTable, p.V, p.Sigma)
		}
		if p.V < 0 || p.Sigma < 0 {
			return nil, fmt.Errorf("%w: negative point (%g, %g)", ErrBadTable, p.V, p.Sigma)
		}
		if i > 0 && pts[i-1].V == p.V {
			return nil, fmt.Errorf("%w: duplicate speed %g", ErrBadTable, p.V)
		}
	}

	t := &Tabulated{points: pts, log: logging.OrNoOp(opts.Logger)}
	if opts.Extrapolate {
		t.tail = fitTail(pts)
	}
	return t, nil
}

func (t *Tabulated) Name() string { return "tabulated" }

// Points returns a copy of the sorted data.
func (t *Tabulated) Points() []Point {
	out := make([]Point, len(t.points))
	copy(out, t.points)
	return out
}

// Extrapolates reports whether queries past the last point use a fitted
// tail (as opposed to a zero tail or a domain error).
func (t *Tabulated) Extrapolates() bool { return t.tail.mode == tailFit }

func (t *Tabulated) Sigma(v float64) (float64, error) {
	if math.IsNaN(v) || v < 0 {
		return 0, fmt.Errorf("%w: speed %g", ErrBadParameter, v)
	}
	first, last := t.points[0], t.points[len(t.points)-1]
	switch {
	case v < first.V:
		return 0, nil
	case v > last.V:
		return t.extrapolate(v)
	}

	// first index with V >= v; i > 0 unless v hits the first point exactly
	i := sort.Search(len(t.points), func(i int) bool { return t.points[i].V >= v })
	hi := t.points[i]
	if hi.V == v {
		return hi.Sigma, nil
	}
	lo := t.points[i-1]
	w := (v - lo.V) / (hi.V - lo.V)
	return lo.Sigma + w*(hi.Sigma-lo.Sigma), nil
}

func (t *Tabulated) extrapolate(v float64) (float64, error) {
	last := t.points[len(t.points)-1]
	switch t.tail.mode {
	case tailZero:
		return 0, nil
	case tailFit:
		t.warned.Do(func() {
			t.log.Warnf("tabulated cross section extrapolated past v=%g (query v=%g)", last.V, v)
		})
		return t.tail.eval(v), nil
	}
	if last.Sigma == 0 {
		return 0, nil
	}
	return 0, &DomainError{V: v, Min: t.points[0].V, Max: last.V}
}

// MaxSigmaV scans the tabulated points below vMax and the value at vMax
// itself, so a maximum between the last sample and vMax is not missed.
func (t *Tabulated) MaxSigmaV(vMax float64) (SigmaV, error) {
	var best SigmaV
	for _, p := range t.points {
		if p.V >= vMax {
			break
		}
		if prod := p.V * p.Sigma; prod > best.Product {
			best = SigmaV{Product: prod, Velocity: p.V}
		}
	}
	s, err := t.Sigma(vMax)
	if err != nil {
		return best, err
	}
	if prod := s * vMax; prod > best.Product {
		best = SigmaV{Product: prod, Velocity: vMax}
	}
	return best, nil
}

// fitTail fits f(x) = C·b·ln(ax+b)/(ax+b), x = v²-v0², to the last three
// points. f(0) and f'(0) match the last point and the last secant slope;
// b is then picked on a fixed grid over (e, 100] to best reproduce the
// third-to-last point.
func fitTail(pts []Point) tail {
	n := len(pts)
	if n < 3 {
		return tail{mode: tailNone}
	}
	last, prev, prev2 := pts[n-1], pts[n-2], pts[n-3]
	if last.Sigma == 0 {
		// C = 0; covers the "last two points are zero" case
		return tail{mode: tailZero}
	}

	v0sq := last.V * last.V
	slope := (last.Sigma - prev.Sigma) / (v0sq - prev.V*prev.V)
	if !(slope < 0) {
		return tail{mode: tailNone}
	}

	x2 := prev2.V*prev2.V - v0sq
	best := tail{mode: tailNone}
	bestResidual := math.Inf(1)

	for k := 1; ; k++ {
		b := math.E + float64(k)*tailBStep
		if b > tailBMax {
			break
		}
		lnb := math.Log(b)
		c := last.Sigma / lnb
		a := slope * b * lnb / (last.Sigma * (1 - lnb))
		y := a*x2 + b
		if y <= 0 {
			continue
		}
		r := math.Abs(c*b*math.Log(y)/y - prev2.Sigma)
		if r < bestResidual {
			bestResidual = r
			best = tail{mode: tailFit, c: c, a: a, b: b, v0sq: v0sq}
		}
	}
	return best
}
