package crosssection

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/dsmcdb/internal/logging"
	"github.com/san-kum/dsmcdb/internal/physics"
)

var (
	// ErrOutOfDomain is returned by tabulated models queried past their last
	// point when no extrapolation is available. Callers skip the attempt.
	ErrOutOfDomain = errors.New("crosssection: value outside tabulated domain")

	ErrUnknownModel = errors.New("crosssection: unknown cross-section model")
	ErrBadTable     = errors.New("crosssection: invalid tabulated data")
	ErrBadParameter = errors.New("crosssection: invalid parameter")
)

// DomainError carries the query that fell outside a tabulated model.
type DomainError struct {
	V        float64
	Min, Max float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%v: v=%g outside [%g, %g] and extrapolation unavailable", ErrOutOfDomain, e.V, e.Min, e.Max)
}

func (e *DomainError) Unwrap() error { return ErrOutOfDomain }

// SigmaV is the result of a max(σ·v) search.
type SigmaV struct {
	Product  float64 // max σ(v)·v
	Velocity float64 // argmax
}

// Model evaluates a cross section as a function of relative speed.
type Model interface {
	Name() string
	// Sigma returns σ(v) in m² for v ≥ 0.
	Sigma(v float64) (float64, error)
	// MaxSigmaV returns max σ(v)·v over [0, vMax].
	MaxSigmaV(vMax float64) (SigmaV, error)
}

// Options are shared by every model built from data.
type Options struct {
	// Extrapolate enables the asymptotic tail of tabulated data.
	Extrapolate bool
	Logger      logging.Logger
}

func DefaultOptions() Options {
	return Options{Extrapolate: true, Logger: logging.NewNoOp()}
}

// Spec is the parsed description of a cross-section model, as handed over
// by the data layer. Only the fields of the selected model are read.
type Spec struct {
	Model      string
	Constant   float64
	VHS        VHSParams
	Points     []Point
	Shells     []LotzShell
	Components []Spec
}

type constructor func(spec Spec, mu physics.ReducedMass, opts Options) (Model, error)

var registry map[string]constructor

// filled in init: the averaged constructor calls New.
func init() {
	registry = map[string]constructor{
		"constant": func(s Spec, _ physics.ReducedMass, _ Options) (Model, error) {
			return NewConstant(s.Constant)
		},
		"vhs": func(s Spec, mu physics.ReducedMass, _ Options) (Model, error) {
			return NewVHS(s.VHS, mu)
		},
		"tabulated": func(s Spec, _ physics.ReducedMass, opts Options) (Model, error) {
			return NewTabulated(s.Points, opts)
		},
		"averaged": func(s Spec, mu physics.ReducedMass, opts Options) (Model, error) {
			if len(s.Components) != 2 {
				return nil, fmt.Errorf("%w: averaged model needs 2 components, got %d", ErrBadParameter, len(s.Components))
			}
			first, err := New(s.Components[0], mu, opts)
			if err != nil {
				return nil, err
			}
			second, err := New(s.Components[1], mu, opts)
			if err != nil {
				return nil, err
			}
			return NewAveraged(first, second), nil
		},
		"lotz": func(s Spec, mu physics.ReducedMass, _ Options) (Model, error) {
			return NewLotz(s.Shells, mu)
		},
	}
}

// New builds the model named by spec.Model.
func New(spec Spec, mu physics.ReducedMass, opts Options) (Model, error) {
	if opts.Logger == nil {
		opts.Logger = logging.NewNoOp()
	}
	fn, ok := registry[spec.Model]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, spec.Model)
	}
	return fn(spec, mu, opts)
}

// Labels lists the registered model names.
func Labels() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// monotonicMax is the max(σ·v) of a model whose product grows with v.
func monotonicMax(m Model, vMax float64) (SigmaV, error) {
	s, err := m.Sigma(vMax)
	if err != nil {
		return SigmaV{}, err
	}
	return SigmaV{Product: s * vMax, Velocity: vMax}, nil
}
