package species

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/dsmcdb/internal/logging"
)

var (
	ErrUnknownSpecies = errors.New("species: unknown species")
	ErrNotFinalized   = errors.New("species: registry not finalized")
	ErrInvalidMass    = errors.New("species: mass must be finite and non-negative")
	ErrEmptyName      = errors.New("species: empty name")
)

// Species holds the properties of one particle type.
type Species struct {
	Name   string
	Mass   float64 // kg
	Charge int     // elementary charges
	Size   float64 // m
}

// Registry collects particle types and assigns dense indices once all of
// them are known. Indices are only valid after Finalize; adding a species
// afterwards invalidates them and bumps the version.
type Registry struct {
	list      []Species
	byName    map[string]int
	finalized bool
	version   int
	log       logging.Logger
}

func NewRegistry(log logging.Logger) *Registry {
	return &Registry{
		byName: make(map[string]int),
		log:    logging.OrNoOp(log),
	}
}

// Add registers s. A second species with the same name is ignored with a
// warning.
func (r *Registry) Add(s Species) error {
	if s.Name == "" {
		return ErrEmptyName
	}
	if math.IsNaN(s.Mass) || math.IsInf(s.Mass, 0) || s.Mass < 0 {
		return fmt.Errorf("%w: %s has mass %g", ErrInvalidMass, s.Name, s.Mass)
	}
	if _, ok := r.byName[s.Name]; ok {
		r.log.Warnf("species %q registered twice, keeping the first definition", s.Name)
		return nil
	}
	r.byName[s.Name] = len(r.list)
	r.list = append(r.list, s)
	r.finalized = false
	r.version++
	return nil
}

// Finalize sorts the species by mass, then name, and fixes their indices.
func (r *Registry) Finalize() {
	sort.SliceStable(r.list, func(i, j int) bool {
		if r.list[i].Mass != r.list[j].Mass {
			return r.list[i].Mass < r.list[j].Mass
		}
		return r.list[i].Name < r.list[j].Name
	})
	for i, s := range r.list {
		r.byName[s.Name] = i
	}
	r.finalized = true
}

func (r *Registry) Finalized() bool { return r.finalized }

// Version changes every time a species is added.
func (r *Registry) Version() int { return r.version }

func (r *Registry) Len() int { return len(r.list) }

// Index resolves a species name.
func (r *Registry) Index(name string) (int, error) {
	if !r.finalized {
		return 0, ErrNotFinalized
	}
	i, ok := r.byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSpecies, name)
	}
	return i, nil
}

// At returns the species with index i. It panics if i is out of range.
func (r *Registry) At(i int) Species { return r.list[i] }

// Mass is a shorthand used by the conservation helpers.
func (r *Registry) Mass(i int) float64 { return r.list[i].Mass }

// All returns a copy of the species in index order.
func (r *Registry) All() []Species {
	out := make([]Species, len(r.list))
	copy(out, r.list)
	return out
}
