// Package interaction binds species pairs to their reaction channels. An
// Equation is one channel, a Set holds every channel of one species pair
// and picks which of them (if any) fires, and a Table maps every pair of
// species to its Set.
package interaction

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/dsmcdb/internal/collision"
	"github.com/san-kum/dsmcdb/internal/crosssection"
	"github.com/san-kum/dsmcdb/internal/physics"
)

var (
	ErrBadEquation = errors.New("interaction: malformed equation")
	ErrStaleTable  = errors.New("interaction: species registry changed after the table was built")
)

// Resolver maps species names to indices and masses. *species.Registry
// implements it.
type Resolver interface {
	Index(name string) (int, error)
	Mass(i int) float64
}

// Term is a species with its multiplicity on one side of an equation.
type Term struct {
	Species int
	Count   int
}

// EquationSpec is the parsed data of one equation, before name resolution.
type EquationSpec struct {
	Equation     string // "e + Hg -> e + Hg+ + e"
	Section      string
	Collision    string // overrides the elastic/inelastic default
	Threshold    float64
	VSSParamInv  float64
	CrossSection crosssection.Spec
}

// Equation is one directed reaction channel.
type Equation struct {
	Label     string
	Section   string
	ReactantA int
	ReactantB int
	Products  []Term
	Mass      physics.ReducedMass
	Threshold float64 // J

	CrossSection crosssection.Model
	Collision    collision.Model
}

// thresholder is implemented by cross sections with an onset energy.
type thresholder interface {
	Threshold() float64
}

// NewEquation resolves spec against the species and builds its models. All
// errors name the equation.
func NewEquation(spec EquationSpec, species Resolver, opts crosssection.Options) (*Equation, error) {
	eq, err := newEquation(spec, species, opts)
	if err != nil {
		return nil, fmt.Errorf("equation %q: %w", spec.Equation, err)
	}
	return eq, nil
}

func newEquation(spec EquationSpec, species Resolver, opts crosssection.Options) (*Equation, error) {
	lhs, rhs, err := parseEquation(spec.Equation)
	if err != nil {
		return nil, err
	}
	reactants, err := resolve(lhs, species)
	if err != nil {
		return nil, err
	}
	products, err := resolve(rhs, species)
	if err != nil {
		return nil, err
	}

	pair := expand(reactants)
	if len(pair) != 2 {
		return nil, fmt.Errorf("%w: %d reactants, want 2", ErrBadEquation, len(pair))
	}
	massA, massB := species.Mass(pair[0]), species.Mass(pair[1])
	mu, err := physics.NewReducedMass(massA, massB)
	if err != nil {
		return nil, err
	}

	eq := &Equation{
		Label:     spec.Equation,
		Section:   spec.Section,
		ReactantA: pair[0],
		ReactantB: pair[1],
		Products:  products,
		Mass:      mu,
		Threshold: spec.Threshold,
	}

	if spec.CrossSection.Model == "" {
		return nil, fmt.Errorf("%w: missing cross-section model", ErrBadEquation)
	}
	eq.CrossSection, err = crosssection.New(spec.CrossSection, mu, opts)
	if err != nil {
		return nil, err
	}
	if t, ok := eq.CrossSection.(thresholder); ok && eq.Threshold == 0 {
		eq.Threshold = t.Threshold()
	}

	label := spec.Collision
	if label == "" {
		label = "inelastic"
		if eq.IsElastic() {
			label = "elastic"
		}
	}
	vss := spec.VSSParamInv
	if vss == 0 {
		vss = spec.CrossSection.VHS.VSSParamInv
	}
	cs := collision.Spec{
		Mass:        mu,
		MassA:       massA,
		MassB:       massB,
		VSSParamInv: vss,
		Threshold:   eq.Threshold,
	}
	for _, s := range expand(products) {
		cs.Products = append(cs.Products, collision.Product{Species: s, Mass: species.Mass(s)})
	}
	eq.Collision, err = collision.New(label, cs)
	if err != nil {
		return nil, err
	}
	return eq, nil
}

// IsElastic reports whether the reactants and products are the same
// multiset of species.
func (e *Equation) IsElastic() bool {
	counts := map[int]int{e.ReactantA: 1}
	counts[e.ReactantB]++
	for _, p := range e.Products {
		counts[p.Species] -= p.Count
	}
	for _, c := range counts {
		if c != 0 {
			return false
		}
	}
	return true
}

// Involves reports whether species appears on either side.
func (e *Equation) Involves(species int) bool {
	return e.HasInput(species) || e.HasOutput(species)
}

func (e *Equation) HasInput(species int) bool {
	return e.ReactantA == species || e.ReactantB == species
}

func (e *Equation) HasOutput(species int) bool {
	for _, p := range e.Products {
		if p.Species == species {
			return true
		}
	}
	return false
}

// Interact runs the collision model. a and b may come in either order; they
// are matched to the reactants by species.
func (e *Equation) Interact(a, b *physics.Particle, rng collision.Rand) ([]physics.Particle, error) {
	if a.Species != e.ReactantA && b.Species == e.ReactantA {
		a, b = b, a
	}
	if a.Species != e.ReactantA || b.Species != e.ReactantB {
		return nil, fmt.Errorf("%w: %q cannot collide species %d and %d", ErrBadEquation, e.Label, a.Species, b.Species)
	}
	return e.Collision.Interact(a, b, rng)
}

func (e *Equation) String() string { return e.Label }

// Reactants returns the reactant names of an equation string, one entry
// per multiplicity.
func Reactants(equation string) ([]string, error) {
	lhs, _, err := parseEquation(equation)
	if err != nil {
		return nil, fmt.Errorf("equation %q: %w", equation, err)
	}
	var names []string
	for _, t := range lhs {
		for k := 0; k < t.count; k++ {
			names = append(names, t.name)
		}
	}
	return names, nil
}

type namedTerm struct {
	name  string
	count int
}

// parseEquation splits "A + 2 B -> C" into its two sides. Terms are
// separated by a free-standing "+", so charged names like "Hg+" survive.
func parseEquation(s string) (lhs, rhs []namedTerm, err error) {
	sides := strings.Split(s, "->")
	if len(sides) != 2 {
		return nil, nil, fmt.Errorf("%w: expected exactly one \"->\"", ErrBadEquation)
	}
	if lhs, err = parseSide(sides[0]); err != nil {
		return nil, nil, err
	}
	if rhs, err = parseSide(sides[1]); err != nil {
		return nil, nil, err
	}
	return lhs, rhs, nil
}

func parseSide(s string) ([]namedTerm, error) {
	tokens := strings.Fields(s)
	var terms []namedTerm
	for i := 0; i < len(tokens); {
		t := namedTerm{count: 1}
		if n, err := strconv.Atoi(tokens[i]); err == nil && i+1 < len(tokens) && tokens[i+1] != "+" {
			if n < 1 {
				return nil, fmt.Errorf("%w: multiplicity %d", ErrBadEquation, n)
			}
			t.count = n
			i++
		}
		if tokens[i] == "+" {
			return nil, fmt.Errorf("%w: dangling \"+\" in %q", ErrBadEquation, strings.TrimSpace(s))
		}
		t.name = tokens[i]
		terms = append(terms, t)
		i++

		if i < len(tokens) {
			if tokens[i] != "+" {
				return nil, fmt.Errorf("%w: expected \"+\" before %q", ErrBadEquation, tokens[i])
			}
			i++
			if i == len(tokens) {
				return nil, fmt.Errorf("%w: dangling \"+\" in %q", ErrBadEquation, strings.TrimSpace(s))
			}
		}
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("%w: empty side", ErrBadEquation)
	}
	return terms, nil
}

func resolve(terms []namedTerm, species Resolver) ([]Term, error) {
	out := make([]Term, 0, len(terms))
	for _, t := range terms {
		idx, err := species.Index(t.name)
		if err != nil {
			return nil, err
		}
		out = append(out, Term{Species: idx, Count: t.count})
	}
	return out, nil
}

// expand lists every species once per multiplicity, in written order.
func expand(terms []Term) []int {
	var out []int
	for _, t := range terms {
		for k := 0; k < t.Count; k++ {
			out = append(out, t.Species)
		}
	}
	return out
}
