package interaction

import (
	"fmt"

	"github.com/san-kum/dsmcdb/internal/logging"
)

// Registry is the view of the species registry a Table needs.
type Registry interface {
	Len() int
	Version() int
	Finalized() bool
}

// Table is the symmetric species × species matrix of Sets. Only the upper
// triangle is stored, so Get(i, j) and Get(j, i) return the same *Set.
// A Table is read-only after Build.
type Table struct {
	n       int
	sets    []*Set
	version int
}

// Build creates one Set per unordered pair of species and distributes eqs
// over them in order. Pairs without equations get an empty Set.
func Build(reg Registry, eqs []*Equation, log logging.Logger) (*Table, error) {
	if !reg.Finalized() {
		return nil, fmt.Errorf("interaction: build table: species registry not finalized")
	}
	log = logging.OrNoOp(log)
	n := reg.Len()
	t := &Table{n: n, sets: make([]*Set, n*(n+1)/2), version: reg.Version()}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			t.sets[t.index(i, j)] = newSet(i, j, log)
		}
	}

	for _, eq := range eqs {
		a, b := eq.ReactantA, eq.ReactantB
		if a < 0 || b < 0 || a >= n || b >= n {
			return nil, fmt.Errorf("interaction: build table: %q references species outside [0, %d)", eq.Label, n)
		}
		set := t.Get(a, b)
		set.equations = append(set.equations, eq)
	}
	log.Debugf("interaction table: %d species, %d pairs, %d equations", n, len(t.sets), len(eqs))
	return t, nil
}

// index maps i <= j to the flat upper-triangular position.
func (t *Table) index(i, j int) int {
	return i*t.n - i*(i-1)/2 + (j - i)
}

// PairIndex returns the dense index of the unordered pair, in [0, Size()).
func (t *Table) PairIndex(i, j int) int {
	if i > j {
		i, j = j, i
	}
	return t.index(i, j)
}

// Get returns the Set of species i and j in either order, or nil when an
// index is out of range.
func (t *Table) Get(i, j int) *Set {
	if i < 0 || j < 0 || i >= t.n || j >= t.n {
		return nil
	}
	return t.sets[t.PairIndex(i, j)]
}

// Species is the number of species the table was built for.
func (t *Table) Species() int { return t.n }

// Size is the number of unordered pairs.
func (t *Table) Size() int { return len(t.sets) }

// Sets returns every Set in pair-index order.
func (t *Table) Sets() []*Set {
	out := make([]*Set, len(t.sets))
	copy(out, t.sets)
	return out
}

// Stale reports whether species were added since the table was built.
func (t *Table) Stale(reg Registry) bool {
	return reg.Version() != t.version || reg.Len() != t.n
}

func (t *Table) Check(reg Registry) error {
	if t.Stale(reg) {
		return fmt.Errorf("%w: built for %d species, registry has %d", ErrStaleTable, t.n, reg.Len())
	}
	return nil
}
