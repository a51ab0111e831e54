// Package filter selects which loaded equations enter the interaction
// table. Filters are predicates combined with And, Or and Not.
package filter

import (
	"fmt"
	"strings"

	"github.com/san-kum/dsmcdb/internal/config"
	"github.com/san-kum/dsmcdb/internal/interaction"
)

// Filter reports whether an equation is kept.
type Filter func(eq *interaction.Equation) bool

func All() Filter {
	return func(*interaction.Equation) bool { return true }
}

func Elastic() Filter {
	return func(eq *interaction.Equation) bool { return eq.IsElastic() }
}

func Section(name string) Filter {
	return func(eq *interaction.Equation) bool { return eq.Section == name }
}

// Label keeps equations whose text contains substr.
func Label(substr string) Filter {
	return func(eq *interaction.Equation) bool { return strings.Contains(eq.Label, substr) }
}

func HasInput(species int) Filter {
	return func(eq *interaction.Equation) bool { return eq.HasInput(species) }
}

func HasOutput(species int) Filter {
	return func(eq *interaction.Equation) bool { return eq.HasOutput(species) }
}

// And of no filters keeps everything.
func And(fs ...Filter) Filter {
	return func(eq *interaction.Equation) bool {
		for _, f := range fs {
			if !f(eq) {
				return false
			}
		}
		return true
	}
}

// Or of no filters keeps nothing.
func Or(fs ...Filter) Filter {
	return func(eq *interaction.Equation) bool {
		for _, f := range fs {
			if f(eq) {
				return true
			}
		}
		return false
	}
}

func Not(f Filter) Filter {
	return func(eq *interaction.Equation) bool { return !f(eq) }
}

// Apply returns the kept equations in their original order.
func Apply(eqs []*interaction.Equation, f Filter) []*interaction.Equation {
	var out []*interaction.Equation
	for _, eq := range eqs {
		if f(eq) {
			out = append(out, eq)
		}
	}
	return out
}

// PreferSection keeps, for every unordered reactant pair, only the
// equations of the first listed section that pair has. Pairs with none of
// the listed sections are left alone.
func PreferSection(eqs []*interaction.Equation, sections ...string) []*interaction.Equation {
	if len(sections) == 0 {
		return eqs
	}
	rank := make(map[string]int, len(sections))
	for i, s := range sections {
		if _, ok := rank[s]; !ok {
			rank[s] = i
		}
	}

	type pair struct{ a, b int }
	key := func(eq *interaction.Equation) pair {
		if eq.ReactantA > eq.ReactantB {
			return pair{eq.ReactantB, eq.ReactantA}
		}
		return pair{eq.ReactantA, eq.ReactantB}
	}

	best := make(map[pair]int)
	for _, eq := range eqs {
		r, ok := rank[eq.Section]
		if !ok {
			continue
		}
		if cur, seen := best[key(eq)]; !seen || r < cur {
			best[key(eq)] = r
		}
	}

	var out []*interaction.Equation
	for _, eq := range eqs {
		want, ok := best[key(eq)]
		if !ok {
			out = append(out, eq)
			continue
		}
		if r, listed := rank[eq.Section]; listed && r == want {
			out = append(out, eq)
		}
	}
	return out
}

// Resolver maps species names to indices.
type Resolver interface {
	Index(name string) (int, error)
}

// FromConfig builds the filter described by a run configuration. Section
// preference is not a predicate and is applied separately by Select.
func FromConfig(cfg config.FilterConfig, species Resolver) (Filter, error) {
	fs := []Filter{}
	if cfg.ElasticOnly {
		fs = append(fs, Elastic())
	}
	if len(cfg.Sections) > 0 {
		alts := make([]Filter, len(cfg.Sections))
		for i, s := range cfg.Sections {
			alts[i] = Section(s)
		}
		fs = append(fs, Or(alts...))
	}
	if len(cfg.Labels) > 0 {
		alts := make([]Filter, len(cfg.Labels))
		for i, l := range cfg.Labels {
			alts[i] = Label(l)
		}
		fs = append(fs, Or(alts...))
	}
	for _, section := range cfg.Drop {
		fs = append(fs, Not(Section(section)))
	}
	for _, name := range cfg.Exclude {
		idx, err := species.Index(name)
		if err != nil {
			return nil, fmt.Errorf("filter: exclude: %w", err)
		}
		fs = append(fs, Not(Or(HasInput(idx), HasOutput(idx))))
	}
	return And(fs...), nil
}

// Select applies the configured predicates, then the section preference.
func Select(eqs []*interaction.Equation, cfg config.FilterConfig, species Resolver) ([]*interaction.Equation, error) {
	f, err := FromConfig(cfg, species)
	if err != nil {
		return nil, err
	}
	return PreferSection(Apply(eqs, f), cfg.Prefer...), nil
}
