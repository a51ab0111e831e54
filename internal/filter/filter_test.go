package filter_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/san-kum/dsmcdb/internal/config"
	"github.com/san-kum/dsmcdb/internal/crosssection"
	"github.com/san-kum/dsmcdb/internal/filter"
	"github.com/san-kum/dsmcdb/internal/interaction"
	"github.com/san-kum/dsmcdb/internal/physics"
	"github.com/san-kum/dsmcdb/internal/species"
)

type fixture struct {
	reg *species.Registry
	eqs []*interaction.Equation
}

// newFixture loads five equations:
//
//	0 Ar + Ar -> Ar + Ar      section vhs
//	1 Ar + Ar -> Ar + Ar      section vss
//	2 e + Hg -> e + Hg        section elastic
//	3 e + Hg -> e + Hg+ + e   section ionization
//	4 e + Ar -> e + Ar        no section
func newFixture(t *testing.T) fixture {
	t.Helper()
	reg := species.NewRegistry(nil)
	hg := 200.59 * physics.AtomicMassUnit
	require.NoError(t, reg.Add(species.Species{Name: "e", Mass: physics.ElectronMass}))
	require.NoError(t, reg.Add(species.Species{Name: "Ar", Mass: 39.948 * physics.AtomicMassUnit}))
	require.NoError(t, reg.Add(species.Species{Name: "Hg", Mass: hg}))
	require.NoError(t, reg.Add(species.Species{Name: "Hg+", Mass: hg - physics.ElectronMass}))
	reg.Finalize()

	cs := crosssection.Spec{Model: "constant", Constant: 1e-19}
	specs := []interaction.EquationSpec{
		{Equation: "Ar + Ar -> Ar + Ar", Section: "vhs", CrossSection: cs},
		{Equation: "Ar + Ar -> Ar + Ar", Section: "vss", Collision: "vss", VSSParamInv: 0.7, CrossSection: cs},
		{Equation: "e + Hg -> e + Hg", Section: "elastic", CrossSection: cs},
		{Equation: "e + Hg -> e + Hg+ + e", Section: "ionization", Threshold: 1.67e-18, CrossSection: cs},
		{Equation: "e + Ar -> e + Ar", CrossSection: cs},
	}
	f := fixture{reg: reg}
	for _, s := range specs {
		eq, err := interaction.NewEquation(s, reg, crosssection.DefaultOptions())
		require.NoError(t, err)
		f.eqs = append(f.eqs, eq)
	}
	return f
}

func (f fixture) idx(t *testing.T, name string) int {
	i, err := f.reg.Index(name)
	require.NoError(t, err)
	return i
}

func (f fixture) pick(indices ...int) []*interaction.Equation {
	out := make([]*interaction.Equation, len(indices))
	for i, k := range indices {
		out[i] = f.eqs[k]
	}
	return out
}

func TestPredicates(t *testing.T) {
	f := newFixture(t)
	ion := f.idx(t, "Hg+")
	hg := f.idx(t, "Hg")

	tests := []struct {
		name   string
		filter filter.Filter
		want   []int
	}{
		{"all", filter.All(), []int{0, 1, 2, 3, 4}},
		{"elastic", filter.Elastic(), []int{0, 1, 2, 4}},
		{"section", filter.Section("vss"), []int{1}},
		{"label", filter.Label("Hg+"), []int{3}},
		{"input", filter.HasInput(hg), []int{2, 3}},
		{"output", filter.HasOutput(ion), []int{3}},
		{"and", filter.And(filter.HasInput(hg), filter.Elastic()), []int{2}},
		{"or", filter.Or(filter.Section("vhs"), filter.Section("ionization")), []int{0, 3}},
		{"not", filter.Not(filter.Elastic()), []int{3}},
		{"empty and", filter.And(), []int{0, 1, 2, 3, 4}},
		{"empty or", filter.Or(), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filter.Apply(f.eqs, tt.filter)
			if tt.want == nil {
				require.Empty(t, got)
				return
			}
			require.Equal(t, f.pick(tt.want...), got)
		})
	}
}

func TestPreferSection(t *testing.T) {
	f := newFixture(t)

	got := filter.PreferSection(f.eqs, "vss", "vhs")
	require.Equal(t, f.pick(1, 2, 3, 4), got, "Ar-Ar keeps vss only, other pairs untouched")

	got = filter.PreferSection(f.eqs, "vhs", "vss")
	require.Equal(t, f.pick(0, 2, 3, 4), got)

	got = filter.PreferSection(f.eqs, "ionization")
	require.Equal(t, f.pick(0, 1, 3, 4), got, "e-Hg drops its elastic channel")

	require.Equal(t, f.eqs, filter.PreferSection(f.eqs))
}

func TestFromConfig(t *testing.T) {
	f := newFixture(t)

	cfg := config.FilterConfig{
		ElasticOnly: true,
		Exclude:     []string{"Ar"},
	}
	keep, err := filter.FromConfig(cfg, f.reg)
	require.NoError(t, err)
	require.Equal(t, f.pick(2), filter.Apply(f.eqs, keep))

	cfg = config.FilterConfig{Sections: []string{"vhs", "vss"}, Labels: []string{"Ar + Ar"}}
	keep, err = filter.FromConfig(cfg, f.reg)
	require.NoError(t, err)
	require.Equal(t, f.pick(0, 1), filter.Apply(f.eqs, keep))

	cfg = config.FilterConfig{Drop: []string{"vss", "ionization"}}
	keep, err = filter.FromConfig(cfg, f.reg)
	require.NoError(t, err)
	require.Equal(t, f.pick(0, 2, 4), filter.Apply(f.eqs, keep))

	_, err = filter.FromConfig(config.FilterConfig{Exclude: []string{"Xe"}}, f.reg)
	require.ErrorIs(t, err, species.ErrUnknownSpecies)
}

func TestSelect(t *testing.T) {
	f := newFixture(t)
	got, err := filter.Select(f.eqs, config.FilterConfig{Prefer: []string{"vss"}, Exclude: []string{"Hg+"}}, f.reg)
	require.NoError(t, err)
	require.Equal(t, f.pick(1, 2, 4), got)
}
