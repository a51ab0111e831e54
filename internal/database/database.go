// Package database reads particle and equation definitions from YAML or
// TOML documents and hands them to the core as resolved species and
// equation specs with SI values.
package database

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/phil-mansfield/table"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/dsmcdb/internal/crosssection"
	"github.com/san-kum/dsmcdb/internal/interaction"
	"github.com/san-kum/dsmcdb/internal/logging"
	"github.com/san-kum/dsmcdb/internal/physics"
	"github.com/san-kum/dsmcdb/internal/species"
)

var (
	ErrNoParticles = errors.New("database: no particles defined")
	ErrBadPoints   = errors.New("database: invalid tabulated data")
)

type document struct {
	Particles []map[string]any `yaml:"particles" toml:"particles"`
	Equations []equationDoc    `yaml:"equations" toml:"equations"`
}

type equationDoc struct {
	Equation     string          `yaml:"equation" toml:"equation"`
	Section      string          `yaml:"section" toml:"section"`
	Collision    string          `yaml:"collision" toml:"collision"`
	Threshold    float64         `yaml:"threshold" toml:"threshold"`
	VSSParamInv  float64         `yaml:"vss_param_inv" toml:"vss_param_inv"`
	CrossSection crossSectionDoc `yaml:"cross_section" toml:"cross_section"`
}

type crossSectionDoc struct {
	Model string  `yaml:"model" toml:"model"`
	Value float64 `yaml:"value" toml:"value"`

	VHS crosssection.VHSParams `yaml:"vhs" toml:"vhs"`

	// tabulated: inline points or a column file
	Points     [][]float64 `yaml:"points" toml:"points"`
	File       string      `yaml:"file" toml:"file"`
	Columns    []int       `yaml:"columns" toml:"columns"`
	Axis       string      `yaml:"axis" toml:"axis"` // velocity (default) or energy
	XScale     float64     `yaml:"x_scale" toml:"x_scale"`
	SigmaScale float64     `yaml:"sigma_scale" toml:"sigma_scale"`

	Shells     []crosssection.LotzShell `yaml:"shells" toml:"shells"`
	Components []crossSectionDoc        `yaml:"components" toml:"components"`
}

// Database is a loaded document. Species is finalized; Specs still refer to
// species by name.
type Database struct {
	Path    string
	Species *species.Registry
	Specs   []interaction.EquationSpec
}

// Load reads path, registers and finalizes its particles and converts its
// equations. Tabulated files are resolved relative to path.
func Load(path string, log logging.Logger) (*Database, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc document
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		_, err = toml.Decode(string(data), &doc)
	} else {
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("database %s: %w", path, err)
	}
	db, err := build(doc, filepath.Dir(path), log)
	if err != nil {
		return nil, fmt.Errorf("database %s: %w", path, err)
	}
	db.Path = path
	return db, nil
}

func build(doc document, dir string, log logging.Logger) (*Database, error) {
	if len(doc.Particles) == 0 {
		return nil, ErrNoParticles
	}
	reg := species.NewRegistry(log)
	for i, raw := range doc.Particles {
		s, err := species.FromMap(raw)
		if err != nil {
			return nil, fmt.Errorf("particle %d: %w", i, err)
		}
		if err := reg.Add(s); err != nil {
			return nil, err
		}
	}
	reg.Finalize()

	db := &Database{Species: reg}
	for _, ed := range doc.Equations {
		mu, err := reducedMass(ed.Equation, reg)
		if err != nil {
			return nil, err
		}
		cs, err := ed.CrossSection.spec(dir, mu)
		if err != nil {
			return nil, fmt.Errorf("equation %q: %w", ed.Equation, err)
		}
		db.Specs = append(db.Specs, interaction.EquationSpec{
			Equation:     ed.Equation,
			Section:      ed.Section,
			Collision:    ed.Collision,
			Threshold:    ed.Threshold,
			VSSParamInv:  ed.VSSParamInv,
			CrossSection: cs,
		})
	}
	return db, nil
}

// reducedMass is needed before the equation is built, to convert energy
// axes.
func reducedMass(equation string, reg *species.Registry) (physics.ReducedMass, error) {
	names, err := interaction.Reactants(equation)
	if err != nil {
		return physics.ReducedMass{}, err
	}
	if len(names) != 2 {
		return physics.ReducedMass{}, fmt.Errorf("equation %q: %w: %d reactants, want 2", equation, interaction.ErrBadEquation, len(names))
	}
	var m [2]float64
	for i, name := range names {
		idx, err := reg.Index(name)
		if err != nil {
			return physics.ReducedMass{}, fmt.Errorf("equation %q: %w", equation, err)
		}
		m[i] = reg.Mass(idx)
	}
	return physics.NewReducedMass(m[0], m[1])
}

func (d crossSectionDoc) spec(dir string, mu physics.ReducedMass) (crosssection.Spec, error) {
	spec := crosssection.Spec{
		Model:    d.Model,
		Constant: d.Value,
		VHS:      d.VHS,
		Shells:   d.Shells,
	}
	for _, c := range d.Components {
		sub, err := c.spec(dir, mu)
		if err != nil {
			return spec, err
		}
		spec.Components = append(spec.Components, sub)
	}
	if d.Model != "tabulated" {
		return spec, nil
	}

	pts, err := d.points(dir)
	if err != nil {
		return spec, err
	}
	xScale, sScale := orOne(d.XScale), orOne(d.SigmaScale)
	switch d.Axis {
	case "", "velocity":
		for i := range pts {
			pts[i].V *= xScale
			pts[i].Sigma *= sScale
		}
	case "energy":
		if !mu.IsSet() {
			return spec, fmt.Errorf("%w: energy axis needs a finite reduced mass", ErrBadPoints)
		}
		for i := range pts {
			pts[i].V = mu.SpeedFromEnergy(pts[i].V * xScale)
			pts[i].Sigma *= sScale
		}
	default:
		return spec, fmt.Errorf("%w: unknown axis %q", ErrBadPoints, d.Axis)
	}
	spec.Points = pts
	return spec, nil
}

func (d crossSectionDoc) points(dir string) ([]crosssection.Point, error) {
	if d.File != "" && len(d.Points) > 0 {
		return nil, fmt.Errorf("%w: both points and file given", ErrBadPoints)
	}
	if d.File == "" {
		pts := make([]crosssection.Point, len(d.Points))
		for i, row := range d.Points {
			if len(row) != 2 {
				return nil, fmt.Errorf("%w: point %d has %d values", ErrBadPoints, i, len(row))
			}
			pts[i] = crosssection.Point{V: row[0], Sigma: row[1]}
		}
		return pts, nil
	}

	file := d.File
	if !filepath.IsAbs(file) {
		file = filepath.Join(dir, file)
	}
	cols := d.Columns
	if len(cols) == 0 {
		cols = []int{0, 1}
	}
	if len(cols) != 2 {
		return nil, fmt.Errorf("%w: columns must name 2 columns, got %d", ErrBadPoints, len(cols))
	}
	data, err := table.ReadTable(file, cols, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadPoints, file, err)
	}
	pts := make([]crosssection.Point, len(data[0]))
	for i := range pts {
		pts[i] = crosssection.Point{V: data[0][i], Sigma: data[1][i]}
	}
	return pts, nil
}

func orOne(v float64) float64 {
	if v == 0 || math.IsNaN(v) {
		return 1
	}
	return v
}

// Equations builds every spec against the loaded species. The first
// failure aborts the load.
func (db *Database) Equations(opts crosssection.Options) ([]*interaction.Equation, error) {
	eqs := make([]*interaction.Equation, 0, len(db.Specs))
	for _, s := range db.Specs {
		eq, err := interaction.NewEquation(s, db.Species, opts)
		if err != nil {
			return nil, err
		}
		eqs = append(eqs, eq)
	}
	return eqs, nil
}
