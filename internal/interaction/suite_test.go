package interaction_test

import (
	"fmt"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dsmcdb/internal/crosssection"
	"github.com/san-kum/dsmcdb/internal/interaction"
	"github.com/san-kum/dsmcdb/internal/physics"
	"github.com/san-kum/dsmcdb/internal/species"
)

func TestInteraction(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Interaction Suite")
}

const (
	idxE = iota
	idxAr
	idxHgIon
	idxHg
)

var hgMass = 200.59 * physics.AtomicMassUnit

// newRegistry returns e, Ar, Hg+ and Hg, finalized in that index order.
func newRegistry() *species.Registry {
	reg := species.NewRegistry(nil)
	for _, s := range []species.Species{
		{Name: "Hg", Mass: hgMass},
		{Name: "e", Mass: physics.ElectronMass, Charge: -1},
		{Name: "Hg+", Mass: hgMass - physics.ElectronMass, Charge: 1},
		{Name: "Ar", Mass: 39.948 * physics.AtomicMassUnit},
	} {
		Expect(reg.Add(s)).To(Succeed())
	}
	reg.Finalize()
	return reg
}

func constant(sigma float64) crosssection.Spec {
	return crosssection.Spec{Model: "constant", Constant: sigma}
}

func mustEquation(reg *species.Registry, spec interaction.EquationSpec) *interaction.Equation {
	GinkgoHelper()
	eq, err := interaction.NewEquation(spec, reg, crosssection.DefaultOptions())
	Expect(err).NotTo(HaveOccurred())
	return eq
}

// seqRand replays fixed uniforms.
type seqRand struct {
	values []float64
	i      int
}

func (r *seqRand) Float64() float64 {
	v := r.values[r.i%len(r.values)]
	r.i++
	return v
}

// recordLogger keeps error lines.
type recordLogger struct {
	errors []string
}

func (l *recordLogger) Debugf(string, ...any) {}
func (l *recordLogger) Infof(string, ...any)  {}
func (l *recordLogger) Warnf(string, ...any)  {}
func (l *recordLogger) Errorf(format string, v ...any) {
	l.errors = append(l.errors, fmt.Sprintf(format, v...))
}
