package interaction_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dsmcdb/internal/collision"
	"github.com/san-kum/dsmcdb/internal/crosssection"
	"github.com/san-kum/dsmcdb/internal/interaction"
	"github.com/san-kum/dsmcdb/internal/physics"
	"github.com/san-kum/dsmcdb/internal/species"
	"gonum.org/v1/gonum/spatial/r3"
)

var _ = Describe("Equation", func() {
	var reg *species.Registry

	BeforeEach(func() {
		reg = newRegistry()
	})

	Describe("elasticity", func() {
		It("treats identical reactants and products as elastic", func() {
			eq := mustEquation(reg, interaction.EquationSpec{Equation: "Ar + Ar -> Ar + Ar", CrossSection: constant(1e-19)})
			Expect(eq.IsElastic()).To(BeTrue())
			Expect(eq.Collision.Name()).To(Equal("elastic"))
		})

		It("accepts multiplicity prefixes", func() {
			eq := mustEquation(reg, interaction.EquationSpec{Equation: "2 Ar -> 2 Ar", CrossSection: constant(1e-19)})
			Expect(eq.IsElastic()).To(BeTrue())
			Expect(eq.ReactantA).To(Equal(idxAr))
			Expect(eq.ReactantB).To(Equal(idxAr))
		})

		It("treats ionization as inelastic", func() {
			eq := mustEquation(reg, interaction.EquationSpec{
				Equation:     "e + Hg -> e + Hg+ + e",
				Threshold:    10.44 * physics.ElectronVolt,
				CrossSection: constant(1e-20),
			})
			Expect(eq.IsElastic()).To(BeFalse())
			Expect(eq.Collision.Name()).To(Equal("inelastic"))
			Expect(eq.Products).To(Equal([]interaction.Term{
				{Species: idxE, Count: 1}, {Species: idxHgIon, Count: 1}, {Species: idxE, Count: 1},
			}))
		})

		It("lets an explicit collision label win", func() {
			eq := mustEquation(reg, interaction.EquationSpec{
				Equation:  "Ar + Ar -> Ar + Ar",
				Collision: "vss",
				CrossSection: crosssection.Spec{Model: "vhs", VHS: crosssection.VHSParams{
					CrossSection: 4.117e-19, TRef: 273, ViscTLaw: 0.81, VSSParamInv: 1 / 1.4,
				}},
			})
			Expect(eq.Collision.Name()).To(Equal("vss"))
		})
	})

	It("computes the reduced mass from the resolved reactants", func() {
		eq := mustEquation(reg, interaction.EquationSpec{Equation: "e + Hg -> e + Hg", CrossSection: constant(1e-20)})
		want, _ := physics.NewReducedMass(physics.ElectronMass, hgMass)
		Expect(eq.Mass).To(Equal(want))
	})

	It("takes the threshold from a Lotz cross section", func() {
		eq := mustEquation(reg, interaction.EquationSpec{
			Equation: "e + Hg -> e + Hg+ + e",
			CrossSection: crosssection.Spec{Model: "lotz", Shells: []crosssection.LotzShell{
				{Binding: 10.44 * physics.ElectronVolt, Electrons: 2, A: 4e-18 * physics.ElectronVolt * physics.ElectronVolt, B: 0.6, C: 0.56},
			}},
		})
		Expect(eq.Threshold).To(BeNumerically("~", 10.44*physics.ElectronVolt, 1e-30))
	})

	DescribeTable("load errors name the equation",
		func(spec interaction.EquationSpec, target error) {
			_, err := interaction.NewEquation(spec, reg, crosssection.DefaultOptions())
			Expect(err).To(MatchError(target))
			Expect(err.Error()).To(ContainSubstring(spec.Equation))
		},
		Entry("unknown species", interaction.EquationSpec{Equation: "Xe + Ar -> Xe + Ar", CrossSection: constant(1)}, species.ErrUnknownSpecies),
		Entry("one reactant", interaction.EquationSpec{Equation: "Ar -> Ar", CrossSection: constant(1)}, interaction.ErrBadEquation),
		Entry("three reactants", interaction.EquationSpec{Equation: "Ar + Ar + e -> Ar + Ar + e", CrossSection: constant(1)}, interaction.ErrBadEquation),
		Entry("missing arrow", interaction.EquationSpec{Equation: "Ar + Ar", CrossSection: constant(1)}, interaction.ErrBadEquation),
		Entry("dangling plus", interaction.EquationSpec{Equation: "Ar + -> Ar + Ar", CrossSection: constant(1)}, interaction.ErrBadEquation),
		Entry("missing cross section", interaction.EquationSpec{Equation: "Ar + Ar -> Ar + Ar"}, interaction.ErrBadEquation),
		Entry("unknown cross section", interaction.EquationSpec{Equation: "Ar + Ar -> Ar + Ar", CrossSection: crosssection.Spec{Model: "bogus"}}, crosssection.ErrUnknownModel),
		Entry("unknown collision", interaction.EquationSpec{Equation: "Ar + Ar -> Ar + Ar", Collision: "sticky", CrossSection: constant(1)}, collision.ErrUnknownModel),
	)

	It("matches particles to reactants in either order", func() {
		eq := mustEquation(reg, interaction.EquationSpec{Equation: "e + Ar -> e + Ar", CrossSection: constant(1e-20)})
		me, mar := reg.Mass(idxE), reg.Mass(idxAr)
		rng := rand.New(rand.NewSource(11))

		for _, swap := range []bool{false, true} {
			e := physics.Particle{Species: idxE, Velocity: r3.Vec{X: 1e6, Y: -2e5}}
			ar := physics.Particle{Species: idxAr, Velocity: r3.Vec{X: 300, Z: 120}}
			p0 := r3.Add(r3.Scale(me, e.Velocity), r3.Scale(mar, ar.Velocity))

			var err error
			if swap {
				_, err = eq.Interact(&ar, &e, rng)
			} else {
				_, err = eq.Interact(&e, &ar, rng)
			}
			Expect(err).NotTo(HaveOccurred())

			p1 := r3.Add(r3.Scale(me, e.Velocity), r3.Scale(mar, ar.Velocity))
			Expect(r3.Norm(r3.Sub(p1, p0)) / (me*1.02e6 + mar*323)).To(BeNumerically("<", 1e-12))
		}
	})

	It("refuses particles of other species", func() {
		eq := mustEquation(reg, interaction.EquationSpec{Equation: "e + Ar -> e + Ar", CrossSection: constant(1e-20)})
		a := physics.Particle{Species: idxHg}
		b := physics.Particle{Species: idxAr}
		_, err := eq.Interact(&a, &b, rand.New(rand.NewSource(1)))
		Expect(err).To(MatchError(interaction.ErrBadEquation))
	})

	It("replaces reactants with products above threshold", func() {
		eq := mustEquation(reg, interaction.EquationSpec{
			Equation:     "Hg + e -> e + Hg+ + e",
			Threshold:    10.44 * physics.ElectronVolt,
			CrossSection: constant(1e-20),
		})
		speed := math.Sqrt(2 * 40 * physics.ElectronVolt / physics.ElectronMass)
		e := physics.Particle{Species: idxE, Velocity: r3.Vec{Y: speed}}
		hg := physics.Particle{Species: idxHg}

		out, err := eq.Interact(&e, &hg, rand.New(rand.NewSource(5)))
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HaveLen(3))
		Expect(out[1].Species).To(Equal(idxHgIon))
	})
})
