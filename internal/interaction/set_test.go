package interaction_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dsmcdb/internal/crosssection"
	"github.com/san-kum/dsmcdb/internal/interaction"
	"github.com/san-kum/dsmcdb/internal/species"
)

var _ = Describe("Set", func() {
	var (
		reg *species.Registry
		log *recordLogger
	)

	BeforeEach(func() {
		reg = newRegistry()
		log = &recordLogger{}
	})

	// arSet builds the Ar-Ar set with one constant channel per sigma.
	arSet := func(sigmas ...float64) *interaction.Set {
		GinkgoHelper()
		var eqs []*interaction.Equation
		for _, s := range sigmas {
			eqs = append(eqs, mustEquation(reg, interaction.EquationSpec{Equation: "Ar + Ar -> Ar + Ar", CrossSection: constant(s)}))
		}
		table, err := interaction.Build(reg, eqs, log)
		Expect(err).NotTo(HaveOccurred())
		return table.Get(idxAr, idxAr)
	}

	It("accepts every trial when the majorant is exact", func() {
		const sigma, v = 1e-19, 1000.0
		set := arSet(sigma)
		m := &interaction.Majorant{Value: sigma * v}
		rng := rand.New(rand.NewSource(1))

		accepted := 0
		for i := 0; i < 10000; i++ {
			out, err := set.SelectOutcome(m, v, rng)
			Expect(err).NotTo(HaveOccurred())
			if out.Occurred() {
				accepted++
				Expect(out.Index).To(Equal(0))
				Expect(out.Sigma).To(Equal(sigma))
			}
		}
		Expect(accepted).To(Equal(10000))
		Expect(m.Value).To(Equal(sigma * v))
	})

	It("accepts in proportion to Σσ·v over the majorant", func() {
		const sigma, v = 1e-19, 1000.0
		set := arSet(sigma)
		m := &interaction.Majorant{Value: 4 * sigma * v}
		rng := rand.New(rand.NewSource(2))

		accepted := 0
		const trials = 40000
		for i := 0; i < trials; i++ {
			out, _ := set.SelectOutcome(m, v, rng)
			if out.Occurred() {
				accepted++
			}
		}
		Expect(float64(accepted) / trials).To(BeNumerically("~", 0.25, 0.01))
		Expect(m.Value).To(Equal(4 * sigma * v))
	})

	It("raises a low majorant on acceptance", func() {
		set := arSet(1, 3)
		m := &interaction.Majorant{Value: 0.5}
		out, err := set.SelectOutcome(m, 10, &seqRand{values: []float64{0.9, 0.1}})
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Occurred()).To(BeTrue())
		Expect(m.Value).To(Equal(30.0))
	})

	It("tests rejection against the majorant it was given", func() {
		set := arSet(1, 3)
		// 0.9·100 > 4·10 rejects before any update
		m := &interaction.Majorant{Value: 100}
		out, _ := set.SelectOutcome(m, 10, &seqRand{values: []float64{0.9}})
		Expect(out.Occurred()).To(BeFalse())
		Expect(out.Index).To(Equal(-1))
		Expect(m.Value).To(Equal(100.0))
	})

	DescribeTable("walks channels by cumulative σ with a strict comparison",
		func(u float64, wantIndex int, wantSigma float64) {
			set := arSet(1, 3)
			m := &interaction.Majorant{Value: 40}
			out, err := set.SelectOutcome(m, 10, &seqRand{values: []float64{0, u}})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Index).To(Equal(wantIndex))
			Expect(out.Sigma).To(Equal(wantSigma))
		},
		Entry("inside the first channel", 0.2, 0, 1.0),
		Entry("exactly on the boundary", 0.25, 1, 3.0),
		Entry("inside the second channel", 0.3, 1, 3.0),
	)

	It("never selects a zero channel", func() {
		set := arSet(0, 2)
		out, _ := set.SelectOutcome(&interaction.Majorant{Value: 20}, 10, &seqRand{values: []float64{0, 0}})
		Expect(out.Index).To(Equal(1))
	})

	It("selects channels in proportion to σ", func() {
		set := arSet(1, 3)
		m := &interaction.Majorant{Value: 40}
		rng := rand.New(rand.NewSource(3))
		counts := make([]int, 2)
		for i := 0; i < 40000; i++ {
			out, _ := set.SelectOutcome(m, 10, rng)
			Expect(out.Occurred()).To(BeTrue())
			counts[out.Index]++
		}
		Expect(float64(counts[1]) / 40000).To(BeNumerically("~", 0.75, 0.01))
	})

	It("reports nothing when every σ is zero", func() {
		set := arSet(0, 0)
		out, err := set.SelectOutcome(&interaction.Majorant{}, 10, &seqRand{values: []float64{0}})
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Occurred()).To(BeFalse())
		Expect(log.errors).To(BeEmpty())
	})

	It("logs and gives up when the walk finds no channel", func() {
		set := arSet(1, 3)
		out, err := set.SelectOutcome(&interaction.Majorant{Value: 40}, 10, &seqRand{values: []float64{0, 1}})
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Occurred()).To(BeFalse())
		Expect(log.errors).To(HaveLen(1))
	})

	It("returns domain errors from tabulated channels", func() {
		eq, err := interaction.NewEquation(interaction.EquationSpec{
			Equation: "Ar + Ar -> Ar + Ar",
			CrossSection: crosssection.Spec{Model: "tabulated", Points: []crosssection.Point{
				{V: 100, Sigma: 1e-19}, {V: 200, Sigma: 2e-19},
			}},
		}, reg, crosssection.Options{})
		Expect(err).NotTo(HaveOccurred())
		table, _ := interaction.Build(reg, []*interaction.Equation{eq}, nil)

		m := &interaction.Majorant{Value: 1}
		out, err := table.Get(idxAr, idxAr).SelectOutcome(m, 500, rand.New(rand.NewSource(1)))
		Expect(err).To(MatchError(crosssection.ErrOutOfDomain))
		Expect(out.Occurred()).To(BeFalse())
		Expect(m.Value).To(Equal(1.0))
	})

	It("sums the per-channel maxima", func() {
		set := arSet(1, 3)
		max, err := set.FindMaxSigmaVProduct(10)
		Expect(err).NotTo(HaveOccurred())
		Expect(max).To(Equal(40.0))
	})

	It("is empty for pairs without equations", func() {
		table, _ := interaction.Build(reg, nil, nil)
		set := table.Get(idxE, idxHg)
		Expect(set.Len()).To(BeZero())
		out, err := set.SelectOutcome(&interaction.Majorant{Value: 1}, 10, &seqRand{values: []float64{0}})
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Occurred()).To(BeFalse())
		max, _ := set.FindMaxSigmaVProduct(100)
		Expect(max).To(BeZero())
	})
})
