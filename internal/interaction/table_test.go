package interaction_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dsmcdb/internal/interaction"
	"github.com/san-kum/dsmcdb/internal/species"
)

var _ = Describe("Table", func() {
	var (
		reg   *species.Registry
		eqs   []*interaction.Equation
		table *interaction.Table
	)

	BeforeEach(func() {
		reg = newRegistry()
		eqs = []*interaction.Equation{
			mustEquation(reg, interaction.EquationSpec{Equation: "Ar + Ar -> Ar + Ar", CrossSection: constant(4e-19)}),
			mustEquation(reg, interaction.EquationSpec{Equation: "Hg + e -> Hg + e", CrossSection: constant(5e-19)}),
			mustEquation(reg, interaction.EquationSpec{Equation: "e + Hg -> e + Hg+ + e", Threshold: 1e-18, CrossSection: constant(1e-20)}),
		}
		var err error
		table, err = interaction.Build(reg, eqs, nil)
		Expect(err).NotTo(HaveOccurred())
	})

	It("shares one Set between (i, j) and (j, i)", func() {
		for i := 0; i < reg.Len(); i++ {
			for j := 0; j < reg.Len(); j++ {
				Expect(table.Get(i, j)).NotTo(BeNil())
				Expect(table.Get(i, j)).To(BeIdenticalTo(table.Get(j, i)))
			}
		}
	})

	It("stores one Set per unordered pair", func() {
		n := reg.Len()
		Expect(table.Size()).To(Equal(n * (n + 1) / 2))
		Expect(table.Species()).To(Equal(n))

		seen := map[int]bool{}
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				k := table.PairIndex(i, j)
				Expect(k).To(BeNumerically(">=", 0))
				Expect(k).To(BeNumerically("<", table.Size()))
				Expect(seen).NotTo(HaveKey(k))
				seen[k] = true
				Expect(table.PairIndex(j, i)).To(Equal(k))
				Expect(table.Sets()[k]).To(BeIdenticalTo(table.Get(i, j)))
			}
		}
	})

	It("groups channels by unordered pair in load order", func() {
		set := table.Get(idxHg, idxE)
		Expect(set.Len()).To(Equal(2))
		Expect(set.Equation(0)).To(BeIdenticalTo(eqs[1]))
		Expect(set.Equation(1)).To(BeIdenticalTo(eqs[2]))

		a, b := set.Pair()
		Expect([]int{a, b}).To(Equal([]int{idxE, idxHg}))

		Expect(table.Get(idxAr, idxAr).Len()).To(Equal(1))
		Expect(table.Get(idxAr, idxHg).Len()).To(BeZero())
	})

	It("returns nil outside the species range", func() {
		Expect(table.Get(-1, 0)).To(BeNil())
		Expect(table.Get(0, reg.Len())).To(BeNil())
	})

	It("detects species added after the build", func() {
		Expect(table.Check(reg)).To(Succeed())
		Expect(reg.Add(species.Species{Name: "Xe", Mass: 2.18e-25})).To(Succeed())
		reg.Finalize()
		Expect(table.Stale(reg)).To(BeTrue())
		Expect(table.Check(reg)).To(MatchError(interaction.ErrStaleTable))
	})

	It("refuses an unfinalized registry", func() {
		fresh := species.NewRegistry(nil)
		Expect(fresh.Add(species.Species{Name: "Ar", Mass: 6.6e-26})).To(Succeed())
		_, err := interaction.Build(fresh, nil, nil)
		Expect(err).To(HaveOccurred())
	})
})
