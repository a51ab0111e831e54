package species_test

import (
	"bytes"
	"log"
	"testing"

	"github.com/san-kum/dsmcdb/internal/logging"
	"github.com/san-kum/dsmcdb/internal/species"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T, list ...species.Species) *species.Registry {
	t.Helper()
	reg := species.NewRegistry(nil)
	for _, s := range list {
		require.NoError(t, reg.Add(s))
	}
	reg.Finalize()
	return reg
}

func TestFinalizeSortsByMassThenName(t *testing.T) {
	reg := newRegistry(t,
		species.Species{Name: "Hg", Mass: 3.33e-25},
		species.Species{Name: "e", Mass: 9.1e-31, Charge: -1},
		species.Species{Name: "Ar", Mass: 6.63e-26},
		species.Species{Name: "Ar*", Mass: 6.63e-26},
	)

	names := make([]string, 0, reg.Len())
	for _, s := range reg.All() {
		names = append(names, s.Name)
	}
	require.Equal(t, []string{"e", "Ar", "Ar*", "Hg"}, names)

	idx, err := reg.Index("Hg")
	require.NoError(t, err)
	require.Equal(t, 3, idx)
	require.Equal(t, -1, reg.At(0).Charge)
}

func TestIndexBeforeFinalize(t *testing.T) {
	reg := species.NewRegistry(nil)
	require.NoError(t, reg.Add(species.Species{Name: "Ar", Mass: 1}))

	_, err := reg.Index("Ar")
	require.ErrorIs(t, err, species.ErrNotFinalized)
}

func TestUnknownSpecies(t *testing.T) {
	reg := newRegistry(t, species.Species{Name: "Ar", Mass: 1})

	_, err := reg.Index("Xe")
	require.ErrorIs(t, err, species.ErrUnknownSpecies)
}

func TestDuplicateWarnsAndKeepsFirst(t *testing.T) {
	var buf bytes.Buffer
	reg := species.NewRegistry(logging.NewWithLogger("warn", log.New(&buf, "", 0)))

	require.NoError(t, reg.Add(species.Species{Name: "Ar", Mass: 1}))
	require.NoError(t, reg.Add(species.Species{Name: "Ar", Mass: 2}))
	reg.Finalize()

	require.Equal(t, 1, reg.Len())
	require.Equal(t, 1.0, reg.Mass(0))
	require.Contains(t, buf.String(), "registered twice")
}

func TestAddAfterFinalizeInvalidates(t *testing.T) {
	reg := newRegistry(t, species.Species{Name: "Ar", Mass: 1})
	v := reg.Version()

	require.NoError(t, reg.Add(species.Species{Name: "Xe", Mass: 2}))
	require.False(t, reg.Finalized())
	require.NotEqual(t, v, reg.Version())
}

func TestAddRejectsBadInput(t *testing.T) {
	reg := species.NewRegistry(nil)
	require.ErrorIs(t, reg.Add(species.Species{Mass: 1}), species.ErrEmptyName)
	require.ErrorIs(t, reg.Add(species.Species{Name: "x", Mass: -1}), species.ErrInvalidMass)
}

func TestFromMap(t *testing.T) {
	s, err := species.FromMap(map[string]any{
		"name":   "Hg+",
		"mass":   "3.33e-25",
		"charge": 1,
		"size":   int64(0),
	})
	require.NoError(t, err)
	require.Equal(t, species.Species{Name: "Hg+", Mass: 3.33e-25, Charge: 1}, s)

	_, err = species.FromMap(map[string]any{"name": "x"})
	require.ErrorIs(t, err, species.ErrMissingField)

	_, err = species.FromMap(map[string]any{"name": "x", "mass": 1.0, "charge": 0.5})
	require.Error(t, err)

	_, err = species.FromMap(map[string]any{"name": 3, "mass": 1.0})
	require.Error(t, err)
}
