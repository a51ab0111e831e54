package optim

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/dsmcdb/internal/config"
)

func smallArgon(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.GetPreset("argon", "thermal")
	cfg.Database = "../../examples/argon.yaml"
	cfg.Steps = 5
	cfg.PairsPerStep = 100
	cfg.Population[0].Count = 100
	cfg.Seed = 3
	return cfg
}

func TestParseRange(t *testing.T) {
	name, values, err := ParseRange("temperature.0=100, 300,900")
	if err != nil {
		t.Fatal(err)
	}
	if name != "temperature.0" || len(values) != 3 || values[2] != 900 {
		t.Errorf("got %s %v", name, values)
	}
	for _, bad := range []string{"x", "x=", "=1", "x=1,a"} {
		if _, _, err := ParseRange(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestSet(t *testing.T) {
	cfg := smallArgon(t)
	if err := Set(cfg, "temperature.0", 500); err != nil || cfg.Population[0].Temperature != 500 {
		t.Errorf("temperature not set: %v", err)
	}
	if err := Set(cfg, "pairs_per_step", 42); err != nil || cfg.PairsPerStep != 42 {
		t.Errorf("pairs not set: %v", err)
	}
	for _, bad := range []string{"nope", "temperature.3", "mass.0", "count.x"} {
		if err := Set(cfg, bad, 1); err == nil {
			t.Errorf("expected error for %s", bad)
		}
	}
}

func TestNewGridSearchChecksParameters(t *testing.T) {
	if _, err := NewGridSearch(smallArgon(t), []string{"a"}, nil, nil); err == nil {
		t.Error("expected length mismatch error")
	}
	if _, err := NewGridSearch(smallArgon(t), []string{"nope"}, [][]float64{{1}}, nil); err == nil {
		t.Error("expected unknown parameter error")
	}
}

func TestSearch(t *testing.T) {
	base := smallArgon(t)
	g, err := NewGridSearch(base, []string{"temperature.0", "majorant_speed_factor"}, [][]float64{{200, 400}, {3, 5}}, nil)
	if err != nil {
		t.Fatal(err)
	}

	points, best, err := g.Search(context.Background(), "temperature")
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 4 {
		t.Fatalf("expected 4 grid points, got %d", len(points))
	}
	if best == nil {
		t.Fatal("no best point")
	}
	if best.Params["temperature.0"] != 200 {
		t.Errorf("lowest mean temperature should come from the 200K start, got %v", best.Params)
	}
	if math.Abs(best.Value-200) > 60 {
		t.Errorf("mean temperature %g far from 200K", best.Value)
	}
	if base.Population[0].Temperature != 300 {
		t.Error("search modified the base config")
	}
}

func TestSearchUnknownMetric(t *testing.T) {
	g, err := NewGridSearch(smallArgon(t), []string{"steps"}, [][]float64{{2}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	points, best, err := g.Search(context.Background(), "nope")
	if err != nil {
		t.Fatal(err)
	}
	if best != nil || points[0].Err == nil {
		t.Error("expected the point to carry an error")
	}
}
