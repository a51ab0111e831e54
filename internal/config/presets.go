package config

import "sort"

var Presets = map[string]map[string]*Config{
	"argon": {
		"thermal": {
			Database: "examples/argon.yaml", Steps: 200, PairsPerStep: 500, SnapshotEvery: 1,
			Ensemble: 1, MajorantSpeedFactor: 5, Extrapolation: true, LogLevel: "info",
			Population: []PopulationConfig{{Species: "Ar", Count: 2000, Temperature: 300}},
			Filter:     FilterConfig{Prefer: []string{"vhs"}},
		},
		"relax": {
			Database: "examples/argon.yaml", Steps: 400, PairsPerStep: 500, SnapshotEvery: 2,
			Ensemble: 4, MajorantSpeedFactor: 5, Extrapolation: true, LogLevel: "info",
			Population: []PopulationConfig{
				{Species: "Ar", Count: 1000, Temperature: 100},
				{Species: "Ar", Count: 1000, Temperature: 900},
			},
			Filter: FilterConfig{Prefer: []string{"vhs"}},
		},
		"vss": {
			Database: "examples/argon.yaml", Steps: 200, PairsPerStep: 500, SnapshotEvery: 1,
			Ensemble: 1, MajorantSpeedFactor: 5, Extrapolation: true, LogLevel: "info",
			Population: []PopulationConfig{{Species: "Ar", Count: 2000, Temperature: 300}},
			Filter:     FilterConfig{Prefer: []string{"vss", "vhs"}},
		},
	},
	"mercury": {
		"discharge": {
			Database: "examples/mercury.yaml", Steps: 300, PairsPerStep: 1000, SnapshotEvery: 1,
			Ensemble: 1, MajorantSpeedFactor: 4, Extrapolation: true, LogLevel: "info",
			Population: []PopulationConfig{
				{Species: "e", Count: 500, Temperature: 60000},
				{Species: "Hg", Count: 2000, Temperature: 400},
			},
			Filter: FilterConfig{Drop: []string{"lotz"}},
		},
		"lotz": {
			Database: "examples/mercury.yaml", Steps: 300, PairsPerStep: 1000, SnapshotEvery: 1,
			Ensemble: 1, MajorantSpeedFactor: 4, Extrapolation: true, LogLevel: "info",
			Population: []PopulationConfig{
				{Species: "e", Count: 500, Temperature: 60000},
				{Species: "Hg", Count: 2000, Temperature: 400},
			},
			Filter: FilterConfig{Drop: []string{"ionization"}},
		},
		"elastic": {
			Database: "examples/mercury.yaml", Steps: 200, PairsPerStep: 1000, SnapshotEvery: 1,
			Ensemble: 1, MajorantSpeedFactor: 4, Extrapolation: true, LogLevel: "info",
			Population: []PopulationConfig{
				{Species: "e", Count: 500, Temperature: 60000},
				{Species: "Hg", Count: 2000, Temperature: 400},
			},
			Filter: FilterConfig{ElasticOnly: true},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(gas, preset string) *Config {
	gasPresets, ok := Presets[gas]
	if !ok {
		return nil
	}
	cfg, ok := gasPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(gas string) []string {
	gasPresets, ok := Presets[gas]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(gasPresets))
	for name := range gasPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Gases lists the preset groups.
func Gases() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
