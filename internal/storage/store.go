package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/dsmcdb/internal/sim"
)

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Database     string             `json:"database"`
	Timestamp    time.Time          `json:"timestamp"`
	Seed         int64              `json:"seed"`
	Steps        int                `json:"steps"`
	PairsPerStep int                `json:"pairs_per_step"`
	Species      []string           `json:"species"`
	Counters     sim.Counters       `json:"counters"`
	Channels     map[string]int     `json:"channels"`
	EnergyDrift  float64            `json:"energy_drift"`
	Metrics      map[string]float64 `json:"metrics"`
}

// Sample is one row of series.csv.
type Sample struct {
	Step        int
	Temperature float64
	Energy      float64
	Absorbed    float64
	Particles   int
	Accepted    int
	Species     []float64
}

// Save writes <base>/<id>/metadata.json and series.csv. meta.ID and
// meta.Timestamp are filled in.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	now := s.now()
	runID := fmt.Sprintf("%s_%d", meta.Name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Counters = result.Counters
	meta.Channels = result.Channels
	meta.EnergyDrift = result.EnergyDrift
	meta.Metrics = result.Metrics

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "series.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	header := []string{"step", "temperature", "energy", "absorbed", "particles", "accepted"}
	for _, name := range meta.Species {
		header = append(header, "T_"+name)
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for _, snap := range result.Snapshots {
		row := []string{
			strconv.Itoa(snap.Step),
			formatFloat(snap.Temperature),
			formatFloat(snap.Energy),
			formatFloat(snap.Absorbed),
			strconv.Itoa(snap.Particles),
			strconv.Itoa(snap.Accepted),
		}
		for i := range meta.Species {
			v := 0.0
			if i < len(snap.Species) {
				v = snap.Species[i]
			}
			row = append(row, formatFloat(v))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return runID, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}

// List returns the stored runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadSeries(runID string) ([]Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "series.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []Sample{}, nil
	}

	samples := make([]Sample, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 6 {
			continue
		}
		var smp Sample
		var errs [6]error
		smp.Step, errs[0] = strconv.Atoi(record[0])
		smp.Temperature, errs[1] = strconv.ParseFloat(record[1], 64)
		smp.Energy, errs[2] = strconv.ParseFloat(record[2], 64)
		smp.Absorbed, errs[3] = strconv.ParseFloat(record[3], 64)
		smp.Particles, errs[4] = strconv.Atoi(record[4])
		smp.Accepted, errs[5] = strconv.Atoi(record[5])
		if bad(errs[:]) {
			continue
		}
		for _, field := range record[6:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				continue
			}
			smp.Species = append(smp.Species, v)
		}
		samples = append(samples, smp)
	}

	return samples, nil
}

func bad(errs []error) bool {
	for _, err := range errs {
		if err != nil {
			return true
		}
	}
	return false
}
