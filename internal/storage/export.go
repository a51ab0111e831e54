package storage

import (
	"encoding/json"
	"io"
	"os"
)

// ExportData is a run with its full series, for tools that do not read
// the csv.
type ExportData struct {
	RunMetadata
	Series []exportSample `json:"series"`
}

type exportSample struct {
	Step        int       `json:"step"`
	Temperature float64   `json:"temperature"`
	Energy      float64   `json:"energy"`
	Absorbed    float64   `json:"absorbed"`
	Particles   int       `json:"particles"`
	Accepted    int       `json:"accepted"`
	Species     []float64 `json:"species_temperature"`
}

func (s *Store) exportData(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	samples, err := s.LoadSeries(runID)
	if err != nil {
		return nil, err
	}

	data := &ExportData{RunMetadata: *meta, Series: make([]exportSample, len(samples))}
	for i, smp := range samples {
		data.Series[i] = exportSample(smp)
	}
	return data, nil
}

func (s *Store) ExportJSON(path, runID string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return s.WriteJSON(file, runID)
}

func (s *Store) WriteJSON(w io.Writer, runID string) error {
	data, err := s.exportData(runID)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
