// Package storage persists simulation runs: one directory per run
// holding metadata.json and the full path matrix as CSV.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gbmviz/internal/gbm"
	"gbmviz/internal/stats"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Seed      int64       `json:"seed"`
	Params    gbm.Params  `json:"params"`
	Scale     stats.Scale `json:"scale"`
}

// Save writes metadata and the path matrix for one run and returns its
// id.
func (s *Store) Save(p gbm.Params, seed int64, scale stats.Scale, m gbm.Matrix) (string, error) {
	runID := fmt.Sprintf("gbm_%d", time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Timestamp: time.Now(),
		Seed:      seed,
		Params:    p,
		Scale:     scale,
	}

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

	csvFile, err := os.Create(filepath.Join(runDir, "paths.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	header := []string{"step"}
	for j := 0; j < m.Paths(); j++ {
		header = append(header, fmt.Sprintf("p%d", j))
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for t, row := range m {
		record := []string{strconv.Itoa(t)}
		for _, v := range row {
			record = append(record, strconv.FormatFloat(v, 'f', 6, 64))
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}

	return runID, nil
}

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

		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

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

// LoadPaths reads a run's path matrix back from its CSV.
func (s *Store) LoadPaths(runID string) (gbm.Matrix, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "paths.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return gbm.Matrix{}, nil
	}

	m := make(gbm.Matrix, 0, len(records)-1)
	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) < 2 {
			continue
		}

		row := make([]float64, 0, len(record)-1)
		for j := 1; j < len(record); j++ {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("storage: bad value at row %d column %d: %w", i, j, err)
			}
			row = append(row, v)
		}
		m = append(m, row)
	}

	return m, nil
}
