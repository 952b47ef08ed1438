// Package storage keeps analysis runs on disk, one directory per run with
// metadata.json and curves.csv.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/san-kum/sdofsim/internal/export"
	"github.com/san-kum/sdofsim/internal/physics"
)

const (
	MetadataFile = "metadata.json"
	CurvesFile   = "curves.csv"
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

type SystemInfo struct {
	Mass      float64 `json:"mass"`
	Stiffness float64 `json:"stiffness"`
	Damping   float64 `json:"damping"`
	Zeta      float64 `json:"zeta"`
	FnHz      float64 `json:"fn_hz"`
}

func SystemInfoOf(sys physics.System) SystemInfo {
	m := sys.Modal()
	return SystemInfo{
		Mass:      sys.Mass,
		Stiffness: sys.Stiffness,
		Damping:   sys.Damping,
		Zeta:      m.Zeta,
		FnHz:      m.FnHz,
	}
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Analysis  string             `json:"analysis"`
	Timestamp time.Time          `json:"timestamp"`
	System    *SystemInfo        `json:"system,omitempty"`
	Params    map[string]string  `json:"params,omitempty"`
	Summary   map[string]float64 `json:"summary,omitempty"`
	Rows      int                `json:"rows"`
}

// Notes flattens the metadata into CSV comment lines.
func (m RunMetadata) Notes() []export.Note {
	notes := []export.Note{{Key: "Analysis Type", Value: m.Analysis}, {Key: "Run", Value: m.ID}}
	if m.System != nil {
		notes = append(notes,
			export.Notef("Mass (kg)", "%g", m.System.Mass),
			export.Notef("Stiffness (N/m)", "%g", m.System.Stiffness),
			export.Notef("Damping (N·s/m)", "%g", m.System.Damping),
			export.Notef("Damping Ratio", "%g", m.System.Zeta),
			export.Notef("Natural Frequency (Hz)", "%g", m.System.FnHz),
		)
	}
	for _, k := range sortedKeys(m.Params) {
		notes = append(notes, export.Note{Key: k, Value: m.Params[k]})
	}
	for _, k := range sortedKeys(m.Summary) {
		notes = append(notes, export.Notef(k, "%g", m.Summary[k]))
	}
	return notes
}

// Save writes a new run. ID, Timestamp and Rows are filled in.
func (s *Store) Save(meta RunMetadata, curves *export.Table) (string, error) {
	if meta.Analysis == "" {
		return "", fmt.Errorf("run has no analysis type")
	}
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Analysis, now.UnixNano())
	meta.Timestamp = now
	meta.Rows = curves.Rows()

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, MetadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, CurvesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := export.WriteCSV(csvFile, curves, meta.Notes()); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// List returns every readable run, oldest first.
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
	data, err := os.ReadFile(s.Path(runID, MetadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadCurves(runID string) (*export.Table, error) {
	file, err := os.Open(s.Path(runID, CurvesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	t, _, err := export.ReadCSV(file)
	return t, err
}

// Path is the location of a file inside a run directory.
func (s *Store) Path(runID, name string) string {
	return filepath.Join(s.baseDir, runID, name)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
