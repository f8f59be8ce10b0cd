package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// ManifestFile is the name of the run description written next to the outputs.
const ManifestFile = "manifest.json"

// Store manages run output directories below a base directory.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

// OutputRecord describes one file produced by a diagnostic.
type OutputRecord struct {
	Diagnostic string `json:"diagnostic"`
	Path       string `json:"path"`
	Format     string `json:"format"`
	Rows       int    `json:"rows"`
	Width      int    `json:"width"`
}

type RunManifest struct {
	ID         string         `json:"id"`
	Timestamp  time.Time      `json:"timestamp"`
	StartTime  float64        `json:"start_time"`
	EndTime    float64        `json:"end_time"`
	Dt         float64        `json:"dt"`
	NumSteps   int            `json:"num_steps"`
	StepsTaken int            `json:"steps_taken"`
	Elapsed    time.Duration  `json:"elapsed_ns"`
	Tools      []string       `json:"tools"`
	Modules    []string       `json:"physics_modules"`
	Outputs    []OutputRecord `json:"outputs"`
}

// SaveManifest writes m into the store's base directory, assigning an ID and
// timestamp when they are unset.
func (s *Store) SaveManifest(m *RunManifest) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	if m.ID == "" {
		m.ID = fmt.Sprintf("%s_%d", filepath.Base(s.baseDir), m.Timestamp.Unix())
	}

	path := filepath.Join(s.baseDir, ManifestFile)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return "", err
	}
	return m.ID, f.Close()
}

func (s *Store) LoadManifest() (*RunManifest, error) {
	return readManifest(filepath.Join(s.baseDir, ManifestFile))
}

// List returns the manifests of every run directory directly below the base
// directory, oldest first. Directories without a readable manifest are skipped.
func (s *Store) List() ([]RunManifest, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunManifest{}, nil
		}
		return nil, err
	}

	runs := make([]RunManifest, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		m, err := readManifest(filepath.Join(s.baseDir, entry.Name(), ManifestFile))
		if err != nil {
			continue
		}
		runs = append(runs, *m)
	}

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func readManifest(path string) (*RunManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m RunManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &m, nil
}
