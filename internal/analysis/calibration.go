package analysis

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const snapshotFile = "model.json"

// ModelStore persists the fitted scaler and model as a JSON snapshot for operators.
// The pipeline always retrains at startup; snapshots are never loaded back into it.
type ModelStore struct {
	dataDir string
}

// NewModelStore creates a store rooted at dataDir.
func NewModelStore(dataDir string) *ModelStore {
	return &ModelStore{dataDir: dataDir}
}

// Path returns the snapshot location.
func (s *ModelStore) Path() string {
	return filepath.Join(s.dataDir, snapshotFile)
}

// Save writes the summary, replacing any previous snapshot.
func (s *ModelStore) Save(summary *ModelSummary) error {
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dataDir, snapshotFile+".*")
	if err != nil {
		return fmt.Errorf("failed to create model snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(summary); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode model snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write model snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.Path()); err != nil {
		return fmt.Errorf("failed to store model snapshot: %w", err)
	}
	return nil
}

// Load reads the last saved snapshot.
func (s *ModelStore) Load() (*ModelSummary, error) {
	file, err := os.Open(s.Path())
	if err != nil {
		return nil, fmt.Errorf("failed to open model snapshot: %w", err)
	}
	defer file.Close()

	var summary ModelSummary
	if err := json.NewDecoder(file).Decode(&summary); err != nil {
		return nil, fmt.Errorf("failed to decode model snapshot: %w", err)
	}
	return &summary, nil
}
