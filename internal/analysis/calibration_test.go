package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelStore_SaveLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	store := NewModelStore(dir)
	assert.Equal(t, filepath.Join(dir, "model.json"), store.Path())

	summary := &ModelSummary{
		State:    "Ready",
		Features: []string{"Glucose"},
		Model:    TrainedModel{Bias: -0.25, Iterations: 12, Converged: true, SupportVectors: 3},
		Holdout:  EvaluationReport{Total: 4, Accuracy: 0.75},
	}
	summary.Scaling.Mean[1] = 120
	summary.Scaling.Std[1] = 30

	require.NoError(t, store.Save(summary))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, summary.Model, loaded.Model)
	assert.Equal(t, summary.Scaling, loaded.Scaling)
	assert.Equal(t, summary.Holdout, loaded.Holdout)

	// overwrite leaves no temp files behind
	summary.Model.Bias = 1
	require.NoError(t, store.Save(summary))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestModelStore_LoadMissing(t *testing.T) {
	_, err := NewModelStore(t.TempDir()).Load()
	assert.Error(t, err)
}
