package analysis

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/glucoscreen/internal/types"
)

// syntheticDataset builds rows whose outcome is decided by glucose alone,
// with a clear gap between the classes. Other columns are noise.
func syntheticDataset(t *testing.T, n int) *ReferenceDataset {
	t.Helper()

	rng := rand.New(rand.NewSource(42))
	vectors := make([]types.FeatureVector, n)
	labels := make([]int, n)

	for i := 0; i < n; i++ {
		label := i % 2
		glucose := 60 + rng.Float64()*70
		if label == 1 {
			glucose = 150 + rng.Float64()*49
		}
		vectors[i] = types.FeatureVector{
			float64(rng.Intn(12)),
			glucose,
			50 + rng.Float64()*50,
			10 + rng.Float64()*30,
			rng.Float64() * 200,
			20 + rng.Float64()*20,
			0.1 + rng.Float64()*1.2,
			float64(21 + rng.Intn(50)),
		}
		labels[i] = label
	}

	ds, err := NewReferenceDataset(vectors, labels)
	require.NoError(t, err)
	return ds
}

func readyPipeline(t *testing.T) *Pipeline {
	t.Helper()

	p := NewPipeline(StaticDataset(syntheticDataset(t, 200)), DefaultOptions())
	require.NoError(t, p.Initialize(context.Background()))
	require.True(t, p.Ready())
	return p
}
