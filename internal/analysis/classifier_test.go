package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ZanzyTHEbar/glucoscreen/internal/errors"
	"github.com/ZanzyTHEbar/glucoscreen/internal/types"
)

func TestTrainClassifier_Errors(t *testing.T) {
	tests := []struct {
		name string
		xs   []ScaledVector
		ys   []int
	}{
		{name: "empty dataset", xs: nil, ys: nil},
		{name: "single class", xs: make([]ScaledVector, 3), ys: []int{1, 1, 1}},
		{name: "length mismatch", xs: make([]ScaledVector, 2), ys: []int{0}},
		{name: "invalid label", xs: make([]ScaledVector, 2), ys: []int{0, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, err := TrainClassifier(tt.xs, tt.ys, DefaultTrainOptions())
			assert.Nil(t, model)
			require.Error(t, err)
			assert.True(t, apperrors.IsCategory(err, apperrors.CategoryTraining))
		})
	}
}

func TestTrainClassifier_SeparatesOnGlucose(t *testing.T) {
	ds := syntheticDataset(t, 200)
	params, err := FitScaler(ds)
	require.NoError(t, err)

	xs := params.TransformAll(ds.Vectors())
	model, err := TrainClassifier(xs, ds.Labels(), DefaultTrainOptions())
	require.NoError(t, err)

	assert.Greater(t, model.Weights[types.Glucose], 0.0)
	assert.Greater(t, model.SupportVectors, 0)

	report := Evaluate(model, xs, ds.Labels())
	assert.GreaterOrEqual(t, report.Accuracy, 0.95)

	high := types.DefaultVector
	high[types.Glucose] = 195
	low := types.DefaultVector
	low[types.Glucose] = 70

	assert.Equal(t, 1, model.Predict(params.Transform(high)))
	assert.Equal(t, 0, model.Predict(params.Transform(low)))
}

func TestTrainClassifier_Deterministic(t *testing.T) {
	ds := syntheticDataset(t, 120)
	params, err := FitScaler(ds)
	require.NoError(t, err)
	xs := params.TransformAll(ds.Vectors())

	a, err := TrainClassifier(xs, ds.Labels(), DefaultTrainOptions())
	require.NoError(t, err)
	b, err := TrainClassifier(xs, ds.Labels(), DefaultTrainOptions())
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestTrainedModel_Predict(t *testing.T) {
	model := &TrainedModel{Bias: -1}
	model.Weights[types.Glucose] = 2

	tests := []struct {
		name     string
		glucose  float64
		expected int
	}{
		{"positive side", 1, 1},
		{"on the boundary is negative", 0.5, 0},
		{"negative side", -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var x ScaledVector
			x[types.Glucose] = tt.glucose
			assert.Equal(t, tt.expected, model.Predict(x))
		})
	}
}

func TestSplitHoldout(t *testing.T) {
	t.Run("holdout size rounds up", func(t *testing.T) {
		train, holdout := SplitHoldout(768, 0.2, 1)
		assert.Len(t, holdout, 154)
		assert.Len(t, train, 614)
	})

	t.Run("partitions every index once", func(t *testing.T) {
		train, holdout := SplitHoldout(50, 0.2, 1)
		seen := make(map[int]bool)
		for _, i := range append(append([]int{}, train...), holdout...) {
			assert.False(t, seen[i], "index %d repeated", i)
			seen[i] = true
		}
		assert.Len(t, seen, 50)
	})

	t.Run("deterministic for a seed", func(t *testing.T) {
		trainA, holdoutA := SplitHoldout(40, 0.2, 1)
		trainB, holdoutB := SplitHoldout(40, 0.2, 1)
		assert.Equal(t, trainA, trainB)
		assert.Equal(t, holdoutA, holdoutB)
	})

	for _, fraction := range []float64{0, -0.1, 1, 1.5} {
		t.Run(fmt.Sprintf("fraction %v keeps all rows", fraction), func(t *testing.T) {
			train, holdout := SplitHoldout(10, fraction, 1)
			assert.Len(t, train, 10)
			assert.Empty(t, holdout)
		})
	}
}

func TestEvaluate(t *testing.T) {
	model := &TrainedModel{}
	model.Weights[types.Glucose] = 1

	xs := []ScaledVector{{0, 1}, {0, 2}, {0, -1}, {0, -2}}
	ys := []int{1, 0, 0, 1}

	report := Evaluate(model, xs, ys)
	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 1, report.TruePositives)
	assert.Equal(t, 1, report.FalsePositives)
	assert.Equal(t, 1, report.TrueNegatives)
	assert.Equal(t, 1, report.FalseNegatives)
	assert.InDelta(t, 0.5, report.Accuracy, 1e-12)
	assert.InDelta(t, 0.5, report.Precision, 1e-12)
	assert.InDelta(t, 0.5, report.Recall, 1e-12)

	assert.Equal(t, EvaluationReport{}, Evaluate(model, nil, nil))
}
