package analysis

import (
	"fmt"
	"math"
	"math/rand"

	apperrors "github.com/ZanzyTHEbar/glucoscreen/internal/errors"
	"github.com/ZanzyTHEbar/glucoscreen/internal/types"
)

// TrainOptions controls the linear SVM solver.
type TrainOptions struct {
	C         float64 // soft-margin penalty
	MaxIter   int
	Tolerance float64
	Seed      int64
}

// DefaultTrainOptions mirrors a linear SVC with C=1.
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		C:         1.0,
		MaxIter:   1000,
		Tolerance: 1e-4,
		Seed:      1,
	}
}

// TrainedModel is the learned decision boundary.
type TrainedModel struct {
	Weights        [types.NumFeatures]float64 `json:"weights"`
	Bias           float64                    `json:"bias"`
	Iterations     int                        `json:"iterations"`
	Converged      bool                       `json:"converged"`
	SupportVectors int                        `json:"support_vectors"`
}

// DecisionValue returns the signed distance proxy w·x + b.
func (m *TrainedModel) DecisionValue(x ScaledVector) float64 {
	sum := m.Bias
	for i := range x {
		sum += m.Weights[i] * x[i]
	}
	return sum
}

// Predict returns 1 when x falls on the positive side of the boundary.
func (m *TrainedModel) Predict(x ScaledVector) int {
	if m.DecisionValue(x) > 0 {
		return 1
	}
	return 0
}

// TrainClassifier fits a maximum-margin linear separator with hinge loss using
// dual coordinate descent. The bias is learned as the weight of a constant feature.
// The visiting order is a seeded permutation, so equal inputs give equal models.
func TrainClassifier(xs []ScaledVector, ys []int, opts TrainOptions) (*TrainedModel, error) {
	if len(xs) == 0 {
		return nil, apperrors.NewTrainingError("cannot train classifier on an empty dataset")
	}
	if len(xs) != len(ys) {
		return nil, apperrors.NewTrainingError(fmt.Sprintf("got %d vectors but %d labels", len(xs), len(ys)))
	}

	var positives, negatives int
	for _, y := range ys {
		switch y {
		case 1:
			positives++
		case 0:
			negatives++
		default:
			return nil, apperrors.NewTrainingError(fmt.Sprintf("label must be 0 or 1, got %d", y))
		}
	}
	if positives == 0 || negatives == 0 {
		return nil, apperrors.NewTrainingError("training data must contain both outcome classes")
	}

	if opts.C <= 0 {
		opts.C = 1.0
	}
	if opts.MaxIter <= 0 {
		opts.MaxIter = 1000
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = 1e-4
	}

	const dim = types.NumFeatures + 1
	augment := func(x ScaledVector) [dim]float64 {
		var a [dim]float64
		copy(a[:], x[:])
		a[types.NumFeatures] = 1
		return a
	}

	n := len(xs)
	data := make([][dim]float64, n)
	sign := make([]float64, n)
	qd := make([]float64, n)
	for i := range xs {
		data[i] = augment(xs[i])
		sign[i] = -1
		if ys[i] == 1 {
			sign[i] = 1
		}
		for _, v := range data[i] {
			qd[i] += v * v
		}
	}

	var w [dim]float64
	alpha := make([]float64, n)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	iter := 0
	converged := false
	for iter < opts.MaxIter {
		iter++
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })

		maxPG, minPG := math.Inf(-1), math.Inf(1)
		for _, i := range order {
			var dot float64
			for k := range w {
				dot += w[k] * data[i][k]
			}
			g := sign[i]*dot - 1

			pg := g
			if alpha[i] == 0 && g > 0 {
				pg = 0
			} else if alpha[i] == opts.C && g < 0 {
				pg = 0
			}
			maxPG = math.Max(maxPG, pg)
			minPG = math.Min(minPG, pg)

			if math.Abs(pg) > 1e-12 {
				old := alpha[i]
				alpha[i] = math.Min(math.Max(old-g/qd[i], 0), opts.C)
				delta := (alpha[i] - old) * sign[i]
				for k := range w {
					w[k] += delta * data[i][k]
				}
			}
		}

		if maxPG-minPG < opts.Tolerance {
			converged = true
			break
		}
	}

	model := &TrainedModel{
		Bias:       w[types.NumFeatures],
		Iterations: iter,
		Converged:  converged,
	}
	copy(model.Weights[:], w[:types.NumFeatures])
	for _, a := range alpha {
		if a > 0 {
			model.SupportVectors++
		}
	}

	return model, nil
}

// SplitHoldout deterministically partitions n row indices into training and
// holdout sets. The holdout receives ceil(n*fraction) rows. A fraction
// outside (0, 1) holds nothing out; callers validate the configured value.
func SplitHoldout(n int, fraction float64, seed int64) (train, holdout []int) {
	idx := rand.New(rand.NewSource(seed)).Perm(n)

	if fraction <= 0 || fraction >= 1 || n < 2 {
		return idx, nil
	}

	size := int(math.Ceil(float64(n) * fraction))
	if size >= n {
		size = n - 1
	}
	return idx[size:], idx[:size]
}
