package analysis

import (
	"math"

	apperrors "github.com/ZanzyTHEbar/glucoscreen/internal/errors"
	"github.com/ZanzyTHEbar/glucoscreen/internal/types"
)

// ScaledVector is a FeatureVector after standardization.
type ScaledVector [types.NumFeatures]float64

// ScalingParameters holds the per-feature mean and population standard deviation.
type ScalingParameters struct {
	Mean [types.NumFeatures]float64 `json:"mean"`
	Std  [types.NumFeatures]float64 `json:"std"`
}

// FitScaler computes standardization parameters from the reference dataset.
// A column with zero variance cannot be rescaled and fails the fit.
func FitScaler(ds *ReferenceDataset) (*ScalingParameters, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, apperrors.NewDataLoadError("cannot fit scaler on an empty dataset", nil)
	}

	n := float64(ds.Len())
	params := &ScalingParameters{}

	// summing a repeated non-dyadic value leaves a rounding residue in the
	// mean, so constant columns are detected on the raw values
	first := ds.vectors[0]
	var varies [types.NumFeatures]bool
	for _, v := range ds.vectors {
		for i := range v {
			params.Mean[i] += v[i]
			if v[i] != first[i] {
				varies[i] = true
			}
		}
	}
	for i := range params.Mean {
		params.Mean[i] /= n
	}

	for _, v := range ds.vectors {
		for i := range v {
			d := v[i] - params.Mean[i]
			params.Std[i] += d * d
		}
	}
	for i := range params.Std {
		params.Std[i] = math.Sqrt(params.Std[i] / n)
		if !varies[i] || params.Std[i] == 0 || math.IsNaN(params.Std[i]) {
			return nil, apperrors.NewDegenerateFeatureError(types.Field(i).String())
		}
	}

	return params, nil
}

// Transform standardizes a raw vector. It never mutates the parameters.
func (p *ScalingParameters) Transform(v types.FeatureVector) ScaledVector {
	var out ScaledVector
	for i := range v {
		out[i] = (v[i] - p.Mean[i]) / p.Std[i]
	}
	return out
}

// TransformAll standardizes every vector in order.
func (p *ScalingParameters) TransformAll(vs []types.FeatureVector) []ScaledVector {
	out := make([]ScaledVector, len(vs))
	for i, v := range vs {
		out[i] = p.Transform(v)
	}
	return out
}
