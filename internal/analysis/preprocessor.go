package analysis

import (
	"fmt"
	"math"

	apperrors "github.com/ZanzyTHEbar/glucoscreen/internal/errors"
	"github.com/ZanzyTHEbar/glucoscreen/internal/types"
)

// Bound is an inclusive range for one manually entered field.
type Bound struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Integer bool    `json:"integer"`
}

// ManualEntryBounds are the ranges offered by the manual-entry form.
var ManualEntryBounds = [types.NumFeatures]Bound{
	types.Pregnancies:              {Min: 0, Max: 17, Integer: true},
	types.Glucose:                  {Min: 0, Max: 199},
	types.BloodPressure:            {Min: 0, Max: 122},
	types.SkinThickness:            {Min: 0, Max: 99},
	types.Insulin:                  {Min: 0, Max: 846},
	types.BMI:                      {Min: 0, Max: 67.1},
	types.DiabetesPedigreeFunction: {Min: 0.078, Max: 2.42},
	types.Age:                      {Min: 21, Max: 81, Integer: true},
}

// Preprocessor validates manually entered vectors before they reach the pipeline.
type Preprocessor struct {
	bounds [types.NumFeatures]Bound
}

// NewPreprocessor creates a preprocessor using the manual-entry form bounds.
func NewPreprocessor() *Preprocessor {
	return &Preprocessor{bounds: ManualEntryBounds}
}

// Validate rejects values outside the form ranges, non-finite values and
// fractional counts. Every offending field is reported.
func (p *Preprocessor) Validate(v types.FeatureVector) error {
	problems := make(map[string]string)

	for _, f := range types.Fields {
		val := v[f]
		b := p.bounds[f]

		switch {
		case math.IsNaN(val) || math.IsInf(val, 0):
			problems[f.String()] = "must be a finite number"
		case val < b.Min || val > b.Max:
			problems[f.String()] = fmt.Sprintf("must be between %g and %g", b.Min, b.Max)
		case b.Integer && val != math.Trunc(val):
			problems[f.String()] = "must be a whole number"
		}
	}

	if len(problems) > 0 {
		return apperrors.NewValidationErrorWithMap(problems)
	}
	return nil
}

// Bounds returns the ranges keyed by field name.
func (p *Preprocessor) Bounds() map[string]Bound {
	out := make(map[string]Bound, types.NumFeatures)
	for _, f := range types.Fields {
		out[f.String()] = p.bounds[f]
	}
	return out
}
