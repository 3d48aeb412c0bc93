package types

import (
	"fmt"
	"strings"
)

// Field identifies one slot of a FeatureVector. Values are positional indices.
type Field int

const (
	Pregnancies Field = iota
	Glucose
	BloodPressure
	SkinThickness
	Insulin
	BMI
	DiabetesPedigreeFunction
	Age
)

// NumFeatures is the fixed width of every feature vector.
const NumFeatures = 8

// Fields lists every field in vector order.
var Fields = [NumFeatures]Field{
	Pregnancies, Glucose, BloodPressure, SkinThickness,
	Insulin, BMI, DiabetesPedigreeFunction, Age,
}

var fieldNames = [NumFeatures]string{
	"Pregnancies",
	"Glucose",
	"BloodPressure",
	"SkinThickness",
	"Insulin",
	"BMI",
	"DiabetesPedigreeFunction",
	"Age",
}

// reportLabels are the labels as printed on lab reports.
var reportLabels = [NumFeatures]string{
	"Pregnancies",
	"Glucose",
	"Blood Pressure",
	"Skin Thickness",
	"Insulin",
	"BMI",
	"Diabetes Pedigree Function",
	"Age",
}

// String returns the dataset column name for the field.
func (f Field) String() string {
	if f < 0 || int(f) >= NumFeatures {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

// ReportLabel returns the label used for the field in report documents.
func (f Field) ReportLabel() string {
	if f < 0 || int(f) >= NumFeatures {
		return ""
	}
	return reportLabels[f]
}

// FieldByName resolves a dataset column or report label to a Field.
// Matching ignores case and spaces.
func FieldByName(name string) (Field, bool) {
	key := normalizeName(name)
	for _, f := range Fields {
		if normalizeName(fieldNames[f]) == key || normalizeName(reportLabels[f]) == key {
			return f, true
		}
	}
	return 0, false
}

func normalizeName(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
}

// FeatureVector holds the eight clinical measurements in fixed order.
type FeatureVector [NumFeatures]float64

// Get returns the value at field f.
func (v FeatureVector) Get(f Field) float64 {
	return v[f]
}

// Map returns the vector keyed by dataset column name.
func (v FeatureVector) Map() map[string]float64 {
	m := make(map[string]float64, NumFeatures)
	for _, f := range Fields {
		m[f.String()] = v[f]
	}
	return m
}

// DefaultVector is the manual-entry starting point.
var DefaultVector = FeatureVector{3, 117, 72, 23, 30, 32.0, 0.3725, 29}

// Measurement is a single extracted value that may be absent.
type Measurement struct {
	Value   float64
	Present bool
}

// Present wraps a matched value.
func Present(v float64) Measurement {
	return Measurement{Value: v, Present: true}
}

// Absent marks a field whose label was not found.
func Absent() Measurement {
	return Measurement{}
}

// PartialVector is a FeatureVector where any field may be absent.
type PartialVector [NumFeatures]Measurement

// Missing returns the absent fields in vector order.
func (p PartialVector) Missing() []Field {
	var missing []Field
	for _, f := range Fields {
		if !p[f].Present {
			missing = append(missing, f)
		}
	}
	return missing
}

// Complete returns the full vector when every field is present.
// Otherwise it returns the absent fields and a zero vector that must not be used.
func (p PartialVector) Complete() (FeatureVector, []Field) {
	missing := p.Missing()
	if len(missing) > 0 {
		return FeatureVector{}, missing
	}
	var v FeatureVector
	for _, f := range Fields {
		v[f] = p[f].Value
	}
	return v, nil
}

// Map reports present values by name and nil for absent ones.
func (p PartialVector) Map() map[string]*float64 {
	m := make(map[string]*float64, NumFeatures)
	for _, f := range Fields {
		if p[f].Present {
			val := p[f].Value
			m[f.String()] = &val
		} else {
			m[f.String()] = nil
		}
	}
	return m
}

// FieldNames converts fields to their column names.
func FieldNames(fields []Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.String()
	}
	return names
}

// AssessRequest is the manual-entry payload.
type AssessRequest struct {
	Pregnancies              *float64 `json:"pregnancies" binding:"required"`
	Glucose                  *float64 `json:"glucose" binding:"required"`
	BloodPressure            *float64 `json:"blood_pressure" binding:"required"`
	SkinThickness            *float64 `json:"skin_thickness" binding:"required"`
	Insulin                  *float64 `json:"insulin" binding:"required"`
	BMI                      *float64 `json:"bmi" binding:"required"`
	DiabetesPedigreeFunction *float64 `json:"diabetes_pedigree_function" binding:"required"`
	Age                      *float64 `json:"age" binding:"required"`
}

// Vector converts the request into a FeatureVector. Binding guarantees every pointer is set.
func (r AssessRequest) Vector() FeatureVector {
	return FeatureVector{
		*r.Pregnancies, *r.Glucose, *r.BloodPressure, *r.SkinThickness,
		*r.Insulin, *r.BMI, *r.DiabetesPedigreeFunction, *r.Age,
	}
}
