package analysis

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	apperrors "github.com/ZanzyTHEbar/glucoscreen/internal/errors"
	"github.com/ZanzyTHEbar/glucoscreen/internal/types"
)

// OutcomeColumn is the label column of the reference dataset.
const OutcomeColumn = "Outcome"

// ReferenceDataset is the labelled data used to fit the scaler and train the classifier.
type ReferenceDataset struct {
	vectors []types.FeatureVector
	labels  []int
}

// NewReferenceDataset copies vectors and labels into an immutable dataset.
func NewReferenceDataset(vectors []types.FeatureVector, labels []int) (*ReferenceDataset, error) {
	if len(vectors) != len(labels) {
		return nil, apperrors.NewDataLoadError(
			fmt.Sprintf("dataset has %d rows but %d labels", len(vectors), len(labels)), nil)
	}
	for i, l := range labels {
		if l != 0 && l != 1 {
			return nil, apperrors.NewDataLoadError(fmt.Sprintf("row %d: outcome must be 0 or 1, got %d", i+1, l), nil)
		}
	}
	return &ReferenceDataset{
		vectors: append([]types.FeatureVector(nil), vectors...),
		labels:  append([]int(nil), labels...),
	}, nil
}

// Len returns the number of rows.
func (d *ReferenceDataset) Len() int {
	return len(d.vectors)
}

// Vectors returns a copy of the feature rows.
func (d *ReferenceDataset) Vectors() []types.FeatureVector {
	return append([]types.FeatureVector(nil), d.vectors...)
}

// Labels returns a copy of the outcome labels.
func (d *ReferenceDataset) Labels() []int {
	return append([]int(nil), d.labels...)
}

// ClassCounts returns how many rows carry each label.
func (d *ReferenceDataset) ClassCounts() map[int]int {
	counts := make(map[int]int, 2)
	for _, l := range d.labels {
		counts[l]++
	}
	return counts
}

// LoadDataset reads a reference dataset from a CSV file.
func LoadDataset(path string) (*ReferenceDataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewDataLoadError(fmt.Sprintf("failed to open reference dataset %s", path), err)
	}
	defer file.Close()

	return ParseDataset(file)
}

// ParseDataset reads CSV with a header row naming the eight feature columns and Outcome.
// Columns may appear in any order; extra columns are ignored.
func ParseDataset(r io.Reader) (*ReferenceDataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.NewDataLoadError("reference dataset is empty", nil)
	}
	if err != nil {
		return nil, apperrors.NewDataLoadError("failed to read dataset header", err)
	}

	columns, outcomeIdx, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var vectors []types.FeatureVector
	var labels []int

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewDataLoadError(fmt.Sprintf("failed to read dataset line %d", line), err)
		}

		var v types.FeatureVector
		for _, f := range types.Fields {
			val, err := strconv.ParseFloat(strings.TrimSpace(record[columns[f]]), 64)
			if err != nil {
				return nil, apperrors.NewDataLoadError(
					fmt.Sprintf("line %d: invalid %s value %q", line, f, record[columns[f]]), err)
			}
			v[f] = val
		}

		outcome, err := strconv.Atoi(strings.TrimSpace(record[outcomeIdx]))
		if err != nil || (outcome != 0 && outcome != 1) {
			return nil, apperrors.NewDataLoadError(
				fmt.Sprintf("line %d: outcome must be 0 or 1, got %q", line, record[outcomeIdx]), err)
		}

		vectors = append(vectors, v)
		labels = append(labels, outcome)
	}

	if len(vectors) == 0 {
		return nil, apperrors.NewDataLoadError("reference dataset has no rows", nil)
	}

	return &ReferenceDataset{vectors: vectors, labels: labels}, nil
}

func mapColumns(header []string) ([types.NumFeatures]int, int, error) {
	var columns [types.NumFeatures]int
	seen := [types.NumFeatures]bool{}
	outcomeIdx := -1

	for i, name := range header {
		name = strings.TrimPrefix(name, "\ufeff")
		if strings.EqualFold(strings.TrimSpace(name), OutcomeColumn) {
			outcomeIdx = i
			continue
		}
		if f, ok := types.FieldByName(name); ok && !seen[f] {
			columns[f] = i
			seen[f] = true
		}
	}

	var missing []string
	for _, f := range types.Fields {
		if !seen[f] {
			missing = append(missing, f.String())
		}
	}
	if outcomeIdx < 0 {
		missing = append(missing, OutcomeColumn)
	}
	if len(missing) > 0 {
		return columns, 0, apperrors.NewDataLoadError(
			fmt.Sprintf("reference dataset is missing columns: %s", strings.Join(missing, ", ")), nil)
	}

	return columns, outcomeIdx, nil
}
