package analysis

// EvaluationReport summarizes classifier performance on held-out rows.
// It is informational and never influences predictions.
type EvaluationReport struct {
	Total          int     `json:"total"`
	TruePositives  int     `json:"true_positives"`
	TrueNegatives  int     `json:"true_negatives"`
	FalsePositives int     `json:"false_positives"`
	FalseNegatives int     `json:"false_negatives"`
	Accuracy       float64 `json:"accuracy"`
	Precision      float64 `json:"precision"`
	Recall         float64 `json:"recall"`
}

// Evaluate scores the model against labelled vectors.
func Evaluate(model *TrainedModel, xs []ScaledVector, ys []int) EvaluationReport {
	report := EvaluationReport{Total: len(xs)}

	for i, x := range xs {
		predicted := model.Predict(x)
		switch {
		case predicted == 1 && ys[i] == 1:
			report.TruePositives++
		case predicted == 0 && ys[i] == 0:
			report.TrueNegatives++
		case predicted == 1:
			report.FalsePositives++
		default:
			report.FalseNegatives++
		}
	}

	if report.Total > 0 {
		report.Accuracy = float64(report.TruePositives+report.TrueNegatives) / float64(report.Total)
	}
	if p := report.TruePositives + report.FalsePositives; p > 0 {
		report.Precision = float64(report.TruePositives) / float64(p)
	}
	if a := report.TruePositives + report.FalseNegatives; a > 0 {
		report.Recall = float64(report.TruePositives) / float64(a)
	}

	return report
}
