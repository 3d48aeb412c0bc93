package analysis

import (
	"time"

	"github.com/ZanzyTHEbar/glucoscreen/internal/types"
)

// Source records where an assessed vector came from.
type Source string

const (
	SourceManual   Source = "manual"
	SourceDocument Source = "document"
)

// Assessment is the result of scoring one complete vector.
type Assessment struct {
	ID         string              `json:"id"`
	Source     Source              `json:"source"`
	Vector     types.FeatureVector `json:"vector"`
	Label      int                 `json:"label"`
	AtRisk     bool                `json:"at_risk"`
	Margin     float64             `json:"margin"`
	Advice     []string            `json:"advice"`
	AssessedAt time.Time           `json:"assessed_at"`
}

// TrainingStats describes the data the model was fitted on.
type TrainingStats struct {
	DatasetRows  int       `json:"dataset_rows"`
	TrainingRows int       `json:"training_rows"`
	HoldoutRows  int       `json:"holdout_rows"`
	Positives    int       `json:"positives"`
	Negatives    int       `json:"negatives"`
	TrainedAt    time.Time `json:"trained_at"`
	Duration     string    `json:"duration"`
}

// ModelSummary is the read-only view of a Ready pipeline.
type ModelSummary struct {
	State    string            `json:"state"`
	Features []string          `json:"features"`
	Scaling  ScalingParameters `json:"scaling"`
	Model    TrainedModel      `json:"model"`
	Holdout  EvaluationReport  `json:"holdout"`
	Training TrainingStats     `json:"training"`
}
