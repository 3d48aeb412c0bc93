package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/ZanzyTHEbar/glucoscreen/internal/errors"
	"github.com/ZanzyTHEbar/glucoscreen/internal/types"
)

// State is the lifecycle stage of a Pipeline.
type State int32

const (
	StateUninitialized State = iota
	StateDataLoaded
	StateScalerFitted
	StateModelTrained
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateDataLoaded:
		return "DataLoaded"
	case StateScalerFitted:
		return "ScalerFitted"
	case StateModelTrained:
		return "ModelTrained"
	case StateReady:
		return "Ready"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// DatasetLoader supplies the reference dataset during initialization.
type DatasetLoader func() (*ReferenceDataset, error)

// FileDataset loads the reference dataset from a CSV file.
func FileDataset(path string) DatasetLoader {
	return func() (*ReferenceDataset, error) {
		return LoadDataset(path)
	}
}

// StaticDataset returns an already loaded dataset.
func StaticDataset(ds *ReferenceDataset) DatasetLoader {
	return func() (*ReferenceDataset, error) {
		if ds == nil {
			return nil, apperrors.NewDataLoadError("no reference dataset provided", nil)
		}
		return ds, nil
	}
}

// Options configures training.
type Options struct {
	TestFraction float64
	SplitSeed    int64
	Train        TrainOptions
	Store        *ModelStore // optional snapshot target
}

// DefaultOptions holds out 20% of rows with split seed 1.
func DefaultOptions() Options {
	return Options{
		TestFraction: 0.2,
		SplitSeed:    1,
		Train:        DefaultTrainOptions(),
	}
}

// Pipeline loads reference data, fits the scaler, trains the classifier and
// then scores vectors. Initialization happens once; afterwards the scaler and
// model are read-only and Assess is safe for concurrent use without locks.
type Pipeline struct {
	loader       DatasetLoader
	opts         Options
	preprocessor *Preprocessor

	mu      sync.Mutex
	state   atomic.Int32
	initErr error

	scaler  *ScalingParameters
	model   *TrainedModel
	summary ModelSummary
}

// NewPipeline creates an uninitialized pipeline.
func NewPipeline(loader DatasetLoader, opts Options) *Pipeline {
	return &Pipeline{
		loader:       loader,
		opts:         opts,
		preprocessor: NewPreprocessor(),
	}
}

// State returns the current lifecycle stage.
func (p *Pipeline) State() State {
	return State(p.state.Load())
}

// Ready reports whether assessments are accepted.
func (p *Pipeline) Ready() bool {
	return p.State() == StateReady
}

func (p *Pipeline) advance(to State) {
	p.state.Store(int32(to))
	slog.Info("Assessment pipeline state changed", "state", to.String())
}

// Initialize runs load, fit and train exactly once. A failure leaves the
// pipeline in the last state it reached and is returned again on later calls.
func (p *Pipeline) Initialize(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.State() == StateReady {
		return nil
	}
	if p.initErr != nil {
		return p.initErr
	}

	p.initErr = p.initialize(ctx)
	if p.initErr != nil {
		slog.Error("Assessment pipeline initialization failed",
			"state", p.State().String(),
			"error", p.initErr)
	}
	return p.initErr
}

func (p *Pipeline) initialize(ctx context.Context) error {
	start := time.Now()

	if p.loader == nil {
		return apperrors.NewDataLoadError("no reference dataset configured", nil)
	}
	ds, err := p.loader()
	if err != nil {
		if apperrors.IsCategory(err, apperrors.CategoryDataLoad) {
			return err
		}
		return apperrors.NewDataLoadError("failed to load reference dataset", err)
	}
	p.advance(StateDataLoaded)

	if err := ctx.Err(); err != nil {
		return err
	}

	scaler, err := FitScaler(ds)
	if err != nil {
		return err
	}
	p.advance(StateScalerFitted)

	if err := ctx.Err(); err != nil {
		return err
	}

	scaled := scaler.TransformAll(ds.vectors)
	trainIdx, holdoutIdx := SplitHoldout(ds.Len(), p.opts.TestFraction, p.opts.SplitSeed)

	trainX, trainY := gather(scaled, ds.labels, trainIdx)
	model, err := TrainClassifier(trainX, trainY, p.opts.Train)
	if err != nil {
		return err
	}
	p.advance(StateModelTrained)

	holdoutX, holdoutY := gather(scaled, ds.labels, holdoutIdx)
	report := Evaluate(model, holdoutX, holdoutY)

	counts := ds.ClassCounts()
	p.scaler = scaler
	p.model = model
	p.summary = ModelSummary{
		Features: types.FieldNames(types.Fields[:]),
		Scaling:  *scaler,
		Model:    *model,
		Holdout:  report,
		Training: TrainingStats{
			DatasetRows:  ds.Len(),
			TrainingRows: len(trainIdx),
			HoldoutRows:  len(holdoutIdx),
			Positives:    counts[1],
			Negatives:    counts[0],
			TrainedAt:    time.Now(),
			Duration:     time.Since(start).String(),
		},
	}

	if p.opts.Store != nil {
		summary := p.summary
		summary.State = StateReady.String()
		if err := p.opts.Store.Save(&summary); err != nil {
			slog.Warn("Failed to save model snapshot", "path", p.opts.Store.Path(), "error", err)
		}
	}

	p.advance(StateReady)
	slog.Info("Assessment pipeline ready",
		"rows", ds.Len(),
		"training_rows", len(trainIdx),
		"holdout_accuracy", report.Accuracy,
		"iterations", model.Iterations,
		"converged", model.Converged,
		"duration_ms", time.Since(start).Milliseconds())

	return nil
}

func gather(xs []ScaledVector, ys []int, idx []int) ([]ScaledVector, []int) {
	outX := make([]ScaledVector, len(idx))
	outY := make([]int, len(idx))
	for i, j := range idx {
		outX[i] = xs[j]
		outY[i] = ys[j]
	}
	return outX, outY
}

// Assess scales and classifies a complete vector. Advice is attached only
// when the label is positive.
func (p *Pipeline) Assess(v types.FeatureVector, source Source) (*Assessment, error) {
	if state := p.State(); state != StateReady {
		return nil, apperrors.NewNotReadyError(state.String())
	}

	scaled := p.scaler.Transform(v)
	margin := p.model.DecisionValue(scaled)
	label := p.model.Predict(scaled)

	advice := []string{}
	if label == 1 {
		advice = EvaluateAdvice(v)
	}

	return &Assessment{
		ID:         uuid.New().String(),
		Source:     source,
		Vector:     v,
		Label:      label,
		AtRisk:     label == 1,
		Margin:     margin,
		Advice:     advice,
		AssessedAt: time.Now(),
	}, nil
}

// AssessManual validates a manually entered vector against the form bounds before scoring.
func (p *Pipeline) AssessManual(v types.FeatureVector) (*Assessment, error) {
	if err := p.preprocessor.Validate(v); err != nil {
		return nil, err
	}
	return p.Assess(v, SourceManual)
}

// AssessExtracted scores a vector read from a document. Any absent field
// rejects the vector; absent values are never replaced with defaults.
func (p *Pipeline) AssessExtracted(pv types.PartialVector) (*Assessment, error) {
	v, missing := pv.Complete()
	if len(missing) > 0 {
		return nil, apperrors.NewIncompleteVectorError(types.FieldNames(missing))
	}
	return p.Assess(v, SourceDocument)
}

// Summary returns the fitted parameters and holdout evaluation.
func (p *Pipeline) Summary() (*ModelSummary, error) {
	if state := p.State(); state != StateReady {
		return nil, apperrors.NewNotReadyError(state.String())
	}
	summary := p.summary
	summary.State = StateReady.String()
	return &summary, nil
}

// Bounds returns the manual-entry ranges.
func (p *Pipeline) Bounds() map[string]Bound {
	return p.preprocessor.Bounds()
}
