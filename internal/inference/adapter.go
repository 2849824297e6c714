// Package inference turns a patient record into a one-row model input, runs
// the pipeline and returns its label.
package inference

import (
	"context"
	"fmt"
	"time"

	"github.com/heartcheck/predictor/internal/model"
	"github.com/heartcheck/predictor/internal/patient"
	"github.com/heartcheck/predictor/internal/shared/metrics"
)

// Pipeline is the opaque trained model: Record -> Label.
type Pipeline interface {
	Predict(rows []model.Row) ([]int, error)
	Classify(rows []model.Row) ([]model.Prediction, error)
}

// Assessment is a label together with the positive-class probability.
type Assessment struct {
	Label       patient.Label  `json:"label"`
	Result      patient.Result `json:"result"`
	Probability float64        `json:"probability"`
}

// Adapter is stateless; one call per user action.
type Adapter struct {
	pipeline Pipeline
	now      func() time.Time
}

func NewAdapter(pipeline Pipeline) *Adapter {
	return &Adapter{pipeline: pipeline, now: time.Now}
}

// Predict submits the record and returns the first label of the batch output.
// The record is not range-checked here; pipeline errors are returned as is,
// wrapped with context.
func (a *Adapter) Predict(ctx context.Context, r patient.Record) (patient.Label, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	start := a.now()
	labels, err := a.pipeline.Predict([]model.Row{BuildRow(r)})
	if err != nil {
		metrics.RecordPredictionError()
		return 0, fmt.Errorf("model prediction failed: %w", err)
	}

	label, err := first(labels)
	if err != nil {
		metrics.RecordPredictionError()
		return 0, err
	}

	metrics.RecordPrediction(string(patient.ResultFromLabel(label)), a.now().Sub(start))
	return label, nil
}

// Assess is Predict plus the probability behind the label. The pipeline is
// run once.
func (a *Adapter) Assess(ctx context.Context, r patient.Record) (Assessment, error) {
	if err := ctx.Err(); err != nil {
		return Assessment{}, err
	}

	start := a.now()
	preds, err := a.pipeline.Classify([]model.Row{BuildRow(r)})
	if err != nil {
		metrics.RecordPredictionError()
		return Assessment{}, fmt.Errorf("model prediction failed: %w", err)
	}
	if len(preds) == 0 {
		metrics.RecordPredictionError()
		return Assessment{}, fmt.Errorf("model returned no predictions")
	}

	label, err := first([]int{preds[0].Label})
	if err != nil {
		metrics.RecordPredictionError()
		return Assessment{}, err
	}

	result := patient.ResultFromLabel(label)
	metrics.RecordPrediction(string(result), a.now().Sub(start))

	return Assessment{
		Label:       label,
		Result:      result,
		Probability: preds[0].Probability,
	}, nil
}

// BuildRow lowercases the categorical values and keys every field by its
// column name.
func BuildRow(r patient.Record) model.Row {
	n := r.Normalize()

	row := model.Row{
		Numeric:     make(map[string]float64),
		Categorical: make(map[string]string),
	}
	for _, name := range patient.NumericFields() {
		row.Numeric[name], _ = n.Numeric(name)
	}
	for _, name := range patient.CategoricalFields() {
		row.Categorical[name], _ = n.Category(name)
	}
	return row
}

func first(labels []int) (patient.Label, error) {
	if len(labels) == 0 {
		return 0, fmt.Errorf("model returned no labels")
	}

	label := patient.Label(labels[0])
	if !label.Valid() {
		return 0, fmt.Errorf("model returned label %d outside {0, 1}", labels[0])
	}
	return label, nil
}
