// Package model evaluates a pre-trained preprocessing and classification
// pipeline: robust scaling of numeric columns, one-hot encoding of categorical
// columns and a logistic-regression classifier.
package model

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/heartcheck/predictor/internal/shared/types"
)

var (
	ErrMissingColumn   = errors.New("missing column")
	ErrUnknownCategory = errors.New("unknown category")
	ErrEmptyBatch      = errors.New("empty batch")
)

// Row is a single input record keyed by column name.
type Row struct {
	Numeric     map[string]float64
	Categorical map[string]string
}

// Info describes a loaded artifact.
type Info struct {
	ID          types.ID            `json:"id"`
	Name        string              `json:"name"`
	Version     string              `json:"version"`
	TrainedAt   time.Time           `json:"trained_at"`
	Description string              `json:"description,omitempty"`
	Classifier  string              `json:"classifier"`
	Threshold   float64             `json:"threshold"`
	Numeric     []string            `json:"numeric_columns"`
	Categorical map[string][]string `json:"categorical_columns"`
}

// Pipeline is immutable after construction and safe for concurrent use.
type Pipeline struct {
	artifact Artifact
	index    []map[string]int // per categorical column: category -> one-hot offset
}

// New builds a pipeline from an already decoded artifact.
func New(a Artifact) (*Pipeline, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}

	index := make([]map[string]int, len(a.Categorical))
	for i, c := range a.Categorical {
		index[i] = make(map[string]int, len(c.Categories))
		for j, cat := range c.Categories {
			index[i][cat] = j
		}
	}

	return &Pipeline{artifact: a, index: index}, nil
}

// Info returns the artifact's identity and vocabulary.
func (p *Pipeline) Info() Info {
	cats := make(map[string][]string, len(p.artifact.Categorical))
	for _, c := range p.artifact.Categorical {
		cats[c.Column] = append([]string(nil), c.Categories...)
	}

	return Info{
		ID:          types.NewDeterministicID("model", p.artifact.Name+"@"+p.artifact.Version),
		Name:        p.artifact.Name,
		Version:     p.artifact.Version,
		TrainedAt:   p.artifact.TrainedAt,
		Description: p.artifact.Description,
		Classifier:  p.artifact.Classifier.Type,
		Threshold:   p.artifact.Classifier.Threshold,
		Numeric:     p.NumericColumns(),
		Categorical: cats,
	}
}

// NumericColumns returns the scaled columns in feature order.
func (p *Pipeline) NumericColumns() []string {
	cols := make([]string, len(p.artifact.Numeric))
	for i, c := range p.artifact.Numeric {
		cols[i] = c.Column
	}
	return cols
}

// Categories returns the training vocabulary of a categorical column.
func (p *Pipeline) Categories(column string) ([]string, bool) {
	for _, c := range p.artifact.Categorical {
		if c.Column == column {
			return append([]string(nil), c.Categories...), true
		}
	}
	return nil, false
}

// Transform applies the scaler and the encoder to one row.
func (p *Pipeline) Transform(row Row) ([]float64, error) {
	features := make([]float64, 0, len(p.artifact.Classifier.Coefficients))

	for _, c := range p.artifact.Numeric {
		v, ok := row.Numeric[c.Column]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c.Column)
		}
		features = append(features, (v-c.Center)/c.Scale)
	}

	for i, c := range p.artifact.Categorical {
		v, ok := row.Categorical[c.Column]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c.Column)
		}
		pos, ok := p.index[i][v]
		if !ok {
			return nil, fmt.Errorf("%w %q in column %s", ErrUnknownCategory, v, c.Column)
		}
		block := make([]float64, len(c.Categories))
		block[pos] = 1
		features = append(features, block...)
	}

	return features, nil
}

// PredictProba returns the positive-class probability for each row.
func (p *Pipeline) PredictProba(rows []Row) ([]float64, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyBatch
	}

	out := make([]float64, len(rows))
	for i, row := range rows {
		x, err := p.Transform(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}

		z := p.artifact.Classifier.Intercept
		for j, coef := range p.artifact.Classifier.Coefficients {
			z += coef * x[j]
		}
		out[i] = sigmoid(z)
	}
	return out, nil
}

// Prediction is one row's label together with the probability it was
// derived from.
type Prediction struct {
	Label       int
	Probability float64
}

// Classify scores each row once and applies the decision threshold.
func (p *Pipeline) Classify(rows []Row) ([]Prediction, error) {
	probs, err := p.PredictProba(rows)
	if err != nil {
		return nil, err
	}

	out := make([]Prediction, len(probs))
	for i, prob := range probs {
		out[i] = Prediction{Probability: prob}
		if prob >= p.artifact.Classifier.Threshold {
			out[i].Label = 1
		}
	}
	return out, nil
}

// Predict returns a 0/1 label for each row.
func (p *Pipeline) Predict(rows []Row) ([]int, error) {
	preds, err := p.Classify(rows)
	if err != nil {
		return nil, err
	}

	labels := make([]int, len(preds))
	for i, pred := range preds {
		labels[i] = pred.Label
	}
	return labels, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
