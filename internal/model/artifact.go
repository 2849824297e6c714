package model

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"
)

// ClassifierLogisticRegression is the only classifier type the loader accepts.
const ClassifierLogisticRegression = "logistic_regression"

// Artifact is the serialized form of a trained pipeline. Feature order is the
// numeric columns followed by the one-hot blocks of the categorical columns,
// each in declaration order.
type Artifact struct {
	Name        string              `json:"name"`
	Version     string              `json:"version"`
	TrainedAt   time.Time           `json:"trained_at"`
	Description string              `json:"description,omitempty"`
	Numeric     []ScalerColumn      `json:"numeric"`
	Categorical []EncoderColumn     `json:"categorical"`
	Classifier  ClassifierParameter `json:"classifier"`
}

// ScalerColumn holds robust scaling parameters: (x - Center) / Scale, where
// Center is the training median and Scale the interquartile range.
type ScalerColumn struct {
	Column string  `json:"column"`
	Center float64 `json:"center"`
	Scale  float64 `json:"scale"`
}

// EncoderColumn holds the training vocabulary of one categorical column.
type EncoderColumn struct {
	Column     string   `json:"column"`
	Categories []string `json:"categories"`
}

type ClassifierParameter struct {
	Type         string    `json:"type"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
	Threshold    float64   `json:"threshold"`
}

// Load reads and validates a pipeline artifact from path.
func Load(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to decode model artifact %s: %w", path, err)
	}

	p, err := New(a)
	if err != nil {
		return nil, fmt.Errorf("incompatible model artifact %s: %w", path, err)
	}
	return p, nil
}

func (a Artifact) validate() error {
	if a.Name == "" || a.Version == "" {
		return fmt.Errorf("name and version are required")
	}

	if a.Classifier.Type != ClassifierLogisticRegression {
		return fmt.Errorf("unsupported classifier type %q", a.Classifier.Type)
	}

	if a.Classifier.Threshold <= 0 || a.Classifier.Threshold >= 1 {
		return fmt.Errorf("classifier threshold %v must be in (0, 1)", a.Classifier.Threshold)
	}

	seen := make(map[string]bool)
	width := 0

	for _, c := range a.Numeric {
		if c.Column == "" || seen[c.Column] {
			return fmt.Errorf("numeric column %q is empty or duplicated", c.Column)
		}
		seen[c.Column] = true
		if c.Scale == 0 || math.IsNaN(c.Scale) || math.IsNaN(c.Center) {
			return fmt.Errorf("numeric column %q has an invalid scaler", c.Column)
		}
		width++
	}

	for _, c := range a.Categorical {
		if c.Column == "" || seen[c.Column] {
			return fmt.Errorf("categorical column %q is empty or duplicated", c.Column)
		}
		seen[c.Column] = true
		if len(c.Categories) == 0 {
			return fmt.Errorf("categorical column %q has no categories", c.Column)
		}
		vocab := make(map[string]bool, len(c.Categories))
		for _, cat := range c.Categories {
			if vocab[cat] {
				return fmt.Errorf("categorical column %q repeats category %q", c.Column, cat)
			}
			vocab[cat] = true
		}
		width += len(c.Categories)
	}

	if width == 0 {
		return fmt.Errorf("artifact declares no columns")
	}

	if len(a.Classifier.Coefficients) != width {
		return fmt.Errorf("classifier expects %d features, encoder produces %d",
			len(a.Classifier.Coefficients), width)
	}

	return nil
}
