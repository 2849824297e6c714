package api

import (
	"time"

	"github.com/heartcheck/predictor/internal/patient"
)

// PredictionResponse is returned by POST /predict
type PredictionResponse struct {
	RequestID    string         `json:"request_id"`
	Timestamp    time.Time      `json:"timestamp"`
	Label        patient.Label  `json:"label"`
	Result       patient.Result `json:"result"`
	Message      string         `json:"message"`
	Caution      string         `json:"caution"`
	Probability  float64        `json:"probability"`
	ModelName    string         `json:"model_name"`
	ModelVersion string         `json:"model_version"`
	Input        patient.Record `json:"input"`
}

// FieldsResponse is the data dictionary and control domains
type FieldsResponse struct {
	Fields   []patient.Field `json:"fields"`
	Defaults patient.Record  `json:"defaults"`
}
