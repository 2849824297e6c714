package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/heartcheck/predictor/internal/inference"
	"github.com/heartcheck/predictor/internal/model"
	"github.com/heartcheck/predictor/internal/patient"
	"github.com/heartcheck/predictor/internal/shared/types"
)

func newShippedHandler(t *testing.T) *Handler {
	t.Helper()

	p, err := model.Load("../../models/heart_disease_classifier.json")
	if err != nil {
		t.Fatalf("Failed to load model: %v", err)
	}
	return NewHandler(inference.NewAdapter(p), p.Info())
}

func doJSON(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type failingAssessor struct{}

func (failingAssessor) Assess(ctx context.Context, r patient.Record) (inference.Assessment, error) {
	return inference.Assessment{}, errors.New("pipeline exploded")
}

func TestPredictDefaultsFromEmptyBody(t *testing.T) {
	h := newShippedHandler(t).Routes()

	rec := doJSON(h, http.MethodPost, "/predict", `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp PredictionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}

	if resp.Label != patient.LabelNegative || resp.Result != patient.ResultNegative {
		t.Errorf("Expected negative result for defaults, got %d/%s", resp.Label, resp.Result)
	}

	if resp.Input != patient.Defaults() {
		t.Errorf("Expected defaults echoed, got %+v", resp.Input)
	}

	if _, err := types.ParseID(resp.RequestID); err != nil {
		t.Errorf("Request ID should be a UUID: %v", err)
	}

	if resp.ModelName != "heart-disease-logreg" || resp.ModelVersion != "1.0.0" {
		t.Errorf("Unexpected model %s@%s", resp.ModelName, resp.ModelVersion)
	}

	if resp.Probability <= 0 || resp.Probability >= 0.5 {
		t.Errorf("Unexpected probability %v for a negative label", resp.Probability)
	}
}

func TestPredictLowercaseCategoriesAccepted(t *testing.T) {
	h := newShippedHandler(t).Routes()

	body := `{"age":64,"chest_pain_type":"asymptomatic","exercise_induced_angina":"true","slope":"flat","colored_vessels":2,"thalassemia":"reversible defect"}`
	rec := doJSON(h, http.MethodPost, "/predict", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp PredictionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}

	if resp.Input.ChestPainType != "Asymptomatic" || resp.Input.Thalassemia != "Reversible Defect" {
		t.Errorf("Input should be echoed with display casing, got %+v", resp.Input)
	}

	if resp.Result != patient.ResultPositive {
		t.Errorf("Expected positive result, got %s", resp.Result)
	}
}

func TestPredictValidation(t *testing.T) {
	h := newShippedHandler(t).Routes()

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"age out of range", `{"age":130}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown category", `{"slope":"steep"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown field", `{"weight":80}`, http.StatusBadRequest, "BAD_REQUEST"},
		{"malformed body", `{"age":`, http.StatusBadRequest, "BAD_REQUEST"},
		{"wrong type", `{"age":"fifty"}`, http.StatusBadRequest, "BAD_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(h, http.MethodPost, "/predict", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("Expected %d, got %d", tt.status, rec.Code)
			}

			var resp map[string]any
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("Invalid JSON: %v", err)
			}
			if resp["code"] != tt.code {
				t.Errorf("Expected code %s, got %v", tt.code, resp["code"])
			}
		})
	}
}

func TestPredictPipelineFailure(t *testing.T) {
	h := NewHandler(failingAssessor{}, model.Info{}).Routes()

	rec := doJSON(h, http.MethodPost, "/predict", `{}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rec.Code)
	}

	if !strings.Contains(rec.Body.String(), "prediction failed") {
		t.Errorf("Unexpected body %s", rec.Body.String())
	}
}

func TestGetFields(t *testing.T) {
	h := newShippedHandler(t).Routes()

	rec := doJSON(h, http.MethodGet, "/fields", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp FieldsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}

	if len(resp.Fields) != 12 {
		t.Errorf("Expected 12 fields, got %d", len(resp.Fields))
	}

	if resp.Defaults != patient.Defaults() {
		t.Errorf("Unexpected defaults %+v", resp.Defaults)
	}
}

func TestGetModel(t *testing.T) {
	h := newShippedHandler(t).Routes()

	rec := doJSON(h, http.MethodGet, "/model", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var info model.Info
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}

	if info.Classifier != model.ClassifierLogisticRegression {
		t.Errorf("Unexpected classifier %s", info.Classifier)
	}

	if len(info.Categorical["slope"]) != 3 {
		t.Errorf("Unexpected slope vocabulary %v", info.Categorical["slope"])
	}
}

func TestUnknownRoute(t *testing.T) {
	h := newShippedHandler(t).Routes()

	rec := doJSON(h, http.MethodGet, "/predictions", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if resp["code"] != "NOT_FOUND" {
		t.Errorf("Expected NOT_FOUND, got %v", resp["code"])
	}
}
