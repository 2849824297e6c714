// Package api exposes the prediction form's operations as JSON.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/heartcheck/predictor/internal/inference"
	"github.com/heartcheck/predictor/internal/model"
	"github.com/heartcheck/predictor/internal/patient"
	"github.com/heartcheck/predictor/internal/shared/errors"
	"github.com/heartcheck/predictor/internal/shared/types"
)

// Assessor runs the model and reports label and probability.
type Assessor interface {
	Assess(ctx context.Context, r patient.Record) (inference.Assessment, error)
}

// Handler provides HTTP handlers for the JSON API
type Handler struct {
	assessor Assessor
	model    model.Info
}

// NewHandler creates a new API handler
func NewHandler(assessor Assessor, info model.Info) *Handler {
	return &Handler{assessor: assessor, model: info}
}

// Routes registers the API routes. predictMiddleware wraps only /predict.
func (h *Handler) Routes(predictMiddleware ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.With(predictMiddleware...).Post("/predict", h.Predict)
	r.Get("/fields", h.GetFields)
	r.Get("/model", h.GetModel)
	r.NotFound(h.NotFound)

	return r
}

// Predict handles a prediction request. Fields missing from the body take
// their form defaults.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	record := patient.Defaults()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&record); err != nil {
		writeError(w, errors.BadRequest("invalid request body: "+err.Error()))
		return
	}

	if err := record.Validate(); err != nil {
		writeError(w, err)
		return
	}
	record = record.Canonical()

	assessment, err := h.assessor.Assess(r.Context(), record)
	if err != nil {
		fmt.Printf("Prediction failed (request %s): %v\n", chimw.GetReqID(r.Context()), err)
		writeError(w, errors.Wrap(err, "prediction failed"))
		return
	}

	writeJSON(w, http.StatusOK, PredictionResponse{
		RequestID:    types.NewID().String(),
		Timestamp:    time.Now().UTC(),
		Label:        assessment.Label,
		Result:       assessment.Result,
		Message:      assessment.Result.Message(),
		Caution:      assessment.Result.Caution(),
		Probability:  assessment.Probability,
		ModelName:    h.model.Name,
		ModelVersion: h.model.Version,
		Input:        record,
	})
}

// GetFields returns the data dictionary
func (h *Handler) GetFields(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, FieldsResponse{
		Fields:   patient.Fields(),
		Defaults: patient.Defaults(),
	})
}

// GetModel returns the loaded artifact's identity and vocabulary
func (h *Handler) GetModel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.model)
}

// NotFound answers unknown API paths with a JSON error instead of the form page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, errors.NotFound("route", r.URL.Path))
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	appErr := errors.As(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]any{
		"error":   appErr.Message,
		"code":    appErr.Code,
		"details": appErr.Details,
	})
}
