// Package web serves the single-page prediction form.
package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/heartcheck/predictor/internal/patient"
	"github.com/heartcheck/predictor/internal/shared/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Predictor is the inference adapter as seen by the form.
type Predictor interface {
	Predict(ctx context.Context, r patient.Record) (patient.Label, error)
}

// Handler provides HTTP handlers for the form page
type Handler struct {
	predictor Predictor
}

// NewHandler creates a new form handler
func NewHandler(predictor Predictor) *Handler {
	return &Handler{predictor: predictor}
}

// Routes registers the form routes. predictMiddleware wraps only the route
// that runs the model.
func (h *Handler) Routes(predictMiddleware ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Index)
	r.With(predictMiddleware...).Post("/predict", h.Predict)
	r.Handle("/static/*", StaticHandler())

	return r
}

// StaticHandler serves the page stylesheet and script.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

// Index renders the form with default values and no result.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, newPageView(NewPageState()))
}

// Predict runs the model on the submitted controls and renders the result.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	state := NewPageState()

	record, err := parseForm(r)
	state.Record = record
	if err != nil {
		renderError(w, r, state, err)
		return
	}

	label, err := h.predictor.Predict(r.Context(), record)
	if err != nil {
		fmt.Printf("Prediction failed (request %s): %v\n", chimw.GetReqID(r.Context()), err)
		renderError(w, r, state, errors.Wrap(err, "prediction failed"))
		return
	}

	state.Result = patient.ResultFromLabel(label)
	view := newPageView(state)
	view.Submitted = true
	render(w, r, http.StatusOK, view)
}

// parseForm builds a record from the posted controls. Controls that are
// absent keep their default value.
func parseForm(r *http.Request) (patient.Record, error) {
	record := patient.Defaults()

	if err := r.ParseForm(); err != nil {
		return record, errors.BadRequest("invalid form submission")
	}

	details := make(map[string]string)
	for _, f := range patient.Fields() {
		raw, ok := r.PostForm[f.Name]
		if !ok || len(raw) == 0 {
			continue
		}
		if err := record.Set(f.Name, raw[0]); err != nil {
			details[f.Name] = err.Error()
		}
	}
	if len(details) > 0 {
		return record, errors.Validation("form values could not be read", details)
	}

	if err := record.Validate(); err != nil {
		return record, err
	}
	return record.Canonical(), nil
}

func renderError(w http.ResponseWriter, r *http.Request, state PageState, err error) {
	appErr := errors.As(err)

	view := newPageView(state)
	view.Error = appErr.Message
	view.Details = appErr.Details
	view.RequestID = chimw.GetReqID(r.Context())
	view.Submitted = true

	render(w, r, appErr.HTTPStatus, view)
}

func render(w http.ResponseWriter, r *http.Request, status int, view pageView) {
	var buf bytes.Buffer
	if err := pageTemplate.ExecuteTemplate(&buf, "page.html", view); err != nil {
		fmt.Printf("Template render failed (request %s): %v\n", chimw.GetReqID(r.Context()), err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
