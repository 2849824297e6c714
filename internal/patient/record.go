// Package patient defines the clinical record submitted for a heart disease
// prediction and the catalog of its twelve fields.
package patient

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/heartcheck/predictor/internal/shared/errors"
)

// Record holds one patient's measurements for a single inference call.
// Categorical values keep their display casing until Normalize is called.
type Record struct {
	Age                   int     `json:"age"`
	ChestPainType         string  `json:"chest_pain_type"`
	RestingSystolicBP     int     `json:"resting_systolic_bp"`
	Cholesterol           int     `json:"cholesterol"`
	HighFastingBloodSugar string  `json:"high_fasting_blood_sugar"`
	RestingECG            string  `json:"resting_ecg"`
	MaxHeartRate          int     `json:"max_heart_rate"`
	ExerciseInducedAngina string  `json:"exercise_induced_angina"`
	STDepression          float64 `json:"st_depression"`
	Slope                 string  `json:"slope"`
	ColoredVessels        int     `json:"colored_vessels"`
	Thalassemia           string  `json:"thalassemia"`
}

// Defaults returns the record the form is pre-populated with.
func Defaults() Record {
	var r Record
	for _, f := range fields {
		if err := r.Set(f.Name, f.Default); err != nil {
			panic(fmt.Sprintf("patient: invalid default for %s: %v", f.Name, err))
		}
	}
	return r
}

// Normalize returns a copy with every categorical value lowercased, the form
// the model's encoder vocabulary uses.
func (r Record) Normalize() Record {
	r.ChestPainType = strings.ToLower(r.ChestPainType)
	r.HighFastingBloodSugar = strings.ToLower(r.HighFastingBloodSugar)
	r.RestingECG = strings.ToLower(r.RestingECG)
	r.ExerciseInducedAngina = strings.ToLower(r.ExerciseInducedAngina)
	r.Slope = strings.ToLower(r.Slope)
	r.Thalassemia = strings.ToLower(r.Thalassemia)
	return r
}

// Numeric returns the value of an integer or float field.
func (r Record) Numeric(name string) (float64, bool) {
	switch name {
	case FieldAge:
		return float64(r.Age), true
	case FieldRestingSystolicBP:
		return float64(r.RestingSystolicBP), true
	case FieldCholesterol:
		return float64(r.Cholesterol), true
	case FieldMaxHeartRate:
		return float64(r.MaxHeartRate), true
	case FieldSTDepression:
		return r.STDepression, true
	case FieldColoredVessels:
		return float64(r.ColoredVessels), true
	}
	return 0, false
}

// Category returns the value of a categorical field.
func (r Record) Category(name string) (string, bool) {
	switch name {
	case FieldChestPainType:
		return r.ChestPainType, true
	case FieldHighFastingBloodSugar:
		return r.HighFastingBloodSugar, true
	case FieldRestingECG:
		return r.RestingECG, true
	case FieldExerciseInducedAngina:
		return r.ExerciseInducedAngina, true
	case FieldSlope:
		return r.Slope, true
	case FieldThalassemia:
		return r.Thalassemia, true
	}
	return "", false
}

// Value formats a field for display and for form control values.
func (r Record) Value(name string) string {
	if v, ok := r.Category(name); ok {
		return v
	}
	v, ok := r.Numeric(name)
	if !ok {
		return ""
	}
	f, _ := LookupField(name)
	return FormatNumber(f, v)
}

// Set parses raw into the named field. It checks syntax only; use Validate
// for domain checks.
func (r *Record) Set(name, raw string) error {
	raw = strings.TrimSpace(raw)
	f, ok := LookupField(name)
	if !ok {
		return fmt.Errorf("unknown field %q", name)
	}

	switch f.Kind {
	case KindCategory:
		r.setCategory(name, raw)
		return nil
	case KindFloat:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be a number", name)
		}
		r.STDepression = v
		return nil
	default:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s must be a whole number", name)
		}
		r.setInteger(name, v)
		return nil
	}
}

func (r *Record) setCategory(name, v string) {
	switch name {
	case FieldChestPainType:
		r.ChestPainType = v
	case FieldHighFastingBloodSugar:
		r.HighFastingBloodSugar = v
	case FieldRestingECG:
		r.RestingECG = v
	case FieldExerciseInducedAngina:
		r.ExerciseInducedAngina = v
	case FieldSlope:
		r.Slope = v
	case FieldThalassemia:
		r.Thalassemia = v
	}
}

func (r *Record) setInteger(name string, v int) {
	switch name {
	case FieldAge:
		r.Age = v
	case FieldRestingSystolicBP:
		r.RestingSystolicBP = v
	case FieldCholesterol:
		r.Cholesterol = v
	case FieldMaxHeartRate:
		r.MaxHeartRate = v
	case FieldColoredVessels:
		r.ColoredVessels = v
	}
}

// Validate checks every field against its domain. Categorical values are
// matched case-insensitively. The form controls cannot produce invalid values;
// this guards requests that bypass them.
func (r Record) Validate() error {
	details := make(map[string]string)

	for _, f := range fields {
		if f.IsCategorical() {
			v, _ := r.Category(f.Name)
			if !containsFold(f.Choices, v) {
				details[f.Name] = fmt.Sprintf("must be one of: %s", strings.Join(f.Choices, ", "))
			}
			continue
		}

		v, _ := r.Numeric(f.Name)
		if math.IsNaN(v) || v < f.Min || v > f.Max {
			details[f.Name] = fmt.Sprintf("must be between %s and %s", FormatNumber(f, f.Min), FormatNumber(f, f.Max))
		}
	}

	if len(details) > 0 {
		return errors.Validation("patient record is out of range", details)
	}
	return nil
}

// Canonical replaces every categorical value with the catalog's display
// spelling. Unknown values are left untouched.
func (r Record) Canonical() Record {
	for _, name := range CategoricalFields() {
		f, _ := LookupField(name)
		v, _ := r.Category(name)
		for _, c := range f.Choices {
			if strings.EqualFold(c, v) {
				r.setCategory(name, c)
				break
			}
		}
	}
	return r
}

func containsFold(choices []string, v string) bool {
	for _, c := range choices {
		if strings.EqualFold(c, v) {
			return true
		}
	}
	return false
}

// FormatNumber renders a numeric field value. Floats use the shortest exact
// form with at least one decimal.
func FormatNumber(f Field, v float64) string {
	if f.Kind != KindFloat {
		return strconv.Itoa(int(v))
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
