package patient

// Kind describes how a field is entered and fed to the model.
type Kind string

const (
	KindInteger  Kind = "integer"
	KindFloat    Kind = "float"
	KindCategory Kind = "category"
)

// Field names, identical to the model artifact's column names.
const (
	FieldAge                   = "age"
	FieldChestPainType         = "chest_pain_type"
	FieldRestingSystolicBP     = "resting_systolic_bp"
	FieldCholesterol           = "cholesterol"
	FieldHighFastingBloodSugar = "high_fasting_blood_sugar"
	FieldRestingECG            = "resting_ecg"
	FieldMaxHeartRate          = "max_heart_rate"
	FieldExerciseInducedAngina = "exercise_induced_angina"
	FieldSTDepression          = "st_depression"
	FieldSlope                 = "slope"
	FieldColoredVessels        = "colored_vessels"
	FieldThalassemia           = "thalassemia"
)

// Field is one entry of the form and of the data dictionary.
type Field struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Feature     string   `json:"feature"`
	Description string   `json:"description"`
	Kind        Kind     `json:"kind"`
	Min         float64  `json:"min"`
	Max         float64  `json:"max"`
	Step        float64  `json:"step,omitempty"`
	Default     string   `json:"default"`
	Choices     []string `json:"choices,omitempty"`
}

// IsCategorical reports whether the field takes one of a fixed set of choices.
func (f Field) IsCategorical() bool {
	return f.Kind == KindCategory
}

var booleanChoices = []string{"False", "True"}

var fields = []Field{
	{
		Name:        FieldAge,
		Label:       "Age",
		Feature:     "Age",
		Description: "Patient's age in years",
		Kind:        KindInteger,
		Min:         0,
		Max:         120,
		Step:        1,
		Default:     "50",
	},
	{
		Name:        FieldChestPainType,
		Label:       "Chest Pain Type",
		Feature:     "Chest Pain Type",
		Description: "Type of chest pain experienced by the patient",
		Kind:        KindCategory,
		Choices:     []string{"Typical Angina", "Atypical Angina", "Non-Anginal", "Asymptomatic"},
		Default:     "Typical Angina",
	},
	{
		Name:        FieldRestingSystolicBP,
		Label:       "Systolic Resting Blood Pressure (mm Hg)",
		Feature:     "Systolic Resting Blood Pressure (mm Hg)",
		Description: "Systolic/Top blood pressure in mm Hg at rest",
		Kind:        KindInteger,
		Min:         80,
		Max:         200,
		Step:        1,
		Default:     "120",
	},
	{
		Name:        FieldCholesterol,
		Label:       "Serum Cholesterol (mg/dl)",
		Feature:     "Serum Cholesterol (mg/dl)",
		Description: "Serum cholesterol level in mg/dl",
		Kind:        KindInteger,
		Min:         100,
		Max:         600,
		Step:        1,
		Default:     "200",
	},
	{
		Name:        FieldHighFastingBloodSugar,
		Label:       "Fasting Blood Sugar > 120 mg/dl",
		Feature:     "Fasting Blood Sugar > 120 mg/dl",
		Description: "True if patient's fasting blood sugar is above 120 mg/dl",
		Kind:        KindCategory,
		Choices:     booleanChoices,
		Default:     "False",
	},
	{
		Name:        FieldRestingECG,
		Label:       "Resting ECG Results",
		Feature:     "Resting ECG Results",
		Description: "Results from resting electrocardiographic test",
		Kind:        KindCategory,
		Choices:     []string{"Normal", "ST-T Abnormality", "LV Hypertrophy"},
		Default:     "Normal",
	},
	{
		Name:        FieldMaxHeartRate,
		Label:       "Maximum Heart Rate (bpm)",
		Feature:     "Maximum Heart Rate (bpm)",
		Description: "Maximum heart rate achieved during stress test",
		Kind:        KindInteger,
		Min:         50,
		Max:         250,
		Step:        1,
		Default:     "150",
	},
	{
		Name:        FieldExerciseInducedAngina,
		Label:       "Exercise-Induced Angina",
		Feature:     "Exercise-Induced Angina",
		Description: "True if patient has exercise-induced angina",
		Kind:        KindCategory,
		Choices:     booleanChoices,
		Default:     "False",
	},
	{
		Name:        FieldSTDepression,
		Label:       "ST Depression (mm)",
		Feature:     "ST Depression Induced (mm)",
		Description: "ST depression induced by exercise relative to rest",
		Kind:        KindFloat,
		Min:         0,
		Max:         10,
		Step:        0.01,
		Default:     "1.0",
	},
	{
		Name:        FieldSlope,
		Label:       "Slope",
		Feature:     "Slope",
		Description: "Slope of the peak exercise ST segment",
		Kind:        KindCategory,
		Choices:     []string{"Downsloping", "Flat", "Upsloping"},
		Default:     "Downsloping",
	},
	{
		Name:        FieldColoredVessels,
		Label:       "Number of Major Vessels Colored",
		Feature:     "Number of Major Vessels Colored",
		Description: "Number of major vessels colored by fluoroscopy",
		Kind:        KindInteger,
		Min:         0,
		Max:         3,
		Step:        1,
		Default:     "0",
	},
	{
		Name:        FieldThalassemia,
		Label:       "Thalassemia",
		Feature:     "Thalassemia",
		Description: "Thalassemia type",
		Kind:        KindCategory,
		Choices:     []string{"Normal", "Fixed Defect", "Reversible Defect"},
		Default:     "Normal",
	},
}

// Fields returns the twelve fields in display order.
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// LookupField returns the field with the given name.
func LookupField(name string) (Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// NumericFields returns the names of the integer and float fields.
func NumericFields() []string {
	var names []string
	for _, f := range fields {
		if !f.IsCategorical() {
			names = append(names, f.Name)
		}
	}
	return names
}

// CategoricalFields returns the names of the fixed-choice fields.
func CategoricalFields() []string {
	var names []string
	for _, f := range fields {
		if f.IsCategorical() {
			names = append(names, f.Name)
		}
	}
	return names
}
