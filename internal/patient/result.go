package patient

// Label is the classifier output: 0 = no disease, 1 = disease present.
type Label int

const (
	LabelNegative Label = 0
	LabelPositive Label = 1
)

// Valid reports whether the label is one the classifier can produce.
func (l Label) Valid() bool {
	return l == LabelNegative || l == LabelPositive
}

// Result is what the page shows. It starts as ResultUnknown and only changes
// after an explicit prediction.
type Result string

const (
	ResultUnknown  Result = "unknown"
	ResultNegative Result = "negative"
	ResultPositive Result = "positive"
)

// ResultFromLabel maps a classifier label to its display result.
func ResultFromLabel(l Label) Result {
	switch l {
	case LabelPositive:
		return ResultPositive
	case LabelNegative:
		return ResultNegative
	default:
		return ResultUnknown
	}
}

// Known reports whether a prediction has been made.
func (r Result) Known() bool {
	return r == ResultNegative || r == ResultPositive
}

// Message is the banner text for the result.
func (r Result) Message() string {
	switch r {
	case ResultPositive:
		return "This patient likely has heart disease."
	case ResultNegative:
		return "This patient likely does not have heart disease."
	}
	return ""
}

// Caution is the advisory note shown beneath the banner.
func (r Result) Caution() string {
	switch r {
	case ResultPositive:
		return "However, exercise caution and verify this result before completing diagnosis."
	case ResultNegative:
		return "Exercise caution and verify this result before completing diagnosis."
	}
	return ""
}
