package web

import "github.com/heartcheck/predictor/internal/patient"

// PageState is everything one render needs. It lives for a single request;
// nothing is kept between requests, so a reload always starts from defaults
// with an unknown result.
type PageState struct {
	Record patient.Record
	Result patient.Result
}

// NewPageState returns the state of a freshly opened page.
func NewPageState() PageState {
	return PageState{Record: patient.Defaults(), Result: patient.ResultUnknown}
}

type pageView struct {
	Title      string
	Controls   []controlView
	Result     patient.Result
	Inputs     []inputView
	Dictionary []patient.Field
	Error      string
	Details    map[string]string
	RequestID  string
	// Submitted marks a page rendered in answer to a form post.
	Submitted bool
}

type controlView struct {
	Name    string
	Label   string
	Slider  bool
	Min     string
	Max     string
	Step    string
	Value   string
	Options []optionView
}

type optionView struct {
	Value    string
	Selected bool
}

type inputView struct {
	Label string
	Value string
}

func newPageView(state PageState) pageView {
	fields := patient.Fields()
	view := pageView{
		Title:      "Heart Disease Prediction",
		Result:     state.Result,
		Dictionary: fields,
	}

	for _, f := range fields {
		value := state.Record.Value(f.Name)
		view.Inputs = append(view.Inputs, inputView{Label: f.Label, Value: value})

		c := controlView{Name: f.Name, Label: f.Label, Value: value}
		if f.IsCategorical() {
			for _, choice := range f.Choices {
				c.Options = append(c.Options, optionView{Value: choice, Selected: choice == value})
			}
		} else {
			c.Slider = true
			c.Min = patient.FormatNumber(f, f.Min)
			c.Max = patient.FormatNumber(f, f.Max)
			c.Step = patient.FormatNumber(f, f.Step)
		}
		view.Controls = append(view.Controls, c)
	}

	return view
}
