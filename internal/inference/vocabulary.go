package inference

import (
	"fmt"
	"sort"
	"strings"

	"github.com/heartcheck/predictor/internal/patient"
)

// Vocabulary exposes the columns and categories the artifact was trained on.
type Vocabulary interface {
	NumericColumns() []string
	Categories(column string) ([]string, bool)
}

// VerifyVocabulary checks that every value the form can submit, after
// lowercasing, is known to the artifact. The artifact's vocabulary is the
// source of truth; a mismatch must stop startup.
func VerifyVocabulary(v Vocabulary) error {
	var problems []string

	numeric := make(map[string]bool)
	for _, c := range v.NumericColumns() {
		numeric[c] = true
	}
	for _, name := range patient.NumericFields() {
		if !numeric[name] {
			problems = append(problems, fmt.Sprintf("numeric column %s is not scaled by the model", name))
		}
	}

	for _, name := range patient.CategoricalFields() {
		vocab, ok := v.Categories(name)
		if !ok {
			problems = append(problems, fmt.Sprintf("categorical column %s is not encoded by the model", name))
			continue
		}

		known := make(map[string]bool, len(vocab))
		for _, c := range vocab {
			known[c] = true
		}

		f, _ := patient.LookupField(name)
		for _, choice := range f.Choices {
			if token := strings.ToLower(choice); !known[token] {
				problems = append(problems, fmt.Sprintf("%s choice %q (sent as %q) is not in the model vocabulary %v",
					name, choice, token, vocab))
			}
		}
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("model vocabulary mismatch:\n  %s", strings.Join(problems, "\n  "))
	}
	return nil
}
