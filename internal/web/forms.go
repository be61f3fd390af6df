package web

import (
	"net/http"
	"strconv"
	"strings"
)

// formErrors collects human-readable validation failures for one form.
type formErrors []string

func (e *formErrors) add(msg string) {
	*e = append(*e, msg)
}

func (e formErrors) ok() bool {
	return len(e) == 0
}

// summary flattens the failures into the single error line shown above the
// re-rendered form.
func (e formErrors) summary() string {
	return strings.Join(e, " ")
}

// formValues flattens the posted form into first-value-per-field, trimmed.
// Used both for reading input and for repopulating re-rendered forms.
func formValues(r *http.Request) map[string]string {
	_ = r.ParseForm()
	out := make(map[string]string, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) > 0 {
			out[key] = strings.TrimSpace(values[0])
		}
	}
	return out
}

// cleanCardNumber strips the separators users type into card numbers.
func cleanCardNumber(s string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(s)
}

// isThreeDigitCVV matches the only CVV shape ever accepted.
func isThreeDigitCVV(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// parseFloatField re-parses a numeric form field; client-side values are
// never trusted.
func parseFloatField(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v, err == nil
}
