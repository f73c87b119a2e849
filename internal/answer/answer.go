// Package answer grades verb submissions.
package answer

import "strings"

// Separator joins submitted or expected forms for display.
const Separator = " - "

// Validate reports whether submission matches answer slot by slot,
// ignoring surrounding whitespace and letter case.
func Validate(submission []string, answer [3]string) bool {
	if len(submission) != len(answer) {
		return false
	}
	for i, val := range submission {
		if !MatchForm(val, answer[i]) {
			return false
		}
	}
	return true
}

// MatchForm compares a single typed form with the expected one.
func MatchForm(typed, want string) bool {
	return strings.EqualFold(strings.TrimSpace(typed), strings.TrimSpace(want))
}

// Join renders forms as "a - b - c".
func Join(forms []string) string {
	return strings.Join(forms, Separator)
}
