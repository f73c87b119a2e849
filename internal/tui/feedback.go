package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/irregulars/internal/answer"
	"github.com/verte-zerg/irregulars/internal/model"
)

const emptySlot = "·"

type slotResult struct {
	typed   string
	correct bool
}

// compareSlots grades each form on its own so the UI can mark which one was wrong.
func compareSlots(submitted []string, expected [3]string) []slotResult {
	out := make([]slotResult, len(expected))
	for i, want := range expected {
		typed := ""
		if i < len(submitted) {
			typed = strings.TrimSpace(submitted[i])
		}
		out[i] = slotResult{
			typed:   typed,
			correct: answer.MatchForm(typed, want),
		}
	}
	return out
}

func renderComparison(submitted []string, expected [3]string) string {
	slots := compareSlots(submitted, expected)
	parts := make([]string, len(slots))
	for i, s := range slots {
		text := s.typed
		if text == "" {
			text = emptySlot
		}
		if s.correct {
			parts[i] = correctStyle.Render(text)
		} else {
			parts[i] = wrongStyle.Render(text)
		}
	}
	return "You: " + strings.Join(parts, mutedStyle.Render(answer.Separator))
}

// renderErrorList lines up "prompt  user → expected" rows by display width.
func renderErrorList(errs []model.AnswerError) []string {
	promptWidth := 0
	for _, e := range errs {
		promptWidth = max(promptWidth, runewidth.StringWidth(e.Verb.ES))
	}
	lines := make([]string, 0, len(errs))
	for _, e := range errs {
		prompt := runewidth.FillRight(e.Verb.ES, promptWidth)
		lines = append(lines, promptStyle.Render(prompt)+"  "+e.User+" → "+wrongStyle.Render(answer.Join(e.Verb.EN[:])))
	}
	return lines
}
