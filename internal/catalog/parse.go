package catalog

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/irregulars/internal/model"
)

// Parse reads one verb per line as "es|infinitive|past|participle".
// Blank lines and lines starting with '#' are skipped.
func Parse(r io.Reader) ([]model.Verb, error) {
	var verbs []model.Verb
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		verb, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		verbs = append(verbs, verb)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(verbs) == 0 {
		return nil, fmt.Errorf("verb list is empty")
	}
	return verbs, nil
}

func parseLine(line string) (model.Verb, error) {
	parts := strings.Split(line, "|")
	if len(parts) != 4 {
		return model.Verb{}, fmt.Errorf("expected 4 fields, got %d", len(parts))
	}
	verb := model.Verb{ES: strings.TrimSpace(parts[0])}
	if verb.ES == "" {
		return model.Verb{}, fmt.Errorf("empty prompt")
	}
	for i := 0; i < 3; i++ {
		form := strings.TrimSpace(parts[i+1])
		if !isEnglishForm(form) {
			return model.Verb{}, fmt.Errorf("invalid english form %q", form)
		}
		verb.EN[i] = form
	}
	return verb, nil
}

func isEnglishForm(word string) bool {
	if word == "" {
		return false
	}
	for i := 0; i < len(word); i++ {
		ch := word[i]
		if ch < 'a' || ch > 'z' {
			return false
		}
	}
	return true
}
