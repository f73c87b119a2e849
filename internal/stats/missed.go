package stats

import (
	"sort"

	"github.com/verte-zerg/irregulars/internal/model"
)

// MostMissed ranks verbs by how often they were answered wrong across log.
// Verbs never missed are left out. Ties are broken by lower attempts, then prompt.
func MostMissed(log []model.SessionResult, top int) []model.MissedVerb {
	byPrompt := map[string]*model.MissedVerb{}
	for _, s := range log {
		for _, e := range s.Errors {
			entry, ok := byPrompt[e.Verb.ES]
			if !ok {
				entry = &model.MissedVerb{Verb: e.Verb}
				byPrompt[e.Verb.ES] = entry
			}
			entry.Misses++
		}
	}
	if len(byPrompt) == 0 {
		return nil
	}
	for _, s := range log {
		for _, qt := range s.QuestionTimes {
			if entry, ok := byPrompt[qt.Verb]; ok {
				entry.Attempts++
			}
		}
	}

	out := make([]model.MissedVerb, 0, len(byPrompt))
	for _, entry := range byPrompt {
		if entry.Attempts < entry.Misses {
			entry.Attempts = entry.Misses
		}
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Misses != out[j].Misses {
			return out[i].Misses > out[j].Misses
		}
		if out[i].Attempts != out[j].Attempts {
			return out[i].Attempts < out[j].Attempts
		}
		return out[i].Verb.ES < out[j].Verb.ES
	})
	if top > 0 && top < len(out) {
		out = out[:top]
	}
	return out
}

// MissRate is the share of attempts that were wrong, in [0,1].
func MissRate(m model.MissedVerb) float64 {
	if m.Attempts == 0 {
		return 0
	}
	return float64(m.Misses) / float64(m.Attempts)
}
