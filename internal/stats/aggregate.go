// Package stats contains statistics calculations and reporting.
package stats

import "github.com/verte-zerg/irregulars/internal/model"

// Aggregate derives best-ever values from log. It returns nil for an empty log.
// Ties go to the earliest entry.
func Aggregate(log []model.SessionResult) *model.AggregateStats {
	if len(log) == 0 {
		return nil
	}
	agg := &model.AggregateStats{
		BestAccuracy:      log[0].Accuracy,
		BestAverageTimeMs: log[0].AverageTimeMs,
		BestAccuracyGame:  log[0],
		FastestGame:       log[0],
		TotalGamesPlayed:  len(log),
	}
	for _, s := range log[1:] {
		if s.Accuracy > agg.BestAccuracy {
			agg.BestAccuracy = s.Accuracy
			agg.BestAccuracyGame = s
		}
		if s.AverageTimeMs < agg.BestAverageTimeMs {
			agg.BestAverageTimeMs = s.AverageTimeMs
			agg.FastestGame = s
		}
	}
	return agg
}

// Recent returns the last n entries of log, most recent first.
func Recent(log []model.SessionResult, n int) []model.SessionResult {
	if n <= 0 || len(log) == 0 {
		return []model.SessionResult{}
	}
	if n > len(log) {
		n = len(log)
	}
	out := make([]model.SessionResult, 0, n)
	for i := len(log) - 1; i >= len(log)-n; i-- {
		out = append(out, log[i])
	}
	return out
}

// FilterMode keeps sessions played in mode. An empty mode keeps everything.
func FilterMode(log []model.SessionResult, mode model.Mode) []model.SessionResult {
	if mode == "" {
		return log
	}
	out := make([]model.SessionResult, 0, len(log))
	for _, s := range log {
		if s.Mode == mode {
			out = append(out, s)
		}
	}
	return out
}
