// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects the question set for a session.
type Mode string

const (
	// ModeShort asks a random sample of the catalog.
	ModeShort Mode = "short"
	// ModeFull asks every verb in catalog order.
	ModeFull Mode = "full"
)

// ParseMode converts a flag or config value into a Mode.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeShort:
		return ModeShort, nil
	case ModeFull:
		return ModeFull, nil
	default:
		return "", fmt.Errorf("unknown mode %q (expected short or full)", value)
	}
}

// Verb is a catalog entry: a Spanish prompt and its three English forms.
type Verb struct {
	ES string    `json:"es"`
	EN [3]string `json:"en"`
}

// QuestionTime records how one question was answered.
type QuestionTime struct {
	Verb      string `json:"verb"`
	ElapsedMs int64  `json:"time"`
	Correct   bool   `json:"correct"`
}

// AnswerError is a wrong answer kept for the session summary.
type AnswerError struct {
	Verb Verb   `json:"verb"`
	User string `json:"user"`
}

// SessionResult captures a completed quiz session.
type SessionResult struct {
	ID            string         `json:"id"`
	Total         int            `json:"total"`
	Correct       int            `json:"correct"`
	Accuracy      float64        `json:"accuracy"`
	TotalTimeMs   int64          `json:"totalTime"`
	AverageTimeMs float64        `json:"averageTime"`
	QuestionTimes []QuestionTime `json:"questionTimes"`
	Errors        []AnswerError  `json:"errors"`
	Mode          Mode           `json:"mode"`
	Timestamp     time.Time      `json:"date"`
}

// AggregateStats holds best-ever values derived from the history log.
type AggregateStats struct {
	BestAccuracy      float64
	BestAverageTimeMs float64
	BestAccuracyGame  SessionResult
	FastestGame       SessionResult
	TotalGamesPlayed  int
}

// MissedVerb counts how often a verb was answered wrong across sessions.
type MissedVerb struct {
	Verb     Verb
	Misses   int
	Attempts int
}

// Config defines practice settings.
type Config struct {
	Mode         Mode   `validate:"oneof=short full"`
	ShortCount   int    `validate:"gt=0"`
	FeedbackMs   int    `validate:"gte=0,lte=10000"`
	HistoryLimit int    `validate:"gt=0"`
	LogLevel     string `validate:"oneof=trace debug info warn warning error fatal panic"`
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Mode        Mode
	Last        int
	CurveWindow int
	MissedTop   int
}
