package stats

import (
	"context"
	"io"

	"github.com/verte-zerg/irregulars/internal/history"
	"github.com/verte-zerg/irregulars/internal/model"
)

const (
	defaultRecent    = 10
	defaultMissedTop = 10
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions  []model.SessionResult
	Aggregate *model.AggregateStats
	Recent    []model.SessionResult
	Missed    []model.MissedVerb
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, h *history.History, cfg model.StatsConfig) Report {
	sessions := FilterMode(h.All(ctx), cfg.Mode)
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}
	recentN := defaultRecent
	if cfg.Last > 0 {
		recentN = cfg.Last
	}
	missedTop := cfg.MissedTop
	if missedTop <= 0 {
		missedTop = defaultMissedTop
	}
	return Report{
		Sessions:  sessions,
		Aggregate: Aggregate(sessions),
		Recent:    Recent(sessions, recentN),
		Missed:    MostMissed(sessions, missedTop),
	}
}

// Render writes the full plain-text report.
func (r Report) Render(w io.Writer, window, width int) error {
	if err := RenderSummary(w, r.Sessions); err != nil {
		return err
	}
	if len(r.Sessions) == 0 {
		return nil
	}
	if err := RenderHistory(w, r.Recent); err != nil {
		return err
	}
	if err := RenderCurves(w, r.Sessions, window, width); err != nil {
		return err
	}
	return RenderMissed(w, r.Missed)
}
