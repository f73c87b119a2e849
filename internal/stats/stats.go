package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/irregulars/internal/model"
)

const (
	sparkChars          = " .:-=+*#%@"
	terminalWidthBackup = 80
	curveLabelWidth     = 14
)

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		den := float64(i + 1)
		if i >= window {
			sum -= values[i-window]
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// FormatDuration renders milliseconds as "42s" or "3:07".
func FormatDuration(ms float64) string {
	seconds := int(ms / 1000)
	minutes := seconds / 60
	if minutes > 0 {
		return fmt.Sprintf("%d:%02d", minutes, seconds%60)
	}
	return fmt.Sprintf("%ds", seconds)
}

// FormatSeconds renders milliseconds as seconds with one decimal.
func FormatSeconds(ms float64) string {
	return fmt.Sprintf("%.1fs", ms/1000)
}

// TerminalWidth returns the width of f when it is a terminal, or a fallback.
func TerminalWidth(f *os.File) int {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return terminalWidthBackup
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// RenderSummary prints best-ever values for the log.
func RenderSummary(w io.Writer, log []model.SessionResult) error {
	agg := Aggregate(log)
	if agg == nil {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	var correct, total int
	for _, s := range log {
		correct += s.Correct
		total += s.Total
	}
	overall := 0.0
	if total > 0 {
		overall = float64(correct) / float64(total) * 100
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", agg.TotalGamesPlayed),
		fmt.Sprintf("Best accuracy: %.1f%% (%s, %s)", agg.BestAccuracy, agg.BestAccuracyGame.Mode, agg.BestAccuracyGame.Timestamp.Local().Format("2006-01-02")),
		fmt.Sprintf("Best avg time: %s (%s, %s)", FormatSeconds(agg.BestAverageTimeMs), agg.FastestGame.Mode, agg.FastestGame.Timestamp.Local().Format("2006-01-02")),
		fmt.Sprintf("Overall accuracy: %.1f%% (%d/%d)", overall, correct, total),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderHistory prints a table of sessions, most recent first.
func RenderHistory(w io.Writer, recent []model.SessionResult) error {
	if len(recent) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Recent Sessions"); err != nil {
		return err
	}
	headers := []string{"Date", "Mode", "Score", "Accuracy", "Avg Time", "Total"}
	rows := make([][]string, 0, len(recent))
	for _, s := range recent {
		rows = append(rows, HistoryRow(s))
	}
	return writeTable(w, headers, rows, map[int]bool{2: true, 3: true, 4: true, 5: true})
}

// HistoryRow formats one session as table cells.
func HistoryRow(s model.SessionResult) []string {
	return []string{
		s.Timestamp.Local().Format("2006-01-02 15:04"),
		string(s.Mode),
		fmt.Sprintf("%d/%d", s.Correct, s.Total),
		fmt.Sprintf("%.1f%%", s.Accuracy),
		FormatSeconds(s.AverageTimeMs),
		FormatDuration(float64(s.TotalTimeMs)),
	}
}

// RenderMissed prints the most-missed verbs.
func RenderMissed(w io.Writer, missed []model.MissedVerb) error {
	if len(missed) == 0 {
		_, err := fmt.Fprintln(w, "No missed verbs.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Most Missed"); err != nil {
		return err
	}
	headers := []string{"Verb", "Answer", "Misses", "Miss Rate"}
	rows := make([][]string, 0, len(missed))
	for _, m := range missed {
		rows = append(rows, MissedRow(m))
	}
	return writeTable(w, headers, rows, map[int]bool{2: true, 3: true})
}

// MissedRow formats one missed verb as table cells.
func MissedRow(m model.MissedVerb) []string {
	return []string{
		m.Verb.ES,
		strings.Join(m.Verb.EN[:], " - "),
		fmt.Sprintf("%d/%d", m.Misses, m.Attempts),
		fmt.Sprintf("%.0f%%", MissRate(m)*100),
	}
}

// RenderCurves prints accuracy and average-time sparklines in log order.
func RenderCurves(w io.Writer, log []model.SessionResult, window, totalWidth int) error {
	if len(log) < 2 {
		return nil
	}
	accs := make([]float64, len(log))
	times := make([]float64, len(log))
	for i, s := range log {
		accs[i] = s.Accuracy
		times[i] = s.AverageTimeMs / 1000
	}
	accs = MovingAverage(accs, window)
	times = MovingAverage(times, window)

	width := totalWidth - curveLabelWidth - 16
	if width < 10 {
		width = 10
	}
	if _, err := fmt.Fprintf(w, "Learning Curves (window %d)\n", window); err != nil {
		return err
	}
	curves := []struct {
		name   string
		values []float64
		unit   string
	}{
		{name: "Accuracy", values: accs, unit: "%"},
		{name: "Avg time", values: times, unit: "s"},
	}
	for _, c := range curves {
		values := tail(c.values, width)
		last := values[len(values)-1]
		line := fmt.Sprintf("%-*s %s  %.1f%s", curveLabelWidth, c.name, Sparkline(values), last, c.unit)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func tail(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

func writeTable(w io.Writer, headers []string, rows [][]string, rightAlign map[int]bool) error {
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
