// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/irregulars/internal/history"
	"github.com/verte-zerg/irregulars/internal/model"
	"github.com/verte-zerg/irregulars/internal/stats"
)

const (
	tabOverview = iota
	tabHistory
	tabMissed
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	confirmStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
)

// modeCycle is the order the mode filter steps through; "" means all modes.
var modeCycle = []model.Mode{"", model.ModeShort, model.ModeFull}

// Model implements the Bubble Tea stats UI.
type Model struct {
	history *history.History
	cfg     model.StatsConfig
	log     *logrus.Logger

	report stats.Report
	errMsg string

	tabs         []string
	activeTab    int
	overview     viewport.Model
	historyTable table.Model
	missedTable  table.Model

	confirmClear bool

	width  int
	height int
}

// NewModel constructs a stats UI model.
func NewModel(h *history.History, cfg model.StatsConfig, log *logrus.Logger) *Model {
	if cfg.CurveWindow <= 0 {
		cfg.CurveWindow = 1
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	m := &Model{
		history:  h,
		cfg:      cfg,
		log:      log,
		tabs:     []string{"Overview", "History", "Missed"},
		overview: viewport.New(0, 0),
	}
	m.historyTable = newTable(historyColumns())
	m.missedTable = newTable(missedColumns())
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		if m.confirmClear {
			return m.updateConfirm(msg)
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
			m.renderTabContents()
			return m, nil
		case "-":
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
			m.renderTabContents()
			return m, nil
		case "m":
			m.cfg.Mode = nextMode(m.cfg.Mode)
			m.refreshReport()
			return m, nil
		case "x":
			m.confirmClear = true
			return m, nil
		case "g", "home":
			m.gotoTop()
			return m, nil
		case "G", "end":
			m.gotoBottom()
			return m, nil
		default:
			var cmd tea.Cmd
			switch m.activeTab {
			case tabHistory:
				m.historyTable, cmd = m.historyTable.Update(msg)
			case tabMissed:
				m.missedTable, cmd = m.missedTable.Update(msg)
			default:
				m.overview, cmd = m.overview.Update(msg)
			}
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.confirmClear = false
	if msg.String() != "y" {
		return m, nil
	}
	if err := m.history.Clear(context.Background()); err != nil {
		m.log.WithError(err).Warn("clear history failed")
		m.errMsg = err.Error()
		return m, nil
	}
	m.log.Info("history cleared")
	m.refreshReport()
	return m, nil
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	m.historyTable.SetWidth(m.width)
	m.historyTable.SetHeight(bodyHeight)
	m.missedTable.SetWidth(m.width)
	m.missedTable.SetHeight(bodyHeight)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := (m.activeTab + delta + count) % count
	m.activeTab = next
	m.historyTable.Blur()
	m.missedTable.Blur()
	switch m.activeTab {
	case tabHistory:
		m.historyTable.Focus()
	case tabMissed:
		m.missedTable.Focus()
	}
}

func (m *Model) gotoTop() {
	switch m.activeTab {
	case tabHistory:
		m.historyTable.GotoTop()
	case tabMissed:
		m.missedTable.GotoTop()
	default:
		m.overview.GotoTop()
	}
}

func (m *Model) gotoBottom() {
	switch m.activeTab {
	case tabHistory:
		m.historyTable.GotoBottom()
	case tabMissed:
		m.missedTable.GotoBottom()
	default:
		m.overview.GotoBottom()
	}
}

func (m *Model) refreshReport() {
	m.errMsg = ""
	m.report = stats.BuildReport(context.Background(), m.history, m.cfg)

	historyRows := make([]table.Row, 0, len(m.report.Recent))
	for _, s := range m.report.Recent {
		historyRows = append(historyRows, table.Row(stats.HistoryRow(s)))
	}
	m.historyTable.SetRows(historyRows)
	m.historyTable.GotoTop()

	missedRows := make([]table.Row, 0, len(m.report.Missed))
	for _, mv := range m.report.Missed {
		missedRows = append(missedRows, table.Row(stats.MissedRow(mv)))
	}
	m.missedTable.SetRows(missedRows)
	m.missedTable.GotoTop()

	m.updateLayout()
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.overview.SetContent(renderOverview(m.report, m.cfg.CurveWindow, width))
}

func renderOverview(report stats.Report, window, width int) string {
	if len(report.Sessions) == 0 {
		return "No sessions found."
	}
	var buf bytes.Buffer
	if err := stats.RenderCurves(&buf, report.Sessions, window, width); err != nil {
		return err.Error()
	}
	curves := strings.TrimRight(buf.String(), "\n")
	if curves == "" {
		curves = headerStyle.Render("Play at least two sessions to see learning curves.")
	}
	return renderSummaryCards(report, width) + "\n\n" + curves
}

func renderSummaryCards(report stats.Report, width int) string {
	agg := report.Aggregate
	if agg == nil {
		return ""
	}
	var correct, total int
	for _, s := range report.Sessions {
		correct += s.Correct
		total += s.Total
	}
	overall := 0.0
	if total > 0 {
		overall = float64(correct) / float64(total) * 100
	}
	cards := []string{
		metricCard("Sessions", strconv.Itoa(agg.TotalGamesPlayed)),
		metricCard("Best accuracy", fmt.Sprintf("%.1f%%", agg.BestAccuracy)),
		metricCard("Best avg time", stats.FormatSeconds(agg.BestAverageTimeMs)),
		metricCard("Overall", fmt.Sprintf("%.1f%% (%d/%d)", overall, correct, total)),
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	if lipgloss.Width(row) <= width {
		return row
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func metricCard(label, value string) string {
	body := cardTitleStyle.Render(label) + "\n" + cardValueStyle.Render(value)
	return cardStyle.Render(body)
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	return tabs + "\n" + m.renderFilterSummary()
}

func (m *Model) renderFilterSummary() string {
	mode := string(m.cfg.Mode)
	if mode == "" {
		mode = "all"
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	summary := fmt.Sprintf("Settings: mode=%s  last=%s  window=%d  sessions=%d", mode, last, m.cfg.CurveWindow, len(m.report.Sessions))
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderBody() string {
	switch m.activeTab {
	case tabHistory:
		if len(m.report.Recent) == 0 {
			return "No sessions found."
		}
		return tableMutedStyle.Render(m.historyTable.View())
	case tabMissed:
		if len(m.report.Missed) == 0 {
			return "No missed verbs."
		}
		return tableMutedStyle.Render(m.missedTable.View())
	default:
		return m.overview.View()
	}
}

func (m *Model) renderFooter() string {
	var help string
	if m.confirmClear {
		help = confirmStyle.Render("Clear all history? y: confirm  any other key: cancel")
	} else {
		help = headerStyle.Render(truncateLine("Nav: left/right  Scroll: up/down/pgup/pgdn  Mode: m  Window: -/=  Clear: x  Quit: q", m.width))
	}
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func newTable(columns []table.Column) table.Model {
	t := table.New(table.WithColumns(columns), table.WithHeight(1))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#F0F0F0")).
		Background(lipgloss.Color("#3A3A3A")).
		Bold(false)
	t.SetStyles(styles)
	return t
}

func historyColumns() []table.Column {
	return []table.Column{
		{Title: "Date", Width: 16},
		{Title: "Mode", Width: 5},
		{Title: "Score", Width: 7},
		{Title: "Accuracy", Width: 8},
		{Title: "Avg Time", Width: 8},
		{Title: "Total", Width: 6},
	}
}

func missedColumns() []table.Column {
	return []table.Column{
		{Title: "Verb", Width: 12},
		{Title: "Answer", Width: 28},
		{Title: "Misses", Width: 7},
		{Title: "Miss Rate", Width: 9},
	}
}

func nextMode(current model.Mode) model.Mode {
	for i, mode := range modeCycle {
		if mode == current {
			return modeCycle[(i+1)%len(modeCycle)]
		}
	}
	return modeCycle[0]
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	if n%5 == 0 {
		return n + 5
	}
	return ((n / 5) + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
