// Package tui provides the Bubble Tea quiz interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/irregulars/internal/history"
	"github.com/verte-zerg/irregulars/internal/model"
	"github.com/verte-zerg/irregulars/internal/session"
	statsPkg "github.com/verte-zerg/irregulars/internal/stats"
)

const clockInterval = 100 * time.Millisecond

type screen int

const (
	screenMenu screen = iota
	screenQuiz
	screenSummary
)

type clockTickMsg time.Time

// feedbackDoneMsg ends the pause after a correct answer.
type feedbackDoneMsg struct {
	seq int
}

// Model implements the Bubble Tea quiz UI.
type Model struct {
	config  model.Config
	engine  *session.Engine
	history *history.History
	log     *logrus.Logger

	width  int
	height int

	screen screen
	inputs []textinput.Model
	focus  int

	// shown stays on the answered verb while feedback is displayed.
	shown     model.Verb
	submitted []string
	feedback  string
	correct   bool
	pending   bool
	seq       int

	result  *model.SessionResult
	saveErr string
	best    *model.AggregateStats
	err     error
}

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	correctStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	wrongStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	panelStyle    = lipgloss.NewStyle().Padding(1, 2).Border(lipgloss.RoundedBorder(), true).BorderForeground(lipgloss.Color("#4A4A4A"))
	inputLabels   = []string{"Infinitive", "Past simple", "Past participle"}
	inputPrompt   = "› "
	inputMaxWidth = 24
)

// NewModel constructs a quiz TUI model. A non-empty start mode skips the menu.
func NewModel(cfg model.Config, engine *session.Engine, h *history.History, log *logrus.Logger, start model.Mode) *Model {
	m := &Model{
		config:  cfg,
		engine:  engine,
		history: h,
		log:     log,
	}
	m.inputs = make([]textinput.Model, len(inputLabels))
	for i, label := range inputLabels {
		in := textinput.New()
		in.Placeholder = label
		in.Prompt = inputPrompt
		in.CharLimit = 32
		in.Width = inputMaxWidth
		m.inputs[i] = in
	}
	m.loadBest()
	if start != "" {
		m.startSession(start)
	}
	return m
}

// Err returns the error that stopped the program, if any.
func (m *Model) Err() error {
	return m.err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.err != nil {
		return tea.Quit
	}
	if m.screen == screenQuiz {
		return tea.Batch(textinput.Blink, clockTick())
	}
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case clockTickMsg:
		if m.screen != screenQuiz {
			return m, nil
		}
		return m, clockTick()
	case feedbackDoneMsg:
		if !m.pending || msg.seq != m.seq {
			return m, nil
		}
		return m, m.afterCorrect()
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.saveFinished()
			return m, tea.Quit
		}
		switch m.screen {
		case screenMenu:
			return m.updateMenu(msg)
		case screenSummary:
			return m.updateSummary(msg)
		default:
			return m.updateQuiz(msg)
		}
	}
	return m, nil
}

func (m *Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "1", "s":
		return m, m.startSession(model.ModeShort)
	case "2", "f":
		return m, m.startSession(model.ModeFull)
	case "q", "esc":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) updateSummary(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r", "enter":
		return m, m.startSession(m.engine.Mode())
	case "m":
		m.screen = screenMenu
		return m, nil
	case "q", "esc":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) updateQuiz(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		// Abandoned sessions are not saved; one finished during feedback is.
		m.saveFinished()
		m.screen = screenMenu
		m.pending = false
		return m, nil
	case tea.KeyEnter:
		return m, m.handleEnter()
	case tea.KeyTab, tea.KeyDown:
		return m, m.moveFocus(1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.moveFocus(-1)
	}
	if m.pending || m.engine.Phase() != session.PhaseAwaitingAnswer {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) handleEnter() tea.Cmd {
	if m.pending {
		return nil
	}
	switch m.engine.Phase() {
	case session.PhaseAwaitingAdvance:
		finished, err := m.engine.Advance()
		if err != nil {
			return m.fail(err)
		}
		if finished {
			m.finish()
			return nil
		}
		return m.nextQuestion()
	case session.PhaseAwaitingAnswer:
		// Enter on an unfilled field moves on to the next field.
		if m.focus < len(m.inputs)-1 && strings.TrimSpace(m.inputs[m.focus].Value()) != "" && m.anyEmpty() {
			return m.moveFocus(1)
		}
		return m.submit()
	}
	return nil
}

func (m *Model) submit() tea.Cmd {
	fields := m.values()
	sub, err := m.engine.Submit(fields)
	if err != nil {
		return m.fail(err)
	}
	m.submitted = fields
	m.correct = sub.Correct
	m.blurAll()
	if !sub.Correct {
		m.feedback = "Incorrect. Answer: " + strings.Join(sub.Expected[:], " - ")
		return nil
	}
	m.feedback = "Correct"
	m.pending = true
	m.seq++
	if m.config.FeedbackMs <= 0 {
		return m.afterCorrect()
	}
	seq := m.seq
	return tea.Tick(time.Duration(m.config.FeedbackMs)*time.Millisecond, func(time.Time) tea.Msg {
		return feedbackDoneMsg{seq: seq}
	})
}

func (m *Model) afterCorrect() tea.Cmd {
	m.pending = false
	if m.engine.Phase() == session.PhaseCompleted {
		m.finish()
		return nil
	}
	return m.nextQuestion()
}

func (m *Model) nextQuestion() tea.Cmd {
	verb, err := m.engine.CurrentQuestion()
	if err != nil {
		return m.fail(err)
	}
	m.shown = verb
	m.feedback = ""
	m.submitted = nil
	m.correct = false
	for i := range m.inputs {
		m.inputs[i].Reset()
	}
	return m.setFocus(0)
}

func (m *Model) startSession(mode model.Mode) tea.Cmd {
	if err := m.engine.Start(mode); err != nil {
		return m.fail(err)
	}
	m.screen = screenQuiz
	m.result = nil
	m.saveErr = ""
	m.pending = false
	return tea.Batch(m.nextQuestion(), clockTick())
}

func (m *Model) finish() {
	res, ok := m.engine.Result()
	if !ok {
		return
	}
	stored, err := m.history.Append(context.Background(), res)
	if err != nil {
		m.log.WithError(err).Error("failed to save session")
		m.saveErr = "History not saved: " + err.Error()
	}
	m.result = &stored
	m.screen = screenSummary
	m.blurAll()
	m.loadBest()
}

// saveFinished stores a session that completed while its feedback was still showing.
func (m *Model) saveFinished() {
	if m.screen == screenQuiz && m.result == nil && m.engine.Phase() == session.PhaseCompleted {
		m.pending = false
		m.finish()
	}
}

func (m *Model) fail(err error) tea.Cmd {
	if errors.Is(err, session.ErrInvalidState) {
		m.log.WithError(err).Error("quiz state machine misuse")
	}
	m.err = err
	return tea.Quit
}

func (m *Model) loadBest() {
	m.best = statsPkg.Aggregate(m.history.All(context.Background()))
}

func (m *Model) values() []string {
	out := make([]string, len(m.inputs))
	for i, in := range m.inputs {
		out[i] = in.Value()
	}
	return out
}

func (m *Model) anyEmpty() bool {
	for _, in := range m.inputs {
		if strings.TrimSpace(in.Value()) == "" {
			return true
		}
	}
	return false
}

func (m *Model) moveFocus(delta int) tea.Cmd {
	if m.pending || m.engine.Phase() != session.PhaseAwaitingAnswer {
		return nil
	}
	next := (m.focus + delta + len(m.inputs)) % len(m.inputs)
	return m.setFocus(next)
}

func (m *Model) setFocus(idx int) tea.Cmd {
	m.focus = idx
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == idx {
			cmd = m.inputs[i].Focus()
			continue
		}
		m.inputs[i].Blur()
	}
	return cmd
}

func (m *Model) blurAll() {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

func clockTick() tea.Cmd {
	return tea.Tick(clockInterval, func(t time.Time) tea.Msg {
		return clockTickMsg(t)
	})
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	switch m.screen {
	case screenMenu:
		body = m.renderMenu()
	case screenSummary:
		body = m.renderSummary()
	default:
		body = m.renderQuiz()
	}
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return body + "\n\n" + footer
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
	}
	content := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, body)
	return content + "\n" + lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
}

func (m *Model) renderMenu() string {
	lines := []string{
		titleStyle.Render("English irregular verbs"),
		"",
		fmt.Sprintf("[1] %d verbs", m.config.ShortCount),
		"[2] Full catalog",
		"",
		mutedStyle.Render("q to quit"),
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderQuiz() string {
	var b strings.Builder
	b.WriteString(mutedStyle.Render("⏱ " + statsPkg.FormatDuration(float64(m.engine.QuestionElapsed().Milliseconds()))))
	b.WriteString("\n\n")
	b.WriteString("Spanish: " + promptStyle.Render(m.shown.ES))
	b.WriteString("\n\n")
	for i, in := range m.inputs {
		b.WriteString(in.View())
		if i < len(m.inputs)-1 {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d of %d", m.questionNumber(), m.engine.Total())))
	if m.feedback != "" {
		b.WriteString("\n\n")
		if m.correct {
			b.WriteString(correctStyle.Render("✓ " + m.feedback))
		} else {
			b.WriteString(wrongStyle.Render("✗ " + m.feedback))
			b.WriteString("\n")
			b.WriteString(renderComparison(m.submitted, m.shown.EN))
			b.WriteString("\n\n")
			b.WriteString(mutedStyle.Render("enter to continue"))
		}
	}
	return panelStyle.Render(b.String())
}

// questionNumber is 1-based and stays on the answered verb during feedback.
func (m *Model) questionNumber() int {
	n := m.engine.Index() + 1
	if m.pending {
		n--
	}
	if n > m.engine.Total() {
		n = m.engine.Total()
	}
	return n
}

func (m *Model) renderSummary() string {
	if m.result == nil {
		return ""
	}
	r := m.result
	lines := []string{
		titleStyle.Render("Results"),
		"",
		fmt.Sprintf("Correct: %d / %d (%.1f%%)", r.Correct, r.Total, r.Accuracy),
		fmt.Sprintf("Errors: %d", len(r.Errors)),
		fmt.Sprintf("Time: %s · avg %s per verb", statsPkg.FormatDuration(float64(r.TotalTimeMs)), statsPkg.FormatSeconds(r.AverageTimeMs)),
	}
	if len(r.Errors) > 0 {
		lines = append(lines, "", "Mistakes:")
		lines = append(lines, renderErrorList(r.Errors)...)
	}
	if m.saveErr != "" {
		lines = append(lines, "", wrongStyle.Render(m.saveErr))
	}
	lines = append(lines, "", mutedStyle.Render("r play again · m menu · q quit"))
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderFooter() string {
	segments := []string{}
	if m.screen == screenQuiz && m.engine.Total() > 0 {
		segments = append(segments, fmt.Sprintf("Correct %d", m.engine.Correct()))
	}
	if m.best != nil {
		segments = append(segments,
			fmt.Sprintf("Best %.1f%%", m.best.BestAccuracy),
			fmt.Sprintf("Fastest %s/verb", statsPkg.FormatSeconds(m.best.BestAverageTimeMs)),
			fmt.Sprintf("Games %d", m.best.TotalGamesPlayed),
		)
	}
	if len(segments) == 0 {
		return ""
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
