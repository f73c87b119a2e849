// Package main provides the CLI entrypoint for irregulars.
package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/irregulars/internal/answer"
	"github.com/verte-zerg/irregulars/internal/catalog"
	"github.com/verte-zerg/irregulars/internal/config"
	"github.com/verte-zerg/irregulars/internal/history"
	"github.com/verte-zerg/irregulars/internal/logging"
	"github.com/verte-zerg/irregulars/internal/model"
	"github.com/verte-zerg/irregulars/internal/session"
	"github.com/verte-zerg/irregulars/internal/stats"
	"github.com/verte-zerg/irregulars/internal/statsui"
	"github.com/verte-zerg/irregulars/internal/store"
	"github.com/verte-zerg/irregulars/internal/tui"
)

const (
	defaultMode        = model.ModeShort
	defaultFeedbackMs  = 1000
	defaultCurveWindow = 5
	defaultMissedTop   = 10
)

var (
	practiceMode       string
	practiceCount      int
	practiceFeedbackMs int
	logLevel           string

	statsMode        string
	statsLast        int
	statsCurveWindow int
	statsMissedTop   int
	statsPlain       bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "irregulars",
		Short:         "Spanish to English irregular verbs quiz",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVar(&practiceMode, "mode", "", "start a session right away: short or full")
	rootCmd.Flags().IntVar(&practiceCount, "count", session.DefaultShortCount, "questions in a short session")
	rootCmd.Flags().IntVar(&practiceFeedbackMs, "feedback-ms", defaultFeedbackMs, "pause after a correct answer in milliseconds")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logging.DefaultLevel, "log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newVerbsCmd())

	return rootCmd
}

// resolveConfig merges file values under flags that were not set explicitly.
func resolveConfig(cmd *cobra.Command, fileCfg config.FileConfig) (model.Config, model.Mode, error) {
	applyStringConfig(cmd, "mode", &practiceMode, fileCfg.Practice.Mode)
	applyIntConfig(cmd, "count", &practiceCount, fileCfg.Practice.Count)
	applyIntConfig(cmd, "feedback-ms", &practiceFeedbackMs, fileCfg.Practice.FeedbackMs)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)

	limit := history.DefaultLimit
	if fileCfg.History.Limit != nil {
		limit = *fileCfg.History.Limit
	}

	var start model.Mode
	if strings.TrimSpace(practiceMode) != "" {
		mode, err := model.ParseMode(practiceMode)
		if err != nil {
			return model.Config{}, "", fmt.Errorf("invalid --mode: %w", err)
		}
		start = mode
	}
	cfg := model.Config{
		Mode:         defaultMode,
		ShortCount:   practiceCount,
		FeedbackMs:   practiceFeedbackMs,
		HistoryLimit: limit,
		LogLevel:     strings.ToLower(strings.TrimSpace(logLevel)),
	}
	if start != "" {
		cfg.Mode = start
	}
	if err := config.Validate(cfg); err != nil {
		return model.Config{}, "", err
	}
	return cfg, start, nil
}

// checkShortCount rejects short sessions larger than the catalog.
func checkShortCount(cfg model.Config, catalogSize int) error {
	if cfg.ShortCount > catalogSize {
		return fmt.Errorf("--count must be <= %d (catalog size), got %d", catalogSize, cfg.ShortCount)
	}
	return nil
}

// resolveCommonConfig applies the file's [log] and [history] settings for subcommands.
func resolveCommonConfig(cmd *cobra.Command, fileCfg config.FileConfig) (string, int, error) {
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	limit := history.DefaultLimit
	if fileCfg.History.Limit != nil {
		limit = *fileCfg.History.Limit
	}
	if limit <= 0 {
		return "", 0, fmt.Errorf("[history] limit must be > 0, got %d", limit)
	}
	return strings.ToLower(strings.TrimSpace(logLevel)), limit, nil
}

func loadCommonConfig(cmd *cobra.Command) (string, int, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return "", 0, fmt.Errorf("failed to load config: %w", err)
	}
	return resolveCommonConfig(cmd, fileCfg)
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg, start, err := resolveConfig(cmd, fileCfg)
	if err != nil {
		return err
	}

	logFile, err := logging.OpenFile(config.DefaultLogPath())
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer closeQuietly(logFile)
	log, err := logging.New(cfg.LogLevel, logFile)
	if err != nil {
		return err
	}

	cat, err := catalog.Default()
	if err != nil {
		return err
	}
	if err := checkShortCount(cfg, cat.Len()); err != nil {
		return err
	}
	st, err := openStore(log)
	if err != nil {
		return err
	}
	defer closeStore(st, log)

	h := history.New(st, history.WithLimit(cfg.HistoryLimit), history.WithLogger(log))
	engine := session.New(cat, session.WithShortCount(cfg.ShortCount))

	log.WithFields(logrus.Fields{"mode": start, "count": cfg.ShortCount}).Debug("starting quiz")
	m := tui.NewModel(cfg, engine, h, log, start)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return m.Err()
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsMode, "mode", "", "mode filter: short or full")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().IntVar(&statsMissedTop, "missed", defaultMissedTop, "number of most-missed verbs to show")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a plain-text report instead of the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg := model.StatsConfig{
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
		MissedTop:   statsMissedTop,
	}
	if statsMode != "" {
		mode, err := model.ParseMode(statsMode)
		if err != nil {
			return fmt.Errorf("invalid --mode: %w", err)
		}
		cfg.Mode = mode
	}
	if cfg.Last < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if cfg.CurveWindow <= 0 {
		return fmt.Errorf("--curve-window must be > 0")
	}

	level, limit, err := loadCommonConfig(cmd)
	if err != nil {
		return err
	}

	var logOut io.Writer = os.Stderr
	if !statsPlain {
		logFile, err := logging.OpenFile(config.DefaultLogPath())
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer closeQuietly(logFile)
		logOut = logFile
	}
	log, err := logging.New(level, logOut)
	if err != nil {
		return err
	}

	st, err := openStore(log)
	if err != nil {
		return err
	}
	defer closeStore(st, log)
	h := history.New(st, history.WithLimit(limit), history.WithLogger(log))

	if statsPlain {
		report := stats.BuildReport(cmd.Context(), h, cfg)
		return report.Render(cmd.OutOrStdout(), cfg.CurveWindow, stats.TerminalWidth(os.Stdout))
	}

	m := statsui.NewModel(h, cfg, log)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage stored session history",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete all stored sessions",
		Args:  cobra.NoArgs,
		RunE:  runHistoryClearCmd,
	})
	return cmd
}

func runHistoryClearCmd(cmd *cobra.Command, _ []string) error {
	level, limit, err := loadCommonConfig(cmd)
	if err != nil {
		return err
	}
	log, err := logging.New(level, os.Stderr)
	if err != nil {
		return err
	}
	st, err := openStore(log)
	if err != nil {
		return err
	}
	defer closeStore(st, log)

	h := history.New(st, history.WithLimit(limit), history.WithLogger(log))
	n := len(h.All(cmd.Context()))
	if err := h.Clear(cmd.Context()); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d sessions.\n", n)
	return err
}

func newVerbsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verbs",
		Short: "List the verb catalog",
		Args:  cobra.NoArgs,
		RunE:  runVerbsCmd,
	}
}

func runVerbsCmd(cmd *cobra.Command, _ []string) error {
	cat, err := catalog.Default()
	if err != nil {
		return err
	}
	return writeVerbs(cmd.OutOrStdout(), cat.All())
}

func writeVerbs(w io.Writer, verbs []model.Verb) error {
	width := 0
	for _, v := range verbs {
		width = max(width, len([]rune(v.ES)))
	}
	for _, v := range verbs {
		pad := width - len([]rune(v.ES))
		if _, err := fmt.Fprintf(w, "%s%s  %s\n", v.ES, strings.Repeat(" ", pad), answer.Join(v.EN[:])); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func openStore(log *logrus.Logger) (*store.Store, error) {
	path := config.DefaultDBPath()
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	log.WithField("path", path).Debug("opened db")
	return st, nil
}

func closeStore(st *store.Store, log *logrus.Logger) {
	if err := st.Close(); err != nil {
		log.WithError(err).Warn("failed to close db")
	}
}

func closeQuietly(f *os.File) {
	if err := f.Close(); err != nil {
		// Best-effort close of the log file.
		_ = err
	}
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# irregulars configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# mode = %q           # Skip the menu and start a session (short or full)
# count = %d             # Questions in a short session
# feedback-ms = %d     # Pause after a correct answer

[history]
# limit = %d             # Number of sessions kept

[log]
# level = %q          # trace, debug, info, warn, error
`,
		defaultMode,
		session.DefaultShortCount,
		defaultFeedbackMs,
		history.DefaultLimit,
		logging.DefaultLevel,
	)
}
