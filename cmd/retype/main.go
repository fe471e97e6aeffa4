// Package main provides the CLI entrypoint for retype.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/retype/internal/config"
	"github.com/verte-zerg/retype/internal/history"
	"github.com/verte-zerg/retype/internal/historyui"
	"github.com/verte-zerg/retype/internal/keys"
	"github.com/verte-zerg/retype/internal/model"
	"github.com/verte-zerg/retype/internal/session"
	"github.com/verte-zerg/retype/internal/stats"
	"github.com/verte-zerg/retype/internal/store"
	"github.com/verte-zerg/retype/internal/textsrc"
	"github.com/verte-zerg/retype/internal/tui"
)

const version = "0.3.0"

const (
	defaultDifficulty = 2
	defaultShareKey   = "ctrl+t"
	debugEnv          = "RETYPE_DEBUG"
)

var (
	showVersion        bool
	historyCount       int
	practiceFile       string
	practiceID         int
	practiceDifficulty int
	practiceWordLimit  int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "retype",
		Short:         "Terminal typing speed trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.MaximumNArgs(1),
		RunE:          runRootCmd,
	}

	flags := rootCmd.Flags()
	flags.BoolVarP(&showVersion, "version", "V", false, "show version")
	flags.IntVarP(&historyCount, "history", "H", 0, "show the last N runs (all when no value is given)")
	flags.Lookup("history").NoOptDefVal = "-1"
	flags.StringVarP(&practiceFile, "file", "f", "", "practice on the contents of FILE")
	flags.IntVarP(&practiceID, "id", "i", 0, "practice on text ID (1-6000)")
	flags.IntVarP(&practiceDifficulty, "difficulty", "d", defaultDifficulty, "difficulty level 1-5 (0 picks a random level)")
	flags.IntVar(&practiceWordLimit, "word-limit", session.DefaultWordLimit, "maximum characters in the word being typed")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newHistoryCmd())

	return rootCmd
}

func runRootCmd(cmd *cobra.Command, args []string) error {
	if showVersion {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "retype version %s\n", version)
		return err
	}

	cfg, err := loadPracticeConfig(cmd)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("history") {
		n := historyCount
		// "-H 5" leaves 5 as a positional argument because the flag value is optional.
		if len(args) == 1 {
			parsed, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid history count %q", args[0])
			}
			n = parsed
		}
		return showHistory(cmd.OutOrStdout(), cfg.HistoryPath, n)
	}
	if len(args) > 0 {
		return fmt.Errorf("unexpected argument %q", args[0])
	}

	sel := textsrc.Selector{File: practiceFile, ID: practiceID, Difficulty: cfg.Difficulty}
	return runPractice(cfg, sel)
}

func loadPracticeConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "difficulty", &practiceDifficulty, fileCfg.Practice.Difficulty)
	applyIntConfig(cmd, "word-limit", &practiceWordLimit, fileCfg.Practice.WordLimit)

	cfg := model.Config{
		Difficulty:  practiceDifficulty,
		WordLimit:   practiceWordLimit,
		ShareKey:    defaultShareKey,
		HistoryPath: config.DefaultHistoryPath(),
		TextsDBPath: config.DefaultTextsDBPath(),
	}
	applyString(&cfg.ShareKey, fileCfg.Practice.ShareKey)
	applyString(&cfg.HistoryPath, fileCfg.Practice.HistoryFile)
	applyString(&cfg.TextsDBPath, fileCfg.Practice.TextsDB)

	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func runPractice(cfg model.Config, sel textsrc.Selector) error {
	closeLog, err := setupDebugLog()
	if err != nil {
		return err
	}
	defer closeLog()

	shareByte, err := keys.ShareByteFor(cfg.ShareKey)
	if err != nil {
		return err
	}

	var src *textsrc.Source
	if sel.File != "" {
		src = textsrc.New(nil)
	} else {
		st, err := store.Open(cfg.TextsDBPath)
		if err != nil {
			return fmt.Errorf("failed to open texts db: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close texts db: %v\n", cerr)
			}
		}()
		src = textsrc.New(st)
	}

	ctx := context.Background()
	text, ref, err := src.Load(ctx, sel)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w\nimport texts with: retype import FILE", err)
		}
		return err
	}
	log.Printf("loaded text %s (%d bytes)", ref.Label(), len(text))

	sess, err := tui.NewSession(ref, text, stats.TerminalWidth(),
		session.WithWordLimit(cfg.WordLimit),
		session.WithRecorder(history.New(cfg.HistoryPath)),
	)
	if errors.Is(err, tui.ErrWindowTooSmall) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	m := tui.NewModel(sess, tui.Options{
		Classifier: keys.NewClassifier(shareByte),
		Navigator:  src,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return m.Err()
}

// setupDebugLog routes the standard logger to the file named by RETYPE_DEBUG,
// or discards it so nothing reaches the alternate screen.
func setupDebugLog() (func(), error) {
	path := strings.TrimSpace(os.Getenv(debugEnv))
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := tea.LogToFile(path, "retype")
	if err != nil {
		return nil, fmt.Errorf("failed to open debug log: %w", err)
	}
	return func() {
		if cerr := f.Close(); cerr != nil {
			logErrf("failed to close debug log: %v\n", cerr)
		}
	}, nil
}

func showHistory(w io.Writer, path string, n int) error {
	records, err := history.New(path).Read(n)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	return stats.RenderHistory(w, records, stats.TerminalWidth(), stats.ShouldUseColor(w))
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Browse past runs",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadPracticeConfig(cmd)
	if err != nil {
		return err
	}
	records, err := history.New(cfg.HistoryPath).Read(-1)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	program := tea.NewProgram(historyui.NewModel(records), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run history TUI: %w", err)
	}
	return nil
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Add practice texts to the texts db, one per line",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadPracticeConfig(cmd)
	if err != nil {
		return err
	}
	lines, err := textsrc.LoadLines(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	st, err := store.Open(cfg.TextsDBPath)
	if err != nil {
		return fmt.Errorf("failed to open texts db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close texts db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	n, err := st.InsertTexts(ctx, lines)
	if err != nil {
		return fmt.Errorf("failed to import texts: %w", err)
	}
	total, err := st.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count texts: %w", err)
	}
	if total > textsrc.RowCount {
		logErrf("texts db holds %d rows; only ids 1-%d are reachable\n", total, textsrc.RowCount)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d texts into %s (%d total)\n", n, cfg.TextsDBPath, total)
	return err
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
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
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

func applyString(target, value *string) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# retype configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# difficulty = %d          # Difficulty level 1-5, 0 for a random level
# word-limit = %d         # Maximum characters in the word being typed
# share-key = %q    # Key that shares a result: "ctrl+t" or "ctrl+s"
# history-file = %q
# texts-db = %q
`,
		defaultDifficulty,
		session.DefaultWordLimit,
		defaultShareKey,
		config.DefaultHistoryPath(),
		config.DefaultTextsDBPath(),
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.WordLimit <= 0 {
		return fmt.Errorf("--word-limit must be > 0")
	}
	if _, err := keys.ShareByteFor(cfg.ShareKey); err != nil {
		return err
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
