// Package cmd implements the tidlog CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tidlog/tidlog/internal/clierr"
	"github.com/tidlog/tidlog/internal/config"
	"github.com/tidlog/tidlog/internal/engine"
	"github.com/tidlog/tidlog/internal/output"
	"github.com/tidlog/tidlog/internal/store"
)

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	flagJSON    bool
	flagTable   bool
	flagCompact bool
	flagDir     string
	flagNoColor bool
)

var rootCmd = &cobra.Command{
	Use:   "tidlog",
	Short: "Todo list with per-task time tracking",
	Long: `tidlog is a todo list that tracks how long you spend on each task.
Just run tidlog to open the TUI, or use the subcommands for scripting.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runTUI,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagNoColor || !output.ColorEnabled() {
			output.DisableColor()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagTable, "table", false, "output as table")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "compact", false, "compact one-line-per-record output")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "oneline", false, "alias for --compact")
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "path to tidlog directory")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable color output")
}

// Execute runs the root command.
func Execute() {
	_, err := rootCmd.ExecuteC()
	if err == nil {
		return
	}

	// Handle SilentError, exit with code, no output.
	var silent *clierr.SilentError
	if errors.As(err, &silent) {
		os.Exit(silent.Code)
	}

	// Determine if JSON mode is active.
	jsonMode := flagJSON
	if !jsonMode {
		jsonMode = os.Getenv("TIDLOG_OUTPUT") == "json"
	}

	if jsonMode {
		var cliErr *clierr.Error
		if errors.As(err, &cliErr) {
			output.JSONError(os.Stdout, cliErr.Code, cliErr.Message, cliErr.Details)
			os.Exit(cliErr.ExitCode())
		}
		// Unknown error, wrap as INTERNAL_ERROR.
		output.JSONError(os.Stdout, clierr.InternalError, err.Error(), nil)
		os.Exit(2) //nolint:mnd // exit code 2 for internal errors
	}

	// Non-JSON mode: print to stderr.
	fmt.Fprintln(os.Stderr, err)
	var cliErr *clierr.Error
	if errors.As(err, &cliErr) {
		os.Exit(cliErr.ExitCode())
	}
	os.Exit(1)
}

// defaultHomeDir returns the path to ~/.config/tidlog.
func defaultHomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config/tidlog"), nil
}

// resolveDir returns the absolute path to the tidlog directory.
// Falls back to ~/.config/tidlog if no list is found in the current
// directory tree.
func resolveDir() (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	dir, err := config.FindDir(cwd)
	if err == nil {
		return dir, nil
	}

	// Fall back to ~/.config/tidlog.
	return defaultHomeDir()
}

// loadConfig finds and loads the list config.
// If the resolved directory is ~/.config/tidlog and it doesn't exist yet,
// it is auto-created with defaults.
func loadConfig() (*config.Config, error) {
	dir, err := resolveDir()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(dir)
	if err == nil {
		return cfg, nil
	}

	// Auto-create ~/.config/tidlog if it's the home default and doesn't exist.
	if !errors.Is(err, config.ErrNotFound) {
		return nil, err
	}
	homeDir, homeErr := defaultHomeDir()
	if homeErr != nil || dir != homeDir {
		return nil, err
	}

	return config.Init(homeDir, config.DefaultListName)
}

// outputFormat returns the detected output format from flags/env.
func outputFormat() output.Format {
	return output.Detect(flagJSON, flagTable, flagCompact)
}

// loadState reads the current snapshot for the given config.
func loadState(cfg *config.Config) (engine.State, error) {
	st, err := store.Load(cfg.SnapshotPath())
	if err != nil {
		return st, fmt.Errorf("loading state: %w", err)
	}
	return st, nil
}

// mutate loads the current state, dispatches the command, persists the
// result, and logs the mutation. Returns the new state. Commands that change
// nothing yield a NO_CHANGES error; callers pre-validate their inputs so the
// common causes get more specific errors first.
func mutate(cfg *config.Config, cmd engine.Command, taskID, detail string) (engine.State, error) {
	st, err := loadState(cfg)
	if err != nil {
		return st, err
	}

	next, changed := engine.Dispatch(st, cmd, time.Now())
	if !changed {
		return st, clierr.New(clierr.NoChanges, "nothing to change")
	}

	if err := store.Save(cfg.SnapshotPath(), next); err != nil {
		return next, fmt.Errorf("saving state: %w", err)
	}

	store.LogMutation(cfg.Dir(), cmd.Name(), taskID, detail)
	return next, nil
}

// resolveTask finds a task by full ID or unique ID prefix.
func resolveTask(st engine.State, ref string) (engine.Task, error) {
	if ref == "" {
		return engine.Task{}, clierr.New(clierr.InvalidInput, "task ID is required")
	}
	if t, ok := st.Tasks[ref]; ok {
		return t, nil
	}

	var matches []engine.Task
	for _, t := range st.Tasks {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		return engine.Task{}, clierr.Newf(clierr.TaskNotFound, "no task matching %q", ref).
			WithDetails(map[string]any{"ref": ref})
	case 1:
		return matches[0], nil
	default:
		return engine.Task{}, clierr.Newf(clierr.AmbiguousID,
			"%q matches %d tasks; use a longer prefix", ref, len(matches)).
			WithDetails(map[string]any{"ref": ref, "matches": len(matches)})
	}
}

// resolveEntry finds a time-log entry by full ID or unique ID prefix.
func resolveEntry(st engine.State, ref string) (engine.LogEntry, error) {
	if ref == "" {
		return engine.LogEntry{}, clierr.New(clierr.InvalidInput, "entry ID is required")
	}
	if e, ok := st.Log[ref]; ok {
		return e, nil
	}

	var matches []engine.LogEntry
	for _, e := range st.Log {
		if strings.HasPrefix(e.ID, ref) {
			matches = append(matches, e)
		}
	}

	switch len(matches) {
	case 0:
		return engine.LogEntry{}, clierr.Newf(clierr.EntryNotFound, "no entry matching %q", ref).
			WithDetails(map[string]any{"ref": ref})
	case 1:
		return matches[0], nil
	default:
		return engine.LogEntry{}, clierr.Newf(clierr.AmbiguousID,
			"%q matches %d entries; use a longer prefix", ref, len(matches)).
			WithDetails(map[string]any{"ref": ref, "matches": len(matches)})
	}
}

// shortID returns the 8-character display prefix of an ID.
func shortID(id string) string {
	const displayLen = 8
	if len(id) > displayLen {
		return id[:displayLen]
	}
	return id
}
