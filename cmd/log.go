package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tidlog/tidlog/internal/clierr"
	"github.com/tidlog/tidlog/internal/engine"
	"github.com/tidlog/tidlog/internal/output"
	"github.com/tidlog/tidlog/internal/timeutil"
)

var logCmd = &cobra.Command{
	Use:   "log ID",
	Short: "Show a task's time log",
	Long: `Lists the time-log entries of a task, oldest first.
Use the subcommands to correct or remove individual entries.`,
	Args: cobra.ExactArgs(1),
	RunE: runLog,
}

var logEditCmd = &cobra.Command{
	Use:   "edit ENTRY",
	Short: "Edit a time-log entry",
	Long: `Rewrites the start and/or stop time of a closed entry.
The running entry only accepts a new start time; stop it first to set a stop.
Times use the format "YYYY-MM-DD HH:MM:SS" in local time.`,
	Args: cobra.ExactArgs(1),
	RunE: runLogEdit,
}

var logDeleteCmd = &cobra.Command{
	Use:     "delete ENTRY",
	Aliases: []string{"rm"},
	Short:   "Delete a time-log entry",
	Long:    `Removes a closed entry and subtracts its duration from the task's total.`,
	Args:    cobra.ExactArgs(1),
	RunE:    runLogDelete,
}

func init() {
	logEditCmd.Flags().String("start", "", "new start time (YYYY-MM-DD HH:MM:SS)")
	logEditCmd.Flags().String("stop", "", "new stop time (YYYY-MM-DD HH:MM:SS)")
	logDeleteCmd.Flags().BoolP("yes", "y", false, "skip confirmation prompt")
	logCmd.AddCommand(logEditCmd)
	logCmd.AddCommand(logDeleteCmd)
	rootCmd.AddCommand(logCmd)
}

func runLog(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := loadState(cfg)
	if err != nil {
		return err
	}

	t, err := resolveTask(st, args[0])
	if err != nil {
		return err
	}

	now := time.Now()
	entries := engine.EntriesFor(st, t.ID)

	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, struct {
			TaskID  string             `json:"taskId"`
			Title   string             `json:"title"`
			TotalMS int64              `json:"totalMs"`
			Total   string             `json:"total"`
			Entries []output.EntryView `json:"entries"`
		}{
			TaskID:  t.ID,
			Title:   t.Title,
			TotalMS: engine.TotalTime(st, t.ID, now).Milliseconds(),
			Total:   timeutil.FormatDuration(engine.TotalTime(st, t.ID, now)),
			Entries: output.NewEntryViews(entries, now),
		})
	case output.FormatCompact:
		output.LogCompact(os.Stdout, entries, now)
	default:
		output.Messagef(os.Stdout, "Time log for %s: %s", shortID(t.ID), t.Title)
		output.LogTable(os.Stdout, entries, now)
	}
	return nil
}

func runLogEdit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := loadState(cfg)
	if err != nil {
		return err
	}

	e, err := resolveEntry(st, args[0])
	if err != nil {
		return err
	}

	update := engine.UpdateLogEntry{EntryID: e.ID}

	if cmd.Flags().Changed("start") {
		v, _ := cmd.Flags().GetString("start")
		start, err := timeutil.ParseStamp(v)
		if err != nil {
			return clierr.Newf(clierr.InvalidTime, "invalid start time %q: %v", v, err)
		}
		update.Start = &start
	}
	if cmd.Flags().Changed("stop") {
		if e.Open() {
			return clierr.New(clierr.EntryRunning,
				"the running entry has no stop time; stop the timer first")
		}
		v, _ := cmd.Flags().GetString("stop")
		stop, err := timeutil.ParseStamp(v)
		if err != nil {
			return clierr.Newf(clierr.InvalidTime, "invalid stop time %q: %v", v, err)
		}
		update.Stop = &stop
	}
	if update.Start == nil && update.Stop == nil {
		return clierr.New(clierr.NoChanges, "nothing to edit; pass --start or --stop")
	}

	// Reject inverted ranges up front for a precise message; the engine
	// enforces the same rule. Zero-length entries are allowed.
	start := e.Start
	if update.Start != nil {
		start = *update.Start
	}
	stop := e.Stop
	if update.Stop != nil {
		stop = update.Stop
	}
	if stop != nil && stop.Before(start) {
		return clierr.New(clierr.InvalidTime, "stop time must not be before start time")
	}

	next, err := mutate(cfg, update, e.TaskID, "")
	if err != nil {
		return err
	}
	updated := next.Log[e.ID]

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, output.NewEntryView(updated, time.Now()))
	}

	output.Messagef(os.Stdout, "Updated entry %s", shortID(updated.ID))
	return nil
}

func runLogDelete(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := loadState(cfg)
	if err != nil {
		return err
	}

	e, err := resolveEntry(st, args[0])
	if err != nil {
		return err
	}
	if e.Open() {
		return clierr.New(clierr.EntryRunning,
			"cannot delete the running entry; stop the timer first")
	}

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return clierr.New(clierr.ConfirmationReq,
				"cannot prompt for confirmation (not a terminal); use --yes")
		}
		fmt.Fprintf(os.Stderr, "Delete entry %s (%s)? [y/N] ",
			shortID(e.ID), timeutil.FormatDuration(e.Duration(time.Now())))
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(os.Stderr, "Canceled.")
			return nil
		}
	}

	if _, err := mutate(cfg, engine.DeleteLogEntry{EntryID: e.ID}, e.TaskID, ""); err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]interface{}{
			"status": "deleted",
			"id":     e.ID,
			"taskId": e.TaskID,
		})
	}

	output.Messagef(os.Stdout, "Deleted entry %s", shortID(e.ID))
	return nil
}
