package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tidlog/tidlog/internal/engine"
	"github.com/tidlog/tidlog/internal/output"
	"github.com/tidlog/tidlog/internal/timeutil"
)

var timerCmd = &cobra.Command{
	Use:   "timer [ID|status]",
	Short: "Toggle a task's timer, or show the running one",
	Long: `With an ID, starts the timer on that task (stopping any other running
timer first) or stops it if it is already running. Without an ID, or with
"status", shows which task is currently being timed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTimer,
}

func init() {
	rootCmd.AddCommand(timerCmd)
}

func runTimer(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := loadState(cfg)
	if err != nil {
		return err
	}

	now := time.Now()

	// No ID (or the literal "status"): report status.
	if len(args) == 0 || args[0] == "status" {
		t, ok := engine.RunningTask(st)
		if outputFormat() == output.FormatJSON {
			if !ok {
				return output.JSON(os.Stdout, map[string]any{"running": false})
			}
			return output.JSON(os.Stdout, map[string]any{
				"running": true,
				"task":    output.NewTaskView(t, now),
			})
		}
		if !ok {
			output.Messagef(os.Stdout, "No timer running")
			return nil
		}
		output.Messagef(os.Stdout, "Timing %s: %s (%s)",
			shortID(t.ID), t.Title, timeutil.FormatDuration(t.Elapsed(now)))
		return nil
	}

	t, err := resolveTask(st, args[0])
	if err != nil {
		return err
	}

	next, err := mutate(cfg, engine.ToggleTimer{ID: t.ID}, t.ID, t.Title)
	if err != nil {
		return err
	}
	updated := next.Tasks[t.ID]

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, output.NewTaskView(updated, now))
	}

	if updated.TimerRunning {
		output.Messagef(os.Stdout, "Started timer on %s: %s", shortID(updated.ID), updated.Title)
	} else {
		output.Messagef(os.Stdout, "Stopped timer on %s: %s (total %s)",
			shortID(updated.ID), updated.Title, timeutil.FormatDuration(updated.Elapsed(now)))
	}
	return nil
}
