package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tidlog/tidlog/internal/engine"
	"github.com/tidlog/tidlog/internal/output"
)

var doneCmd = &cobra.Command{
	Use:     "done ID",
	Aliases: []string{"complete"},
	Short:   "Complete a task (or reactivate a completed one)",
	Long: `Marks a task as completed, stopping its timer if running.
Running 'done' on a completed task reactivates it at the top of the list.`,
	Args: cobra.ExactArgs(1),
	RunE: runDone,
}

func init() {
	rootCmd.AddCommand(doneCmd)
}

func runDone(_ *cobra.Command, args []string) error {
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

	next, err := mutate(cfg, engine.CompleteTask{ID: t.ID}, t.ID, t.Title)
	if err != nil {
		return err
	}
	updated := next.Tasks[t.ID]

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, output.NewTaskView(updated, time.Now()))
	}

	if updated.Completed {
		output.Messagef(os.Stdout, "Completed task %s: %s", shortID(updated.ID), updated.Title)
	} else {
		output.Messagef(os.Stdout, "Reactivated task %s: %s", shortID(updated.ID), updated.Title)
	}
	return nil
}
