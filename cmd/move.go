package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tidlog/tidlog/internal/clierr"
	"github.com/tidlog/tidlog/internal/engine"
	"github.com/tidlog/tidlog/internal/output"
)

var moveCmd = &cobra.Command{
	Use:   "move ID [TARGET]",
	Short: "Move a task to another position",
	Long: `Reorders the active list by moving a task to the position of TARGET,
shifting the tasks in between. Use --top or --bottom instead of a target.`,
	Args: cobra.RangeArgs(1, 2), //nolint:mnd // task and optional target
	RunE: runMove,
}

func init() {
	moveCmd.Flags().Bool("top", false, "move the task to the top of the list")
	moveCmd.Flags().Bool("bottom", false, "move the task to the bottom of the list")
	rootCmd.AddCommand(moveCmd)
}

func runMove(cmd *cobra.Command, args []string) error {
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
	if t.Completed {
		return clierr.Newf(clierr.TaskCompleted,
			"task %s is completed; completed tasks have no position", shortID(t.ID))
	}

	top, _ := cmd.Flags().GetBool("top")
	bottom, _ := cmd.Flags().GetBool("bottom")

	var target engine.Task
	switch {
	case len(args) == 2 && (top || bottom):
		return clierr.New(clierr.InvalidInput,
			"provide either a target task or --top/--bottom, not both")
	case len(args) == 2:
		target, err = resolveTask(st, args[1])
		if err != nil {
			return err
		}
		if target.Completed {
			return clierr.Newf(clierr.TaskCompleted,
				"target %s is completed; completed tasks have no position", shortID(target.ID))
		}
	case top || bottom:
		active := engine.Active(st)
		if len(active) == 0 {
			return clierr.New(clierr.NoChanges, "no active tasks to reorder")
		}
		if top {
			target = active[0]
		} else {
			target = active[len(active)-1]
		}
	default:
		return clierr.New(clierr.InvalidInput,
			"provide a target task or one of --top/--bottom")
	}

	next, err := mutate(cfg, engine.SortTasks{DraggedID: t.ID, TargetID: target.ID}, t.ID, "")
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, output.NewTaskViews(engine.Active(next), time.Now()))
	}

	output.Messagef(os.Stdout, "Moved task %s: %s", shortID(t.ID), t.Title)
	return nil
}
