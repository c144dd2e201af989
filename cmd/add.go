package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tidlog/tidlog/internal/clierr"
	"github.com/tidlog/tidlog/internal/engine"
	"github.com/tidlog/tidlog/internal/output"
	"github.com/tidlog/tidlog/internal/store"
)

var addCmd = &cobra.Command{
	Use:     "add [TITLE]",
	Aliases: []string{"create"},
	Short:   "Add a new task",
	Long: `Adds a new task at the top of the list.

Title can be provided as a positional argument or via --title flag.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().String("title", "", "task title (alternative to positional argument)")
	addCmd.Flags().String("description", "", "task description (markdown)")
	addCmd.Flags().Bool("start", false, "start the timer on the new task")
	addCmd.Flags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		if name == "body" {
			name = "description"
		}
		return pflag.NormalizedName(name)
	})
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	title, err := resolveAddTitle(cmd, args)
	if err != nil {
		return err
	}

	st, err := loadState(cfg)
	if err != nil {
		return err
	}

	now := time.Now()
	next, changed := engine.Dispatch(st, engine.AddTask{Title: title}, now)
	if !changed {
		return clierr.New(clierr.EmptyTitle, "task title must not be empty")
	}

	// The engine assigns the ID; find the task that appeared.
	var created engine.Task
	for id, t := range next.Tasks {
		if _, ok := st.Tasks[id]; !ok {
			created = t
			break
		}
	}

	if desc, _ := cmd.Flags().GetString("description"); desc != "" {
		next, _ = engine.Dispatch(next, engine.SaveTask{ID: created.ID, Description: &desc}, now)
		created = next.Tasks[created.ID]
	}
	if start, _ := cmd.Flags().GetBool("start"); start {
		next, _ = engine.Dispatch(next, engine.ToggleTimer{ID: created.ID}, now)
		created = next.Tasks[created.ID]
	}

	if err := store.Save(cfg.SnapshotPath(), next); err != nil {
		return fmt.Errorf("saving state: %w", err)
	}
	store.LogMutation(cfg.Dir(), "add", created.ID, created.Title)

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, output.NewTaskView(created, now))
	}

	output.Messagef(os.Stdout, "Added task %s: %s", shortID(created.ID), created.Title)
	if created.TimerRunning {
		output.Messagef(os.Stdout, "  Timer started")
	}
	return nil
}

// resolveAddTitle returns the task title from either the positional arg or
// --title flag.
func resolveAddTitle(cmd *cobra.Command, args []string) (string, error) {
	flagTitle, _ := cmd.Flags().GetString("title")
	hasPositional := len(args) > 0
	hasFlag := flagTitle != ""

	switch {
	case hasPositional && hasFlag:
		return "", clierr.New(clierr.InvalidInput,
			"title provided both as argument and --title flag; use one or the other")
	case hasPositional:
		return args[0], nil
	case hasFlag:
		return flagTitle, nil
	default:
		return "", errors.New("title is required: provide it as an argument or with --title")
	}
}
