package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tidlog/tidlog/internal/clierr"
	"github.com/tidlog/tidlog/internal/engine"
	"github.com/tidlog/tidlog/internal/output"
)

var editCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Edit a task's title or description",
	Long: `Updates the title and/or description of a task.
Completed tasks cannot be edited; reactivate them first with 'tidlog done'.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().String("title", "", "new task title")
	editCmd.Flags().String("description", "", "new task description (markdown)")
	editCmd.Flags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		if name == "body" {
			name = "description"
		}
		return pflag.NormalizedName(name)
	})
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
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
			"task %s is completed; reactivate it first with 'tidlog done %s'",
			shortID(t.ID), shortID(t.ID))
	}

	save := engine.SaveTask{ID: t.ID}
	if cmd.Flags().Changed("title") {
		v, _ := cmd.Flags().GetString("title")
		save.Title = &v
	}
	if cmd.Flags().Changed("description") {
		v, _ := cmd.Flags().GetString("description")
		save.Description = &v
	}
	if save.Title == nil && save.Description == nil {
		return clierr.New(clierr.NoChanges, "nothing to edit; pass --title or --description")
	}

	next, err := mutate(cfg, save, t.ID, t.Title)
	if err != nil {
		return err
	}
	updated := next.Tasks[t.ID]

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, output.NewTaskView(updated, time.Now()))
	}

	output.Messagef(os.Stdout, "Updated task %s: %s", shortID(updated.ID), updated.Title)
	return nil
}
