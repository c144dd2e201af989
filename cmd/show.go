package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/tidlog/tidlog/internal/engine"
	"github.com/tidlog/tidlog/internal/output"
)

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show task details",
	Long:  `Displays full details of a single task including its time-log summary.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().Bool("plain", false, "print the description without markdown rendering")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
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

	format := outputFormat()
	if format == output.FormatJSON {
		return output.JSON(os.Stdout, struct {
			output.TaskView
			Entries []output.EntryView `json:"entries"`
		}{output.NewTaskView(t, now), output.NewEntryViews(entries, now)})
	}
	if format == output.FormatCompact {
		output.TaskDetailCompact(os.Stdout, t, entries, now)
		return nil
	}

	plain, _ := cmd.Flags().GetBool("plain")
	if !plain && t.Description != "" {
		// Render the markdown description separately, the rest stays tabular.
		rendered := t.Description
		if r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80)); err == nil { //nolint:mnd // wrap width
			if md, err := r.Render(t.Description); err == nil {
				rendered = md
			}
		}
		t.Description = ""
		output.TaskDetail(os.Stdout, t, entries, now)
		fmt.Fprint(os.Stdout, rendered)
		return nil
	}

	output.TaskDetail(os.Stdout, t, entries, now)
	return nil
}
