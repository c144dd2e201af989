package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tidlog/tidlog/internal/clierr"
	"github.com/tidlog/tidlog/internal/engine"
	"github.com/tidlog/tidlog/internal/output"
)

var deleteCmd = &cobra.Command{
	Use:     "delete ID",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Long: `Permanently deletes a task and its entire time log.
Prompts for confirmation in interactive mode.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolP("yes", "y", false, "skip confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
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

	entries := len(engine.EntriesFor(st, t.ID))

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return clierr.New(clierr.ConfirmationReq,
				"cannot prompt for confirmation (not a terminal); use --yes")
		}
		fmt.Fprintf(os.Stderr, "Delete task %s %q and its %d time-log entries? [y/N] ",
			shortID(t.ID), t.Title, entries)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(os.Stderr, "Canceled.")
			return nil
		}
	}

	if _, err := mutate(cfg, engine.DeleteTask{ID: t.ID}, t.ID, t.Title); err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]interface{}{
			"status":  "deleted",
			"id":      t.ID,
			"title":   t.Title,
			"entries": entries,
		})
	}

	output.Messagef(os.Stdout, "Deleted task %s: %s", shortID(t.ID), t.Title)
	return nil
}
