package cmd

import (
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tidlog/tidlog/internal/clierr"
	"github.com/tidlog/tidlog/internal/engine"
	"github.com/tidlog/tidlog/internal/output"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long:    `Lists active tasks in sort order, with optional completed tasks and search.`,
	RunE:    runList,
}

func init() {
	listCmd.Flags().BoolP("all", "a", false, "include completed tasks")
	listCmd.Flags().Bool("completed", false, "show only completed tasks")
	listCmd.Flags().Bool("running", false, "show only the task with a running timer")
	listCmd.Flags().StringP("search", "s", "", "search tasks by title or description (case-insensitive)")
	listCmd.Flags().String("sort", "order", "sort field (order, created, time, title)")
	listCmd.Flags().IntP("limit", "n", 0, "limit number of results")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := loadState(cfg)
	if err != nil {
		return err
	}

	all, _ := cmd.Flags().GetBool("all")
	completedOnly, _ := cmd.Flags().GetBool("completed")
	runningOnly, _ := cmd.Flags().GetBool("running")
	search, _ := cmd.Flags().GetString("search")
	limit, _ := cmd.Flags().GetInt("limit")

	var tasks []engine.Task
	switch {
	case runningOnly:
		if t, ok := engine.RunningTask(st); ok {
			tasks = []engine.Task{t}
		}
	case completedOnly:
		tasks = engine.Completed(st)
	case all:
		tasks = append(engine.Active(st), engine.Completed(st)...)
	default:
		tasks = engine.Active(st)
	}

	if search != "" {
		tasks = filterTasks(tasks, search)
	}

	now := time.Now()
	sortBy, _ := cmd.Flags().GetString("sort")
	if err := sortTasks(tasks, sortBy, now); err != nil {
		return err
	}
	if limit > 0 && len(tasks) > limit {
		tasks = tasks[:limit]
	}
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, output.NewTaskViews(tasks, now))
	case output.FormatCompact:
		output.TaskCompact(os.Stdout, tasks, now)
	default:
		output.TaskTable(os.Stdout, tasks, now)
	}
	return nil
}

// sortTasks re-sorts the listing for non-default sort fields. The default
// "order" keeps the view ordering (manual order, then completion recency).
func sortTasks(tasks []engine.Task, sortBy string, now time.Time) error {
	switch sortBy {
	case "", "order":
		return nil
	case "created":
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		})
	case "time":
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].Elapsed(now) > tasks[j].Elapsed(now)
		})
	case "title":
		sort.SliceStable(tasks, func(i, j int) bool {
			return strings.ToLower(tasks[i].Title) < strings.ToLower(tasks[j].Title)
		})
	default:
		return clierr.Newf(clierr.InvalidInput,
			"invalid --sort field %q; valid: order, created, time, title", sortBy)
	}
	return nil
}

// filterTasks keeps tasks whose title or description contains the query,
// case-insensitive.
func filterTasks(tasks []engine.Task, query string) []engine.Task {
	q := strings.ToLower(query)
	var out []engine.Task
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Title), q) ||
			strings.Contains(strings.ToLower(t.Description), q) {
			out = append(out, t)
		}
	}
	return out
}
