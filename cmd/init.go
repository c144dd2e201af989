package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tidlog/tidlog/internal/config"
	"github.com/tidlog/tidlog/internal/output"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new tidlog list",
	Long:  `Creates a tidlog directory with config.yml and an empty state snapshot.`,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().String("name", "", "list name (defaults to current directory name)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	dir := flagDir
	if dir == "" {
		dir = config.DefaultDir
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		name = filepath.Base(cwd)
	}

	cfg, err := config.Init(absDir, name)
	if err != nil {
		return err
	}

	format := outputFormat()
	if format == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]string{
			"status": "initialized",
			"dir":    absDir,
			"name":   name,
			"config": cfg.ConfigPath(),
			"store":  cfg.SnapshotPath(),
		})
	}

	output.Messagef(os.Stdout, "Initialized list %q in %s", name, absDir)
	output.Messagef(os.Stdout, "  Config: %s", cfg.ConfigPath())
	output.Messagef(os.Stdout, "  Store:  %s", cfg.SnapshotPath())
	return nil
}
