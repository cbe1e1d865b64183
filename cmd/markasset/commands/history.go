package commands

import (
	"fmt"

	"github.com/markasset/markasset/internal/config"
	"github.com/markasset/markasset/pkg/errors"
	"github.com/markasset/markasset/pkg/history"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded retrieval outcomes",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "config load failed")
	}

	if err := ensureDirectories(cfg.SQLitePath, "", ""); err != nil {
		return err
	}

	repo, err := history.NewRepository(cfg.SQLitePath)
	if err != nil {
		return errors.Wrap(err, "history db init failed")
	}
	defer repo.Close()

	runs, err := repo.List()
	if err != nil {
		return errors.Wrap(err, "list failed")
	}

	if len(runs) == 0 {
		fmt.Println("No retrieval runs recorded")
		return nil
	}

	fmt.Printf("%-6s %-24s %-6s %-30s %-20s\n", "CODE", "OUTCOME", "FILES", "DESTINATION", "WHEN")
	fmt.Println("----------------------------------------------------------------------------------------")

	for _, run := range runs {
		destination := run.Destination
		if destination == "" {
			destination = "-"
		}
		fmt.Printf("%-6s %-24s %-6d %-30s %-20s\n",
			run.Code, run.Outcome, run.FileCount, destination, run.CreatedAt)
	}

	return nil
}
