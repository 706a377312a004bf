package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded generation runs",
	Long: `List generation runs recorded in SurrealDB, newest first.
Runs are recorded when record_history is enabled.

Examples:
  lessonplan runs              # List the 20 most recent runs
  lessonplan runs --limit 5
  lessonplan runs show abcd1234`,
	Args: cobra.NoArgs,
	RunE: runRuns,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show details for one run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "maximum number of runs to list")
	runsCmd.AddCommand(runsShowCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	client, err := connectDB(ctx)
	if err != nil {
		return err
	}
	runs, err := client.ListRuns(ctx, runsLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	newPrinter(os.Stdout).runs(runs)
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	client, err := connectDB(ctx)
	if err != nil {
		return err
	}
	run, err := client.GetRun(ctx, args[0])
	if err != nil {
		return err
	}

	newPrinter(os.Stdout).runDetail(*run)
	return nil
}
