package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/lessonplan/internal/queue"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect or extend the topic queue",
}

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending topics, next first",
	Args:  cobra.NoArgs,
	RunE:  runQueueList,
}

var queueAddCmd = &cobra.Command{
	Use:   "add <topic>...",
	Short: "Append topics to the end of the queue",
	Long: `Append topics to the end of the queue. Each argument is one topic;
an argument containing newlines is split into one topic per non-blank line.

Examples:
  lessonplan queue add "原电池" "Chemical equilibrium"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQueueAdd,
}

func init() {
	queueCmd.AddCommand(queueListCmd)
	queueCmd.AddCommand(queueAddCmd)
}

func runQueueList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	store, err := queueStore(ctx)
	if err != nil {
		return err
	}
	topics, err := store.Load(ctx)
	if err != nil {
		return err
	}

	newPrinter(os.Stdout).queue(topics)
	return nil
}

func runQueueAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	store, err := queueStore(ctx)
	if err != nil {
		return err
	}
	n, err := queue.Append(ctx, store, args...)
	if err != nil {
		return err
	}

	fmt.Printf("Queue now has %d topic(s)\n", n)
	return nil
}
