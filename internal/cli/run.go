package cli

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/lessonplan/internal/artifact"
	"github.com/raphaelgruber/lessonplan/internal/config"
	"github.com/raphaelgruber/lessonplan/internal/generate"
	"github.com/raphaelgruber/lessonplan/internal/llm"
	"github.com/raphaelgruber/lessonplan/internal/metrics"
	"github.com/raphaelgruber/lessonplan/internal/queue"
	"github.com/raphaelgruber/lessonplan/internal/service"
)

var (
	runTopic   string
	runPeriods int
	runModels  string
	runStats   bool
	runNoView  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate a lesson plan for the next topic",
	Long: `Generate a lesson plan for one topic and write it as Markdown.

Without --topic the head of the queue is consumed. If generation does not
complete the topic is put back at the head of the queue. Exit status is 0 when
the plan was completed or there was nothing to do, and 1 otherwise.

Examples:
  lessonplan run
  lessonplan run --topic "Electrolysis of brine" --periods 2
  lessonplan run --models gemini-2.5-flash,openai:gpt-4o-mini --stats

On a terminal a progress view follows each period; press q to stop early.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runTopic, "topic", "t", "", "generate this topic instead of the queue head")
	runCmd.Flags().IntVarP(&runPeriods, "periods", "p", 0, "number of class periods (default from config)")
	runCmd.Flags().StringVarP(&runModels, "models", "m", "", "comma-separated model catalog, most preferred first")
	runCmd.Flags().BoolVar(&runStats, "stats", false, "print per-model attempt statistics")
	runCmd.Flags().BoolVar(&runNoView, "no-progress", false, "disable the interactive progress view")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	applyRunFlags(cmd, &cfg)

	source, err := workSource(ctx)
	if err != nil {
		return err
	}

	collector := metrics.NewCollector()
	driver := generate.NewDriver(llm.NewCaller(cfg, logger), generate.DriverConfig{Backoff: cfg.RetryBackoff}, logger)
	driver.SetRecorder(collector)
	planner := generate.NewPlanner(driver, generate.PlannerConfig{Pause: cfg.SegmentPause}, logger)

	runner := service.NewRunner(
		source,
		planner,
		generate.NewCatalog(cfg.Models...),
		cfg.Periods,
		artifact.NewWriter(cfg.OutputDir),
		logger,
	)
	if cfg.RecordHistory {
		client, err := connectDB(ctx)
		if err != nil {
			logger.Warn("run history disabled", "error", err)
		} else {
			runner.SetHistory(client)
		}
	}

	var report service.RunReport
	var runErr error
	if !runNoView && isTerminal(os.Stdout) {
		report, runErr = runWithProgress(ctx, runner, planner, driver, collector)
	} else {
		report, runErr = runner.Run(ctx)
	}

	out := newPrinter(os.Stdout)
	out.report(report)
	if runStats {
		out.stats(collector.Snapshot())
	}
	return runErr
}

// applyRunFlags lets explicitly set flags override configuration.
func applyRunFlags(cmd *cobra.Command, c *config.Config) {
	if cmd.Flags().Changed("topic") {
		c.Topic = strings.TrimSpace(runTopic)
	}
	if cmd.Flags().Changed("periods") {
		c.Periods = generate.ClampSegments(runPeriods)
	}
	if cmd.Flags().Changed("models") {
		var models []string
		for _, m := range strings.Split(runModels, ",") {
			if m = strings.TrimSpace(m); m != "" {
				models = append(models, m)
			}
		}
		if len(models) > 0 {
			c.Models = models
		}
	}
}

// workSource picks the manual topic when one is configured, else the queue.
func workSource(ctx context.Context) (queue.Source, error) {
	if cfg.Topic != "" {
		return queue.NewManualSource(cfg.Topic), nil
	}
	store, err := queueStore(ctx)
	if err != nil {
		return nil, err
	}
	return queue.NewQueueSource(store, logger), nil
}
