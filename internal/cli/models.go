package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/lessonplan/internal/llm"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Show the effective model catalog in fallback order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backends := make([]llm.Backend, 0, len(cfg.Models))
		for _, id := range cfg.Models {
			b, err := llm.ParseBackend(id, cfg.Provider)
			if err != nil {
				return err
			}
			backends = append(backends, b)
		}
		newPrinter(os.Stdout).models(backends)
		return nil
	},
}
