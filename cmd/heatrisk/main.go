// Command heatrisk assesses personal heat risk from a 3-hourly forecast.
//
// Usage:
//
//	heatrisk assess --forecast data/forecast.json --day 1 --hour 15 \
//	  --age 40 --weight 80 --height 1.8 --met 2.0 --clo 0.5 --mc
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "heatrisk",
		Short: "Heat-risk and thermal-comfort assessment",
		Long: `heatrisk interpolates a weather forecast, derives solar irradiance and
thermal indices, simulates core temperature and water loss for one person and
classifies the result into ordinal risk levels.`,
		SilenceUsage: true,
	}
	root.AddCommand(newAssessCmd(), newValidateCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
