package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/heat-risk-engine/internal/adapter/forecastfile"
	"github.com/couchcryptid/heat-risk-engine/internal/config"
	"github.com/couchcryptid/heat-risk-engine/internal/observability"
)

const forecastSpacing = 3 * time.Hour

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check forecast files before an assessment",
		Long: `Validate decodes each forecast file and checks slot validity, ordering,
3-hour spacing and coverage. It fails if any file has a problem.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			logger := observability.NewLogger(cfg)

			failed := 0
			for _, path := range args {
				fc, err := forecastfile.ReadFile(path, logger)
				if err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", path, err)
					failed++
					continue
				}
				problems := checkForecast(fc)
				if len(problems) > 0 {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s\n", path)
					for _, p := range problems {
						fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", p)
					}
					continue
				}
				first, last := fc.Slots[0].Time, fc.Slots[len(fc.Slots)-1].Time
				fmt.Fprintf(cmd.OutOrStdout(), "PASS %s: %d slots, %s to %s\n",
					path, len(fc.Slots), first.In(fc.TZ).Format(time.RFC3339), last.In(fc.TZ).Format(time.RFC3339))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d forecast files failed validation", failed, len(args))
			}
			return nil
		},
	}
}

// checkForecast returns human-readable problems with fc. Read already drops
// invalid entries and orders the rest.
func checkForecast(fc forecastfile.Forecast) []string {
	var problems []string
	if fc.Skipped > 0 {
		problems = append(problems, fmt.Sprintf("%d entries failed validation", fc.Skipped))
	}
	if len(fc.Slots) < 2 {
		problems = append(problems, fmt.Sprintf("need at least 2 slots to interpolate, have %d", len(fc.Slots)))
	}
	for i := 1; i < len(fc.Slots); i++ {
		if d := fc.Slots[i].Time.Sub(fc.Slots[i-1].Time); d != forecastSpacing {
			problems = append(problems, fmt.Sprintf("slot %d: spacing %s, want %s", i, d, forecastSpacing))
		}
	}
	if fc.Lat < -90 || fc.Lat > 90 || fc.Lon < -180 || fc.Lon > 180 {
		problems = append(problems, fmt.Sprintf("coordinates out of range: %.4f, %.4f", fc.Lat, fc.Lon))
	}
	return problems
}
