package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Polsky40/efemerides/internal/ephemeris"
	"github.com/Polsky40/efemerides/internal/natal"
	"github.com/Polsky40/efemerides/internal/scan"
)

func newScanCmd() *cobra.Command {
	var (
		bodies    []string
		targets   []string
		aspects   []float64
		orb       float64
		from      string
		to        string
		stepHours float64
		strategy  string
		natalPath string
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run a one-off aspect scan and print the events",
		Example: `  aspectd scan --bodies mars --target 90 --from 2025-01-01 --to 2025-03-01
  aspectd scan --bodies sun,moon --target SUN --natal chart.yaml --aspect 0 --aspect 180 \
      --from 2025-06-01 --to 2025-07-01 --strategy precision`,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := ephemeris.ParseDate(from)
			if err != nil {
				return err
			}
			end, err := ephemeris.ParseDate(to)
			if err != nil {
				return err
			}

			var chart natal.Chart
			if natalPath != "" {
				chart, err = natal.Load(natalPath)
				if err != nil {
					return err
				}
			}

			parsed := make([]scan.Target, 0, len(targets))
			for _, t := range targets {
				target, err := scan.ParseTarget(t)
				if err != nil {
					return err
				}
				parsed = append(parsed, target)
			}

			req := scan.Request{
				Bodies:   bodies,
				Targets:  parsed,
				Aspects:  aspects,
				Orb:      orb,
				Window:   scan.Window{Start: start, End: end, Step: stepHours / 24},
				Natal:    chart,
				Strategy: scan.Strategy(strategy),
			}
			if req.Strategy == scan.StrategyPrecision {
				req.Window.Step = scan.PrecisionStepDays
			}

			logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
			scanner := scan.NewScanner(ephemeris.NewAnalytic(), 0, logger)

			result, err := scanner.Scan(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, s := range result.Skipped {
				fmt.Fprintf(out, "skipped %s: %s\n", s.Name, s.Reason)
			}
			for _, ev := range result.Events {
				fmt.Fprintf(out, "%s  %-8s %s %g°  orb=%.4f°  %s\n",
					ev.UTC, ev.Body, ev.Target, ev.Angle, ev.Orb, ev.Motion)
			}
			fmt.Fprintf(out, "%d events\n", len(result.Events))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&bodies, "bodies", nil, "body names to scan (required)")
	cmd.Flags().StringSliceVar(&targets, "target", nil, "targets: degrees, natal point, or body name (required)")
	cmd.Flags().Float64SliceVar(&aspects, "aspect", nil, "aspect angles in degrees (default 0)")
	cmd.Flags().Float64Var(&orb, "orb", scan.DefaultOrb, "orb tolerance in degrees")
	cmd.Flags().StringVar(&from, "from", "", "window start, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&to, "to", "", "window end, YYYY-MM-DD (required)")
	cmd.Flags().Float64Var(&stepHours, "step-hours", scan.DefaultStepHours, "membership sampling step in hours")
	cmd.Flags().StringVar(&strategy, "strategy", string(scan.StrategyMembership), "membership or precision")
	cmd.Flags().StringVar(&natalPath, "natal", "", "YAML file of natal point: degrees pairs")

	cmd.MarkFlagRequired("bodies")
	cmd.MarkFlagRequired("target")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	return cmd
}
