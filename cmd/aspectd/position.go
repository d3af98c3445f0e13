package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Polsky40/efemerides/internal/angle"
	"github.com/Polsky40/efemerides/internal/ephemeris"
)

func newPositionCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "position <body>",
		Short: "Print a body's ecliptic position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, ok := ephemeris.BodyForName(args[0])
			if !ok {
				return fmt.Errorf("unknown body %q", args[0])
			}

			t := time.Now().UTC()
			if at != "" {
				var err error
				t, err = ephemeris.ParseDateTime(at)
				if err != nil {
					return err
				}
			}

			pos, err := ephemeris.NewAnalytic().PositionAt(body, ephemeris.JulianDay(t))
			if err != nil {
				return err
			}

			motion := "direct"
			if pos.Speed < 0 {
				motion = "retrograde"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s at %s\n", body, t.Format(time.RFC3339))
			fmt.Fprintf(out, "  longitude: %.4f°  (%s)\n", pos.Longitude, angle.SignPosition(pos.Longitude))
			fmt.Fprintf(out, "  speed:     %+.4f°/day (%s)\n", pos.Speed, motion)
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "instant, ISO format (default: now)")
	return cmd
}
