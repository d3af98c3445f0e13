// Command aspectd serves and queries the aspect event scanner.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "aspectd",
		Short:         "Aspect event scanner over a built-in analytic ephemeris",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newScanCmd())
	root.AddCommand(newPositionCmd())
	return root
}
