// percyd - local control-plane daemon for the visual-testing agent.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/percylabs/percyd/pkg/api"
)

// Build-time variables set via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	root := &cobra.Command{
		Use:           "percyd",
		Short:         "Local control-plane API for the visual-testing agent",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd(), newStaticCmd(), newVersionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("percyd %s (core %s, commit %s, built %s)\n",
				Version, api.Version, Commit, BuildDate)
		},
	}
}
