package main

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/percylabs/percyd/pkg/agent"
	"github.com/percylabs/percyd/pkg/api"
	"github.com/percylabs/percyd/pkg/logging"
)

func newServeCmd() *cobra.Command {
	var (
		port     int
		testing  bool
		logLevel string
		logJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the control API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			format := logging.FormatText
			if logJSON {
				format = logging.FormatJSON
			}
			facility := logging.New(logging.Config{
				Level:  logging.ParseLevel(logLevel),
				Format: format,
			})

			a := agent.NewLocal(agent.WithLogger(facility.Logger()))

			// Bind up front so a busy port fails before the agent spins up.
			addr := fmt.Sprintf(":%d", port)
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", addr, err)
			}

			opts := []api.Option{api.WithListener(ln)}
			if testing {
				opts = append(opts, api.WithTesting())
			}

			server := api.New(addr, a, facility, opts...)
			if err := server.Start(); err != nil {
				return err
			}

			// Block until /percy/stop or an interrupt shuts us down.
			go func() {
				waitForInterrupt()
				server.Stop()
			}()
			server.Wait()
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 5338, "port to listen on")
	cmd.Flags().BoolVar(&testing, "testing", false, "enable the testing-mode control endpoints")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "log in JSON format")

	return cmd
}
