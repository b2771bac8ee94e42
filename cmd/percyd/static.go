package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/percylabs/percyd/pkg/logging"
	"github.com/percylabs/percyd/pkg/static"
)

func newStaticCmd() *cobra.Command {
	var (
		port       int
		basePath   string
		cleanURLs  bool
		rewrites   []string
		configFile string
	)

	cmd := &cobra.Command{
		Use:   "static <directory>",
		Short: "Serve a directory of files with rewrite-aware sitemap generation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := static.Options{
				BasePath:  basePath,
				CleanURLs: cleanURLs,
			}

			if configFile != "" {
				cfg, err := static.LoadConfig(configFile)
				if err != nil {
					return err
				}
				opts = cfg.Options()
				if cfg.Port != 0 && !cmd.Flags().Changed("port") {
					port = cfg.Port
				}
			}

			for _, spec := range rewrites {
				source, dest, ok := strings.Cut(spec, "=")
				if !ok {
					return fmt.Errorf("invalid rewrite %q, expected source=destination", spec)
				}
				opts.Rewrites = append(opts.Rewrites, static.Rule{Source: source, Destination: dest})
			}

			facility := logging.New(logging.DefaultConfig())
			server := static.NewServer(fmt.Sprintf(":%d", port), os.DirFS(args[0]), opts, facility)
			if err := server.Start(); err != nil {
				return err
			}

			waitForInterrupt()
			return server.Stop()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 5339, "port to listen on")
	cmd.Flags().StringVar(&basePath, "base-path", "", "URL prefix to mount the directory under")
	cmd.Flags().BoolVar(&cleanURLs, "clean-urls", false, "serve and list files without html suffixes")
	cmd.Flags().StringArrayVar(&rewrites, "rewrite", nil, "rewrite rule source=destination (repeatable)")
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML config file")

	return cmd
}

// waitForInterrupt blocks until SIGINT or SIGTERM.
func waitForInterrupt() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	<-ch
}
