package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lifelog/authgate/internal/config"
	"github.com/lifelog/authgate/internal/server"
	"github.com/spf13/cobra"
)

type serveOptions struct {
	ConfigFile string
	Listen     string
	LogLevel   string
}

func serveCmd() *cobra.Command {
	var opts serveOptions
	cmd := &cobra.Command{
		Use:          "serve",
		Short:        "start the API server",
		SilenceUsage: true,
		Long: `serve loads the config file (optional) and LIFELOG_* environment overrides,
then serves the API until SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&opts.ConfigFile, "config", "c", "", "path to a YAML config file")
	fs.StringVarP(&opts.Listen, "listen", "l", "", "API listen address, overrides app.listen")
	fs.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error), overrides app.log_level")
	return cmd
}

func runServe(ctx context.Context, opts serveOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return err
	}
	if opts.Listen != "" {
		cfg.App.Listen = opts.Listen
	}
	if opts.LogLevel != "" {
		cfg.App.LogLevel = opts.LogLevel
	}

	logger := server.NewLogger(os.Stderr, cfg.App.LogLevel, cfg.App.Production)
	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return err
	}
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}()
	return srv.Run(ctx)
}
