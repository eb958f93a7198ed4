package main

import (
	"github.com/spf13/cobra"
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "lifelogd [command]",
		Short:        "lifelog API server",
		SilenceUsage: true,
		Long: `lifelogd serves the lifelog record API. Every /api route authenticates the
bearer token and checks record ownership before the handler runs.`,
	}
	cmd.AddCommand(serveCmd())
	return cmd
}
