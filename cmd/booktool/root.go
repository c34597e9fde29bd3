package main

import (
	"github.com/spf13/cobra"

	"github.com/Faultbox/flipbook/internal/config"
	"github.com/Faultbox/flipbook/internal/logger"
)

// commandContext carries the persistent flags to subcommands.
type commandContext struct {
	configPath string
	logLevel   string
}

func (c *commandContext) loadConfig() (*config.Config, error) {
	return config.LoadFile(c.configPath)
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "booktool",
		Short:         "Inspect and export flipbook assets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if ctx.logLevel == "" {
				return nil
			}
			return logger.Init(ctx.logLevel, "")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configPath, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&ctx.logLevel, "log-level", "", "Log to stderr at this level (debug, info, warn, error)")

	rootCmd.AddCommand(newDimsCommand(ctx))
	rootCmd.AddCommand(newSimulateCommand())
	rootCmd.AddCommand(newSlicesCommand(ctx))

	return rootCmd
}
