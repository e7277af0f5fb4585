package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/rewind/internal/cli"
	"github.com/aretw0/rewind/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "rewind",
	Short: "Rewind keeps undoable document histories",
	Long: `Rewind stores sessions as linear histories of documents.
Every action appends a new document; undo and redo move through the history.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "rewind.yaml", "Path to the configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().String("dir", ".", "Directory relative store paths are resolved against")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// loadConfig reads the config named by --config and applies --dir.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	dir, _ := cmd.Flags().GetString("dir")

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	cli.ResolveStorePath(&cfg, dir)
	return cfg, nil
}

// loadStack loads the config and builds the service stack.
func loadStack(cmd *cobra.Command) (*cli.Stack, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, config.Config{}, err
	}

	debug, _ := cmd.Flags().GetBool("debug")
	logger, err := cli.NewLogger(cfg.Log.Level, debug)
	if err != nil {
		return nil, config.Config{}, err
	}

	stack, err := cli.Build(cmd.Context(), cfg, logger, nil)
	if err != nil {
		return nil, config.Config{}, err
	}
	return stack, cfg, nil
}
