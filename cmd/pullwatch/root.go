package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
	envFile  string
)

var rootCmd = &cobra.Command{
	Use:   "pullwatch",
	Short: "Automated git pull with failure alerting",
	Long: "Pullwatch keeps a deployed repository in sync with its remote. It runs git pull " +
		"with a per-workspace SSH deploy key and posts to a Slack webhook when a pull fails, " +
		"suppressing duplicate alerts for recurring errors. No daemon, no database — meant " +
		"to be invoked by cron or a pipeline scheduler.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile == "" {
			return nil
		}
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("loading env file: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment variables from this file")
}

// setupLogger builds the slog logger; the --log-level flag wins over the
// config value.
func setupLogger(configLevel string) *slog.Logger {
	name := logLevel
	if name == "" {
		name = configLevel
	}

	level := slog.LevelInfo
	switch name {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
