package main

import (
	"fmt"

	"github.com/pullwatch/pullwatch/internal/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the pullwatch configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Resolve(cfgFile)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		fmt.Printf("Config OK: %d pipeline(s), %d extra notify target(s)\n",
			len(cfg.Pipelines), len(cfg.Notify.Extra))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
