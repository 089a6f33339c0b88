package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pullwatch/pullwatch/internal/alert"
	"github.com/pullwatch/pullwatch/internal/config"
	"github.com/pullwatch/pullwatch/internal/notify"
	"github.com/pullwatch/pullwatch/internal/puller"
	"github.com/pullwatch/pullwatch/internal/state"
	"github.com/spf13/cobra"
)

var pullCmd = &cobra.Command{
	Use:   "pull [pipeline_name]",
	Short: "Pull configured repositories",
	Long:  "Pulls a single pipeline by name, or all configured pipelines if no name is given. Use --dry-run to evaluate alerting without sending notifications.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		cfg, err := config.Resolve(cfgFile)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		logger := setupLogger(cfg.Options.LogLevel)

		store, err := state.Open(cfg.Options.StateBackend, cfg.Options.StateDir, cfg.Options.RedisAddr, logger)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		// A misconfigured notifier silently drops every alert: fail fast.
		slack, err := notify.NewSlack(cfg.Notify.SlackWebhookURL, nil, logger)
		if err != nil {
			return err
		}

		executor := puller.New(alert.New(store, logger), slack, extraTargets(cfg), logger)
		ctx := context.Background()

		pipelines := cfg.Pipelines
		if len(args) == 1 {
			p := findPipeline(cfg, args[0])
			if p == nil {
				return fmt.Errorf("pipeline %q not found in config", args[0])
			}
			pipelines = []config.Pipeline{*p}
		}

		hasError := false
		for i := range pipelines {
			opts, err := pullOptions(cfg, &pipelines[i], dryRun)
			if err != nil {
				return err
			}

			result, err := executor.PullWithAlerting(ctx, opts)
			printResult(result, err)
			if err != nil {
				hasError = true
			}
		}

		if hasError {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	pullCmd.Flags().Bool("dry-run", false, "evaluate alerting without sending notifications")
	rootCmd.AddCommand(pullCmd)
}

func findPipeline(cfg *config.Config, name string) *config.Pipeline {
	for i := range cfg.Pipelines {
		if cfg.Pipelines[i].Name == name {
			return &cfg.Pipelines[i]
		}
	}
	return nil
}

func pullOptions(cfg *config.Config, p *config.Pipeline, dryRun bool) (puller.Options, error) {
	timeout, err := p.ExecTimeout()
	if err != nil {
		return puller.Options{}, err
	}

	return puller.Options{
		PipelineID:        p.Name,
		Workspace:         p.Workspace,
		RepoPath:          p.RepoPath,
		GitURL:            p.GitURL,
		Branch:            p.Branch,
		SSHDir:            cfg.Options.SSHDir,
		KeyFilename:       p.KeyFilename,
		SuppressionWindow: p.SuppressionWindow.Duration,
		Timeout:           timeout,
		DryRun:            dryRun,
	}, nil
}

func extraTargets(cfg *config.Config) []notify.ExtraTarget {
	targets := make([]notify.ExtraTarget, len(cfg.Notify.Extra))
	for i, t := range cfg.Notify.Extra {
		tmpl := t.Template
		if tmpl == "" {
			tmpl = cfg.Notify.Template
		}
		targets[i] = notify.ExtraTarget{
			Name:     t.Name,
			URL:      t.URL,
			Template: tmpl,
			Params:   t.Params,
		}
	}
	return targets
}
