// Package config loads and validates the pullwatch YAML configuration.
// Environment references in the file are expanded with envsubst before
// parsing, so secrets like webhook URLs stay out of the file itself.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/a8m/envsubst"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
)

type Config struct {
	Options   Options        `yaml:"options"`
	Notify    NotifySettings `yaml:"notify"`
	Pipelines []Pipeline     `yaml:"pipelines" validate:"min=1,dive"`
}

type Options struct {
	StateBackend string `yaml:"state_backend" validate:"omitempty,oneof=memory file redis"`
	StateDir     string `yaml:"state_dir"`
	SSHDir       string `yaml:"ssh_dir"`
	RedisAddr    string `yaml:"redis_addr"`
	LogLevel     string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

type NotifySettings struct {
	SlackWebhookURL string        `yaml:"slack_webhook_url"`
	Template        string        `yaml:"template"`
	Extra           []ExtraTarget `yaml:"extra" validate:"dive"`
}

// ExtraTarget is a secondary notification channel addressed by a Shoutrrr
// service URL.
type ExtraTarget struct {
	Name     string            `yaml:"name"`
	URL      string            `yaml:"url" validate:"required"`
	Template string            `yaml:"template"`
	Params   map[string]string `yaml:"params"`
}

// Pipeline is one repository to pull. Name doubles as the pipeline id the
// alert history is keyed on.
type Pipeline struct {
	Name              string `yaml:"name" validate:"required"`
	Workspace         string `yaml:"workspace"`
	RepoPath          string `yaml:"repo_path" validate:"required"`
	GitURL            string `yaml:"git_url" validate:"required"`
	Branch            string `yaml:"branch"`
	KeyFilename       string `yaml:"key_filename"`
	SuppressionWindow Window `yaml:"suppression_window"`
	Timeout           string `yaml:"timeout"`
}

// Window accepts a Go duration string ("90m") or a bare hour count (2).
type Window struct {
	Duration time.Duration
}

func (w *Window) UnmarshalYAML(unmarshal func(any) error) error {
	var hours int
	if err := unmarshal(&hours); err == nil {
		if hours < 0 {
			return fmt.Errorf("suppression_window: must not be negative")
		}
		w.Duration = time.Duration(hours) * time.Hour
		return nil
	}

	var s string
	if err := unmarshal(&s); err != nil {
		return fmt.Errorf("suppression_window: must be a duration string or an hour count")
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("suppression_window: %w", err)
	}
	if d < 0 {
		return fmt.Errorf("suppression_window: must not be negative")
	}
	w.Duration = d
	return nil
}

// ExecTimeout parses the pipeline's git timeout; zero means unbounded.
func (p *Pipeline) ExecTimeout() (time.Duration, error) {
	if p.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(p.Timeout)
	if err != nil {
		return 0, fmt.Errorf("pipeline %s: timeout: %w", p.Name, err)
	}
	return d, nil
}

// Load reads, env-expands and parses a config file. Validation is a
// separate step so `pullwatch validate` can report everything at once.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	data, err = envsubst.Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("expanding env vars: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// Validate checks struct tags plus the fields validator cannot express
// (duration strings, unique pipeline names).
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	seen := make(map[string]bool, len(c.Pipelines))
	for i := range c.Pipelines {
		p := &c.Pipelines[i]
		if seen[p.Name] {
			return fmt.Errorf("duplicate pipeline name %q", p.Name)
		}
		seen[p.Name] = true

		if _, err := p.ExecTimeout(); err != nil {
			return err
		}
	}

	return nil
}
