// Package notify delivers failure alerts: a Block Kit message to a Slack
// incoming webhook, plus optional secondary targets addressed by Shoutrrr
// service URLs (telegram, email, discord, ...).
package notify

import (
	"fmt"
	"log/slog"

	"github.com/nicholas-fedor/shoutrrr"
	"github.com/nicholas-fedor/shoutrrr/pkg/types"
)

// ExtraTarget is a secondary notification target. Template, when set,
// overrides DefaultTemplate for this target.
type ExtraTarget struct {
	Name     string
	URL      string
	Template string
	Params   map[string]string
}

// Send delivers one rendered message to a target via Shoutrrr.
func Send(t ExtraTarget, message string) error {
	sender, err := shoutrrr.CreateSender(t.URL)
	if err != nil {
		return fmt.Errorf("creating sender for %s: %w", t.Name, err)
	}

	params := types.Params(t.Params)
	errs := sender.Send(message, &params)
	for _, e := range errs {
		if e != nil {
			return fmt.Errorf("sending to %s: %w", t.Name, e)
		}
	}

	return nil
}

// Fanout renders and sends the alert to every secondary target. Failures
// are logged per target and never escalate, matching the slack notifier:
// notification problems must not mask the pull failure.
func Fanout(targets []ExtraTarget, data TemplateData, logger *slog.Logger) {
	for _, t := range targets {
		tmplStr := t.Template
		if tmplStr == "" {
			tmplStr = DefaultTemplate
		}

		msg, err := Render(tmplStr, data)
		if err != nil {
			logger.Warn("could not render notification template", "target", t.Name, "error", err)
			continue
		}

		if err := Send(t, msg); err != nil {
			logger.Warn("could not send notification", "target", t.Name, "error", err)
			continue
		}
		logger.Info("alert sent", "target", t.Name)
	}
}
