package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"
)

const (
	// WebhookEnv is the fallback environment variable for the Slack
	// webhook URL when none is configured explicitly.
	WebhookEnv = "PULLWATCH_SLACK_WEBHOOK_URL"

	// maxErrorChars caps the error body included in the message.
	maxErrorChars = 1500

	// SendTimeout bounds a single webhook POST.
	SendTimeout = 10 * time.Second

	headerText = ":rotating_light: Automated Git Pull Failed :rotating_light:"
)

// SlackNotifier posts Block Kit failure messages to an incoming webhook.
// A missing webhook URL is a construction-time error: a misconfigured
// notifier would otherwise silently drop every alert.
type SlackNotifier struct {
	webhookURL string
	client     *http.Client
	logger     *slog.Logger
}

// NewSlack builds a notifier from an explicit webhook URL, falling back to
// the PULLWATCH_SLACK_WEBHOOK_URL environment variable.
func NewSlack(webhookURL string, client *http.Client, logger *slog.Logger) (*SlackNotifier, error) {
	if webhookURL == "" {
		webhookURL = os.Getenv(WebhookEnv)
	}
	if webhookURL == "" {
		return nil, fmt.Errorf("slack webhook URL is required: set notify.slack_webhook_url or %s", WebhookEnv)
	}
	if client == nil {
		client = &http.Client{Timeout: SendTimeout}
	}
	return &SlackNotifier{webhookURL: webhookURL, client: client, logger: logger}, nil
}

type block struct {
	Type string     `json:"type"`
	Text *blockText `json:"text,omitempty"`
}

type blockText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type payload struct {
	Text   string  `json:"text"`
	Blocks []block `json:"blocks"`
}

func failurePayload(repoName, errorOutput string) payload {
	p := payload{
		Text: "Automated Git Pull Failed",
		Blocks: []block{
			{Type: "header", Text: &blockText{Type: "plain_text", Text: headerText}},
			{Type: "divider"},
			{Type: "section", Text: &blockText{Type: "mrkdwn", Text: fmt.Sprintf("*Repository:* `%s`", repoName)}},
		},
	}

	if errorOutput != "" {
		p.Blocks = append(p.Blocks, block{
			Type: "section",
			Text: &blockText{
				Type: "mrkdwn",
				Text: fmt.Sprintf("*Error Output:*\n```%s```", Truncate(errorOutput, maxErrorChars)),
			},
		})
	}

	return p
}

// SendAlert posts a failure message and reports whether it was delivered.
// Transport and HTTP errors are logged, never returned: a broken notifier
// must not replace the pull failure being reported.
func (n *SlackNotifier) SendAlert(repoName, errorOutput string) bool {
	body, err := json.Marshal(failurePayload(repoName, errorOutput))
	if err != nil {
		n.logger.Warn("could not encode slack payload", "error", err)
		return false
	}

	resp, err := n.client.Post(n.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		n.logger.Warn("could not send slack alert", "error", err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		n.logger.Warn("slack webhook rejected alert", "status", resp.StatusCode)
		return false
	}

	n.logger.Info("alert sent to slack", "repo", repoName)
	return true
}

// Truncate limits s to at most n bytes. Error signatures are ASCII git
// output in practice, so a byte cap matches the stored signature.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
