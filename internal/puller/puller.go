// Package puller runs the automated git pull: validate the target, stage
// the deploy key, invoke git, and on failure drive the alert policy and
// notifier. Each call runs start to finish; the only state that survives
// is the alert history in the state store.
package puller

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/pullwatch/pullwatch/internal/alert"
	"github.com/pullwatch/pullwatch/internal/notify"
	"github.com/pullwatch/pullwatch/internal/pwerrors"
	"github.com/pullwatch/pullwatch/internal/sshkey"
)

// signatureChars caps the error text used as the identity for "same error"
// comparisons, so repeated signatures stay stable even when output length
// varies slightly.
const signatureChars = 500

// Options configures a single pull invocation.
type Options struct {
	PipelineID  string
	Workspace   string
	RepoPath    string
	GitURL      string
	Branch      string // default "master"
	SSHKey      string // explicit key material; otherwise <WORKSPACE>_SSHKEY
	SSHDir      string // default ~/.pullwatch/ssh
	KeyFilename string // default <workspace>_deploy

	SuppressionWindow time.Duration // default 1h
	Timeout           time.Duration // bounds the git subprocess; 0 = none
	DryRun            bool          // evaluate alerting but send nothing
}

// Executor orchestrates pulls and their alerting side effects.
type Executor struct {
	alerts *alert.Manager
	slack  *notify.SlackNotifier
	extras []notify.ExtraTarget
	logger *slog.Logger
}

// New creates an Executor. slack may not be nil; extras may be empty.
func New(alerts *alert.Manager, slack *notify.SlackNotifier, extras []notify.ExtraTarget, logger *slog.Logger) *Executor {
	return &Executor{alerts: alerts, slack: slack, extras: extras, logger: logger}
}

// Pull performs one git pull with a staged deploy key. The key file is
// removed on every exit path. No alerting happens here; see
// PullWithAlerting.
func (e *Executor) Pull(ctx context.Context, opts Options) (Result, error) {
	log := e.logger.With("pipeline", opts.PipelineID)
	start := time.Now()

	result := Result{
		PipelineID:    opts.PipelineID,
		Workspace:     orNA(opts.Workspace),
		RepoPath:      opts.RepoPath,
		Status:        StatusError,
		KeyEnvVarUsed: "N/A",
	}

	// Stage 1: the repo path must exist before any key handling.
	result.Stage = "validate"
	if err := validateRepoPath(opts.RepoPath); err != nil {
		result.Duration = time.Since(start)
		return result, err
	}

	// Stage 2: resolve, normalize and materialize the deploy key.
	result.Stage = "key"
	material, envVar, err := sshkey.Resolve(opts.SSHKey, opts.Workspace)
	if err != nil {
		result.Duration = time.Since(start)
		return result, fmt.Errorf("%w: %s", pwerrors.ErrConfig, err)
	}
	if envVar != "" {
		result.KeyEnvVarUsed = envVar
	}
	material = sshkey.Normalize(material)

	dir := opts.SSHDir
	if dir == "" {
		if dir, err = sshkey.DefaultDir(); err != nil {
			result.Duration = time.Since(start)
			return result, fmt.Errorf("%w: %s", pwerrors.ErrConfig, err)
		}
	}
	filename := opts.KeyFilename
	if filename == "" {
		filename = sshkey.DefaultFilename(opts.Workspace)
	}

	keyPath, cleanup, err := sshkey.Materialize(dir, filename, material)
	if err != nil {
		result.Duration = time.Since(start)
		return result, fmt.Errorf("%w: %s", pwerrors.ErrConfig, err)
	}
	defer cleanup()
	log.Debug("deploy key staged", "path", keyPath)

	// Stage 3: run git pull inside the repo.
	result.Stage = "pull"
	branch := opts.Branch
	if branch == "" {
		branch = "master"
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	sshCmd := fmt.Sprintf("ssh -i %s -o IdentitiesOnly=yes -o StrictHostKeyChecking=accept-new", keyPath)
	cmd := exec.CommandContext(ctx, "git", "-c", "core.sshCommand="+sshCmd, "pull", opts.GitURL, branch)
	cmd.Dir = opts.RepoPath

	log.Info("running git pull", "repo", opts.RepoPath, "branch", branch)
	out, err := cmd.CombinedOutput()
	result.Output = strings.TrimSpace(string(out))
	result.Duration = time.Since(start)

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return result, fmt.Errorf("%w: timed out after %s", pwerrors.ErrPull, opts.Timeout)
		}
		if result.Output != "" {
			return result, fmt.Errorf("%w: %s", pwerrors.ErrPull, result.Output)
		}
		return result, fmt.Errorf("%w: %s", pwerrors.ErrPull, err)
	}

	result.Status = StatusSuccess
	result.Stage = ""
	log.Info("git pull succeeded", "duration", result.Duration)
	return result, nil
}

// PullWithAlerting runs Pull and drives the alerting side effects: success
// clears the pipeline's alert state; failure consults the suppression
// policy, conditionally notifies and records, then returns the failure to
// the caller so the invoking scheduler observes it.
func (e *Executor) PullWithAlerting(ctx context.Context, opts Options) (Result, error) {
	log := e.logger.With("pipeline", opts.PipelineID)
	repoName := RepoName(opts.GitURL)

	result, err := e.Pull(ctx, opts)
	if err == nil {
		e.alerts.ClearState(opts.PipelineID)
		log.Debug("alert state cleared")
		return result, nil
	}

	errText := err.Error()
	signature := notify.Truncate(strings.TrimSpace(errText), signatureChars)

	decision := e.alerts.ShouldSend(opts.PipelineID, signature, opts.SuppressionWindow)
	if !decision.Send {
		result.Suppressed = true
		log.Info("alert suppressed, same error within window",
			"elapsed", decision.Elapsed, "window", window(opts.SuppressionWindow))
		return result, err
	}

	result.Alerted = true
	if opts.DryRun {
		log.Info("would send alert (dry-run)", "reason", decision.Reason, "repo", repoName)
		return result, err
	}

	e.slack.SendAlert(repoName, notify.Truncate(errText, 1500))
	notify.Fanout(e.extras, notify.TemplateData{
		Repo:      repoName,
		Pipeline:  opts.PipelineID,
		Workspace: opts.Workspace,
		Error:     errText,
	}, e.logger)
	e.alerts.Record(opts.PipelineID, signature)
	log.Info("alert recorded", "reason", decision.Reason)

	return result, err
}

func validateRepoPath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: repo path is required", pwerrors.ErrConfig)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: repo path does not exist: %s", pwerrors.ErrConfig, path)
	}
	return nil
}

// RepoName extracts the repository name from a git URL for display:
// "git@host:org/data.git" → "data".
func RepoName(gitURL string) string {
	name := gitURL
	if i := strings.LastIndexAny(name, "/:"); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, ".git")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func window(w time.Duration) time.Duration {
	if w <= 0 {
		return alert.DefaultSuppressionWindow
	}
	return w
}
