// Package sshkey prepares deploy-key material for a single pull: resolving
// it from the environment, normalizing the common copy-paste mangling, and
// materializing it as an owner-only file that is removed when the pull
// finishes.
package sshkey

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvVar returns the environment variable holding the workspace's private
// deploy key.
func EnvVar(workspace string) string {
	return workspace + "_SSHKEY"
}

// DefaultDir returns the default key directory under the executing user's
// home.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home dir: %w", err)
	}
	return filepath.Join(home, ".pullwatch", "ssh"), nil
}

// DefaultFilename derives the key file name from the workspace.
func DefaultFilename(workspace string) string {
	if workspace != "" {
		return workspace + "_deploy"
	}
	return "deploy_key"
}

// Resolve returns the key material: the explicit key if given, otherwise
// the <WORKSPACE>_SSHKEY environment variable. envVar names the variable
// consulted, for reporting; it is empty when the explicit key was used.
func Resolve(explicit, workspace string) (material, envVar string, err error) {
	if explicit != "" {
		return explicit, "", nil
	}
	if workspace == "" {
		return "", "", fmt.Errorf("ssh key is required: provide it directly or set a workspace name")
	}

	envVar = EnvVar(workspace)
	material = os.Getenv(envVar)
	if material == "" {
		return "", envVar, fmt.Errorf("missing env var %s with the private deploy key", envVar)
	}
	return material, envVar, nil
}

// Normalize cleans key material as it commonly arrives through environment
// variables: wrapping quotes stripped, literal \n sequences expanded to
// real newlines, exactly one trailing newline. Idempotent.
func Normalize(key string) string {
	if key == "" {
		return key
	}

	key = strings.TrimSpace(key)
	key = strings.Trim(key, `"'`)
	key = strings.ReplaceAll(key, `\n`, "\n")

	if !strings.HasSuffix(key, "\n") {
		key += "\n"
	}
	return key
}

// Materialize writes the key to dir/filename with owner-only permissions
// and returns the path plus a cleanup that removes the file. The caller
// must run cleanup on every exit path of the pull.
func Materialize(dir, filename, material string) (path string, cleanup func(), err error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", nil, fmt.Errorf("creating key dir: %w", err)
	}
	// MkdirAll leaves an existing dir's mode alone.
	if err := os.Chmod(dir, 0o700); err != nil {
		return "", nil, fmt.Errorf("restricting key dir: %w", err)
	}

	path = filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(material), 0o600); err != nil {
		return "", nil, fmt.Errorf("writing key file: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		_ = os.Remove(path)
		return "", nil, fmt.Errorf("restricting key file: %w", err)
	}

	cleanup = func() { _ = os.Remove(path) }
	return path, cleanup, nil
}
