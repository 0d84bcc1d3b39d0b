// Package shell centralizes subprocess execution for typewriter: command
// variables capture a value, hooks run for their side effects, both go
// through the same configured shell and confirmation gate.
package shell

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/arthur-debert/typewriter/pkg/document"
	"github.com/arthur-debert/typewriter/pkg/errors"
	"github.com/arthur-debert/typewriter/pkg/logging"
	"github.com/arthur-debert/typewriter/pkg/ui"
)

var log = logging.GetLogger("shell")

// Runner executes commands under the configured shell. Stream inheritance
// follows [config.commands]: stdout and stderr are always captured for
// diagnostics and mirrored to the parent's streams when inherited.
type Runner struct {
	cfg       document.CommandsConfig
	confirmer ui.Confirmer
}

// NewRunner creates a Runner for the given commands configuration.
func NewRunner(cfg document.CommandsConfig, confirmer ui.Confirmer) *Runner {
	return &Runner{cfg: cfg, confirmer: confirmer}
}

// Invocation describes one command to run.
type Invocation struct {
	// Command is the command string handed to the shell.
	Command string

	// Description names the command in the confirmation prompt and in
	// errors, e.g. `variable "greeting" in /path/doc.toml`.
	Description string

	// Workdir is the working directory, empty for the process default.
	Workdir string

	// Env lists extra KEY=VALUE pairs appended to the environment.
	Env []string
}

// Run executes the invocation and returns its captured stdout. A
// confirmation prompt precedes the spawn when confirm_shell_commands is
// set; declining is fatal to the run. Blocks until the subprocess exits,
// no timeout is imposed.
func (r *Runner) Run(ctx context.Context, inv Invocation) (string, error) {
	if r.cfg.ConfirmShellCommands {
		ok, err := r.confirmer.Confirm("Run command `"+inv.Command+"` ("+inv.Description+")?", true)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", errors.Newf(errors.ErrCommandDeclined, "declined to run command `%s` (%s)", inv.Command, inv.Description)
		}
	}

	log.Debug().
		Str("shell", r.cfg.Shell).
		Str("command", inv.Command).
		Str("workdir", inv.Workdir).
		Msg("Executing command")

	cmd := exec.CommandContext(ctx, r.cfg.Shell, r.cfg.ShellCommandArg, inv.Command)
	cmd.Dir = inv.Workdir
	cmd.Env = append(os.Environ(), inv.Env...)

	if r.cfg.InheritStdin {
		cmd.Stdin = os.Stdin
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	if r.cfg.InheritStdout {
		cmd.Stdout = io.MultiWriter(&stdout, os.Stdout)
	}
	cmd.Stderr = &stderr
	if r.cfg.InheritStderr {
		cmd.Stderr = io.MultiWriter(&stderr, os.Stderr)
	}

	if err := cmd.Run(); err != nil {
		return "", errors.Wrapf(err, errors.ErrCommandRun,
			"command `%s` (%s) failed", inv.Command, inv.Description).
			WithDetail("stderr", stderr.String())
	}

	return stdout.String(), nil
}
