// Package hooks runs the shell commands attached to an apply: global
// pre/post-apply hooks and per-file pre/post hooks. Failure handling is a
// three-tier precedence chain: a per-hook continue_on_error flag wins,
// then a file's continue_on_hook_error, then the document-wide
// failure_strategy.
package hooks

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/arthur-debert/typewriter/pkg/document"
	"github.com/arthur-debert/typewriter/pkg/errors"
	"github.com/arthur-debert/typewriter/pkg/logging"
	"github.com/arthur-debert/typewriter/pkg/shell"
)

var log = logging.GetLogger("hooks")

// Environment variables exported to per-file hooks.
const (
	EnvFileSource      = "TYPEWRITER_FILE_SRC"
	EnvFileDestination = "TYPEWRITER_FILE_DEST"
)

// Executor runs hooks according to the hooks configuration.
type Executor struct {
	cfg    document.HooksConfig
	runner *shell.Runner

	preApply  []document.HookDecl
	postApply []document.HookDecl
}

// NewExecutor groups the global hook declarations by stage. Stages were
// validated at parse time.
func NewExecutor(cfg document.HooksConfig, runner *shell.Runner, globalHooks []document.HookDecl) *Executor {
	e := &Executor{cfg: cfg, runner: runner}
	for _, hook := range globalHooks {
		switch hook.Stage {
		case document.StagePreApply:
			e.preApply = append(e.preApply, hook)
		case document.StagePostApply:
			e.postApply = append(e.postApply, hook)
		}
	}
	return e
}

// RunStage executes every global hook registered for the stage, in
// declaration order. Hooks disabled globally short-circuits to a no-op.
func (e *Executor) RunStage(ctx context.Context, stage document.HookStage) error {
	if !e.cfg.Enabled {
		return nil
	}

	hooks := e.preApply
	if stage == document.StagePostApply {
		hooks = e.postApply
	}

	log.Debug().Str("stage", string(stage)).Int("count", len(hooks)).Msg("Executing stage hooks")

	for _, hook := range hooks {
		_, err := e.runner.Run(ctx, shell.Invocation{
			Command:     hook.Command,
			Description: fmt.Sprintf("%s hook in %s", hook.Stage, hook.Origin),
			Workdir:     filepath.Dir(hook.Origin),
		})
		if err != nil {
			if herr := e.handleFailure(hook.Command, hook.Origin, err, hook.ContinueOnError); herr != nil {
				return herr
			}
		}
	}

	return nil
}

// RunFileHooks executes one of a file entry's hook lists. The entry's
// continue_on_hook_error flag stands in for the per-hook override.
func (e *Executor) RunFileHooks(ctx context.Context, commands []string, entry document.FileEntry) error {
	if !e.cfg.Enabled {
		return nil
	}

	for _, command := range commands {
		_, err := e.runner.Run(ctx, shell.Invocation{
			Command:     command,
			Description: fmt.Sprintf("file hook in %s", entry.Origin),
			Workdir:     filepath.Dir(entry.Origin),
			Env: []string{
				EnvFileSource + "=" + entry.Source,
				EnvFileDestination + "=" + entry.Destination,
			},
		})
		if err != nil {
			if herr := e.handleFailure(command, entry.Origin, err, entry.ContinueOnHookError); herr != nil {
				return herr
			}
		}
	}

	return nil
}

// handleFailure resolves one hook failure against the precedence chain.
// It returns nil when the failure is swallowed and the run continues.
func (e *Executor) handleFailure(command, origin string, err error, continueOnError bool) error {
	log.Error().Err(err).Str("command", command).Str("origin", origin).Msg("Hook failed")

	if continueOnError {
		log.Warn().Str("command", command).Msg("Continuing despite hook failure (continue_on_error)")
		return nil
	}

	if e.cfg.FailureStrategy == document.FailContinue {
		log.Warn().Str("command", command).Msg("Continuing despite hook failure (failure_strategy=continue)")
		return nil
	}

	return errors.Wrapf(err, errors.ErrHookFailed, "hook `%s` declared in %s failed", command, origin)
}
