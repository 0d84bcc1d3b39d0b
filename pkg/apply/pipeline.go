// Package apply orchestrates the transactional apply run:
// Validating → Backing Up → Executing → (Committing | Rolling Back).
// Validation is exhaustive before any mutation; a fatal failure after
// mutation begins restores every backed-up destination and removes
// destinations created during this run.
package apply

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/arthur-debert/typewriter/pkg/checkdiff"
	"github.com/arthur-debert/typewriter/pkg/document"
	"github.com/arthur-debert/typewriter/pkg/errors"
	"github.com/arthur-debert/typewriter/pkg/hooks"
	"github.com/arthur-debert/typewriter/pkg/logging"
	"github.com/arthur-debert/typewriter/pkg/paths"
	"github.com/arthur-debert/typewriter/pkg/shell"
	"github.com/arthur-debert/typewriter/pkg/ui"
	"github.com/arthur-debert/typewriter/pkg/vars"
)

var log = logging.GetLogger("apply")

// Status describes what happened to one file entry during a run.
type Status string

const (
	StatusApplied      Status = "applied"
	StatusSkippedSame  Status = "skipped_same_content"
	StatusSkippedDrift Status = "skipped_drift_declined"
)

// EntryResult pairs a file entry with its outcome.
type EntryResult struct {
	Entry  document.FileEntry
	Status Status
}

// Result summarizes a completed (committed) run.
type Result struct {
	Entries []EntryResult

	// SkippedValidation lists entries dropped by auto_skip_unable_apply.
	SkippedValidation []document.FileEntry
}

// Applied returns the count of entries that were written.
func (r *Result) Applied() int {
	n := 0
	for _, e := range r.Entries {
		if e.Status == StatusApplied {
			n++
		}
	}
	return n
}

// Skipped returns the count of entries that were not written.
func (r *Result) Skipped() int {
	return len(r.Entries) - r.Applied() + len(r.SkippedValidation)
}

// Pipeline drives one apply invocation. It is single-use: construct,
// Run once, discard.
type Pipeline struct {
	set       *document.ResolvedSet
	cfg       document.GlobalConfig
	confirmer ui.Confirmer

	pattern *vars.Pattern
	runner  *shell.Runner
	hooks   *hooks.Executor
	checker *checkdiff.Checker

	metadataDir string

	// entries is the validated work list; values the resolved variables.
	entries []document.FileEntry
	values  map[string]string

	// backups maps destination → backup copy; created lists destinations
	// created fresh during validation. Both drive rollback and are local
	// to this invocation.
	backups map[string]string
	created []string
}

// New wires a Pipeline for the resolved document set.
func New(set *document.ResolvedSet, confirmer ui.Confirmer) (*Pipeline, error) {
	cfg := set.Config

	pattern, err := vars.CompileFormat(cfg.Variables.VariableFormat)
	if err != nil {
		return nil, err
	}

	metadataDir, err := paths.Clean(cfg.Apply.MetadataDir, filepath.Dir(set.RootPath))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigValid, "resolving apply_metadata_dir")
	}

	store, err := checkdiff.LoadStore(filepath.Join(metadataDir, cfg.Apply.CheckdiffFileName))
	if err != nil {
		return nil, err
	}

	runner := shell.NewRunner(cfg.Commands, confirmer)

	return &Pipeline{
		set:         set,
		cfg:         cfg,
		confirmer:   confirmer,
		pattern:     pattern,
		runner:      runner,
		hooks:       hooks.NewExecutor(cfg.Hooks, runner, set.Hooks),
		checker:     checkdiff.NewChecker(cfg.Apply, store, confirmer),
		metadataDir: metadataDir,
		backups:     make(map[string]string),
	}, nil
}

// Run executes the full pipeline. On a fatal failure after mutation
// begins, backups are restored before the error is returned.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	done := logging.LogOperationStart(log, "apply")
	defer done()

	// Variables resolve fully before any file is touched; command
	// variables may execute subprocesses here.
	values, err := vars.NewEngine(p.pattern, p.runner).Resolve(ctx, p.set.Vars)
	if err != nil {
		return nil, err
	}
	p.values = values

	result := &Result{}
	if err := p.validate(result); err != nil {
		p.removeCreated()
		return nil, err
	}

	if p.cfg.Apply.ConfirmApply {
		ok, err := p.confirmer.Confirm(
			fmt.Sprintf("Apply %d file(s) from %s?", len(p.entries), p.set.RootPath), true)
		if err != nil {
			p.removeCreated()
			return nil, err
		}
		if !ok {
			p.removeCreated()
			return nil, errors.New(errors.ErrApplyDeclined, "apply declined")
		}
	}

	if err := p.checker.ConfirmFirstRun(); err != nil {
		p.removeCreated()
		return nil, err
	}

	if err := p.backup(); err != nil {
		p.rollback()
		return nil, err
	}

	if err := p.execute(ctx, result); err != nil {
		p.rollback()
		return nil, err
	}

	p.commit()
	return result, nil
}
