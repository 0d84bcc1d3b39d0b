package apply

import (
	"context"
	"os"
	"path/filepath"

	"github.com/arthur-debert/typewriter/pkg/checkdiff"
	"github.com/arthur-debert/typewriter/pkg/document"
	"github.com/arthur-debert/typewriter/pkg/errors"
)

// execute runs the mutation phase: global pre-apply hooks, then every
// entry in declaration order, then global post-apply hooks. Any error
// returned here is fatal and triggers rollback in the caller.
func (p *Pipeline) execute(ctx context.Context, result *Result) error {
	if err := p.hooks.RunStage(ctx, document.StagePreApply); err != nil {
		return err
	}

	for _, entry := range p.entries {
		status, err := p.executeEntry(ctx, entry)
		if err != nil {
			return err
		}
		result.Entries = append(result.Entries, EntryResult{Entry: entry, Status: status})
	}

	return p.hooks.RunStage(ctx, document.StagePostApply)
}

// executeEntry applies a single entry. The checkdiff decision gates
// everything else: a skipped entry runs no hooks and writes nothing.
func (p *Pipeline) executeEntry(ctx context.Context, entry document.FileEntry) (Status, error) {
	decision, err := p.checker.Evaluate(entry)
	if err != nil {
		return "", err
	}

	switch decision {
	case checkdiff.DecisionSkipSame:
		log.Info().Str("destination", entry.Destination).Msg("Content unchanged, skipping")
		return StatusSkippedSame, nil
	case checkdiff.DecisionSkipDrift:
		return StatusSkippedDrift, nil
	}

	if err := p.hooks.RunFileHooks(ctx, entry.PreHooks, entry); err != nil {
		return "", err
	}

	if err := p.writeEntry(entry); err != nil {
		return "", err
	}

	if err := p.hooks.RunFileHooks(ctx, entry.PostHooks, entry); err != nil {
		return "", err
	}

	if err := p.checker.RecordApplied(entry.Destination); err != nil {
		return "", err
	}

	log.Info().
		Str("source", entry.Source).
		Str("destination", entry.Destination).
		Str("origin", entry.Origin).
		Msg("Applied")

	return StatusApplied, nil
}

// writeEntry reads the source, substitutes variables when the strategy
// is active, and replaces the destination whole-file via a temp file and
// rename, so a crash leaves either the old or the new content.
func (p *Pipeline) writeEntry(entry document.FileEntry) error {
	data, err := os.ReadFile(entry.Source)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess,
			"reading source %s referenced in %s", entry.Source, entry.Origin)
	}

	if p.cfg.Variables.VariableStrategy == document.VariablesReplace {
		replaced, err := p.pattern.Replace(string(data), p.values)
		if err != nil {
			return errors.Wrapf(err, errors.ErrVarUndefined,
				"in source %s referenced in %s", entry.Source, entry.Origin)
		}
		data = []byte(replaced)
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(entry.Destination); err == nil {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(entry.Destination)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(entry.Destination)+".typewriter*")
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "creating temp file for %s", entry.Destination)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.Wrapf(err, errors.ErrFileWrite, "writing %s", entry.Destination)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrapf(err, errors.ErrFileWrite, "writing %s", entry.Destination)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrapf(err, errors.ErrFileWrite, "setting mode on %s", entry.Destination)
	}

	if err := os.Rename(tmpName, entry.Destination); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrapf(err, errors.ErrFileWrite, "replacing %s", entry.Destination)
	}

	return nil
}
