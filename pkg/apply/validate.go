package apply

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/typewriter/pkg/document"
	"github.com/arthur-debert/typewriter/pkg/errors"
)

// validate confirms every entry's source is readable and destination is
// writable before any content moves. Under create_if_missing, a missing
// destination is created now and tracked for removal on failure. A bad
// entry aborts the run unless auto_skip_unable_apply drops it with a
// warning.
func (p *Pipeline) validate(result *Result) error {
	if p.cfg.Apply.FilePermissionStrategy == document.PermDisabled {
		p.entries = p.set.Files
		return nil
	}

	createMissing := p.cfg.Apply.FilePermissionStrategy == document.PermCreateIfMissing

	for _, entry := range p.set.Files {
		if err := p.validateEntry(entry, createMissing); err != nil {
			if p.cfg.Apply.AutoSkipUnableApply {
				log.Warn().
					Err(err).
					Str("source", entry.Source).
					Str("destination", entry.Destination).
					Msg("Skipping entry that cannot be applied")
				result.SkippedValidation = append(result.SkippedValidation, entry)
				continue
			}
			return err
		}
		p.entries = append(p.entries, entry)
	}

	log.Debug().Int("entries", len(p.entries)).Int("skipped", len(result.SkippedValidation)).Msg("Validation complete")
	return nil
}

func (p *Pipeline) validateEntry(entry document.FileEntry, createMissing bool) error {
	src, err := os.Open(entry.Source)
	if err != nil {
		return errors.Wrapf(err, errors.ErrValidation,
			"cannot read source %s referenced in %s", entry.Source, entry.Origin)
	}
	_ = src.Close()

	if _, err := os.Stat(entry.Destination); err != nil {
		if !os.IsNotExist(err) {
			return errors.Wrapf(err, errors.ErrValidation,
				"cannot access destination %s referenced in %s", entry.Destination, entry.Origin)
		}
		if !createMissing {
			return errors.Newf(errors.ErrValidation,
				"destination %s referenced in %s does not exist", entry.Destination, entry.Origin)
		}
		return p.createDestination(entry)
	}

	dst, err := os.OpenFile(entry.Destination, os.O_WRONLY, 0)
	if err != nil {
		return errors.Wrapf(err, errors.ErrValidation,
			"cannot write to destination %s referenced in %s", entry.Destination, entry.Origin)
	}
	_ = dst.Close()

	return nil
}

// createDestination makes the missing destination (and parents) and
// records it as created-this-run.
func (p *Pipeline) createDestination(entry document.FileEntry) error {
	if err := os.MkdirAll(filepath.Dir(entry.Destination), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrFileCreate,
			"creating parent directories for %s", entry.Destination)
	}

	f, err := os.OpenFile(entry.Destination, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCreate,
			"creating destination %s referenced in %s", entry.Destination, entry.Origin)
	}
	_ = f.Close()

	p.created = append(p.created, entry.Destination)
	log.Info().Str("destination", entry.Destination).Msg("Created missing destination")
	return nil
}

// removeCreated deletes destinations created during this run. Called on
// any failure path; on success the files stay.
func (p *Pipeline) removeCreated() {
	for _, path := range p.created {
		if err := os.Remove(path); err != nil {
			log.Error().Err(err).Str("path", path).Msg("Failed to remove created destination")
		} else {
			log.Info().Str("path", path).Msg("Removed destination created during failed run")
		}
	}
	p.created = nil
}
