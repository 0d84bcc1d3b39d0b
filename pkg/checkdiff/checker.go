// Package checkdiff detects content drift: a destination file modified by
// something other than typewriter since the last successful apply. A
// fast non-cryptographic fingerprint per destination is persisted in the
// metadata directory and compared before every overwrite.
package checkdiff

import (
	"os"

	"github.com/arthur-debert/typewriter/pkg/document"
	"github.com/arthur-debert/typewriter/pkg/errors"
	"github.com/arthur-debert/typewriter/pkg/logging"
	"github.com/arthur-debert/typewriter/pkg/ui"
)

var log = logging.GetLogger("checkdiff")

// Decision is the outcome of evaluating one file entry.
type Decision int

const (
	// DecisionApply proceeds with the entry's write.
	DecisionApply Decision = iota

	// DecisionSkipSame skips the entry because source and destination
	// content already match; no write and no hooks for this entry.
	DecisionSkipSame

	// DecisionSkipDrift skips the entry because the user declined to
	// overwrite an externally modified destination.
	DecisionSkipDrift
)

// Checker evaluates entries against the store and the configured
// checkdiff options.
type Checker struct {
	cfg       document.ApplyConfig
	store     *Store
	confirmer ui.Confirmer

	// firstRun is set when the whole store started empty and the user
	// accepted the one aggregate first-run confirmation; per-entry
	// new-record prompts are redundant then.
	firstRun bool
}

// NewChecker creates a Checker over a loaded store.
func NewChecker(cfg document.ApplyConfig, store *Store, confirmer ui.Confirmer) *Checker {
	return &Checker{cfg: cfg, store: store, confirmer: confirmer}
}

// Enabled reports whether a fingerprint strategy is active.
func (c *Checker) Enabled() bool {
	return c.cfg.CheckdiffStrategy != document.CheckdiffDisabled
}

// ConfirmFirstRun asks the single aggregate confirmation when no
// checksum storage exists yet. Declining aborts the run before any
// mutation.
func (c *Checker) ConfirmFirstRun() error {
	if !c.Enabled() || c.store.Len() > 0 {
		return nil
	}

	c.firstRun = true
	ok, err := c.confirmer.Confirm(
		"No existing checksum storage was found. Proceed? This will overwrite all to-apply files regardless of changes.", false)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New(errors.ErrApplyDeclined, "declined to apply without checksum storage")
	}
	return nil
}

// Evaluate runs the drift decision for one entry, before its destination
// is touched. It may prompt for confirmation; a declined drift prompt
// skips only this entry, a declined new-record prompt aborts the run.
func (c *Checker) Evaluate(entry document.FileEntry) (Decision, error) {
	if !c.Enabled() {
		return DecisionApply, nil
	}

	destExists := true
	if _, err := os.Stat(entry.Destination); err != nil {
		if !os.IsNotExist(err) {
			return DecisionApply, errors.Wrapf(err, errors.ErrFileAccess, "checking destination %s", entry.Destination)
		}
		destExists = false
	}

	var destFP string
	if destExists {
		var err error
		destFP, err = Fingerprint(entry.Destination)
		if err != nil {
			return DecisionApply, err
		}
	}

	stored, tracked := c.store.Get(entry.Destination)
	switch {
	case !tracked:
		if !c.firstRun && !c.cfg.SkipCheckdiffNew {
			ok, err := c.confirmer.Confirm(
				"No existing checksum was found for "+entry.Destination+" referenced in "+entry.Origin+
					". Proceed? This will overwrite the file.", false)
			if err != nil {
				return DecisionApply, err
			}
			if !ok {
				return DecisionApply, errors.Newf(errors.ErrApplyDeclined,
					"declined to overwrite untracked destination %s", entry.Destination)
			}
		}

	case destExists && destFP != stored:
		ok, err := c.confirmer.Confirm(
			"Checksum differs for "+entry.Destination+" referenced in "+entry.Origin+
				" (it was changed since the last apply). Overwrite?", false)
		if err != nil {
			return DecisionApply, err
		}
		if !ok {
			log.Warn().Str("destination", entry.Destination).Msg("Drift overwrite declined, skipping entry")
			return DecisionSkipDrift, nil
		}
	}

	if destExists && c.cfg.CheckdiffSkipSame && entry.SkipIfSameContent {
		srcFP, err := Fingerprint(entry.Source)
		if err != nil {
			return DecisionApply, err
		}
		if srcFP == destFP {
			// Content already matches; refresh the record so a first
			// apply over identical files still starts tracking them.
			c.store.Set(entry.Destination, destFP)
			if err := c.store.Save(); err != nil {
				return DecisionApply, err
			}
			return DecisionSkipSame, nil
		}
	}

	return DecisionApply, nil
}

// RecordApplied fingerprints a freshly written destination and persists
// the updated store. No-op when the strategy is disabled.
func (c *Checker) RecordApplied(destination string) error {
	if !c.Enabled() {
		return nil
	}

	fp, err := Fingerprint(destination)
	if err != nil {
		return err
	}
	c.store.Set(destination, fp)
	return c.store.Save()
}
