// Test Type: Unit Test
// Description: Tests for drift decisions - new records, drift prompts and skip-same

package checkdiff_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/typewriter/pkg/checkdiff"
	"github.com/arthur-debert/typewriter/pkg/document"
	"github.com/arthur-debert/typewriter/pkg/errors"
	"github.com/arthur-debert/typewriter/pkg/ui"
)

type checkerFixture struct {
	dir    string
	store  *checkdiff.Store
	source string
	dest   string
}

func newCheckerFixture(t *testing.T) *checkerFixture {
	t.Helper()
	dir := t.TempDir()
	store, err := checkdiff.LoadStore(filepath.Join(dir, ".checkdiff"))
	require.NoError(t, err)
	return &checkerFixture{
		dir:    dir,
		store:  store,
		source: filepath.Join(dir, "source"),
		dest:   filepath.Join(dir, "dest"),
	}
}

func (f *checkerFixture) entry() document.FileEntry {
	return document.FileEntry{
		Source:            f.source,
		Destination:       f.dest,
		SkipIfSameContent: true,
		Origin:            filepath.Join(f.dir, "doc.toml"),
	}
}

func (f *checkerFixture) write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func applyConfig() document.ApplyConfig {
	return document.DefaultConfig().Apply
}

func TestEvaluate_Disabled(t *testing.T) {
	f := newCheckerFixture(t)
	cfg := applyConfig()
	cfg.CheckdiffStrategy = document.CheckdiffDisabled

	// A declining confirmer proves no prompt is ever shown.
	checker := checkdiff.NewChecker(cfg, f.store, &ui.AutoConfirmer{Answer: false})
	assert.False(t, checker.Enabled())

	decision, err := checker.Evaluate(f.entry())
	require.NoError(t, err)
	assert.Equal(t, checkdiff.DecisionApply, decision)
}

func TestEvaluate_MissingDestination(t *testing.T) {
	f := newCheckerFixture(t)
	f.write(t, f.source, "content")

	checker := checkdiff.NewChecker(applyConfig(), f.store, &ui.AutoConfirmer{Answer: true})
	require.NoError(t, checker.ConfirmFirstRun())

	decision, err := checker.Evaluate(f.entry())
	require.NoError(t, err)
	assert.Equal(t, checkdiff.DecisionApply, decision)
}

func TestConfirmFirstRun_Declined(t *testing.T) {
	f := newCheckerFixture(t)

	checker := checkdiff.NewChecker(applyConfig(), f.store, &ui.AutoConfirmer{Answer: false})
	err := checker.ConfirmFirstRun()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrApplyDeclined))
}

func TestConfirmFirstRun_SkippedWhenStoreHasRecords(t *testing.T) {
	f := newCheckerFixture(t)
	f.store.Set("/some/dest", "123")

	checker := checkdiff.NewChecker(applyConfig(), f.store, &ui.AutoConfirmer{Answer: false})
	assert.NoError(t, checker.ConfirmFirstRun())
}

func TestEvaluate_UntrackedDestination_Declined(t *testing.T) {
	f := newCheckerFixture(t)
	f.write(t, f.source, "new content")
	f.write(t, f.dest, "existing content")
	f.store.Set("/unrelated", "999")

	checker := checkdiff.NewChecker(applyConfig(), f.store, &ui.AutoConfirmer{Answer: false})

	_, err := checker.Evaluate(f.entry())
	require.Error(t, err, "declining the untracked-destination prompt aborts the run")
	assert.True(t, errors.IsErrorCode(err, errors.ErrApplyDeclined))
}

func TestEvaluate_UntrackedDestination_SkipCheckdiffNew(t *testing.T) {
	f := newCheckerFixture(t)
	f.write(t, f.source, "new content")
	f.write(t, f.dest, "existing content")
	f.store.Set("/unrelated", "999")

	cfg := applyConfig()
	cfg.SkipCheckdiffNew = true
	checker := checkdiff.NewChecker(cfg, f.store, &ui.AutoConfirmer{Answer: false})

	decision, err := checker.Evaluate(f.entry())
	require.NoError(t, err)
	assert.Equal(t, checkdiff.DecisionApply, decision)
}

func TestEvaluate_Drift_Accepted(t *testing.T) {
	f := newCheckerFixture(t)
	f.write(t, f.source, "new content")
	f.write(t, f.dest, "externally changed")
	f.store.Set(f.dest, "stale-fingerprint")

	checker := checkdiff.NewChecker(applyConfig(), f.store, &ui.AutoConfirmer{Answer: true})

	decision, err := checker.Evaluate(f.entry())
	require.NoError(t, err)
	assert.Equal(t, checkdiff.DecisionApply, decision)
}

func TestEvaluate_Drift_Declined(t *testing.T) {
	f := newCheckerFixture(t)
	f.write(t, f.source, "new content")
	f.write(t, f.dest, "externally changed")
	f.store.Set(f.dest, "stale-fingerprint")

	checker := checkdiff.NewChecker(applyConfig(), f.store, &ui.AutoConfirmer{Answer: false})

	decision, err := checker.Evaluate(f.entry())
	require.NoError(t, err, "declining a drift prompt skips the entry, not the run")
	assert.Equal(t, checkdiff.DecisionSkipDrift, decision)
}

func TestEvaluate_SkipSame(t *testing.T) {
	f := newCheckerFixture(t)
	f.write(t, f.source, "identical")
	f.write(t, f.dest, "identical")

	fp, err := checkdiff.Fingerprint(f.dest)
	require.NoError(t, err)
	f.store.Set(f.dest, fp)

	checker := checkdiff.NewChecker(applyConfig(), f.store, &ui.AutoConfirmer{Answer: false})

	decision, err := checker.Evaluate(f.entry())
	require.NoError(t, err)
	assert.Equal(t, checkdiff.DecisionSkipSame, decision)
}

func TestEvaluate_SkipSame_RefreshesRecordOnFirstRun(t *testing.T) {
	f := newCheckerFixture(t)
	f.write(t, f.source, "identical")
	f.write(t, f.dest, "identical")

	checker := checkdiff.NewChecker(applyConfig(), f.store, &ui.AutoConfirmer{Answer: true})
	require.NoError(t, checker.ConfirmFirstRun())

	decision, err := checker.Evaluate(f.entry())
	require.NoError(t, err)
	assert.Equal(t, checkdiff.DecisionSkipSame, decision)

	fp, ok := f.store.Get(f.dest)
	assert.True(t, ok, "skip-same still records the destination")
	want, err := checkdiff.Fingerprint(f.dest)
	require.NoError(t, err)
	assert.Equal(t, want, fp)
}

func TestEvaluate_SkipSame_DisabledPerEntry(t *testing.T) {
	f := newCheckerFixture(t)
	f.write(t, f.source, "identical")
	f.write(t, f.dest, "identical")

	fp, err := checkdiff.Fingerprint(f.dest)
	require.NoError(t, err)
	f.store.Set(f.dest, fp)

	checker := checkdiff.NewChecker(applyConfig(), f.store, &ui.AutoConfirmer{Answer: true})

	entry := f.entry()
	entry.SkipIfSameContent = false
	decision, err := checker.Evaluate(entry)
	require.NoError(t, err)
	assert.Equal(t, checkdiff.DecisionApply, decision)
}

func TestRecordApplied(t *testing.T) {
	f := newCheckerFixture(t)
	f.write(t, f.dest, "written content")

	checker := checkdiff.NewChecker(applyConfig(), f.store, &ui.AutoConfirmer{Answer: true})
	require.NoError(t, checker.RecordApplied(f.dest))

	fp, ok := f.store.Get(f.dest)
	require.True(t, ok)
	want, err := checkdiff.Fingerprint(f.dest)
	require.NoError(t, err)
	assert.Equal(t, want, fp)

	// The record survives a reload.
	reloaded, err := checkdiff.LoadStore(f.store.Path())
	require.NoError(t, err)
	got, ok := reloaded.Get(f.dest)
	require.True(t, ok)
	assert.Equal(t, want, got)
}
