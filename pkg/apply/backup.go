package apply

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/typewriter/pkg/document"
	"github.com/arthur-debert/typewriter/pkg/errors"
)

// backupName flattens a destination path into a single file name by
// replacing path separators with the configured delimiter.
func (p *Pipeline) backupName(destination string) string {
	return strings.ReplaceAll(destination, string(os.PathSeparator), p.cfg.Apply.TempCopyPathDelim)
}

// backup copies the current bytes of every existing destination into the
// metadata directory. With backups disabled, rollback degrades to a
// best-effort no-op for content.
func (p *Pipeline) backup() error {
	if p.cfg.Apply.TempCopyStrategy == document.TempCopyDisabled {
		log.Warn().Msg("temp_copy_strategy is disabled; rollback after a failure will not restore destination content")
		return nil
	}

	if err := os.MkdirAll(p.metadataDir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrBackup, "creating metadata directory %s", p.metadataDir)
	}

	for _, entry := range p.entries {
		if _, ok := p.backups[entry.Destination]; ok {
			continue
		}
		if _, err := os.Stat(entry.Destination); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return errors.Wrapf(err, errors.ErrBackup, "checking destination %s", entry.Destination)
		}

		backupPath := filepath.Join(p.metadataDir, p.backupName(entry.Destination))
		if err := copyFile(entry.Destination, backupPath); err != nil {
			return errors.Wrapf(err, errors.ErrBackup, "backing up %s", entry.Destination)
		}
		p.backups[entry.Destination] = backupPath

		log.Debug().Str("destination", entry.Destination).Str("backup", backupPath).Msg("Destination backed up")
	}

	return nil
}

// rollback restores every backed-up destination to its pre-run bytes and
// removes destinations created during this run. Backup copies are kept
// on disk after a failed run. The checksum store is left as it stands:
// entries that never completed were never updated.
func (p *Pipeline) rollback() {
	log.Error().Msg("Apply failed, rolling back")

	for destination, backupPath := range p.backups {
		if err := copyFile(backupPath, destination); err != nil {
			log.Error().Err(err).Str("destination", destination).Msg("Failed to restore destination from backup")
		} else {
			log.Info().Str("destination", destination).Msg("Destination restored from backup")
		}
	}

	p.removeCreated()
}

// commit deletes the backup copies once every entry has been applied or
// intentionally skipped, when cleanup is enabled.
func (p *Pipeline) commit() {
	if !p.cfg.Apply.CleanupFiles {
		return
	}

	for destination, backupPath := range p.backups {
		if err := os.Remove(backupPath); err != nil {
			log.Error().Err(err).Str("backup", backupPath).Msg("Failed to remove backup copy")
		} else {
			log.Debug().Str("destination", destination).Str("backup", backupPath).Msg("Backup copy removed")
		}
	}
}

// copyFile copies src's bytes over dst, creating dst with src's mode if
// missing.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}

	return out.Close()
}
