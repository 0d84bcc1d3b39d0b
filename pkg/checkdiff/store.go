package checkdiff

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/typewriter/pkg/errors"
)

// Store is the persisted destination→fingerprint mapping. It is read
// once at the start of an apply and rewritten atomically on every update
// so an interrupted process never leaves a half-written file behind.
type Store struct {
	path        string
	entries     map[string]string
	initialized bool
}

// storeFile is the on-disk TOML shape.
type storeFile struct {
	Entries map[string]string `toml:"entries"`
}

// LoadStore reads the store at path. A missing file yields an empty,
// uninitialized store; a present but unparsable file is an error since
// silently dropping records would defeat drift detection.
func LoadStore(path string) (*Store, error) {
	s := &Store{path: path, entries: make(map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errors.Wrapf(err, errors.ErrStoreRead, "reading checksum store %s", path)
	}

	var f storeFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, errors.ErrStoreRead,
			"parsing checksum store %s, has it been tampered with?", path)
	}
	if f.Entries != nil {
		s.entries = f.Entries
	}
	s.initialized = true

	return s, nil
}

// Path returns the on-disk location of the store.
func (s *Store) Path() string {
	return s.path
}

// Initialized reports whether the store file existed on disk when loaded.
func (s *Store) Initialized() bool {
	return s.initialized
}

// Len returns the number of recorded destinations.
func (s *Store) Len() int {
	return len(s.entries)
}

// Get returns the recorded fingerprint for a destination.
func (s *Store) Get(destination string) (string, bool) {
	fp, ok := s.entries[destination]
	return fp, ok
}

// Set records a destination's fingerprint in memory; Save persists it.
func (s *Store) Set(destination, fingerprint string) {
	s.entries[destination] = fingerprint
}

// Save writes the store to disk via write-temp-then-rename.
func (s *Store) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrStoreWrite, "creating metadata directory for %s", s.path)
	}

	data, err := toml.Marshal(storeFile{Entries: s.entries})
	if err != nil {
		return errors.Wrap(err, errors.ErrStoreWrite, "serializing checksum store")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp*")
	if err != nil {
		return errors.Wrapf(err, errors.ErrStoreWrite, "creating temp file for %s", s.path)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.Wrapf(err, errors.ErrStoreWrite, "writing checksum store %s", s.path)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrapf(err, errors.ErrStoreWrite, "closing checksum store %s", s.path)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrapf(err, errors.ErrStoreWrite, "replacing checksum store %s", s.path)
	}

	s.initialized = true
	return nil
}
