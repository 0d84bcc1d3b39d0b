package checkdiff

import (
	"io"
	"os"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/arthur-debert/typewriter/pkg/errors"
)

// Fingerprint computes the xxhash content fingerprint of a file,
// streaming it in 64 KiB chunks.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "hashing file %s", path)
	}
	defer func() { _ = f.Close() }()

	digest := xxhash.New()
	buf := make([]byte, 64*1024)
	if _, err := io.CopyBuffer(digest, f, buf); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "hashing file %s", path)
	}

	return strconv.FormatUint(digest.Sum64(), 10), nil
}
