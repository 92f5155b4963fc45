package classpath

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zip"
)

// VerifyArchive checks that the file at path on fsys is a readable zip
// archive, which is what jar files are. Each entry is opened so that
// unsupported compression methods are caught, but entry contents are not
// read.
func VerifyArchive(fsys FileSystem, path string) error {
	f, err := fsys.Open(path)
	if errors.Is(err, ErrSourceMissing) {
		return err
	}

	if err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	defer f.Close() //nolint:errcheck // Read-only.

	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat %q: %w", ErrIOFailure, path, err)
	}

	r, err := zip.NewReader(f, fi.Size())
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidArchive, path, err)
	}

	for _, zf := range r.File {
		rc, err := zf.Open()
		if err != nil {
			return fmt.Errorf("%w %q: entry %q: %w", ErrInvalidArchive, path, zf.Name, err)
		}

		err = rc.Close()
		if err != nil {
			return fmt.Errorf("%w %q: entry %q: %w", ErrInvalidArchive, path, zf.Name, err)
		}
	}

	return nil
}
