package classpath

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
)

// FileSystem is the filesystem collaborator used by an [Exporter]. Every
// file access an export makes goes through it.
type FileSystem interface {
	// MkdirAll creates dir and any missing parents. It returns an error if
	// dir cannot be created or is not writable.
	MkdirAll(dir string) error
	// Copy copies the file at src to dst, replacing dst if it exists. It must
	// return an error wrapping [ErrSourceMissing] if src does not exist.
	Copy(src, dst string) error
	// Open opens the file at path for reading. It must return an error
	// wrapping [ErrSourceMissing] if path does not exist.
	Open(path string) (File, error)
}

// File is a file opened with [FileSystem.Open].
type File interface {
	io.ReaderAt
	io.Closer
	Stat() (fs.FileInfo, error)
}

var _ FileSystem = (*AferoFileSystem)(nil)

// AferoFileSystem implements [FileSystem] on top of an [afero.Fs].
// Create instances with [NewFileSystem] or [NewOSFileSystem].
type AferoFileSystem struct {
	base afero.Fs
}

// NewFileSystem returns a [FileSystem] backed by base.
func NewFileSystem(base afero.Fs) *AferoFileSystem {
	return &AferoFileSystem{base: base}
}

// NewOSFileSystem returns a [FileSystem] backed by the local disk.
func NewOSFileSystem() *AferoFileSystem {
	return NewFileSystem(afero.NewOsFs())
}

// MkdirAll creates dir and verifies it is writable by creating and removing a
// write check file.
func (a *AferoFileSystem) MkdirAll(dir string) error {
	err := a.base.MkdirAll(dir, 0o750)
	if err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	check := filepath.Join(dir, ".libexport-check-"+uuid.NewString())

	f, err := a.base.OpenFile(check, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("directory %q is not writable: %w", dir, err)
	}

	var merr error

	err = f.Close()
	if err != nil {
		merr = multierror.Append(merr, err)
	}

	err = a.base.Remove(check)
	if err != nil {
		merr = multierror.Append(merr, err)
	}

	if merr != nil {
		return fmt.Errorf("clean up write check: %w", merr)
	}

	return nil
}

// Copy copies src to dst through a temporary file in the destination
// directory, which is then renamed over dst. The file mode of src is kept.
func (a *AferoFileSystem) Copy(src, dst string) error {
	in, err := a.open(src)
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck // Read-only.

	fi, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	if !fi.Mode().IsRegular() {
		return fmt.Errorf("source %q is not a regular file", src)
	}

	tmp := filepath.Join(filepath.Dir(dst), "."+filepath.Base(dst)+"."+uuid.NewString()+".tmp")

	out, err := a.base.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fi.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create %q: %w", tmp, err)
	}

	_, err = io.Copy(out, in)
	if err != nil {
		merr := multierror.Append(nil, fmt.Errorf("write %q: %w", tmp, err))

		errClose := out.Close()
		if errClose != nil {
			merr = multierror.Append(merr, errClose)
		}

		return a.cleanup(tmp, merr)
	}

	err = out.Close()
	if err != nil {
		return a.cleanup(tmp, fmt.Errorf("close %q: %w", tmp, err))
	}

	err = a.base.Rename(tmp, dst)
	if err != nil {
		return a.cleanup(tmp, fmt.Errorf("rename to %q: %w", dst, err))
	}

	return nil
}

// Open opens path for reading.
//
//nolint:ireturn // Implementations return their own file type.
func (a *AferoFileSystem) Open(path string) (File, error) {
	return a.open(path)
}

func (a *AferoFileSystem) open(path string) (afero.File, error) {
	f, err := a.base.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSourceMissing, path)
	}

	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}

	return f, nil
}

func (a *AferoFileSystem) cleanup(tmp string, err error) error {
	errRemove := a.base.Remove(tmp)
	if errRemove != nil && !errors.Is(errRemove, fs.ErrNotExist) {
		return multierror.Append(err, errRemove)
	}

	return err
}
