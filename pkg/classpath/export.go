package classpath

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
)

var (
	// ErrIOFailure indicates the destination could not be created or written.
	ErrIOFailure = errors.New("I/O failure")

	// ErrSourceMissing indicates an artifact's file did not exist at copy time.
	ErrSourceMissing = errors.New("source file missing")

	// ErrInvalidArchive indicates an artifact's file failed archive
	// verification. See [WithVerifyArchives].
	ErrInvalidArchive = errors.New("invalid archive")
)

// Entry records one exported artifact.
type Entry struct {
	Artifact    Artifact
	Destination string
}

// Result describes a completed export.
type Result struct {
	// Destination is the directory artifacts were copied into.
	Destination string
	// Entries holds one entry per kept artifact, in copy order.
	Entries []Entry
	// Excluded holds the artifacts suppressed by an exclusion pattern.
	Excluded []Artifact
	// Collisions lists destination file names written more than once.
	Collisions []string
}

// Files returns the sorted, unique destination paths written by the export.
func (r *Result) Files() []string {
	files := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		files = append(files, e.Destination)
	}

	slices.Sort(files)

	return slices.Compact(files)
}

// Exporter copies the non-excluded artifacts of a classpath into a directory.
// Create instances with [NewExporter].
type Exporter struct {
	fs             FileSystem
	verify         func(path string) error
	logger         *slog.Logger
	verifyArchives bool
}

// Option configures an [Exporter].
type Option func(*Exporter)

// WithFileSystem sets the [FileSystem] used for all file access.
func WithFileSystem(fs FileSystem) Option {
	return func(e *Exporter) {
		e.fs = fs
	}
}

// WithVerifyArchives enables [VerifyArchive] on every kept artifact before
// it is copied. The archive is read through the exporter's [FileSystem].
func WithVerifyArchives(enabled bool) Option {
	return func(e *Exporter) {
		e.verifyArchives = enabled
	}
}

// WithVerifier sets a custom verification function, run on every kept
// artifact before it is copied. It takes precedence over
// [WithVerifyArchives].
func WithVerifier(verify func(path string) error) Option {
	return func(e *Exporter) {
		e.verify = verify
	}
}

// WithLogger sets the logger. By default [slog.Default] is used.
func WithLogger(l *slog.Logger) Option {
	return func(e *Exporter) {
		e.logger = l
	}
}

// NewExporter creates a new [Exporter].
func NewExporter(opts ...Option) *Exporter {
	e := &Exporter{
		fs: NewOSFileSystem(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}

	return e
}

// Export copies every artifact whose group does not match any of the
// exclusion patterns into destinationDir, which is created if needed.
//
// Kept artifacts are copied one at a time in [Compare] order, and each copy
// replaces any existing file of the same name. The first failure stops the
// export; files copied before it are left in place. Failures wrap
// [ErrIOFailure], [ErrSourceMissing] or [ErrInvalidArchive].
func (e *Exporter) Export(artifacts []Artifact, exclusions []Pattern, destinationDir string) (*Result, error) {
	err := e.fs.MkdirAll(destinationDir)
	if err != nil {
		return nil, fmt.Errorf("%w: destination %q: %w", ErrIOFailure, destinationDir, err)
	}

	kept, excluded := Filter(artifacts, exclusions)

	for _, a := range excluded {
		p, _ := Patterns(exclusions).Match(a.Group)
		e.logger.Debug("excluding artifact",
			slog.String("artifact", a.Coordinate.String()),
			slog.String("pattern", string(p)),
		)
	}

	res := &Result{
		Destination: destinationDir,
		Entries:     make([]Entry, 0, len(kept)),
		Excluded:    excluded,
	}

	writtenBy := make(map[string]Artifact, len(kept))

	for _, a := range kept {
		dst := filepath.Join(destinationDir, a.FileName())

		err := e.verifyArtifact(a)
		if err != nil {
			return nil, fmt.Errorf("verify %s: %w", a.Coordinate, err)
		}

		err = e.fs.Copy(a.FilePath, dst)
		if err != nil {
			if errors.Is(err, ErrSourceMissing) {
				return nil, fmt.Errorf("copy %s: %w", a.Coordinate, err)
			}

			return nil, fmt.Errorf("%w: copy %s: %w", ErrIOFailure, a.Coordinate, err)
		}

		if prev, ok := writtenBy[dst]; ok {
			e.logger.Warn("file name collision, overwriting",
				slog.String("file", a.FileName()),
				slog.String("previous", prev.Coordinate.String()),
				slog.String("artifact", a.Coordinate.String()),
			)

			if !slices.Contains(res.Collisions, a.FileName()) {
				res.Collisions = append(res.Collisions, a.FileName())
			}
		}

		writtenBy[dst] = a

		e.logger.Debug("copied artifact",
			slog.String("artifact", a.Coordinate.String()),
			slog.String("destination", dst),
		)

		res.Entries = append(res.Entries, Entry{Artifact: a, Destination: dst})
	}

	e.logger.Info("exported classpath",
		slog.String("destination", destinationDir),
		slog.Int("copied", len(res.Entries)),
		slog.Int("excluded", len(res.Excluded)),
	)

	return res, nil
}

func (e *Exporter) verifyArtifact(a Artifact) error {
	switch {
	case e.verify != nil:
		return e.verify(a.FilePath)
	case e.verifyArchives:
		return VerifyArchive(e.fs, a.FilePath)
	default:
		return nil
	}
}

// Export runs an export with a default [Exporter].
func Export(artifacts []Artifact, exclusions []Pattern, destinationDir string) (*Result, error) {
	return NewExporter().Export(artifacts, exclusions, destinationDir)
}
