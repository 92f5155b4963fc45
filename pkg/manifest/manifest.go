package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/hashicorp/go-multierror"
	"sigs.k8s.io/yaml"

	"github.com/macropower/libexport/pkg/classpath"
	"github.com/macropower/libexport/pkg/coordinate"
)

// ErrInvalidManifest indicates a manifest could not be read or is malformed.
var ErrInvalidManifest = errors.New("invalid manifest")

// Manifest is the document format of a resolved classpath.
type Manifest struct {
	Artifacts []Entry `json:"artifacts"`
}

// Entry is one resolved artifact. Either Coordinate or Group and Module must
// be set, unless the manifest is read with a [Locator] and File lies inside
// its repository.
type Entry struct {
	Coordinate string `json:"coordinate,omitempty"`
	Group      string `json:"group,omitempty"`
	Module     string `json:"module,omitempty"`
	Version    string `json:"version,omitempty"`
	File       string `json:"file"`
}

// Locator maps an artifact file back to its coordinate.
type Locator interface {
	CoordinateFromPath(path string) (coordinate.Coordinate, error)
}

// Option configures [Read] and [Parse].
type Option func(*options)

type options struct {
	locator Locator
}

// WithLocator lets entries give only a file, whose coordinate is then
// derived by l.
func WithLocator(l Locator) Option {
	return func(o *options) {
		o.locator = l
	}
}

func (e Entry) fileOnly() bool {
	return e.Coordinate == "" && e.Group == "" && e.Module == "" && e.Version == ""
}

// coordinate returns the entry's coordinate.
func (e Entry) coordinate() (coordinate.Coordinate, error) {
	if e.Coordinate != "" {
		if e.Group != "" || e.Module != "" || e.Version != "" {
			return coordinate.Coordinate{}, errors.New("set either coordinate or group/module/version, not both")
		}

		c, err := coordinate.Parse(e.Coordinate)
		if err != nil {
			return coordinate.Coordinate{}, fmt.Errorf("parse coordinate: %w", err)
		}

		return c, nil
	}

	c := coordinate.Coordinate{Group: e.Group, Module: e.Module, Version: e.Version}

	err := c.Validate()
	if err != nil {
		return coordinate.Coordinate{}, fmt.Errorf("validate coordinate: %w", err)
	}

	return c, nil
}

// Read reads the manifest at path and returns its artifacts.
func Read(path string, opts ...Option) ([]classpath.Artifact, error) {
	//nolint:gosec // G304 path is user-provided on purpose.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("get absolute path: %w", err)
	}

	return Parse(data, filepath.Dir(abs), opts...)
}

// Parse parses manifest data. Relative file paths are resolved against
// baseDir. Every malformed entry is reported in the returned error.
func Parse(data []byte, baseDir string, opts ...Option) ([]classpath.Artifact, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	m := Manifest{}

	err := yaml.UnmarshalStrict(data, &m)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}

	var merr *multierror.Error

	artifacts := make([]classpath.Artifact, 0, len(m.Artifacts))

	for i, e := range m.Artifacts {
		if e.File == "" {
			merr = multierror.Append(merr, fmt.Errorf("artifacts[%d]: file is required", i))

			continue
		}

		file := e.File
		if !filepath.IsAbs(file) {
			file = filepath.Join(baseDir, file)
		}

		file = filepath.Clean(file)

		c, err := o.coordinate(e, file)
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("artifacts[%d]: %w", i, err))

			continue
		}

		a := classpath.NewArtifact(c, file)
		if slices.Contains(artifacts, a) {
			continue
		}

		artifacts = append(artifacts, a)
	}

	if merr != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, merr)
	}

	return artifacts, nil
}

func (o *options) coordinate(e Entry, file string) (coordinate.Coordinate, error) {
	if !e.fileOnly() {
		return e.coordinate()
	}

	if o.locator == nil {
		return coordinate.Coordinate{}, errors.New("coordinate or group and module are required")
	}

	c, err := o.locator.CoordinateFromPath(file)
	if err != nil {
		return coordinate.Coordinate{}, fmt.Errorf("locate %s: %w", file, err)
	}

	return c, nil
}

// Marshal renders artifacts as a manifest document.
func Marshal(artifacts []classpath.Artifact) ([]byte, error) {
	m := Manifest{Artifacts: make([]Entry, 0, len(artifacts))}
	for _, a := range artifacts {
		m.Artifacts = append(m.Artifacts, Entry{Coordinate: a.Coordinate.String(), File: a.FilePath})
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}

	return data, nil
}
