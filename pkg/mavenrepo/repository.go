package mavenrepo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/macropower/libexport/pkg/classpath"
	"github.com/macropower/libexport/pkg/coordinate"
)

// DefaultExtension is the file extension of resolved artifacts.
const DefaultExtension = "jar"

var (
	ErrVersionRequired = errors.New("version required")
	ErrNotInRepository = errors.New("path is not inside the repository")
)

// Repository is a local repository rooted at Root.
type Repository struct {
	Root string
}

// New creates a new [Repository]. An empty root selects [DefaultRoot].
func New(root string) (*Repository, error) {
	if root == "" {
		var err error

		root, err = DefaultRoot()
		if err != nil {
			return nil, err
		}
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("get absolute path: %w", err)
	}

	return &Repository{Root: abs}, nil
}

// DefaultRoot returns `$HOME/.m2/repository`.
func DefaultRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	return filepath.Join(home, ".m2", "repository"), nil
}

// Path returns the path of the jar for c.
func (r *Repository) Path(c coordinate.Coordinate) (string, error) {
	if c.Version == "" {
		return "", fmt.Errorf("%w: %s", ErrVersionRequired, c)
	}

	err := c.Validate()
	if err != nil {
		return "", err
	}

	return filepath.Join(
		r.Root,
		filepath.FromSlash(strings.ReplaceAll(c.Group, ".", "/")),
		c.Module,
		c.Version,
		c.Module+"-"+c.Version+"."+DefaultExtension,
	), nil
}

// Resolve returns an artifact for each coordinate. Files are not required to
// exist; a missing file is reported when the artifact is exported.
func (r *Repository) Resolve(coords ...coordinate.Coordinate) ([]classpath.Artifact, error) {
	artifacts := make([]classpath.Artifact, 0, len(coords))

	for _, c := range coords {
		p, err := r.Path(c)
		if err != nil {
			return nil, err
		}

		artifacts = append(artifacts, classpath.NewArtifact(c, p))
	}

	return artifacts, nil
}

// CoordinateFromPath returns the coordinate of the artifact stored at path.
// It is the inverse of [Repository.Path].
func (r *Repository) CoordinateFromPath(path string) (coordinate.Coordinate, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return coordinate.Coordinate{}, fmt.Errorf("get absolute path: %w", err)
	}

	rel, err := filepath.Rel(r.Root, abs)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return coordinate.Coordinate{}, fmt.Errorf("%w: %s", ErrNotInRepository, path)
	}

	parts := strings.Split(filepath.ToSlash(rel), "/")

	// group (at least one segment), module, version, file
	if len(parts) < 4 {
		return coordinate.Coordinate{}, fmt.Errorf("%w: %s: unexpected layout", ErrNotInRepository, path)
	}

	n := len(parts)
	c := coordinate.Coordinate{
		Group:   strings.Join(parts[:n-3], "."),
		Module:  parts[n-3],
		Version: parts[n-2],
	}

	if !strings.HasPrefix(parts[n-1], c.Module+"-"+c.Version) {
		return coordinate.Coordinate{}, fmt.Errorf("%w: %s: file name does not match %s", ErrNotInRepository, path, c)
	}

	return c, nil
}
