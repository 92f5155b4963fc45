package project

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/macropower/libexport/pkg/catalog"
	"github.com/macropower/libexport/pkg/classpath"
	"github.com/macropower/libexport/pkg/coordinate"
	"github.com/macropower/libexport/pkg/manifest"
	"github.com/macropower/libexport/pkg/mavenrepo"
)

// Artifacts returns the resolved runtime classpath.
//
// If a manifest is configured, its artifacts are returned as-is, with
// file-only entries located in the repository. Otherwise each runtime
// dependency is looked up, catalog references through the version catalog,
// and mapped to a file in the local repository.
func (p *Project) Artifacts() ([]classpath.Artifact, error) {
	repo, err := p.Repo()
	if err != nil {
		return nil, err
	}

	if p.Manifest != "" {
		path := p.ResolvePath(p.Manifest)
		slog.Debug("reading classpath manifest", slog.String("path", path))

		artifacts, err := manifest.Read(path, manifest.WithLocator(repo))
		if err != nil {
			return nil, fmt.Errorf("read manifest: %w", err)
		}

		return artifacts, nil
	}

	coords, err := p.RuntimeCoordinates()
	if err != nil {
		return nil, err
	}

	slog.Debug("resolving runtime classpath",
		slog.String("repository", repo.Root),
		slog.Int("dependencies", len(coords)),
	)

	artifacts, err := repo.Resolve(coords...)
	if err != nil {
		return nil, fmt.Errorf("resolve runtime classpath: %w", err)
	}

	return artifacts, nil
}

// Repo returns the local repository.
func (p *Project) Repo() (*mavenrepo.Repository, error) {
	repo, err := mavenrepo.New(p.ResolvePath(p.Repository))
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	return repo, nil
}

// RuntimeCoordinates resolves the references from [Project.RuntimeClasspath]
// to coordinates. The catalog is only loaded when a catalog reference is
// present.
func (p *Project) RuntimeCoordinates() ([]coordinate.Coordinate, error) {
	refs := p.RuntimeClasspath()

	var cat *catalog.Catalog

	if slices.ContainsFunc(refs, IsCatalogRef) {
		var err error

		cat, err = p.LoadCatalog()
		if err != nil {
			return nil, err
		}
	}

	coords := make([]coordinate.Coordinate, 0, len(refs))

	for _, ref := range refs {
		if !IsCatalogRef(ref) {
			c, err := coordinate.Parse(ref)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
			}

			coords = append(coords, c)

			continue
		}

		libs, err := cat.Resolve(ref)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", ref, err)
		}

		for _, lib := range libs {
			if !slices.Contains(coords, lib.Coordinate) {
				coords = append(coords, lib.Coordinate)
			}
		}
	}

	return coords, nil
}

// LoadCatalog loads the configured version catalog.
func (p *Project) LoadCatalog() (*catalog.Catalog, error) {
	cat, err := catalog.Load(p.ResolvePath(p.Catalog))
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	return cat, nil
}
