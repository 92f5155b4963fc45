package catalog

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/iancoleman/strcase"
	"github.com/pelletier/go-toml/v2"

	"github.com/macropower/libexport/pkg/coordinate"
)

// Prefix is the accessor prefix of the default catalog.
const Prefix = "libs."

var (
	ErrInvalidCatalog = errors.New("invalid catalog")
	ErrUnknownLibrary = errors.New("unknown library")
	ErrUnknownBundle  = errors.New("unknown bundle")
	ErrUnknownVersion = errors.New("unknown version")
)

// Library is a catalog entry.
type Library struct {
	// Alias is the key used in the catalog file.
	Alias string
	// Accessor is the normalized name used to reference the library.
	Accessor   string
	Coordinate coordinate.Coordinate
}

// Catalog is a parsed version catalog.
type Catalog struct {
	versions  map[string]string
	libraries map[string]Library
	bundles   map[string][]string
}

type document struct {
	Versions  map[string]any      `toml:"versions"`
	Libraries map[string]any      `toml:"libraries"`
	Bundles   map[string][]string `toml:"bundles"`
}

// Load reads and parses the catalog file at path.
func Load(path string) (*Catalog, error) {
	//nolint:gosec // G304 path is user-provided on purpose.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return c, nil
}

// Parse parses catalog data.
func Parse(data []byte) (*Catalog, error) {
	doc := document{}

	err := toml.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	c := &Catalog{
		versions:  make(map[string]string, len(doc.Versions)),
		libraries: make(map[string]Library, len(doc.Libraries)),
		bundles:   make(map[string][]string, len(doc.Bundles)),
	}

	var merr *multierror.Error

	for alias, v := range doc.Versions {
		version, err := parseVersion(v)
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("versions.%s: %w", alias, err))

			continue
		}

		c.versions[Accessor(alias)] = version
	}

	for _, alias := range slices.Sorted(maps.Keys(doc.Libraries)) {
		coord, err := c.parseLibrary(doc.Libraries[alias])
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("libraries.%s: %w", alias, err))

			continue
		}

		accessor := Accessor(alias)
		if prev, ok := c.libraries[accessor]; ok {
			merr = multierror.Append(merr,
				fmt.Errorf("libraries.%s: accessor %q already used by %q", alias, accessor, prev.Alias))

			continue
		}

		c.libraries[accessor] = Library{Alias: alias, Accessor: accessor, Coordinate: coord}
	}

	for alias, refs := range doc.Bundles {
		for _, ref := range refs {
			if _, ok := c.libraries[Accessor(ref)]; !ok {
				merr = multierror.Append(merr, fmt.Errorf("bundles.%s: %w: %q", alias, ErrUnknownLibrary, ref))
			}
		}

		c.bundles[Accessor(alias)] = refs
	}

	if merr != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, merr)
	}

	return c, nil
}

// Accessor returns the normalized accessor for an alias or reference.
func Accessor(ref string) string {
	ref = strings.TrimPrefix(ref, Prefix)
	ref = strings.ReplaceAll(ref, ".", "-")

	return strcase.ToLowerCamel(ref)
}

// Library returns the library referenced by ref.
func (c *Catalog) Library(ref string) (Library, error) {
	lib, ok := c.libraries[Accessor(ref)]
	if !ok {
		return Library{}, fmt.Errorf("%w: %q", ErrUnknownLibrary, ref)
	}

	return lib, nil
}

// Bundle returns the libraries of the bundle referenced by ref, which may be
// written as `libs.bundles.name` or just `name`.
func (c *Catalog) Bundle(ref string) ([]Library, error) {
	name := strings.TrimPrefix(strings.TrimPrefix(ref, Prefix), "bundles.")

	refs, ok := c.bundles[Accessor(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBundle, ref)
	}

	libs := make([]Library, 0, len(refs))
	for _, r := range refs {
		lib, err := c.Library(r)
		if err != nil {
			return nil, err
		}

		libs = append(libs, lib)
	}

	return libs, nil
}

// Resolve returns the libraries for a dependency reference. References of the
// form `libs.bundles.name` resolve to a bundle, anything else to a single
// library.
func (c *Catalog) Resolve(ref string) ([]Library, error) {
	if strings.HasPrefix(strings.TrimPrefix(ref, Prefix), "bundles.") {
		return c.Bundle(ref)
	}

	lib, err := c.Library(ref)
	if err != nil {
		return nil, err
	}

	return []Library{lib}, nil
}

// Version returns the version referenced by ref.
func (c *Catalog) Version(ref string) (string, error) {
	v, ok := c.versions[Accessor(strings.TrimPrefix(strings.TrimPrefix(ref, Prefix), "versions."))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownVersion, ref)
	}

	return v, nil
}

// Libraries returns all libraries sorted by accessor.
func (c *Catalog) Libraries() []Library {
	libs := slices.Collect(maps.Values(c.libraries))
	slices.SortFunc(libs, func(a, b Library) int {
		return cmp.Compare(a.Accessor, b.Accessor)
	})

	return libs
}

// Bundles returns the sorted bundle accessors.
func (c *Catalog) Bundles() []string {
	return slices.Sorted(maps.Keys(c.bundles))
}

func (c *Catalog) parseLibrary(v any) (coordinate.Coordinate, error) {
	switch lib := v.(type) {
	case string:
		coord, err := coordinate.Parse(lib)
		if err != nil {
			return coordinate.Coordinate{}, fmt.Errorf("parse coordinate: %w", err)
		}

		return coord, nil

	case map[string]any:
		return c.parseLibraryTable(lib)
	}

	return coordinate.Coordinate{}, fmt.Errorf("unexpected type %T", v)
}

func (c *Catalog) parseLibraryTable(lib map[string]any) (coordinate.Coordinate, error) {
	var coord coordinate.Coordinate

	module, hasModule := lib["module"].(string)
	group, hasGroup := lib["group"].(string)
	name, hasName := lib["name"].(string)

	switch {
	case hasModule && (hasGroup || hasName):
		return coordinate.Coordinate{}, errors.New("set either module or group and name, not both")
	case hasModule:
		parsed, err := coordinate.Parse(module)
		if err != nil {
			return coordinate.Coordinate{}, fmt.Errorf("parse module: %w", err)
		}

		if parsed.Version != "" {
			return coordinate.Coordinate{}, fmt.Errorf("module %q must not contain a version", module)
		}

		coord = parsed
	case hasGroup && hasName:
		coord = coordinate.Coordinate{Group: group, Module: name}
	default:
		return coordinate.Coordinate{}, errors.New("module or group and name are required")
	}

	rawVersion, ok := lib["version"]
	if !ok {
		return coord, coord.Validate()
	}

	switch ver := rawVersion.(type) {
	case string:
		coord = coord.WithVersion(ver)
	case map[string]any:
		if ref, ok := ver["ref"].(string); ok {
			v, err := c.Version(ref)
			if err != nil {
				return coordinate.Coordinate{}, err
			}

			coord = coord.WithVersion(v)

			break
		}

		v, err := parseVersion(ver)
		if err != nil {
			return coordinate.Coordinate{}, err
		}

		coord = coord.WithVersion(v)
	default:
		return coordinate.Coordinate{}, fmt.Errorf("version: unexpected type %T", rawVersion)
	}

	return coord, coord.Validate()
}

// parseVersion accepts a plain version string or a rich version table, from
// which the strictly, require and prefer constraints are used in that order.
func parseVersion(v any) (string, error) {
	switch ver := v.(type) {
	case string:
		if ver == "" {
			return "", errors.New("empty version")
		}

		return ver, nil

	case map[string]any:
		for _, key := range []string{"strictly", "require", "prefer"} {
			if s, ok := ver[key].(string); ok && s != "" {
				return s, nil
			}
		}

		return "", errors.New("rich version has no strictly, require or prefer constraint")
	}

	return "", fmt.Errorf("unexpected type %T", v)
}
