package coordinate

import (
	"cmp"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCoordinate indicates a coordinate string could not be parsed.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Coordinate identifies a dependency artifact. Version is optional.
type Coordinate struct {
	Group   string `json:"group"             yaml:"group"`
	Module  string `json:"module"            yaml:"module"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

// Parse parses `group:module` or `group:module:version`.
func Parse(s string) (Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Coordinate{}, fmt.Errorf("%w %q: expected group:module[:version]", ErrInvalidCoordinate, s)
	}

	for _, p := range parts {
		if p == "" {
			return Coordinate{}, fmt.Errorf("%w %q: empty component", ErrInvalidCoordinate, s)
		}
	}

	c := Coordinate{Group: parts[0], Module: parts[1]}
	if len(parts) == 3 {
		c.Version = parts[2]
	}

	err := c.Validate()
	if err != nil {
		return Coordinate{}, err
	}

	return c, nil
}

// MustParse is like [Parse] but panics on error.
func MustParse(s string) Coordinate {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return c
}

// Validate reports whether the group and module are set and every component
// is safe to use as a path segment.
func (c Coordinate) Validate() error {
	if c.Group == "" || c.Module == "" {
		return fmt.Errorf("%w %q: group and module are required", ErrInvalidCoordinate, c.String())
	}

	if strings.Contains(c.Group, ":") || strings.Contains(c.Module, ":") || strings.Contains(c.Version, ":") {
		return fmt.Errorf("%w %q: components must not contain ':'", ErrInvalidCoordinate, c.String())
	}

	for _, part := range []string{c.Group, c.Module, c.Version} {
		if strings.ContainsAny(part, `/\`) {
			return fmt.Errorf("%w %q: components must not contain path separators", ErrInvalidCoordinate, c.String())
		}
	}

	for _, part := range []string{c.Module, c.Version} {
		if part == "." || part == ".." {
			return fmt.Errorf("%w %q: %q is not a valid module or version", ErrInvalidCoordinate, c.String(), part)
		}
	}

	return nil
}

// String renders the coordinate as `group:module[:version]`.
func (c Coordinate) String() string {
	if c.Version == "" {
		return c.Group + ":" + c.Module
	}

	return c.Group + ":" + c.Module + ":" + c.Version
}

// WithVersion returns a copy of c with the version set to v.
func (c Coordinate) WithVersion(v string) Coordinate {
	c.Version = v

	return c
}

// Compare orders coordinates by group, then module, then version.
func Compare(a, b Coordinate) int {
	return cmp.Or(
		strings.Compare(a.Group, b.Group),
		strings.Compare(a.Module, b.Module),
		strings.Compare(a.Version, b.Version),
	)
}
