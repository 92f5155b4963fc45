package project

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/macropower/libexport/pkg/classpath"
	"github.com/macropower/libexport/pkg/coordinate"
)

// FileName is the name of the project descriptor.
const FileName = "libexport.yaml"

// Dependency configurations.
const (
	API            = "api"
	Implementation = "implementation"
	RuntimeOnly    = "runtimeOnly"
	CompileOnly    = "compileOnly"
)

var (
	ErrInvalidConfig = errors.New("invalid config")

	// Configurations lists every known dependency configuration.
	Configurations = []string{API, Implementation, RuntimeOnly, CompileOnly}

	// RuntimeConfigurations lists the configurations on the runtime
	// classpath, in resolution order.
	RuntimeConfigurations = []string{API, Implementation, RuntimeOnly}
)

// Project is the project descriptor.
type Project struct {
	// Group is the project's own coordinate group.
	Group string `json:"group" jsonschema:"required,example=org.sandbox" yaml:"group"`
	// BuildDir is the build output directory. Defaults to "build".
	BuildDir string `json:"buildDir,omitempty" yaml:"buildDir,omitempty"`
	// Catalog is the version catalog file. Defaults to
	// "gradle/libs.versions.toml".
	Catalog string `json:"catalog,omitempty" yaml:"catalog,omitempty"`
	// Repository is the local repository root. Defaults to
	// "~/.m2/repository".
	Repository string `json:"repository,omitempty" yaml:"repository,omitempty"`
	// Manifest is a resolved classpath manifest. When set, it is used
	// instead of resolving dependencies through the catalog.
	Manifest string `json:"manifest,omitempty" yaml:"manifest,omitempty"`
	// Dependencies maps a configuration to dependency references. A
	// reference is either a catalog accessor like "libs.uuid" or a
	// coordinate like "org.postgresql:postgresql:42.5.4".
	Dependencies map[string][]string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	CopyLib      CopyLib             `json:"copyLib,omitempty"      yaml:"copyLib,omitempty"`
	Assemble     Assemble            `json:"assemble,omitempty"     yaml:"assemble,omitempty"`

	dir string
}

// CopyLib configures the classpath export.
type CopyLib struct {
	// Exclude lists group exclusion patterns. A trailing "*" matches any
	// group with that prefix. Defaults to the project group and its
	// subgroups.
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	// Into is the destination directory. Defaults to "<buildDir>/libs/lib".
	Into string `json:"into,omitempty" yaml:"into,omitempty"`
	// VerifyArchives checks each artifact is a readable jar before copying.
	VerifyArchives bool `json:"verifyArchives,omitempty" yaml:"verifyArchives,omitempty"`
}

// Assemble configures the assemble action.
type Assemble struct {
	// Command runs the external build. When empty, assemble does nothing.
	Command []string `json:"command,omitempty" yaml:"command,omitempty"`
	// Timeout bounds the command. Zero means no timeout.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// Load reads, defaults and validates the descriptor at path.
func Load(path string) (*Project, error) {
	//nolint:gosec // G304 path is user-provided on purpose.
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	defer f.Close() //nolint:errcheck // Read-only.

	p := &Project{}

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	err = dec.Decode(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("get absolute path: %w", err)
	}

	p.dir = filepath.Dir(abs)
	p.SetDefaults()

	err = p.Validate()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return p, nil
}

// Dir returns the directory relative paths are resolved against.
func (p *Project) Dir() string {
	return p.dir
}

// SetDir sets the directory relative paths are resolved against.
func (p *Project) SetDir(dir string) {
	p.dir = dir
}

// SetDefaults fills unset fields with their defaults.
func (p *Project) SetDefaults() {
	if p.BuildDir == "" {
		p.BuildDir = "build"
	}

	if p.Catalog == "" {
		p.Catalog = filepath.Join("gradle", "libs.versions.toml")
	}

	if p.CopyLib.Into == "" {
		p.CopyLib.Into = filepath.Join(p.BuildDir, "libs", "lib")
	}

	if p.CopyLib.Exclude == nil && p.Group != "" {
		p.CopyLib.Exclude = []string{p.Group, p.Group + "." + classpath.Wildcard}
	}
}

// Validate returns every problem with the descriptor, wrapped in
// [ErrInvalidConfig].
func (p *Project) Validate() error {
	var merr *multierror.Error

	if p.Group == "" {
		merr = multierror.Append(merr, errors.New("group is required"))
	}

	for _, e := range p.CopyLib.Exclude {
		_, err := classpath.ParsePattern(e)
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("copyLib.exclude: %w", err))
		}
	}

	for _, conf := range slices.Sorted(maps.Keys(p.Dependencies)) {
		if !slices.Contains(Configurations, conf) {
			merr = multierror.Append(merr, fmt.Errorf("dependencies: unknown configuration %q", conf))

			continue
		}

		for _, ref := range p.Dependencies[conf] {
			err := validateRef(ref)
			if err != nil {
				merr = multierror.Append(merr, fmt.Errorf("dependencies.%s: %w", conf, err))
			}
		}
	}

	if p.Assemble.Timeout < 0 {
		merr = multierror.Append(merr, errors.New("assemble.timeout must not be negative"))
	}

	if merr != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, merr)
	}

	return nil
}

// RuntimeClasspath returns the dependency references on the runtime
// classpath: api, implementation and runtimeOnly, without duplicates.
// compileOnly dependencies are not included.
func (p *Project) RuntimeClasspath() []string {
	var refs []string

	for _, conf := range RuntimeConfigurations {
		for _, ref := range p.Dependencies[conf] {
			if !slices.Contains(refs, ref) {
				refs = append(refs, ref)
			}
		}
	}

	return refs
}

// Exclusions returns the parsed copyLib exclusion patterns.
func (p *Project) Exclusions() (classpath.Patterns, error) {
	ps, err := classpath.ParsePatterns(p.CopyLib.Exclude...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return ps, nil
}

// Destination returns the absolute export destination.
func (p *Project) Destination() string {
	return p.ResolvePath(p.CopyLib.Into)
}

// AssembleTimeout returns the assemble command timeout.
func (p *Project) AssembleTimeout() time.Duration {
	return time.Duration(p.Assemble.Timeout)
}

// ResolvePath expands a leading "~/" and resolves relative paths against
// [Project.Dir]. Empty paths stay empty.
func (p *Project) ResolvePath(path string) string {
	if path == "" {
		return ""
	}

	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, rest)
		}
	}

	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}

	return filepath.Join(p.dir, path)
}

// IsCatalogRef reports whether ref refers to a catalog entry rather than a
// literal coordinate.
func IsCatalogRef(ref string) bool {
	return !strings.Contains(ref, ":")
}

func validateRef(ref string) error {
	if ref == "" {
		return errors.New("empty dependency reference")
	}

	if IsCatalogRef(ref) {
		return nil
	}

	c, err := coordinate.Parse(ref)
	if err != nil {
		return err //nolint:wrapcheck // Already descriptive.
	}

	if c.Version == "" {
		return fmt.Errorf("%s: version required for literal coordinates", ref)
	}

	return nil
}
