package exporterrors

import (
	"errors"

	"github.com/macropower/libexport/pkg/catalog"
	"github.com/macropower/libexport/pkg/classpath"
	"github.com/macropower/libexport/pkg/coordinate"
	"github.com/macropower/libexport/pkg/keybench"
	"github.com/macropower/libexport/pkg/manifest"
	"github.com/macropower/libexport/pkg/project"
)

// Exit codes returned by the libexport CLI.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitFailure indicates a runtime failure (I/O, missing source file,
	// failed assemble action, etc.).
	ExitFailure = 1

	// ExitConfigError indicates a configuration error (invalid descriptor,
	// manifest, catalog, pattern or argument).
	ExitConfigError = 2
)

// ErrInvalidArguments indicates invalid command-line arguments.
var ErrInvalidArguments = errors.New("invalid arguments")

var configErrors = []error{
	ErrInvalidArguments,
	project.ErrInvalidConfig,
	manifest.ErrInvalidManifest,
	catalog.ErrInvalidCatalog,
	catalog.ErrUnknownLibrary,
	catalog.ErrUnknownBundle,
	catalog.ErrUnknownVersion,
	classpath.ErrInvalidPattern,
	coordinate.ErrInvalidCoordinate,
	keybench.ErrUnknownKeyType,
	keybench.ErrInvalidRowCount,
}

// IsConfigError reports whether err was caused by configuration.
func IsConfigError(err error) bool {
	for _, target := range configErrors {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

// ExitCode returns the exit code for err.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case IsConfigError(err):
		return ExitConfigError
	default:
		return ExitFailure
	}
}
