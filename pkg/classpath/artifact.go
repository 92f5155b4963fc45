package classpath

import (
	"cmp"
	"path/filepath"
	"slices"
	"strings"

	"github.com/macropower/libexport/pkg/coordinate"
)

// Artifact is a resolved dependency file together with its coordinate.
type Artifact struct {
	coordinate.Coordinate

	// FilePath is the path to the resolved file.
	FilePath string
}

// NewArtifact creates a new [Artifact].
func NewArtifact(c coordinate.Coordinate, filePath string) Artifact {
	return Artifact{Coordinate: c, FilePath: filePath}
}

// FileName returns the base name the artifact is exported under.
func (a Artifact) FileName() string {
	return filepath.Base(a.FilePath)
}

func (a Artifact) String() string {
	return a.Coordinate.String() + " (" + a.FilePath + ")"
}

// Compare orders artifacts by coordinate, then by file path.
func Compare(a, b Artifact) int {
	return cmp.Or(
		coordinate.Compare(a.Coordinate, b.Coordinate),
		strings.Compare(a.FilePath, b.FilePath),
	)
}

// Sort sorts artifacts in place using [Compare].
func Sort(artifacts []Artifact) {
	slices.SortStableFunc(artifacts, Compare)
}
