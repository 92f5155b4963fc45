package version

import (
	"runtime/debug"
)

var (
	// Version is the release version, e.g. "v1.2.3".
	Version = ""
	// Revision is the VCS revision the binary was built from.
	Revision = ""
)

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		setDefaults()

		return
	}

	if Version == "" {
		Version = info.Main.Version
	}

	if Revision == "" {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				Revision = s.Value
			}
		}
	}

	setDefaults()
}

func setDefaults() {
	if Version == "" || Version == "(devel)" {
		Version = "dev"
	}

	if Revision == "" {
		Revision = "unknown"
	}
}

// String returns "<version>+<revision>".
func String() string {
	return Version + "+" + Revision
}
