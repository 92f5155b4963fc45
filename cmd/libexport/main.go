package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/macropower/libexport/cmd/libexport/commands"
	"github.com/macropower/libexport/pkg/exporterrors"
	"github.com/macropower/libexport/pkg/log"
)

func init() {
	log.SetLogFormat("text")
	log.SetLogLevel("warn")
}

const (
	cmdName = "libexport"

	shortDesc = "Export a project's runtime classpath."
	longDesc  = `libexport copies the resolved runtime dependencies of a project into
<buildDir>/libs/lib, leaving out artifacts whose group matches an exclusion
pattern (by default the project's own group).

The export runs on its own with "libexport export", or as the finalizer of the
assemble action with "libexport assemble".
`
)

func main() {
	cmd := commands.NewRootCmd(cmdName, shortDesc, longDesc)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, strings.TrimLeft(err.Error(), "\n"))
		os.Exit(exporterrors.ExitCode(err))
	}
}
