package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/macropower/libexport/pkg/classpath"
	"github.com/macropower/libexport/pkg/exporterrors"
	"github.com/macropower/libexport/pkg/manifest"
	"github.com/macropower/libexport/pkg/mavenrepo"
	"github.com/macropower/libexport/pkg/project"
)

const (
	exportDesc = `Copy the runtime classpath into the destination directory.

Artifacts whose group matches an exclusion pattern are skipped. A pattern
ending in "*" matches every group starting with the text before the "*";
any other pattern matches one group exactly.

Settings come from the project descriptor. Flags override them, and with
--manifest and --into no descriptor is needed.
`
	exportExample = `  # Export using the nearest libexport.yaml
  libexport export

  # Export a resolved manifest, skipping two group families
  libexport export -m classpath.yaml -e 'org.sandbox*' -e com.acme.internal -o build/libs/lib
`
)

// exportSettings is everything needed to run one export.
type exportSettings struct {
	artifacts  []classpath.Artifact
	exclusions classpath.Patterns
	into       string
	verify     bool
}

// NewExportCmd returns the export command.
func NewExportCmd(arg *RootArgs) *cobra.Command {
	args := NewExportArgs(arg)

	cmd := &cobra.Command{
		Use:          "export",
		Short:        "Copy the runtime classpath into the build output",
		Long:         exportDesc,
		Example:      exportExample,
		SilenceUsage: true,
		Args:         noArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			s, err := exportSettingsFromArgs(cc, args)
			if err != nil {
				return err
			}

			return runExport(cc.OutOrStdout(), s)
		},
	}

	cmd.Flags().StringVarP(args.manifest, "manifest", "m", "", "Read artifacts from a classpath manifest")
	must(cmd.MarkFlagFilename("manifest", "yaml", "yml", "json"))
	cmd.Flags().StringVarP(args.into, "into", "o", "", "Destination directory")
	must(cmd.MarkFlagDirname("into"))
	cmd.Flags().StringArrayVarP(args.exclude, "exclude", "e", nil, "Group exclusion pattern (repeatable)")
	cmd.Flags().BoolVar(args.verifyArchives, "verify-archives", false, "Check each artifact is a readable jar before copying")

	return cmd
}

func exportSettingsFromArgs(cc *cobra.Command, args *ExportArgs) (*exportSettings, error) {
	var (
		p   *project.Project
		err error
	)

	// A manifest plus a destination is a complete export on its own.
	if args.GetConfig() != "" || args.GetManifest() == "" || args.GetInto() == "" {
		p, err = args.LoadProject()
		if err != nil {
			return nil, err
		}
	}

	s := &exportSettings{}

	if p != nil {
		s.exclusions, err = p.Exclusions()
		if err != nil {
			return nil, err
		}

		s.into = p.Destination()
		s.verify = p.CopyLib.VerifyArchives
	}

	switch {
	case args.GetManifest() != "":
		s.artifacts, err = readManifest(p, args.GetManifest())
		if err != nil {
			return nil, fmt.Errorf("read manifest: %w", err)
		}
	case p != nil:
		s.artifacts, err = p.Artifacts()
		if err != nil {
			return nil, err
		}
	}

	if cc.Flags().Changed("exclude") {
		s.exclusions, err = classpath.ParsePatterns(args.GetExclude()...)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", exporterrors.ErrInvalidArguments, err)
		}
	}

	if args.GetInto() != "" {
		s.into = args.GetInto()
	}

	if s.into == "" {
		return nil, fmt.Errorf("%w: destination directory is required", exporterrors.ErrInvalidArguments)
	}

	s.verify = s.verify || args.GetVerifyArchives()

	return s, nil
}

// readManifest reads the manifest at path. File-only entries are located in
// the project's repository, or the default local repository without one.
func readManifest(p *project.Project, path string) ([]classpath.Artifact, error) {
	var (
		repo *mavenrepo.Repository
		err  error
	)

	if p != nil {
		repo, err = p.Repo()
	} else {
		repo, err = mavenrepo.New("")
	}

	if err != nil {
		return nil, err
	}

	return manifest.Read(path, manifest.WithLocator(repo))
}

func exportSettingsFromProject(p *project.Project) (*exportSettings, error) {
	exclusions, err := p.Exclusions()
	if err != nil {
		return nil, err
	}

	artifacts, err := p.Artifacts()
	if err != nil {
		return nil, err
	}

	return &exportSettings{
		artifacts:  artifacts,
		exclusions: exclusions,
		into:       p.Destination(),
		verify:     p.CopyLib.VerifyArchives,
	}, nil
}

// runExport copies the artifacts and prints each destination file to w.
func runExport(w io.Writer, s *exportSettings) error {
	exporter := classpath.NewExporter(
		classpath.WithVerifyArchives(s.verify),
		classpath.WithLogger(slog.Default()),
	)

	res, err := exporter.Export(s.artifacts, s.exclusions, s.into)
	if err != nil {
		return fmt.Errorf("export classpath: %w", err)
	}

	for _, f := range res.Files() {
		_, err := fmt.Fprintln(w, f)
		if err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}

	return nil
}
