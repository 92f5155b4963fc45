package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/macropower/libexport/pkg/classpath"
	"github.com/macropower/libexport/pkg/manifest"
)

const classpathDesc = `Print the resolved runtime classpath as a manifest.

Artifacts excluded by the project's patterns are left out unless --all is
set. The output can be passed back to "libexport export --manifest".
`

// NewClasspathCmd returns the classpath command.
func NewClasspathCmd(arg *RootArgs) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:          "classpath",
		Short:        "Print the resolved runtime classpath",
		Long:         classpathDesc,
		SilenceUsage: true,
		Args:         noArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			p, err := arg.LoadProject()
			if err != nil {
				return err
			}

			artifacts, err := p.Artifacts()
			if err != nil {
				return err
			}

			if all {
				classpath.Sort(artifacts)
			} else {
				exclusions, err := p.Exclusions()
				if err != nil {
					return err
				}

				artifacts, _ = classpath.Filter(artifacts, exclusions)
			}

			data, err := manifest.Marshal(artifacts)
			if err != nil {
				return err
			}

			_, err = cc.OutOrStdout().Write(data)
			if err != nil {
				return fmt.Errorf("write output: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include excluded artifacts")

	return cmd
}
