package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/macropower/libexport/pkg/project"
)

// NewConfigCmd returns the config command.
func NewConfigCmd(arg *RootArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the project descriptor",
	}

	cmd.AddCommand(&cobra.Command{
		Use:          "schema",
		Short:        "Print the JSON schema for " + configFileName,
		SilenceUsage: true,
		Args:         noArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			s, err := project.Schema()
			if err != nil {
				return fmt.Errorf("generate schema: %w", err)
			}

			_, err = fmt.Fprintln(cc.OutOrStdout(), string(s))
			if err != nil {
				return fmt.Errorf("write output: %w", err)
			}

			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:          "show",
		Short:        "Print the project descriptor with defaults applied",
		SilenceUsage: true,
		Args:         noArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			p, err := arg.LoadProject()
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cc.OutOrStdout())
			enc.SetIndent(2)

			err = enc.Encode(p)
			if err != nil {
				return fmt.Errorf("encode project: %w", err)
			}

			err = enc.Close()
			if err != nil {
				return fmt.Errorf("encode project: %w", err)
			}

			return nil
		},
	})

	return cmd
}
