package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/macropower/libexport/pkg/catalog"
)

// NewCatalogCmd returns the catalog command.
func NewCatalogCmd(arg *RootArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the version catalog",
	}

	cmd.AddCommand(newCatalogListCmd(arg))

	return cmd
}

func newCatalogListCmd(arg *RootArgs) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:          "list",
		Short:        "List catalog libraries and bundles",
		SilenceUsage: true,
		Args:         noArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			c, err := loadCatalog(arg, path)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cc.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, lib := range c.Libraries() {
				fmt.Fprintf(tw, "%s%s\t%s\n", catalog.Prefix, lib.Accessor, lib.Coordinate)
			}

			for _, name := range c.Bundles() {
				libs, err := c.Bundle(name)
				if err != nil {
					return fmt.Errorf("bundle %s: %w", name, err)
				}

				fmt.Fprintf(tw, "%sbundles.%s\t%d libraries\n", catalog.Prefix, name, len(libs))
			}

			err = tw.Flush()
			if err != nil {
				return fmt.Errorf("write output: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&path, "catalog", "", "Path to the version catalog (default: from the project)")
	must(cmd.MarkFlagFilename("catalog", "toml"))

	return cmd
}

func loadCatalog(arg *RootArgs, path string) (*catalog.Catalog, error) {
	if path != "" {
		c, err := catalog.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}

		return c, nil
	}

	p, err := arg.LoadProject()
	if err != nil {
		return nil, err
	}

	c, err := p.LoadCatalog()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	return c, nil
}
