package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/macropower/libexport/pkg/exporterrors"
	"github.com/macropower/libexport/pkg/log"
	"github.com/macropower/libexport/pkg/version"
)

var ErrLogHandlerFailed = errors.New("log handler failed")

func NewRootCmd(name, shortDesc, longDesc string) *cobra.Command {
	args := NewRootArgs()

	cmd := &cobra.Command{
		Use:           name,
		Short:         shortDesc,
		Long:          longDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.String(),
	}

	args.AddFlags(cmd.PersistentFlags())

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", exporterrors.ErrInvalidArguments, err)
	})

	cmd.PersistentPreRunE = func(cc *cobra.Command, _ []string) error {
		err := args.Profiles().Start()
		if err != nil {
			return err
		}

		h, err := log.CreateHandlerWithStrings(
			cc.ErrOrStderr(),
			args.GetLogLevel(),
			args.GetLogFormat(),
		)
		if err != nil {
			return fmt.Errorf("%w: %w: %w", exporterrors.ErrInvalidArguments, ErrLogHandlerFailed, err)
		}

		slog.SetDefault(slog.New(h))

		slog.Debug("ready to go")

		return nil
	}

	cmd.PersistentPostRunE = func(_ *cobra.Command, _ []string) error {
		slog.Debug("shutting down")

		return args.Profiles().Stop()
	}

	cmd.AddCommand(NewExportCmd(args))
	cmd.AddCommand(NewAssembleCmd(args))
	cmd.AddCommand(NewClasspathCmd(args))
	cmd.AddCommand(NewCatalogCmd(args))
	cmd.AddCommand(NewConfigCmd(args))
	cmd.AddCommand(NewKeybenchCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func noArgs(cc *cobra.Command, args []string) error {
	err := cobra.NoArgs(cc, args)
	if err != nil {
		return fmt.Errorf("%w: %w", exporterrors.ErrInvalidArguments, err)
	}

	return nil
}
