package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/macropower/libexport/pkg/exec"
	"github.com/macropower/libexport/pkg/lifecycle"
	"github.com/macropower/libexport/pkg/project"
)

// Task names registered by [NewTaskGraph].
const (
	AssembleTask = "assemble"
	CopyLibTask  = "copyLib"
)

const assembleDesc = `Run the project's assemble action, then export the runtime classpath.

The export is registered as a finalizer of assemble, so it only runs when
assemble succeeds. A project without an assemble command only exports.
`

// NewAssembleCmd returns the assemble command.
func NewAssembleCmd(arg *RootArgs) *cobra.Command {
	return &cobra.Command{
		Use:          "assemble",
		Short:        "Assemble the project and export its classpath",
		Long:         assembleDesc,
		SilenceUsage: true,
		Args:         noArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			p, err := arg.LoadProject()
			if err != nil {
				return err
			}

			g, err := NewTaskGraph(p, cc.OutOrStdout())
			if err != nil {
				return err
			}

			return g.Run(cc.Context(), AssembleTask) //nolint:wrapcheck // Already wrapped with the task name.
		},
	}
}

// NewTaskGraph returns the lifecycle graph for p, with [CopyLibTask]
// finalizing [AssembleTask]. Files copied by the export are printed to w.
func NewTaskGraph(p *project.Project, w io.Writer) (*lifecycle.Graph, error) {
	g := lifecycle.NewGraph()

	err := g.Register(AssembleTask, func(ctx context.Context) error {
		return runAssemble(ctx, p)
	})
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", AssembleTask, err)
	}

	err = g.Register(CopyLibTask, func(_ context.Context) error {
		s, err := exportSettingsFromProject(p)
		if err != nil {
			return err
		}

		return runExport(w, s)
	})
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", CopyLibTask, err)
	}

	err = g.FinalizedBy(AssembleTask, CopyLibTask)
	if err != nil {
		return nil, fmt.Errorf("finalize %s: %w", AssembleTask, err)
	}

	return g, nil
}

func runAssemble(ctx context.Context, p *project.Project) error {
	if len(p.Assemble.Command) == 0 {
		slog.Debug("no assemble command configured")

		return nil
	}

	opts := exec.DefaultCmdOpts
	opts.Timeout = p.AssembleTimeout()
	opts.CaptureStderr = true

	out, err := exec.Run(ctx, p.Dir(), p.Assemble.Command, opts)
	if err != nil {
		return fmt.Errorf("run assemble command: %w", err)
	}

	slog.Debug("assemble command finished", slog.String("output", out))

	return nil
}
