package commands_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/libexport/cmd/libexport/commands"
	"github.com/macropower/libexport/pkg/exec"
	"github.com/macropower/libexport/pkg/exporterrors"
	"github.com/macropower/libexport/pkg/lifecycle"
	"github.com/macropower/libexport/pkg/project"
)

func TestAssembleCmd(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		wantErr    error
		extra      string
		wantCode   int
		wantLibs   bool
		wantOutput bool
	}{
		"no assemble command": {
			wantLibs: true,
		},
		"successful command": {
			extra:      "assemble:\n  command: [sh, -c, \"mkdir -p build && echo app > build/app.jar\"]\n",
			wantLibs:   true,
			wantOutput: true,
		},
		"failed command": {
			extra:    "assemble:\n  command: [sh, -c, \"exit 3\"]\n",
			wantErr:  lifecycle.ErrTaskFailed,
			wantCode: exporterrors.ExitFailure,
		},
		"timed out command": {
			extra:    "assemble:\n  command: [sleep, \"5\"]\n  timeout: 100ms\n",
			wantErr:  lifecycle.ErrTaskFailed,
			wantCode: exporterrors.ExitFailure,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := newSandbox(t, tc.extra)
			lib := filepath.Join(dir, "build", "libs", "lib")

			stdout, _, err := execute(t, "assemble", "--config", filepath.Join(dir, project.FileName))

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Equal(t, tc.wantCode, exporterrors.ExitCode(err))
				assert.NoDirExists(t, lib, "copyLib must not run after a failed assemble")

				return
			}

			require.NoError(t, err)
			assert.Equal(t, []string{
				filepath.Join(lib, "java-uuid-generator-4.1.0.jar"),
				filepath.Join(lib, "other-2.0.0.jar"),
			}, lines(stdout))

			if tc.wantOutput {
				assert.FileExists(t, filepath.Join(dir, "build", "app.jar"))
			}
		})
	}
}

func TestAssembleCmdCommandError(t *testing.T) {
	t.Parallel()

	dir := newSandbox(t, "assemble:\n  command: [sh, -c, \"echo boom >&2; exit 1\"]\n")

	_, _, err := execute(t, "assemble", "--config", filepath.Join(dir, project.FileName))
	require.Error(t, err)

	var cmdErr *exec.CmdError
	require.ErrorAs(t, err, &cmdErr)
	assert.Contains(t, cmdErr.Stderr, "boom")
}

func TestAssembleCmdInvalidExclude(t *testing.T) {
	t.Parallel()

	dir := newSandbox(t, "copyLib:\n  exclude: [\"org.*.internal\"]\n")

	_, _, err := execute(t, "assemble", "--config", filepath.Join(dir, project.FileName))
	require.ErrorIs(t, err, project.ErrInvalidConfig)
	assert.Equal(t, exporterrors.ExitConfigError, exporterrors.ExitCode(err))
}

func TestNewTaskGraph(t *testing.T) {
	t.Parallel()

	dir := newSandbox(t, "")

	p, err := project.Load(filepath.Join(dir, project.FileName))
	require.NoError(t, err)

	g, err := commands.NewTaskGraph(p, &strings.Builder{})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{commands.AssembleTask, commands.CopyLibTask}, g.Tasks())
	assert.Equal(t, []string{commands.CopyLibTask}, g.Finalizers(commands.AssembleTask))
	assert.Empty(t, g.Finalizers(commands.CopyLibTask))

	// Running copyLib directly does not run assemble.
	require.NoError(t, g.Run(t.Context(), commands.CopyLibTask))
	assert.DirExists(t, p.Destination())
}
