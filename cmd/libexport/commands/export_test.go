package commands_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/libexport/cmd/libexport/commands"
	"github.com/macropower/libexport/pkg/classpath"
	"github.com/macropower/libexport/pkg/exporterrors"
	"github.com/macropower/libexport/pkg/project"
)

func lines(s string) []string {
	return strings.Split(strings.TrimSpace(s), "\n")
}

func TestExportCmd(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		args  []string
		extra string
		want  []string
	}{
		"project defaults": {
			want: []string{"java-uuid-generator-4.1.0.jar", "other-2.0.0.jar"},
		},
		"exclude flag overrides project": {
			args: []string{"-e", "org.sandbox*"},
			want: []string{"java-uuid-generator-4.1.0.jar"},
		},
		"exclude from project": {
			extra: "copyLib:\n  exclude: [com.fasterxml.uuid]\n",
			want:  []string{"core-1.0.0.jar", "other-2.0.0.jar", "util-1.0.0.jar"},
		},
		"custom destination": {
			extra: "copyLib:\n  into: dist/lib\n",
			want:  []string{"java-uuid-generator-4.1.0.jar", "other-2.0.0.jar"},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := newSandbox(t, tc.extra)
			config := filepath.Join(dir, project.FileName)

			stdout, _, err := execute(t, append([]string{"export", "--config", config}, tc.args...)...)
			require.NoError(t, err)

			p, err := project.Load(config)
			require.NoError(t, err)

			want := make([]string, 0, len(tc.want))
			for _, f := range tc.want {
				want = append(want, filepath.Join(p.Destination(), f))
			}

			assert.Equal(t, want, lines(stdout))

			entries, err := os.ReadDir(p.Destination())
			require.NoError(t, err)
			assert.Len(t, entries, len(tc.want))
		})
	}
}

func TestExportCmdWithoutProject(t *testing.T) {
	t.Parallel()

	dir := newSandbox(t, "")
	dest := filepath.Join(t.TempDir(), "lib")

	stdout, _, err := execute(t,
		"export",
		"--manifest", filepath.Join(dir, "classpath.yaml"),
		"--into", dest,
		"--exclude", "org.sandbox.util",
	)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dest, "core-1.0.0.jar"),
		filepath.Join(dest, "java-uuid-generator-4.1.0.jar"),
		filepath.Join(dest, "other-2.0.0.jar"),
	}, lines(stdout))

	data, err := os.ReadFile(filepath.Join(dest, "core-1.0.0.jar"))
	require.NoError(t, err)
	assert.Equal(t, "core", string(data))
}

func TestExportCmdErrors(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		wantErr  error
		args     func(dir string) []string
		setup    func(t *testing.T, dir string)
		wantCode int
	}{
		"invalid exclude flag": {
			args: func(dir string) []string {
				return []string{"--config", filepath.Join(dir, project.FileName), "-e", "*"}
			},
			wantErr:  classpath.ErrInvalidPattern,
			wantCode: exporterrors.ExitConfigError,
		},
		"missing config": {
			args: func(dir string) []string {
				return []string{"--config", filepath.Join(dir, "nope.yaml")}
			},
			wantErr:  project.ErrInvalidConfig,
			wantCode: exporterrors.ExitConfigError,
		},
		"missing source file": {
			args: func(dir string) []string {
				return []string{"--config", filepath.Join(dir, project.FileName)}
			},
			setup: func(t *testing.T, dir string) {
				t.Helper()
				require.NoError(t, os.Remove(filepath.Join(dir, "libs/other-2.0.0.jar")))
			},
			wantErr:  classpath.ErrSourceMissing,
			wantCode: exporterrors.ExitFailure,
		},
		"unwritable destination": {
			args: func(dir string) []string {
				return []string{"--config", filepath.Join(dir, project.FileName)}
			},
			setup: func(t *testing.T, dir string) {
				t.Helper()
				require.NoError(t, os.WriteFile(filepath.Join(dir, "build"), nil, 0o600))
			},
			wantErr:  classpath.ErrIOFailure,
			wantCode: exporterrors.ExitFailure,
		},
		"invalid archive": {
			args: func(dir string) []string {
				return []string{"--config", filepath.Join(dir, project.FileName), "--verify-archives"}
			},
			wantErr:  classpath.ErrInvalidArchive,
			wantCode: exporterrors.ExitFailure,
		},
		"positional argument": {
			args: func(dir string) []string {
				return []string{"--config", filepath.Join(dir, project.FileName), "extra"}
			},
			wantErr:  exporterrors.ErrInvalidArguments,
			wantCode: exporterrors.ExitConfigError,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := newSandbox(t, "")
			if tc.setup != nil {
				tc.setup(t, dir)
			}

			_, _, err := execute(t, append([]string{"export"}, tc.args(dir)...)...)
			require.Error(t, err)

			require.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, tc.wantCode, exporterrors.ExitCode(err))
		})
	}
}

func TestExportArgPointers(t *testing.T) {
	t.Parallel()

	root := commands.NewRootArgs()
	args := commands.NewExportArgs(root)

	assert.Empty(t, args.GetManifest())
	assert.Empty(t, args.GetInto())
	assert.Empty(t, args.GetExclude())
	assert.False(t, args.GetVerifyArchives())
}
