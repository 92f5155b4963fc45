package commands_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/libexport/pkg/manifest"
	"github.com/macropower/libexport/pkg/project"
)

func TestClasspathCmd(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		args []string
		want []string
	}{
		"excluded artifacts are omitted": {
			want: []string{"java-uuid-generator-4.1.0.jar", "other-2.0.0.jar"},
		},
		"all artifacts": {
			args: []string{"--all"},
			want: []string{
				"java-uuid-generator-4.1.0.jar",
				"core-1.0.0.jar",
				"util-1.0.0.jar",
				"other-2.0.0.jar",
			},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := newSandbox(t, "")
			config := filepath.Join(dir, project.FileName)

			stdout, _, err := execute(t, append([]string{"classpath", "--config", config}, tc.args...)...)
			require.NoError(t, err)

			artifacts, err := manifest.Parse([]byte(stdout), dir)
			require.NoError(t, err)

			got := make([]string, 0, len(artifacts))
			for _, a := range artifacts {
				assert.True(t, filepath.IsAbs(a.FilePath))
				got = append(got, a.FileName())
			}

			assert.ElementsMatch(t, tc.want, got)
		})
	}
}

func TestClasspathCmdRoundTrip(t *testing.T) {
	t.Parallel()

	dir := newSandbox(t, "")
	config := filepath.Join(dir, project.FileName)

	stdout, _, err := execute(t, "classpath", "--config", config)
	require.NoError(t, err)

	resolved := filepath.Join(t.TempDir(), "resolved.yaml")
	require.NoError(t, os.WriteFile(resolved, []byte(stdout), 0o600))

	dest := filepath.Join(t.TempDir(), "lib")
	out, _, err := execute(t, "export", "--manifest", resolved, "--into", dest, "--exclude", "none.such")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dest, "java-uuid-generator-4.1.0.jar"),
		filepath.Join(dest, "other-2.0.0.jar"),
	}, lines(out))
}
