package classpath_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/libexport/pkg/classpath"
)

func jarBytes(t *testing.T) []byte {
	t.Helper()

	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)

	w, err := zw.Create("META-INF/MANIFEST.MF")
	require.NoError(t, err)

	_, err = w.Write([]byte("Manifest-Version: 1.0\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func TestVerifyArchive(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		wantErr error
		content []byte
	}{
		"valid jar": {
			content: jarBytes(t),
		},
		"not a zip": {
			content: []byte("not a zip"),
			wantErr: classpath.ErrInvalidArchive,
		},
		"missing": {
			wantErr: classpath.ErrSourceMissing,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			base := afero.NewMemMapFs()
			if tc.content != nil {
				require.NoError(t, afero.WriteFile(base, "/repo/a.jar", tc.content, 0o644))
			}

			err := classpath.VerifyArchive(classpath.NewFileSystem(base), "/repo/a.jar")
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestExportVerifyArchivesMemFS(t *testing.T) {
	t.Parallel()

	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, "/repo/a.jar", jarBytes(t), 0o644))
	require.NoError(t, afero.WriteFile(base, "/repo/b.jar", []byte("broken"), 0o644))

	e := classpath.NewExporter(
		classpath.WithFileSystem(classpath.NewFileSystem(base)),
		classpath.WithVerifyArchives(true),
	)

	res, err := e.Export([]classpath.Artifact{artifact("g:a:1", "/repo/a.jar")}, nil, "/out")
	require.NoError(t, err)
	assert.Equal(t, []string{"/out/a.jar"}, res.Files())

	_, err = e.Export([]classpath.Artifact{artifact("g:b:1", "/repo/b.jar")}, nil, "/out")
	require.ErrorIs(t, err, classpath.ErrInvalidArchive)
	assert.Equal(t, []string{"/out/a.jar"}, memList(t, base, "/out"))
}

func TestExportVerifyArchivesOS(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	jar := filepath.Join(dir, "good.jar")
	writeFile(t, jar, string(jarBytes(t)))

	bad := filepath.Join(dir, "bad.jar")
	writeFile(t, bad, "not a zip")

	dest := t.TempDir()
	e := classpath.NewExporter(classpath.WithVerifyArchives(true))

	_, err := e.Export([]classpath.Artifact{artifact("g:good:1", jar)}, nil, dest)
	require.NoError(t, err)

	_, err = e.Export([]classpath.Artifact{artifact("g:bad:1", bad)}, nil, dest)
	require.ErrorIs(t, err, classpath.ErrInvalidArchive)
}
