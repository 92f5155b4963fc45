package classpath_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/libexport/pkg/classpath"
	"github.com/macropower/libexport/pkg/coordinate"
)

func artifact(coord, path string) classpath.Artifact {
	return classpath.NewArtifact(coordinate.MustParse(coord), path)
}

func memFS(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()

	base := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(base, path, []byte(content), 0o644))
	}

	return base
}

func memList(t *testing.T, base afero.Fs, dir string) []string {
	t.Helper()

	entries, err := afero.ReadDir(base, dir)
	require.NoError(t, err)

	var paths []string
	for _, e := range entries {
		paths = append(paths, filepath.Join(dir, e.Name()))
	}

	return paths
}

func TestExportMemFS(t *testing.T) {
	t.Parallel()

	const dest = "/build/libs/lib"

	tcs := map[string]struct {
		artifacts  []classpath.Artifact
		exclusions []classpath.Pattern
		wantFiles  []string
		wantCount  int
		wantExcl   int
	}{
		"empty input": {
			exclusions: []classpath.Pattern{"org.sandbox.*"},
		},
		"no exclusions": {
			artifacts: []classpath.Artifact{
				artifact("org.postgresql:postgresql:42.5.4", "/repo/postgresql-42.5.4.jar"),
				artifact("com.fasterxml.uuid:java-uuid-generator:4.1.0", "/repo/java-uuid-generator-4.1.0.jar"),
			},
			wantFiles: []string{dest + "/java-uuid-generator-4.1.0.jar", dest + "/postgresql-42.5.4.jar"},
			wantCount: 2,
		},
		"wildcard excludes own group only": {
			artifacts: []classpath.Artifact{
				artifact("org.sandbox.core:core:1.0", "/repo/core-1.0.jar"),
				artifact("org.sandboxed:other:1.0", "/repo/other-1.0.jar"),
				artifact("org.postgresql:postgresql:42.5.4", "/repo/postgresql-42.5.4.jar"),
			},
			exclusions: []classpath.Pattern{"org.sandbox.*"},
			wantFiles:  []string{dest + "/other-1.0.jar", dest + "/postgresql-42.5.4.jar"},
			wantCount:  2,
			wantExcl:   1,
		},
		"everything excluded": {
			artifacts: []classpath.Artifact{
				artifact("org.sandbox:a:1", "/repo/a-1.jar"),
				artifact("org.sandbox.b:b:1", "/repo/b-1.jar"),
			},
			exclusions: []classpath.Pattern{"org.sandbox", "org.sandbox.*"},
			wantExcl:   2,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			files := map[string]string{}
			for _, a := range tc.artifacts {
				files[a.FilePath] = a.Coordinate.String()
			}

			base := memFS(t, files)
			e := classpath.NewExporter(classpath.WithFileSystem(classpath.NewFileSystem(base)))

			res, err := e.Export(tc.artifacts, tc.exclusions, dest)
			require.NoError(t, err)

			exists, err := afero.DirExists(base, dest)
			require.NoError(t, err)
			assert.True(t, exists)
			assert.Len(t, res.Entries, tc.wantCount)
			assert.Len(t, res.Excluded, tc.wantExcl)
			assert.Equal(t, len(tc.artifacts)-tc.wantExcl, len(res.Entries))
			assert.Equal(t, tc.wantFiles, memList(t, base, dest))

			for _, e := range res.Entries {
				_, excluded := classpath.Patterns(tc.exclusions).Match(e.Artifact.Group)
				assert.False(t, excluded, e.Artifact.String())
			}
		})
	}
}

func TestExportNameCollision(t *testing.T) {
	t.Parallel()

	base := memFS(t, map[string]string{
		"/a/lib.jar": "from a",
		"/b/lib.jar": "from b",
	})

	// Given in reverse order; the greater coordinate must still win.
	artifacts := []classpath.Artifact{
		artifact("org.b:lib:1", "/b/lib.jar"),
		artifact("org.a:lib:1", "/a/lib.jar"),
	}

	res, err := classpath.NewExporter(classpath.WithFileSystem(classpath.NewFileSystem(base))).
		Export(artifacts, nil, "/out")
	require.NoError(t, err)

	assert.Equal(t, []string{"/out/lib.jar"}, memList(t, base, "/out"))
	assert.Equal(t, []string{"/out/lib.jar"}, res.Files())
	assert.Equal(t, []string{"lib.jar"}, res.Collisions)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, "org.b", res.Entries[1].Artifact.Group)

	got, err := afero.ReadFile(base, "/out/lib.jar")
	require.NoError(t, err)
	assert.Equal(t, "from b", string(got))
}

func TestExportErrors(t *testing.T) {
	t.Parallel()

	t.Run("unwritable destination fails before copying", func(t *testing.T) {
		t.Parallel()

		base := memFS(t, map[string]string{"/repo/a.jar": "a"})
		fsys := classpath.NewFileSystem(afero.NewReadOnlyFs(base))

		_, err := classpath.NewExporter(classpath.WithFileSystem(fsys)).
			Export([]classpath.Artifact{artifact("g:a:1", "/repo/a.jar")}, nil, "/readonly/libs/lib")
		require.ErrorIs(t, err, classpath.ErrIOFailure)

		exists, err := afero.Exists(base, "/readonly")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("missing source aborts remaining copies", func(t *testing.T) {
		t.Parallel()

		base := memFS(t, map[string]string{
			"/repo/a.jar": "a",
			"/repo/c.jar": "c",
		})

		artifacts := []classpath.Artifact{
			artifact("g:a:1", "/repo/a.jar"),
			artifact("g:b:1", "/repo/b.jar"),
			artifact("g:c:1", "/repo/c.jar"),
		}

		res, err := classpath.NewExporter(classpath.WithFileSystem(classpath.NewFileSystem(base))).
			Export(artifacts, nil, "/out")
		require.ErrorIs(t, err, classpath.ErrSourceMissing)
		require.NotErrorIs(t, err, classpath.ErrIOFailure)
		assert.Nil(t, res)

		// The copy made before the failure is not rolled back.
		assert.Equal(t, []string{"/out/a.jar"}, memList(t, base, "/out"))
	})

	t.Run("verification failure", func(t *testing.T) {
		t.Parallel()

		base := memFS(t, map[string]string{"/repo/a.jar": "a"})

		verify := func(path string) error {
			return fmt.Errorf("%w: %s", classpath.ErrInvalidArchive, path)
		}

		_, err := classpath.NewExporter(
			classpath.WithFileSystem(classpath.NewFileSystem(base)),
			classpath.WithVerifier(verify),
		).Export([]classpath.Artifact{artifact("g:a:1", "/repo/a.jar")}, nil, "/out")
		require.ErrorIs(t, err, classpath.ErrInvalidArchive)
		assert.Empty(t, memList(t, base, "/out"))
	})
}

func TestExportOSFileSystem(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeFile(t, filepath.Join(src, "a", "postgresql-42.5.4.jar"), "pg")
	writeFile(t, filepath.Join(src, "b", "core-1.0.jar"), "own")
	writeFile(t, filepath.Join(src, "c", "dup.jar"), "c")
	writeFile(t, filepath.Join(src, "d", "dup.jar"), "d")

	artifacts := []classpath.Artifact{
		artifact("org.postgresql:postgresql:42.5.4", filepath.Join(src, "a", "postgresql-42.5.4.jar")),
		artifact("org.sandbox.core:core:1.0", filepath.Join(src, "b", "core-1.0.jar")),
		artifact("org.d:dup:1", filepath.Join(src, "d", "dup.jar")),
		artifact("org.c:dup:1", filepath.Join(src, "c", "dup.jar")),
	}
	exclusions := []classpath.Pattern{"org.sandbox.*"}

	dest := filepath.Join(t.TempDir(), "build", "libs", "lib")

	t.Run("copies and is idempotent", func(t *testing.T) {
		first, err := classpath.Export(artifacts, exclusions, dest)
		require.NoError(t, err)

		second, err := classpath.Export(artifacts, exclusions, dest)
		require.NoError(t, err)

		assert.Equal(t, first.Files(), second.Files())
		assert.Equal(t, []string{"dup.jar", "postgresql-42.5.4.jar"}, listDir(t, dest))
		assert.Equal(t, "d", readFile(t, filepath.Join(dest, "dup.jar")))
		assert.Equal(t, "pg", readFile(t, filepath.Join(dest, "postgresql-42.5.4.jar")))
	})

	t.Run("empty input creates destination", func(t *testing.T) {
		t.Parallel()

		emptyDest := filepath.Join(t.TempDir(), "new", "lib")

		res, err := classpath.Export(nil, exclusions, emptyDest)
		require.NoError(t, err)
		assert.Empty(t, res.Entries)
		assert.Empty(t, listDir(t, emptyDest))
	})

	t.Run("parent is a file", func(t *testing.T) {
		t.Parallel()

		parent := filepath.Join(t.TempDir(), "file")
		writeFile(t, parent, "not a dir")

		_, err := classpath.Export(artifacts, exclusions, filepath.Join(parent, "lib"))
		require.ErrorIs(t, err, classpath.ErrIOFailure)
	})

	t.Run("existing destination is not writable", func(t *testing.T) {
		t.Parallel()

		if os.Geteuid() == 0 {
			t.Skip("root can write to read-only directories")
		}

		readonly := filepath.Join(t.TempDir(), "lib")
		require.NoError(t, os.Mkdir(readonly, 0o500))
		t.Cleanup(func() {
			require.NoError(t, os.Chmod(readonly, 0o750)) //nolint:gosec // Restore for cleanup.
		})

		_, err := classpath.Export(artifacts, exclusions, readonly)
		require.ErrorIs(t, err, classpath.ErrIOFailure)
		assert.Empty(t, listDir(t, readonly))
	})

	t.Run("missing source", func(t *testing.T) {
		t.Parallel()

		missing := []classpath.Artifact{artifact("g:m:1", filepath.Join(src, "missing.jar"))}

		_, err := classpath.Export(missing, nil, t.TempDir())
		require.ErrorIs(t, err, classpath.ErrSourceMissing)
	})

	t.Run("directory source", func(t *testing.T) {
		t.Parallel()

		dir := []classpath.Artifact{artifact("g:m:1", filepath.Join(src, "a"))}

		_, err := classpath.Export(dir, nil, t.TempDir())
		require.ErrorIs(t, err, classpath.ErrIOFailure)
	})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(b)
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := []string{}
	for _, e := range entries {
		names = append(names, e.Name())
	}

	return names
}
