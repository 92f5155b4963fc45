package mavenrepo_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/libexport/pkg/coordinate"
	"github.com/macropower/libexport/pkg/mavenrepo"
)

func TestRepository(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	repo, err := mavenrepo.New(root)
	require.NoError(t, err)

	pg := coordinate.MustParse("org.postgresql:postgresql:42.5.4")
	want := filepath.Join(root, "org", "postgresql", "postgresql", "42.5.4", "postgresql-42.5.4.jar")

	t.Run("path", func(t *testing.T) {
		t.Parallel()

		got, err := repo.Path(pg)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		_, err = repo.Path(coordinate.MustParse("org.postgresql:postgresql"))
		require.ErrorIs(t, err, mavenrepo.ErrVersionRequired)
	})

	t.Run("path stays inside root", func(t *testing.T) {
		t.Parallel()

		for _, c := range []coordinate.Coordinate{
			{Group: "g", Module: "../../x", Version: "1"},
			{Group: "g", Module: "m", Version: ".."},
			{Group: "../g", Module: "m", Version: "1"},
		} {
			_, err := repo.Path(c)
			require.ErrorIs(t, err, coordinate.ErrInvalidCoordinate, c.String())
		}
	})

	t.Run("resolve", func(t *testing.T) {
		t.Parallel()

		got, err := repo.Resolve(pg)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, pg, got[0].Coordinate)
		assert.Equal(t, want, got[0].FilePath)
	})

	t.Run("coordinate from path", func(t *testing.T) {
		t.Parallel()

		got, err := repo.CoordinateFromPath(want)
		require.NoError(t, err)
		assert.Equal(t, pg, got)

		_, err = repo.CoordinateFromPath(filepath.Join(root, "..", "elsewhere.jar"))
		require.ErrorIs(t, err, mavenrepo.ErrNotInRepository)

		_, err = repo.CoordinateFromPath(filepath.Join(root, "a", "b.jar"))
		require.ErrorIs(t, err, mavenrepo.ErrNotInRepository)

		_, err = repo.CoordinateFromPath(filepath.Join(root, "g", "m", "1", "other-1.jar"))
		require.ErrorIs(t, err, mavenrepo.ErrNotInRepository)
	})
}

func TestDefaultRoot(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	root, err := mavenrepo.DefaultRoot()
	require.NoError(t, err)
	assert.Equal(t, "/home/tester/.m2/repository", root)
}
