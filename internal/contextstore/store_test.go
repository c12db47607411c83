package contextstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "contexts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_SaveGetList(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	saved, err := s.Save(ctx, Context{
		Name:           " mobile-basic ",
		Source:         "https://example.com/tpl",
		Labels:         []string{"mobile", "level::basic"},
		IncludeAnchors: true,
		Language:       "fr",
	})
	require.NoError(t, err)
	assert.Equal(t, "mobile-basic", saved.Name)
	assert.False(t, saved.UpdatedAt.IsZero())

	got, err := s.Get(ctx, "mobile-basic")
	require.NoError(t, err)
	assert.Equal(t, []string{"mobile", "level::basic"}, got.Labels)
	assert.Equal(t, []string{}, got.DropTitles)
	assert.True(t, got.IncludeAnchors)
	assert.Equal(t, "fr", got.Language)
	assert.True(t, saved.UpdatedAt.Equal(got.UpdatedAt))

	_, err = s.Save(ctx, Context{Name: "a-first", Source: "./tpl", DropTitles: []string{"Appendix"}})
	require.NoError(t, err)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a-first", list[0].Name)
	assert.Equal(t, []string{"Appendix"}, list[0].DropTitles)
}

func TestStore_SaveReplaces(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	_, err := s.Save(ctx, Context{Name: "c", Source: "one", Labels: []string{"a"}})
	require.NoError(t, err)
	_, err = s.Save(ctx, Context{Name: "c", Source: "two"})
	require.NoError(t, err)

	got, err := s.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "two", got.Source)
	assert.Empty(t, got.Labels)
}

func TestStore_NotFound(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "missing"), ErrNotFound)

	_, err = s.Save(ctx, Context{Name: "gone", Source: "x"})
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "gone"))
	_, err = s.Get(ctx, "gone")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Validation(t *testing.T) {
	s := openTemp(t)
	_, err := s.Save(context.Background(), Context{Name: "  ", Source: "x"})
	assert.Error(t, err)
	_, err = s.Save(context.Background(), Context{Name: "n"})
	assert.Error(t, err)
}
