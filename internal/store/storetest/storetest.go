// Package storetest holds the behavior every store.Store must share.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/circles/internal/model"
	"github.com/idilsaglam/circles/internal/store"
)

// Run exercises a fresh, empty store returned by open.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Run("CreateAssignsID", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		c, err := s.Create(ctx, model.NewDraft{Name: "Runners", Desc: "Morning jog", Avatar: "a.png"})
		require.NoError(t, err)
		assert.NotEmpty(t, c.ID)

		got, err := s.Get(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, c, got)
	})

	t.Run("NameIsUnique", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		_, err := s.Create(ctx, model.NewDraft{Name: "Runners", Desc: "a", Avatar: "a.png"})
		require.NoError(t, err)
		_, err = s.Create(ctx, model.NewDraft{Name: "Runners", Desc: "b", Avatar: "b.png"})
		require.ErrorIs(t, err, store.ErrConflict)

		other, err := s.Create(ctx, model.NewDraft{Name: "Readers", Desc: "c", Avatar: "c.png"})
		require.NoError(t, err)
		taken := "Runners"
		_, err = s.Update(ctx, model.ExistingPatch{ID: other.ID, Name: &taken})
		require.ErrorIs(t, err, store.ErrConflict)
	})

	t.Run("UpdateAppliesPatch", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		c, err := s.Create(ctx, model.NewDraft{Name: "Runners", Desc: "Morning jog", Avatar: "a.png"})
		require.NoError(t, err)

		name := "Night Runners"
		got, err := s.Update(ctx, model.ExistingPatch{ID: c.ID, Name: &name})
		require.NoError(t, err)
		assert.Equal(t, model.Circle{ID: c.ID, Name: "Night Runners", Desc: "Morning jog", Avatar: "a.png"}, got)

		_, err = s.Update(ctx, model.ExistingPatch{ID: "missing", Name: &name})
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("ListPaginatesAndFilters", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		for _, n := range []string{"Alpha", "Beta", "Gamma", "Delta", "Alpine"} {
			_, err := s.Create(ctx, model.NewDraft{Name: n, Desc: "desc " + n, Avatar: n + ".png"})
			require.NoError(t, err)
		}

		rows, total, err := s.List(ctx, model.PageParams{Current: 2, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		require.Len(t, rows, 2)
		assert.Equal(t, "Gamma", rows[0].Name)
		assert.Equal(t, "Delta", rows[1].Name)

		rows, total, err = s.List(ctx, model.PageParams{Current: 1, PageSize: 10, Name: "alp"})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, rows, 2)

		rows, total, err = s.List(ctx, model.PageParams{Current: 9, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		assert.Empty(t, rows)
	})

	t.Run("DeleteRemovesKnownIDs", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		var ids []string
		for _, n := range []string{"A", "B", "C"} {
			c, err := s.Create(ctx, model.NewDraft{Name: n, Desc: n, Avatar: n})
			require.NoError(t, err)
			ids = append(ids, c.ID)
		}

		n, err := s.Delete(ctx, []string{ids[0], ids[2], "missing"})
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		rows, total, err := s.List(ctx, model.PageParams{})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, ids[1], rows[0].ID)

		_, err = s.Get(ctx, ids[0])
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}
