package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ppiviz/internal/domain"
	"ppiviz/internal/repository"
)

var _ repository.Repository = (*Repository)(nil)

// newTestRepo creates an in-memory SQLite repository for testing
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}

func TestNullToBool(t *testing.T) {
	tests := []struct {
		name     string
		input    sql.NullInt64
		expected bool
	}{
		{"null", sql.NullInt64{}, false},
		{"zero", sql.NullInt64{Int64: 0, Valid: true}, false},
		{"one", sql.NullInt64{Int64: 1, Valid: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, nullToBool(tt.input))
		})
	}
}

func TestInteractionCache(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	body := []byte("a\tb\tTP53\tMDM2\t9606\t0.999\t0\t0\t0\t0\t0.99\t0\t0\n")

	t.Run("miss on empty cache", func(t *testing.T) {
		_, ok, err := repo.GetInteractions(ctx, "TP53", 9606, time.Hour)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("hit after put", func(t *testing.T) {
		require.NoError(t, repo.PutInteractions(ctx, "TP53", 9606, body))
		got, ok, err := repo.GetInteractions(ctx, "TP53", 9606, time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, body, got)
	})

	t.Run("species is part of the key", func(t *testing.T) {
		_, ok, err := repo.GetInteractions(ctx, "TP53", 10090, time.Hour)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("expired entries are ignored", func(t *testing.T) {
		now = now.Add(2 * time.Hour)
		_, ok, err := repo.GetInteractions(ctx, "TP53", 9606, time.Hour)
		require.NoError(t, err)
		assert.False(t, ok)

		_, ok, err = repo.GetInteractions(ctx, "TP53", 9606, 0)
		require.NoError(t, err)
		assert.True(t, ok, "zero max age accepts any entry")
	})

	t.Run("purge removes old entries", func(t *testing.T) {
		n, err := repo.PurgeInteractions(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		_, ok, err := repo.GetInteractions(ctx, "TP53", 9606, 0)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestLayouts(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	t.Run("missing layout is nil", func(t *testing.T) {
		l, err := repo.GetLayout(ctx, "fp", domain.LayoutSpring)
		require.NoError(t, err)
		assert.Nil(t, l)
	})

	t.Run("save and load", func(t *testing.T) {
		l := domain.NewLayout(domain.LayoutSpring)
		l.Set("TP53", 0.1, 0.2)
		l.Pin("MDM2", -0.5, 0.5)
		require.NoError(t, repo.SaveLayout(ctx, "fp", l))

		got, err := repo.GetLayout(ctx, "fp", domain.LayoutSpring)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Len(t, got.Positions, 2)
		assert.InDelta(t, 0.1, got.Positions["TP53"].X, 1e-12)
		assert.True(t, got.Positions["MDM2"].Pinned)
		assert.False(t, got.Positions["TP53"].Pinned)
	})

	t.Run("algorithms are stored separately", func(t *testing.T) {
		got, err := repo.GetLayout(ctx, "fp", domain.LayoutCircular)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("save positions upserts", func(t *testing.T) {
		require.NoError(t, repo.SavePositions(ctx, "fp", domain.LayoutSpring, []domain.NodePosition{
			{NodeID: "TP53", X: 0.9, Y: 0.9, Pinned: true},
			{NodeID: "EP300", X: 0, Y: 0},
		}))
		got, err := repo.GetLayout(ctx, "fp", domain.LayoutSpring)
		require.NoError(t, err)
		assert.Len(t, got.Positions, 3)
		assert.InDelta(t, 0.9, got.Positions["TP53"].X, 1e-12)
		assert.True(t, got.Positions["TP53"].Pinned)
	})

	t.Run("save layout replaces previous positions", func(t *testing.T) {
		l := domain.NewLayout(domain.LayoutSpring)
		l.Set("ONLY", 0, 0)
		require.NoError(t, repo.SaveLayout(ctx, "fp", l))
		got, err := repo.GetLayout(ctx, "fp", domain.LayoutSpring)
		require.NoError(t, err)
		assert.Len(t, got.Positions, 1)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteLayout(ctx, "fp", domain.LayoutSpring))
		got, err := repo.GetLayout(ctx, "fp", domain.LayoutSpring)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
