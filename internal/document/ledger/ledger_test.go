package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yashjaiswal5859/Doc-Collab/internal/document"
	"github.com/yashjaiswal5859/Doc-Collab/internal/document/repository"
)

func TestAppendIfChangedDedup(t *testing.T) {
	store := repository.NewMemoryStore()
	l := New(store)
	ctx := context.Background()

	appended, err := l.AppendIfChanged(ctx, "d1", "v0", "u1")
	require.NoError(t, err)
	require.True(t, appended)

	// same content as the ledger head: no new entry
	appended, err = l.AppendIfChanged(ctx, "d1", "v0", "u1")
	require.NoError(t, err)
	require.False(t, appended)

	appended, err = l.AppendIfChanged(ctx, "d1", "v1", "u2")
	require.NoError(t, err)
	require.True(t, appended)

	vs, err := l.ListOrdered(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, vs, 2)
	require.Equal(t, "v0", vs[0].Content)
	require.Equal(t, "u1", vs[0].AuthorID)
	require.Equal(t, "v1", vs[1].Content)
	require.Equal(t, "u2", vs[1].AuthorID)
}

func TestRevertReturnsHistoricalContent(t *testing.T) {
	store := repository.NewMemoryStore()
	l := New(store)
	ctx := context.Background()

	_, err := l.AppendIfChanged(ctx, "d1", "v0", "u1")
	require.NoError(t, err)
	_, err = l.AppendIfChanged(ctx, "d1", "v1", "u1")
	require.NoError(t, err)

	// live content is "v2"; revert to index 0 captures it first
	content, err := l.Revert(ctx, "d1", 0, "u1", "v2")
	require.NoError(t, err)
	require.Equal(t, "v0", content)

	vs, err := l.ListOrdered(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, vs, 3)
	require.Equal(t, "v2", vs[2].Content)
}

func TestRevertOutOfRange(t *testing.T) {
	store := repository.NewMemoryStore()
	l := New(store)
	ctx := context.Background()

	_, err := l.AppendIfChanged(ctx, "d1", "v0", "u1")
	require.NoError(t, err)

	_, err = l.Revert(ctx, "d1", 1, "u1", "v1")
	require.ErrorIs(t, err, document.ErrOutOfRange)
	_, err = l.Revert(ctx, "d1", -1, "u1", "v1")
	require.ErrorIs(t, err, document.ErrOutOfRange)

	// a failed revert appends nothing
	n, err := store.CountVersions(ctx, "d1")
	require.NoError(t, err)
	require.Equal(t, 1, n)
}
