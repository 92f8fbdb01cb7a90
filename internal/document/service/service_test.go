package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yashjaiswal5859/Doc-Collab/internal/document"
	"github.com/yashjaiswal5859/Doc-Collab/internal/document/repository"
)

func newTestService(t *testing.T) (*Service, *repository.MemoryStore, string) {
	t.Helper()
	store := repository.NewMemoryStore()
	svc := New(store)
	d, err := svc.Create(context.Background(), "u1", "doc", "v0")
	require.NoError(t, err)
	return svc, store, d.ID
}

func TestApplyContentChangeHistory(t *testing.T) {
	svc, _, id := newTestService(t)
	ctx := context.Background()

	// first real edit snapshots the predecessor state
	d, count, err := svc.ApplyContentChange(ctx, id, "v1", "u1")
	require.NoError(t, err)
	require.Equal(t, "v1", d.Content)
	require.Equal(t, 1, count)

	vs, err := svc.Versions(ctx, id)
	require.NoError(t, err)
	require.Len(t, vs, 1)
	require.Equal(t, "v0", vs[0].Content)

	// unchanged content: complete no-op
	d, count, err = svc.ApplyContentChange(ctx, id, "v1", "u1")
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.Equal(t, 1, d.VersionCount)

	d, count, err = svc.ApplyContentChange(ctx, id, "v2", "u1")
	require.NoError(t, err)
	require.Equal(t, "v2", d.Content)
	require.Equal(t, 2, count)

	vs, err = svc.Versions(ctx, id)
	require.NoError(t, err)
	require.Len(t, vs, 2)
	require.Equal(t, "v1", vs[1].Content)
}

func TestVersionCountMatchesLedger(t *testing.T) {
	svc, store, id := newTestService(t)
	ctx := context.Background()

	for _, content := range []string{"a", "b", "c", "b"} {
		d, count, err := svc.ApplyContentChange(ctx, id, content, "u1")
		require.NoError(t, err)
		n, err := store.CountVersions(ctx, id)
		require.NoError(t, err)
		require.Equal(t, n, count)
		require.Equal(t, n, d.VersionCount)
	}
}

func TestRevertScenario(t *testing.T) {
	svc, _, id := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.ApplyContentChange(ctx, id, "v1", "u1")
	require.NoError(t, err)
	_, _, err = svc.ApplyContentChange(ctx, id, "v2", "u1")
	require.NoError(t, err)

	// revert to index 0: history gains {v2}, live content becomes v0
	d, err := svc.Revert(ctx, id, 0, "u1")
	require.NoError(t, err)
	require.Equal(t, "v0", d.Content)
	require.Equal(t, 3, d.VersionCount)

	vs, err := svc.Versions(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "v2", vs[2].Content)
}

func TestRevertRoundTrip(t *testing.T) {
	svc, _, id := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.ApplyContentChange(ctx, id, "v1", "u1")
	require.NoError(t, err)

	// live "v1", history ["v0"]; revert to v0 then back to v1
	d, err := svc.Revert(ctx, id, 0, "u1")
	require.NoError(t, err)
	require.Equal(t, "v0", d.Content)
	require.Equal(t, 2, d.VersionCount)

	d, err = svc.Revert(ctx, id, 1, "u1")
	require.NoError(t, err)
	require.Equal(t, "v1", d.Content)
	// two reverts, two new entries
	require.Equal(t, 3, d.VersionCount)
}

func TestRevertOutOfRangeLeavesStateUntouched(t *testing.T) {
	svc, store, id := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.ApplyContentChange(ctx, id, "v1", "u1")
	require.NoError(t, err)

	_, err = svc.Revert(ctx, id, 1, "u1")
	require.ErrorIs(t, err, document.ErrOutOfRange)
	_, err = svc.Revert(ctx, id, -1, "u1")
	require.ErrorIs(t, err, document.ErrOutOfRange)

	d, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "v1", d.Content)
	require.Equal(t, 1, d.VersionCount)
	n, err := store.CountVersions(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestApplyContentChangeMissingDocument(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := New(store)
	_, _, err := svc.ApplyContentChange(context.Background(), "missing", "x", "u1")
	require.ErrorIs(t, err, document.ErrNotFound)
}
