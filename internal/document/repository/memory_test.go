package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yashjaiswal5859/Doc-Collab/internal/document"
)

func TestMemoryStoreDocumentCRUD(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.Create(ctx, &document.Document{Title: "notes", Content: "hello", OwnerID: "u1"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := s.Load(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "hello", got.Content)
	require.Equal(t, "u1", got.OwnerID)

	got.Content = "world"
	require.NoError(t, s.Save(ctx, got))
	got2, err := s.Load(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "world", got2.Content)

	require.NoError(t, s.Delete(ctx, id))
	_, err = s.Load(ctx, id)
	require.ErrorIs(t, err, document.ErrNotFound)
}

func TestMemoryStoreListForUser(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	owned, err := s.Create(ctx, &document.Document{Title: "mine", OwnerID: "u1"})
	require.NoError(t, err)
	shared, err := s.Create(ctx, &document.Document{Title: "shared", OwnerID: "u2", CollaboratorIDs: []string{"u1"}})
	require.NoError(t, err)
	_, err = s.Create(ctx, &document.Document{Title: "other", OwnerID: "u3"})
	require.NoError(t, err)

	list, err := s.ListForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	ids := []string{list[0].ID, list[1].ID}
	require.ElementsMatch(t, []string{owned, shared}, ids)
}

func TestMemoryStoreAddCollaborator(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.Create(ctx, &document.Document{Title: "doc", OwnerID: "u1"})
	require.NoError(t, err)

	require.NoError(t, s.AddCollaborator(ctx, id, "u2"))
	// adding twice keeps the set
	require.NoError(t, s.AddCollaborator(ctx, id, "u2"))

	got, err := s.Load(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []string{"u2"}, got.CollaboratorIDs)

	require.ErrorIs(t, s.AddCollaborator(ctx, "missing", "u2"), document.ErrNotFound)
}

func TestMemoryStoreVersions(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	latest, err := s.LatestVersion(ctx, "d1")
	require.NoError(t, err)
	require.Nil(t, latest)

	require.NoError(t, s.AppendVersion(ctx, &document.Version{DocumentID: "d1", Content: "v0", AuthorID: "u1"}))
	require.NoError(t, s.AppendVersion(ctx, &document.Version{DocumentID: "d1", Content: "v1", AuthorID: "u1"}))

	latest, err = s.LatestVersion(ctx, "d1")
	require.NoError(t, err)
	require.Equal(t, "v1", latest.Content)

	vs, err := s.ListVersions(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, vs, 2)
	require.Equal(t, "v0", vs[0].Content)
	require.Equal(t, "v1", vs[1].Content)

	n, err := s.CountVersions(ctx, "d1")
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestMemoryStoreTransactionRollback(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	id, err := s.Create(ctx, &document.Document{Title: "doc", Content: "before", OwnerID: "u1"})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.WithTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, s.AppendVersion(ctx, &document.Version{DocumentID: id, Content: "before", AuthorID: "u1"}))
		d, err := s.Load(ctx, id)
		require.NoError(t, err)
		d.Content = "after"
		require.NoError(t, s.Save(ctx, d))
		return boom
	})
	require.ErrorIs(t, err, boom)

	// nothing from the failed transaction is observable
	d, err := s.Load(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "before", d.Content)
	n, err := s.CountVersions(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestMemoryStoreRollbackKeepsConcurrentWrites(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	boom := errors.New("boom")
	inTxn := make(chan struct{})
	created := make(chan string, 1)

	// a Create racing the open transaction must block until it commits
	// or rolls back, then land; rollback must not erase it
	go func() {
		<-inTxn
		id, err := s.Create(ctx, &document.Document{Title: "other", OwnerID: "u2"})
		if err == nil {
			created <- id
		}
		close(created)
	}()

	err := s.WithTransaction(ctx, func(txCtx context.Context) error {
		close(inTxn)
		if _, err := s.Create(txCtx, &document.Document{Title: "doomed", OwnerID: "u1"}); err != nil {
			return err
		}
		time.Sleep(50 * time.Millisecond)
		return boom
	})
	require.ErrorIs(t, err, boom)

	id, ok := <-created
	require.True(t, ok)
	got, err := s.Load(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "other", got.Title)

	// the transaction's own write did roll back
	list, err := s.ListForUser(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, list)
}
