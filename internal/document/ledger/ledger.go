package ledger

import (
	"context"
	"time"

	"github.com/yashjaiswal5859/Doc-Collab/internal/document"
	"github.com/yashjaiswal5859/Doc-Collab/internal/document/repository"
)

// Ledger is the append-only version history of a document. Entries hold
// the content that was live before the write that created them, so the
// newest state is never duplicated into history.
type Ledger struct {
	store repository.Store
}

func New(store repository.Store) *Ledger {
	return &Ledger{store: store}
}

// AppendIfChanged appends a history entry carrying content, attributed to
// authorID, unless the newest entry already holds the same content. The
// dedup guard keeps idle auto-save ticks from growing history. Returns
// whether an entry was appended.
func (l *Ledger) AppendIfChanged(ctx context.Context, docID, content, authorID string) (bool, error) {
	last, err := l.store.LatestVersion(ctx, docID)
	if err != nil {
		return false, err
	}
	if last != nil && last.Content == content {
		return false, nil
	}
	v := &document.Version{
		DocumentID: docID,
		Content:    content,
		AuthorID:   authorID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := l.store.AppendVersion(ctx, v); err != nil {
		return false, err
	}
	return true, nil
}

// ListOrdered returns the full history ascending by creation order.
func (l *Ledger) ListOrdered(ctx context.Context, docID string) ([]*document.Version, error) {
	return l.store.ListVersions(ctx, docID)
}

// Revert resolves the content to restore for the given history index and
// captures currentContent into the ledger first, so the state being
// abandoned stays recoverable. It does not touch the document itself;
// the caller installs the returned content inside the same transaction.
func (l *Ledger) Revert(ctx context.Context, docID string, index int, actingUserID, currentContent string) (string, error) {
	versions, err := l.ListOrdered(ctx, docID)
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(versions) {
		return "", document.ErrOutOfRange
	}
	if _, err := l.AppendIfChanged(ctx, docID, currentContent, actingUserID); err != nil {
		return "", err
	}
	return versions[index].Content, nil
}
