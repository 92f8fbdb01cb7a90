package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/yashjaiswal5859/Doc-Collab/internal/document"
	"github.com/yashjaiswal5859/Doc-Collab/internal/document/ledger"
	"github.com/yashjaiswal5859/Doc-Collab/internal/document/repository"
)

// Service owns every mutation of the document aggregate. Content writes
// go through ApplyContentChange so the history append, the content
// overwrite and the version recount always commit together.
type Service struct {
	store  repository.Store
	ledger *ledger.Ledger
}

func New(store repository.Store) *Service {
	return &Service{store: store, ledger: ledger.New(store)}
}

// Ledger exposes the version history component for read paths.
func (s *Service) Ledger() *ledger.Ledger { return s.ledger }

func (s *Service) Create(ctx context.Context, ownerID, title, content string) (*document.Document, error) {
	if title == "" {
		title = "Untitled Document"
	}
	d := &document.Document{Title: title, Content: content, OwnerID: ownerID}
	if _, err := s.store.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("%w: %v", document.ErrPersistenceFailed, err)
	}
	return d, nil
}

func (s *Service) Get(ctx context.Context, id string) (*document.Document, error) {
	return s.store.Load(ctx, id)
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]*document.Document, error) {
	return s.store.ListForUser(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

func (s *Service) AddCollaborator(ctx context.Context, id, userID string) error {
	return s.store.AddCollaborator(ctx, id, userID)
}

func (s *Service) Rename(ctx context.Context, id, title string) (*document.Document, error) {
	d, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Title = title
	if err := s.store.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("%w: %v", document.ErrPersistenceFailed, err)
	}
	return d, nil
}

func (s *Service) Versions(ctx context.Context, id string) ([]*document.Version, error) {
	return s.ledger.ListOrdered(ctx, id)
}

// ApplyContentChange atomically installs newContent on the document:
// the previous content is appended to history (dedup-guarded), the live
// content is overwritten and VersionCount is recomputed from an
// authoritative recount. When newContent equals the current content the
// call is a complete no-op: history and counter are untouched.
func (s *Service) ApplyContentChange(ctx context.Context, docID, newContent, authorID string) (*document.Document, int, error) {
	var out *document.Document
	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		d, err := s.store.Load(ctx, docID)
		if err != nil {
			return err
		}
		if d.Content == newContent {
			out = d
			return nil
		}
		if _, err := s.ledger.AppendIfChanged(ctx, docID, d.Content, authorID); err != nil {
			return err
		}
		d.Content = newContent
		n, err := s.store.CountVersions(ctx, docID)
		if err != nil {
			return err
		}
		d.VersionCount = n
		if err := s.store.Save(ctx, d); err != nil {
			return err
		}
		out = d
		return nil
	})
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("%w: %v", document.ErrPersistenceFailed, err)
	}
	return out, out.VersionCount, nil
}

// Revert restores the content of history entry index as the new live
// content. The state being abandoned is captured into history first, so
// a revert never loses the current text. Fails with ErrOutOfRange when
// index is not within [0, count).
func (s *Service) Revert(ctx context.Context, docID string, index int, actingUserID string) (*document.Document, error) {
	var out *document.Document
	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		d, err := s.store.Load(ctx, docID)
		if err != nil {
			return err
		}
		restored, err := s.ledger.Revert(ctx, docID, index, actingUserID, d.Content)
		if err != nil {
			return err
		}
		d.Content = restored
		n, err := s.store.CountVersions(ctx, docID)
		if err != nil {
			return err
		}
		d.VersionCount = n
		if err := s.store.Save(ctx, d); err != nil {
			return err
		}
		out = d
		return nil
	})
	if err != nil {
		if errors.Is(err, document.ErrNotFound) || errors.Is(err, document.ErrOutOfRange) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", document.ErrPersistenceFailed, err)
	}
	return out, nil
}
