package repository

import (
	"context"

	"github.com/yashjaiswal5859/Doc-Collab/internal/document"
)

// Store provides persistence for documents and their version history.
// Implementations: Mongo-backed for deployments, in-memory for unit tests
// and local development without a database.
type Store interface {
	Create(ctx context.Context, d *document.Document) (string, error)
	// Load returns the document together with its collaborator set, or
	// document.ErrNotFound.
	Load(ctx context.Context, id string) (*document.Document, error)
	// ListForUser returns documents the user owns or collaborates on.
	ListForUser(ctx context.Context, userID string) ([]*document.Document, error)
	Save(ctx context.Context, d *document.Document) error
	Delete(ctx context.Context, id string) error
	AddCollaborator(ctx context.Context, id, userID string) error

	AppendVersion(ctx context.Context, v *document.Version) error
	// LatestVersion returns the newest history entry, or nil when the
	// document has no history yet.
	LatestVersion(ctx context.Context, docID string) (*document.Version, error)
	// ListVersions returns history ascending by creation order.
	ListVersions(ctx context.Context, docID string) ([]*document.Version, error)
	CountVersions(ctx context.Context, docID string) (int, error)

	// WithTransaction runs fn atomically: either every store call made
	// through the callback's context commits, or none do.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
