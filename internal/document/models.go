package document

import (
	"errors"
	"time"
)

// Errors surfaced by the document layer. Handlers map these onto HTTP
// statuses or socket error events; store failures are wrapped into
// ErrPersistenceFailed by the service.
var (
	ErrNotFound          = errors.New("document not found")
	ErrAccessDenied      = errors.New("access denied")
	ErrOutOfRange        = errors.New("version index out of range")
	ErrPersistenceFailed = errors.New("persistence failed")
)

// Document is the persistent aggregate: live content plus the counter of
// history entries. VersionCount always matches the number of Version rows
// for this document after a successful write (recounted, never blindly
// incremented).
type Document struct {
	ID              string    `json:"id" bson:"_id,omitempty"`
	Title           string    `json:"title" bson:"title"`
	Content         string    `json:"content" bson:"content"`
	VersionCount    int       `json:"versionCount" bson:"versionCount"`
	OwnerID         string    `json:"ownerId" bson:"ownerId"`
	CollaboratorIDs []string  `json:"collaboratorIds" bson:"collaboratorIds"`
	CreatedAt       time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Version is one immutable history entry. Content holds the text that was
// live immediately before the write that created the entry, so the newest
// state lives only on the Document itself.
type Version struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	DocumentID string    `json:"documentId" bson:"documentId"`
	Content    string    `json:"content" bson:"content"`
	AuthorID   string    `json:"authorId" bson:"authorId"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}
