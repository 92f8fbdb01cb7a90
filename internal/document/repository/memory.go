package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yashjaiswal5859/Doc-Collab/internal/document"
)

// txToken marks a context as running inside WithTransaction, where the
// store lock is already held.
type txToken struct{}

func inTx(ctx context.Context) bool {
	return ctx.Value(txToken{}) != nil
}

// MemoryStore is the in-memory Store used by unit tests and by local
// development when no MongoDB is configured. WithTransaction holds the
// store lock for the whole transaction, so no other goroutine can read
// partial state or commit a write that a rollback would erase; failure
// restores a snapshot taken at transaction start.
type MemoryStore struct {
	mu       sync.RWMutex
	docs     map[string]*document.Document
	versions map[string][]*document.Version
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:     make(map[string]*document.Document),
		versions: make(map[string][]*document.Version),
	}
}

func cloneDoc(d *document.Document) *document.Document {
	c := *d
	c.CollaboratorIDs = append([]string(nil), d.CollaboratorIDs...)
	return &c
}

func (m *MemoryStore) Create(ctx context.Context, d *document.Document) (string, error) {
	if !inTx(ctx) {
		m.mu.Lock()
		defer m.mu.Unlock()
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	if d.CollaboratorIDs == nil {
		d.CollaboratorIDs = []string{}
	}
	m.docs[d.ID] = cloneDoc(d)
	return d.ID, nil
}

func (m *MemoryStore) Load(ctx context.Context, id string) (*document.Document, error) {
	if !inTx(ctx) {
		m.mu.RLock()
		defer m.mu.RUnlock()
	}
	d, ok := m.docs[id]
	if !ok {
		return nil, document.ErrNotFound
	}
	return cloneDoc(d), nil
}

func (m *MemoryStore) ListForUser(ctx context.Context, userID string) ([]*document.Document, error) {
	if !inTx(ctx) {
		m.mu.RLock()
		defer m.mu.RUnlock()
	}
	out := []*document.Document{}
	for _, d := range m.docs {
		if document.CanAccess(d, userID) {
			out = append(out, cloneDoc(d))
		}
	}
	return out, nil
}

func (m *MemoryStore) Save(ctx context.Context, d *document.Document) error {
	if !inTx(ctx) {
		m.mu.Lock()
		defer m.mu.Unlock()
	}
	if _, ok := m.docs[d.ID]; !ok {
		return document.ErrNotFound
	}
	d.UpdatedAt = time.Now().UTC()
	m.docs[d.ID] = cloneDoc(d)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	if !inTx(ctx) {
		m.mu.Lock()
		defer m.mu.Unlock()
	}
	if _, ok := m.docs[id]; !ok {
		return document.ErrNotFound
	}
	delete(m.docs, id)
	delete(m.versions, id)
	return nil
}

func (m *MemoryStore) AddCollaborator(ctx context.Context, id, userID string) error {
	if !inTx(ctx) {
		m.mu.Lock()
		defer m.mu.Unlock()
	}
	d, ok := m.docs[id]
	if !ok {
		return document.ErrNotFound
	}
	for _, c := range d.CollaboratorIDs {
		if c == userID {
			return nil
		}
	}
	d.CollaboratorIDs = append(d.CollaboratorIDs, userID)
	d.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryStore) AppendVersion(ctx context.Context, v *document.Version) error {
	if !inTx(ctx) {
		m.mu.Lock()
		defer m.mu.Unlock()
	}
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	c := *v
	m.versions[v.DocumentID] = append(m.versions[v.DocumentID], &c)
	return nil
}

func (m *MemoryStore) LatestVersion(ctx context.Context, docID string) (*document.Version, error) {
	if !inTx(ctx) {
		m.mu.RLock()
		defer m.mu.RUnlock()
	}
	vs := m.versions[docID]
	if len(vs) == 0 {
		return nil, nil
	}
	c := *vs[len(vs)-1]
	return &c, nil
}

func (m *MemoryStore) ListVersions(ctx context.Context, docID string) ([]*document.Version, error) {
	if !inTx(ctx) {
		m.mu.RLock()
		defer m.mu.RUnlock()
	}
	vs := m.versions[docID]
	out := make([]*document.Version, 0, len(vs))
	for _, v := range vs {
		c := *v
		out = append(out, &c)
	}
	return out, nil
}

func (m *MemoryStore) CountVersions(ctx context.Context, docID string) (int, error) {
	if !inTx(ctx) {
		m.mu.RLock()
		defer m.mu.RUnlock()
	}
	return len(m.versions[docID]), nil
}

// WithTransaction runs fn with the store lock held throughout, so the
// transaction's intermediate writes are invisible to other goroutines
// and no unrelated commit can slip in between snapshot and rollback.
// Store calls made through fn's context reuse the held lock.
func (m *MemoryStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs := make(map[string]*document.Document, len(m.docs))
	for id, d := range m.docs {
		docs[id] = cloneDoc(d)
	}
	versions := make(map[string][]*document.Version, len(m.versions))
	for id, vs := range m.versions {
		versions[id] = append([]*document.Version(nil), vs...)
	}

	if err := fn(context.WithValue(ctx, txToken{}, txToken{})); err != nil {
		m.docs = docs
		m.versions = versions
		return err
	}
	return nil
}
