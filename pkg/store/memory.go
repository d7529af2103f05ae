package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*Document)}
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, doc *Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var created time.Time
	if prev, ok := s.docs[doc.ID]; ok {
		created = prev.CreatedAt
	}
	prepare(doc, created)
	s.docs[doc.ID] = clone(doc)
	return doc.ID, nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(doc), nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context) ([]*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Document, 0, len(s.docs))
	for _, doc := range s.docs {
		out = append(out, clone(doc))
	}
	slices.SortFunc(out, func(a, b *Document) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close(context.Context) error { return nil }

func clone(doc *Document) *Document {
	out := *doc
	out.Project.Resources = slices.Clone(doc.Project.Resources)
	out.Project.Tasks = slices.Clone(doc.Project.Tasks)
	for i := range out.Project.Tasks {
		out.Project.Tasks[i].DependsOn = slices.Clone(out.Project.Tasks[i].DependsOn)
		out.Project.Tasks[i].RequiredResources = slices.Clone(out.Project.Tasks[i].RequiredResources)
	}
	if doc.Summary != nil {
		sum := *doc.Summary
		sum.CriticalPath = slices.Clone(sum.CriticalPath)
		out.Summary = &sum
	}
	return &out
}

var _ Store = (*MemoryStore)(nil)
