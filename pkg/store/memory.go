package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-endpointschema/pkg/schema"
	"github.com/goliatone/go-endpointschema/pkg/validation"
)

// Memory is an in-process Store. It is safe for concurrent use.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]schema.EndpointTypeSchema
}

var _ Store = (*Memory)(nil)

// NewMemory returns a store seeded with docs. Seeds are not validated.
func NewMemory(docs ...schema.EndpointTypeSchema) *Memory {
	m := &Memory{docs: make(map[string]schema.EndpointTypeSchema, len(docs))}
	for _, doc := range docs {
		m.docs[doc.ID] = doc.Clone()
	}
	return m
}

func (m *Memory) Load(ctx context.Context, id string) (schema.EndpointTypeSchema, error) {
	if err := ctx.Err(); err != nil {
		return schema.EndpointTypeSchema{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[id]
	if !ok {
		return schema.EndpointTypeSchema{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return doc.Clone(), nil
}

func (m *Memory) Save(ctx context.Context, doc schema.EndpointTypeSchema) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !ValidID(doc.ID) {
		return fmt.Errorf("%w: %q", ErrInvalidID, doc.ID)
	}
	if err := validation.Schema(doc).Err(); err != nil {
		return fmt.Errorf("store: save %q: %w", doc.ID, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = doc.Clone()
	return nil
}

func (m *Memory) List(ctx context.Context) ([]Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Summary, 0, len(m.docs))
	for _, doc := range m.docs {
		out = append(out, summarize(doc))
	}
	sortSummaries(out)
	return out, nil
}
