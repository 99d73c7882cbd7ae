package hilo

import (
	"context"
	"github.com/puzpuzpuz/xsync/v3"
)

// NewMultiGenerator creates the store-wide key generator. It is constructed
// once per store, during Initialize.
func NewMultiGenerator(store IStoreRef) *MultiGenerator {
	return &MultiGenerator{
		store:      store,
		generators: xsync.NewMapOf[string, *Generator](),
	}
}

// MultiGenerator owns one Generator per (database, collection) pair across
// all databases of a store. Generators are created lazily and exactly once
// per pair.
type MultiGenerator struct {
	store      IStoreRef
	generators *xsync.MapOf[string, *Generator]
}

// GenerateDocumentKey returns the next document id for a type name, in the
// form {collection}{separator}{number}. An empty database addresses the
// store's default database.
func (m *MultiGenerator) GenerateDocumentKey(ctx context.Context, typeName, database string) (string, error) {
	conv := m.store.Conventions()
	collection := conv.CollectionName(typeName)

	gen, _ := m.generators.LoadOrCompute(database+"/"+collection, func() *Generator {
		return NewGenerator(m.store, database, collection)
	})

	n, err := gen.NextID(ctx)
	if err != nil {
		return "", err
	}
	return conv.DocumentID(collection, n), nil
}

// ReturnUnusedRanges gives every generator's unused range back to the
// server. All generators are visited even if some fail; the first error is
// returned after the sweep.
func (m *MultiGenerator) ReturnUnusedRanges(ctx context.Context) error {
	var firstErr error

	m.generators.Range(func(key string, gen *Generator) bool {
		if err := gen.ReturnUnused(ctx); err != nil {
			Logger.Warningf("Failed to return unused range for %s: %v", key, err)
			if firstErr == nil {
				firstErr = err
			}
		}
		return true
	})

	return firstErr
}
