package session

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/ValentinKolb/dDocs/rpc/channel"
	"github.com/ValentinKolb/dDocs/rpc/common"
	"github.com/google/uuid"
	"sync"
)

// --------------------------------------------------------------------------
// Interface Definitions for dependency injection
// --------------------------------------------------------------------------

// INamedType is the capability a value implements to take part in
// type-based document id generation and collection naming.
type INamedType interface {
	// TypeName returns the declared name of the type (e.g. "Order")
	TypeName() string
}

// IStore is the slice of the document store a session needs. The store
// passes itself in when opening the session.
type IStore interface {
	// Conventions returns the store-wide conventions instance
	Conventions() *common.Conventions
	// GenerateIDForType produces the next document id for an entity
	GenerateIDForType(ctx context.Context, entity any, typeName, database string) (string, error)
}

// --------------------------------------------------------------------------
// Session
// --------------------------------------------------------------------------

// New creates a session bound to one database and its request channel.
// Sessions are created by DocumentStore.OpenSession; the store never keeps a
// reference to them.
func New(database string, store IStore, ch channel.IRequestChannel, id uuid.UUID) *Session {
	return &Session{
		id:       id,
		database: database,
		store:    store,
		channel:  ch,
	}
}

// Session is a unit of work against one logical database. Writes are
// buffered until SaveChanges; reads go to the server directly. A session is
// owned by a single caller and must not be shared between goroutines.
type Session struct {
	id       uuid.UUID
	database string
	store    IStore
	channel  channel.IRequestChannel

	mu      sync.Mutex
	pending []change
}

// change is one buffered write
type change struct {
	delete     bool
	id         string
	collection string
	document   []byte
}

// ID returns the unique identifier of this session
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Database returns the logical database this session is bound to
func (s *Session) Database() string {
	return s.database
}

// Channel returns the request channel this session borrows
func (s *Session) Channel() channel.IRequestChannel {
	return s.channel
}

// Store queues an entity for storage and returns its document id. An empty
// id asks the store's key generator for the next one, which requires the
// entity to implement INamedType. The write is sent on SaveChanges.
func (s *Session) Store(ctx context.Context, entity any, id string) (string, error) {
	document, err := json.Marshal(entity)
	if err != nil {
		return "", fmt.Errorf("session %s: cannot serialize entity: %v", s.id, err)
	}

	var collection string
	if named, ok := entity.(INamedType); ok {
		collection = s.store.Conventions().CollectionName(named.TypeName())
	}

	if id == "" {
		id, err = s.store.GenerateIDForType(ctx, entity, "", s.database)
		if err != nil {
			return "", err
		}
	}

	s.mu.Lock()
	s.pending = append(s.pending, change{id: id, collection: collection, document: document})
	s.mu.Unlock()

	return id, nil
}

// Delete queues the deletion of a document. The write is sent on SaveChanges.
func (s *Session) Delete(id string) {
	s.mu.Lock()
	s.pending = append(s.pending, change{delete: true, id: id})
	s.mu.Unlock()
}

// Load reads a document into the given value. The boolean reports whether
// the document exists; a nil into skips deserialization.
func (s *Session) Load(ctx context.Context, id string, into any) (bool, error) {
	resp, err := s.channel.Execute(ctx, common.NewGetRequest(id))
	if err != nil {
		return false, err
	}
	if !resp.Ok {
		return false, nil
	}
	if into != nil {
		if err := json.Unmarshal(resp.Document, into); err != nil {
			return true, fmt.Errorf("session %s: cannot deserialize document %s: %v", s.id, id, err)
		}
	}
	return true, nil
}

// SaveChanges sends all buffered writes in the order they were queued. On
// error the unsent remainder stays queued for a retry.
func (s *Session) SaveChanges(ctx context.Context) error {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	for i, c := range pending {
		var req *common.Message
		if c.delete {
			req = common.NewDeleteRequest(c.id)
		} else {
			req = common.NewPutRequest(c.id, c.collection, c.document)
		}

		if _, err := s.channel.Execute(ctx, req); err != nil {
			// Keep the unsent tail so the caller can retry
			s.mu.Lock()
			s.pending = append(pending[i:], s.pending...)
			s.mu.Unlock()
			return err
		}
	}

	return nil
}
