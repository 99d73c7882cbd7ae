package store

import (
	"context"
	"github.com/ValentinKolb/dDocs/lib/hilo"
	"github.com/ValentinKolb/dDocs/lib/session"
	"github.com/ValentinKolb/dDocs/rpc/channel"
	"github.com/ValentinKolb/dDocs/rpc/common"
	"github.com/ValentinKolb/dDocs/rpc/serializer"
	"github.com/google/uuid"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"sync"
	"sync/atomic"
)

var Logger = logger.GetLogger("store")

// errNotInitialized is the single configuration error every gated operation
// returns before a successful Initialize
var errNotInitialized = NewError(RetCInvalidOperation, "the document store is not initialized - call Initialize() before opening sessions or generating ids")

// New creates a DocumentStore from a config. No connection is made; the
// store stays unusable until Initialize is called.
func New(config Config) *DocumentStore {
	if config.Serializer == nil {
		config.Serializer = serializer.NewJSONSerializer()
	}
	return &DocumentStore{
		config:   config,
		channels: xsync.NewMapOf[string, channel.IRequestChannel](),
	}
}

// NewDocumentStore creates a DocumentStore for a url and default database
// with default conventions and serialization.
func NewDocumentStore(url, database string) *DocumentStore {
	return New(Config{
		Client: common.ClientConfig{
			URL:      url,
			Database: database,
		},
	})
}

// DocumentStore is the long-lived coordinator of the client. It owns the
// per-database channel cache, the shared conventions and the store-wide key
// generator, and it mints sessions. One instance is shared by all callers;
// all methods are safe for concurrent use.
type DocumentStore struct {
	config Config

	// initMu guards Initialize; initialized is monotonic false -> true
	initMu      sync.Mutex
	initialized atomic.Bool

	// conventions are created exactly once, also before Initialize
	conventionsOnce sync.Once
	conventions     *common.Conventions

	// channels caches at most one request channel per database name,
	// append-only for the lifetime of the store
	channels *xsync.MapOf[string, channel.IRequestChannel]

	// generator is non-nil if and only if initialized is true
	generator *hilo.MultiGenerator

	// operations facade, created lazily after initialization
	opsMu      sync.Mutex
	operations *Operations

	closed atomic.Bool
}

// --------------------------------------------------------------------------
// Lifecycle
// --------------------------------------------------------------------------

// Initialize prepares the store for use: it validates the default database
// and constructs the store-wide key generator. The first successful call
// wins; further calls are no-ops returning the store. Operations that need
// an initialized store fail with an InvalidOperation error before this is
// called.
func (s *DocumentStore) Initialize() (*DocumentStore, error) {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	if s.initialized.Load() {
		return s, nil
	}

	if s.config.Client.Database == "" {
		return nil, NewError(RetCInvalidOperation, "cannot initialize the document store: no default database configured")
	}

	s.generator = hilo.NewMultiGenerator(s)
	s.initialized.Store(true)

	Logger.Infof("Document store initialized (url=%s, database=%s)", s.config.Client.URL, s.config.Client.Database)
	return s, nil
}

// Close returns all unused identifier ranges to the server. It is a no-op
// before a successful Initialize and on repeated calls. Cached channels stay
// usable; they live until the process exits.
func (s *DocumentStore) Close(ctx context.Context) error {
	if !s.initialized.Load() {
		return nil
	}
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.generator.ReturnUnusedRanges(ctx)
}

// assertInitialized is the single enforcement point of the initialization
// gate; every gated operation calls it and nothing else checks the flag
func (s *DocumentStore) assertInitialized() error {
	if !s.initialized.Load() {
		return errNotInitialized
	}
	return nil
}

// --------------------------------------------------------------------------
// Shared state accessors
// --------------------------------------------------------------------------

// Conventions returns the store's conventions, creating defaults on first
// access if none were configured. The same instance is returned for the
// lifetime of the store and shared with every channel and session. Safe to
// call before Initialize.
func (s *DocumentStore) Conventions() *common.Conventions {
	s.conventionsOnce.Do(func() {
		if s.config.Conventions != nil {
			s.conventions = s.config.Conventions
		} else {
			s.conventions = common.DefaultConventions()
		}
	})
	return s.conventions
}

// GetChannel returns the request channel for a database name, creating it on
// first use. An empty name addresses the store's default database. At most
// one channel is ever created per name; concurrent callers for the same name
// get the same instance. A failed construction leaves no cache entry behind.
func (s *DocumentStore) GetChannel(database string) (channel.IRequestChannel, error) {
	name := database
	if name == "" {
		name = s.config.Client.Database
	}

	// Fast path, no locking beyond the map's own
	if ch, ok := s.channels.Load(name); ok {
		return ch, nil
	}

	// Compute runs the factory at most once per name under the map's
	// per-key lock; returning delete on error keeps the cache clean
	var createErr error
	ch, ok := s.channels.Compute(name, func(old channel.IRequestChannel, loaded bool) (channel.IRequestChannel, bool) {
		if loaded {
			return old, false
		}
		created, err := s.newChannel(name)
		if err != nil {
			createErr = err
			return nil, true
		}
		return created, false
	})
	if !ok {
		return nil, createErr
	}
	return ch, nil
}

// newChannel constructs a channel via the configured factory
func (s *DocumentStore) newChannel(database string) (channel.IRequestChannel, error) {
	if s.config.NewChannel != nil {
		return s.config.NewChannel(database)
	}
	return channel.NewHTTPChannel(s.config.Client, database, s.Conventions(), s.config.Serializer)
}

// Operations returns the maintenance facade bound to the default database.
// It is created lazily on first access and cached. Requires an initialized
// store.
func (s *DocumentStore) Operations() (*Operations, error) {
	if err := s.assertInitialized(); err != nil {
		return nil, err
	}

	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	if s.operations == nil {
		ch, err := s.GetChannel("")
		if err != nil {
			return nil, err
		}
		s.operations = &Operations{channel: ch}
	}
	return s.operations, nil
}

// --------------------------------------------------------------------------
// Session factory
// --------------------------------------------------------------------------

// OpenSession opens a unit-of-work session against the default database.
func (s *DocumentStore) OpenSession() (*session.Session, error) {
	return s.OpenSessionWithOptions(SessionOptions{})
}

// OpenSessionWithDatabase opens a session against a specific database.
func (s *DocumentStore) OpenSessionWithDatabase(database string) (*session.Session, error) {
	return s.OpenSessionWithOptions(SessionOptions{Database: database})
}

// OpenSessionWithOptions opens a session with explicit options. Every call
// returns a distinct session with a fresh identifier; the store keeps no
// reference to it. Requires an initialized store.
func (s *DocumentStore) OpenSessionWithOptions(opts SessionOptions) (*session.Session, error) {
	if err := s.assertInitialized(); err != nil {
		return nil, err
	}

	database := opts.Database
	if database == "" {
		database = s.config.Client.Database
	}

	ch := opts.Channel
	if ch == nil {
		var err error
		ch, err = s.GetChannel(database)
		if err != nil {
			return nil, err
		}
	}

	return session.New(database, s, ch, uuid.New()), nil
}

// --------------------------------------------------------------------------
// Identifier generation
// --------------------------------------------------------------------------

// GenerateID returns the next document id for an entity in the default
// database. The entity must implement INamedType; use GenerateIDForType to
// pass the type name explicitly.
func (s *DocumentStore) GenerateID(ctx context.Context, entity any) (string, error) {
	return s.GenerateIDForType(ctx, entity, "", "")
}

// GenerateIDForType returns the next document id for an entity. The type
// name is taken from the explicit argument if non-empty, otherwise from the
// entity's INamedType capability. An empty database addresses the store's
// default database. May block on a Hi-Lo range round-trip.
func (s *DocumentStore) GenerateIDForType(ctx context.Context, entity any, typeName, database string) (string, error) {
	if err := s.assertInitialized(); err != nil {
		return "", err
	}

	name := typeName
	if name == "" {
		named, ok := entity.(INamedType)
		if !ok {
			return "", NewError(RetCInvalidOperation, "cannot determine the type name for id generation: pass it explicitly or implement INamedType")
		}
		name = named.TypeName()
	}

	return s.generator.GenerateDocumentKey(ctx, name, database)
}
