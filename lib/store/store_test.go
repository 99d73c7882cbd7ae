package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/ValentinKolb/dDocs/rpc/channel"
	"github.com/ValentinKolb/dDocs/rpc/common"
)

// order is a test entity taking part in type-based id generation
type order struct {
	Product string `json:"product"`
}

func (order) TypeName() string { return "Order" }

// testChannel is an in-memory stand-in for an HTTP channel. It serves document
// and Hi-Lo requests from local maps so store tests run without a server.
type testChannel struct {
	database    string
	conventions *common.Conventions

	mu       sync.Mutex
	docs     map[string][]byte
	next     map[string]uint64
	returned []*common.Message
}

func (c *testChannel) Database() string                 { return c.database }
func (c *testChannel) Conventions() *common.Conventions { return c.conventions }
func (c *testChannel) Close() error                     { return nil }

func (c *testChannel) Execute(_ context.Context, req *common.Message) (*common.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch req.MsgType {
	case common.MsgTDocPut:
		c.docs[req.ID] = req.Document
		return common.NewPutResponse(nil), nil
	case common.MsgTDocGet:
		doc, ok := c.docs[req.ID]
		return common.NewGetResponse(doc, ok, nil), nil
	case common.MsgTDocDelete:
		_, ok := c.docs[req.ID]
		delete(c.docs, req.ID)
		return common.NewDeleteResponse(ok, nil), nil
	case common.MsgTHiLoNext:
		lo, ok := c.next[req.Collection]
		if !ok {
			lo = 1
		}
		hi := lo + req.Amount - 1
		c.next[req.Collection] = hi + 1
		return common.NewHiLoNextResponse(lo, hi, nil), nil
	case common.MsgTHiLoReturn:
		c.returned = append(c.returned, req)
		return common.NewHiLoReturnResponse(true, nil), nil
	default:
		return nil, fmt.Errorf("unexpected message type: %s", req.MsgType)
	}
}

// testHarness tracks the channels a store creates through its factory
type testHarness struct {
	mu       sync.Mutex
	created  map[string]int
	channels map[string]*testChannel
	failFor  map[string]error
}

func newTestHarness() *testHarness {
	return &testHarness{
		created:  make(map[string]int),
		channels: make(map[string]*testChannel),
		failFor:  make(map[string]error),
	}
}

func (h *testHarness) factory(conventions *common.Conventions) ChannelFactory {
	return func(database string) (channel.IRequestChannel, error) {
		h.mu.Lock()
		defer h.mu.Unlock()

		h.created[database]++
		if err := h.failFor[database]; err != nil {
			return nil, err
		}

		ch := &testChannel{
			database:    database,
			conventions: conventions,
			docs:        make(map[string][]byte),
			next:        make(map[string]uint64),
		}
		h.channels[database] = ch
		return ch, nil
	}
}

// newTestStore returns an uninitialized store backed by the harness factory
func newTestStore(h *testHarness) *DocumentStore {
	conventions := common.DefaultConventions()
	return New(Config{
		Client: common.ClientConfig{
			URL:      "http://localhost:8080",
			Database: "north",
		},
		Conventions: conventions,
		NewChannel:  h.factory(conventions),
	})
}

// TestStoreGatesBeforeInitialize tests that gated operations fail before Initialize
func TestStoreGatesBeforeInitialize(t *testing.T) {
	s := newTestStore(newTestHarness())

	tests := []struct {
		name string
		call func() error
	}{
		{"OpenSession", func() error { _, err := s.OpenSession(); return err }},
		{"OpenSessionWithDatabase", func() error { _, err := s.OpenSessionWithDatabase("crm"); return err }},
		{"GenerateID", func() error { _, err := s.GenerateID(context.Background(), order{}); return err }},
		{"GenerateIDForType", func() error { _, err := s.GenerateIDForType(context.Background(), nil, "Order", ""); return err }},
		{"Operations", func() error { _, err := s.Operations(); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if err == nil {
				t.Fatalf("%s succeeded before Initialize, want error", tt.name)
			}
			var storeErr *Error
			if !errors.As(err, &storeErr) || storeErr.Code != RetCInvalidOperation {
				t.Errorf("%s error = %v, want InvalidOperation", tt.name, err)
			}
		})
	}
}

// TestInitialize tests validation and idempotency of Initialize
func TestInitialize(t *testing.T) {
	t.Run("Missing default database", func(t *testing.T) {
		s := New(Config{Client: common.ClientConfig{URL: "http://localhost:8080"}})
		if _, err := s.Initialize(); err == nil {
			t.Fatalf("Initialize() succeeded without a default database, want error")
		}

		// The failed attempt leaves the store in its uninitialized state
		var storeErr *Error
		if _, err := s.OpenSession(); !errors.As(err, &storeErr) || storeErr.Code != RetCInvalidOperation {
			t.Errorf("OpenSession() after failed Initialize = %v, want InvalidOperation", err)
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		s := newTestStore(newTestHarness())
		first, err := s.Initialize()
		if err != nil {
			t.Fatalf("Initialize() failed: %v", err)
		}
		second, err := s.Initialize()
		if err != nil {
			t.Fatalf("second Initialize() failed: %v", err)
		}
		if first != s || second != s {
			t.Errorf("Initialize() did not return the store itself")
		}
	})
}

// TestGetChannelCaching tests the per-database channel cache
func TestGetChannelCaching(t *testing.T) {
	h := newTestHarness()
	s := newTestStore(h)

	a, err := s.GetChannel("d1")
	if err != nil {
		t.Fatalf("GetChannel(d1) failed: %v", err)
	}
	b, err := s.GetChannel("d1")
	if err != nil {
		t.Fatalf("GetChannel(d1) failed: %v", err)
	}
	if a != b {
		t.Errorf("GetChannel(d1) returned different instances")
	}
	if h.created["d1"] != 1 {
		t.Errorf("channel constructions for d1 = %d, want 1", h.created["d1"])
	}

	c, err := s.GetChannel("d2")
	if err != nil {
		t.Fatalf("GetChannel(d2) failed: %v", err)
	}
	if c == a {
		t.Errorf("GetChannel(d2) returned the d1 channel")
	}

	// The empty name resolves to the default database
	def, err := s.GetChannel("")
	if err != nil {
		t.Fatalf("GetChannel(\"\") failed: %v", err)
	}
	north, err := s.GetChannel("north")
	if err != nil {
		t.Fatalf("GetChannel(north) failed: %v", err)
	}
	if def != north {
		t.Errorf("GetChannel(\"\") and GetChannel(north) returned different instances")
	}
	if h.created["north"] != 1 {
		t.Errorf("channel constructions for north = %d, want 1", h.created["north"])
	}
}

// TestGetChannelFailure tests that a failed construction is not cached
func TestGetChannelFailure(t *testing.T) {
	h := newTestHarness()
	h.failFor["flaky"] = fmt.Errorf("connection refused")
	s := newTestStore(h)

	if _, err := s.GetChannel("flaky"); err == nil {
		t.Fatalf("GetChannel(flaky) succeeded, want error")
	}

	// Once the cause is gone the next call must construct a channel
	h.mu.Lock()
	delete(h.failFor, "flaky")
	h.mu.Unlock()

	if _, err := s.GetChannel("flaky"); err != nil {
		t.Fatalf("GetChannel(flaky) after recovery failed: %v", err)
	}
	if h.created["flaky"] != 2 {
		t.Errorf("channel constructions for flaky = %d, want 2", h.created["flaky"])
	}
}

// TestConventionsIdentity tests the shared conventions instance
func TestConventionsIdentity(t *testing.T) {
	t.Run("Configured instance", func(t *testing.T) {
		conventions := &common.Conventions{IdentityPartSeparator: "-", HiLoRangeSize: 8}
		s := New(Config{
			Client:      common.ClientConfig{URL: "http://localhost:8080", Database: "north"},
			Conventions: conventions,
		})
		if s.Conventions() != conventions {
			t.Errorf("Conventions() did not return the configured instance")
		}
	})

	t.Run("Defaults and identity across calls", func(t *testing.T) {
		s := NewDocumentStore("http://localhost:8080", "north")

		// Available before Initialize, same instance afterwards
		before := s.Conventions()
		if before.IdentityPartSeparator != "/" || before.HiLoRangeSize != 32 {
			t.Errorf("default conventions = %+v", before)
		}
		if _, err := s.Initialize(); err != nil {
			t.Fatalf("Initialize() failed: %v", err)
		}
		if s.Conventions() != before {
			t.Errorf("Conventions() changed identity after Initialize")
		}
	})
}

// TestOpenSession tests session minting and database resolution
func TestOpenSession(t *testing.T) {
	h := newTestHarness()
	s := newTestStore(h)
	if _, err := s.Initialize(); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}

	a, err := s.OpenSession()
	if err != nil {
		t.Fatalf("OpenSession() failed: %v", err)
	}
	b, err := s.OpenSession()
	if err != nil {
		t.Fatalf("OpenSession() failed: %v", err)
	}
	if a == b || a.ID() == b.ID() {
		t.Errorf("OpenSession() returned the same session twice")
	}
	if a.Database() != "north" {
		t.Errorf("session database = %q, want %q", a.Database(), "north")
	}
	if a.Channel() != b.Channel() {
		t.Errorf("sessions for the same database borrow different channels")
	}

	crm, err := s.OpenSessionWithDatabase("crm")
	if err != nil {
		t.Fatalf("OpenSessionWithDatabase(crm) failed: %v", err)
	}
	if crm.Database() != "crm" || crm.Channel() == a.Channel() {
		t.Errorf("crm session not bound to its own database channel")
	}

	// An explicit channel in the options wins over cache resolution
	own := &testChannel{database: "own", conventions: s.Conventions(), docs: map[string][]byte{}, next: map[string]uint64{}}
	withCh, err := s.OpenSessionWithOptions(SessionOptions{Channel: own})
	if err != nil {
		t.Fatalf("OpenSessionWithOptions() failed: %v", err)
	}
	if withCh.Channel() != own {
		t.Errorf("session ignored the channel from the options")
	}
}

// TestGenerateID tests id generation through the store-wide generator
func TestGenerateID(t *testing.T) {
	s := newTestStore(newTestHarness())
	if _, err := s.Initialize(); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}

	// Type name from the INamedType capability
	id, err := s.GenerateID(context.Background(), order{})
	if err != nil {
		t.Fatalf("GenerateID() failed: %v", err)
	}
	if id != "orders/1" {
		t.Errorf("GenerateID() = %q, want %q", id, "orders/1")
	}

	// Explicit type name addresses the same generator
	id, err = s.GenerateIDForType(context.Background(), nil, "Order", "")
	if err != nil {
		t.Fatalf("GenerateIDForType() failed: %v", err)
	}
	if id != "orders/2" {
		t.Errorf("GenerateIDForType() = %q, want %q", id, "orders/2")
	}

	// Other types and databases get independent counters
	id, err = s.GenerateIDForType(context.Background(), nil, "User", "crm")
	if err != nil {
		t.Fatalf("GenerateIDForType() failed: %v", err)
	}
	if id != "users/1" {
		t.Errorf("GenerateIDForType() = %q, want %q", id, "users/1")
	}

	// Without a type name and without the capability there is nothing to
	// derive the collection from
	_, err = s.GenerateID(context.Background(), struct{ Name string }{"no capability"})
	var storeErr *Error
	if !errors.As(err, &storeErr) || storeErr.Code != RetCInvalidOperation {
		t.Errorf("GenerateID() error = %v, want InvalidOperation", err)
	}
}

// TestClose tests the shutdown behavior of the store
func TestClose(t *testing.T) {
	t.Run("Before Initialize", func(t *testing.T) {
		s := newTestStore(newTestHarness())
		if err := s.Close(context.Background()); err != nil {
			t.Fatalf("Close() before Initialize failed: %v", err)
		}
	})

	t.Run("Returns unused ranges once", func(t *testing.T) {
		h := newTestHarness()
		s := newTestStore(h)
		if _, err := s.Initialize(); err != nil {
			t.Fatalf("Initialize() failed: %v", err)
		}

		// Reserve a range and consume part of it
		if _, err := s.GenerateID(context.Background(), order{}); err != nil {
			t.Fatalf("GenerateID() failed: %v", err)
		}

		if err := s.Close(context.Background()); err != nil {
			t.Fatalf("Close() failed: %v", err)
		}
		if err := s.Close(context.Background()); err != nil {
			t.Fatalf("second Close() failed: %v", err)
		}

		ch := h.channels["north"]
		if len(ch.returned) != 1 {
			t.Fatalf("returned ranges = %d, want 1", len(ch.returned))
		}
		if msg := ch.returned[0]; msg.Last != 1 || msg.Hi != 32 {
			t.Errorf("returned range last=%d hi=%d, want last=1 hi=32", msg.Last, msg.Hi)
		}
	})
}

// TestStoreEndToEnd tests the store, session and generator working together
func TestStoreEndToEnd(t *testing.T) {
	h := newTestHarness()
	s := newTestStore(h)
	if _, err := s.Initialize(); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}

	sess, err := s.OpenSession()
	if err != nil {
		t.Fatalf("OpenSession() failed: %v", err)
	}

	// Store with a generated id, then read it back through a second session
	id, err := sess.Store(context.Background(), order{Product: "keyboard"}, "")
	if err != nil {
		t.Fatalf("Store() failed: %v", err)
	}
	if id != "orders/1" {
		t.Errorf("Store() id = %q, want %q", id, "orders/1")
	}
	if err := sess.SaveChanges(context.Background()); err != nil {
		t.Fatalf("SaveChanges() failed: %v", err)
	}

	reader, err := s.OpenSession()
	if err != nil {
		t.Fatalf("OpenSession() failed: %v", err)
	}
	var got order
	found, err := reader.Load(context.Background(), id, &got)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !found || got.Product != "keyboard" {
		t.Errorf("Load(%q) = found=%v %+v, want the stored order", id, found, got)
	}

	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
}
