package hilo

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/dDocs/rpc/channel"
	"github.com/ValentinKolb/dDocs/rpc/common"
	"github.com/lni/dragonboat/v4/logger"
	"sync"
)

var Logger = logger.GetLogger("hilo")

// --------------------------------------------------------------------------
// Interface Definitions for dependency injection
// --------------------------------------------------------------------------

// IStoreRef is the slice of the document store a generator needs: channel
// resolution through the store's cache and the shared conventions. The store
// passes itself in, so generators and store always agree on channels.
type IStoreRef interface {
	// GetChannel resolves the request channel for a database name, falling
	// back to the store's default database for the empty name
	GetChannel(database string) (channel.IRequestChannel, error)
	// Conventions returns the store-wide conventions instance
	Conventions() *common.Conventions
}

// --------------------------------------------------------------------------
// Per-collection generator
// --------------------------------------------------------------------------

// NewGenerator creates a generator for one (database, collection) pair.
// An empty database means the store's default database.
func NewGenerator(store IStoreRef, database, collection string) *Generator {
	return &Generator{
		store:      store,
		database:   database,
		collection: collection,
	}
}

// Generator hands out identifiers for one collection of one database using
// the Hi-Lo scheme: a contiguous range is reserved from the server and
// consumed locally, so most NextID calls complete without a round-trip.
type Generator struct {
	store      IStoreRef
	database   string
	collection string

	// mu serializes range consumption and replenishment for this
	// collection; generators of other collections are independent
	mu       sync.Mutex
	next     uint64 // next id to hand out
	max      uint64 // last id of the reserved range (inclusive)
	reserved bool
}

// NextID returns the next identifier, reserving a new range from the server
// when the current one is exhausted.
func (g *Generator) NextID(ctx context.Context) (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.reserved || g.next > g.max {
		if err := g.replenish(ctx); err != nil {
			return 0, err
		}
	}

	id := g.next
	g.next++
	return id, nil
}

// ReturnUnused gives the unused part of the reserved range back to the
// server. It is a no-op when nothing is reserved and never reserves again.
func (g *Generator) ReturnUnused(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.reserved {
		return nil
	}

	if g.next > g.max {
		// Range fully consumed, nothing to give back
		g.reserved = false
		return nil
	}

	ch, err := g.store.GetChannel(g.database)
	if err != nil {
		return err
	}

	resp, err := ch.Execute(ctx, common.NewHiLoReturnRequest(g.collection, g.next-1, g.max))
	if err != nil {
		return err
	}
	if !resp.Ok {
		// The server could not reclaim the range (another range was
		// reserved in the meantime); the remaining ids are lost, which
		// the scheme tolerates
		Logger.Debugf("Server dropped returned range [%d, %d] for %s", g.next, g.max, g.collection)
	}

	g.reserved = false
	g.next = 0
	g.max = 0
	return nil
}

// replenish reserves the next range from the server. Caller must hold g.mu.
func (g *Generator) replenish(ctx context.Context) error {
	ch, err := g.store.GetChannel(g.database)
	if err != nil {
		return err
	}

	amount := ch.Conventions().HiLoRangeSize
	resp, err := ch.Execute(ctx, common.NewHiLoNextRequest(g.collection, amount))
	if err != nil {
		return err
	}

	if resp.Lo == 0 || resp.Hi < resp.Lo {
		return fmt.Errorf("hilo %s: server returned invalid range [%d, %d]", g.collection, resp.Lo, resp.Hi)
	}

	Logger.Debugf("Reserved range [%d, %d] for %s", resp.Lo, resp.Hi, g.collection)
	g.next = resp.Lo
	g.max = resp.Hi
	g.reserved = true
	return nil
}
