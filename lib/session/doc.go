// Package session implements the unit-of-work session of the document store
// client.
//
// A session is short-lived: it is created by DocumentStore.OpenSession,
// bound to exactly one database and its request channel, used by a single
// owner and then discarded. The store never tracks the sessions it opens;
// every OpenSession call yields a fresh instance with a unique identifier.
//
// Writes (Store, Delete) are buffered inside the session and sent in order
// by SaveChanges; reads (Load) go to the server immediately. Entities are
// serialized as JSON. Entities implementing INamedType can have their
// document id generated by the store's Hi-Lo key generator.
package session
