// Package store provides the DocumentStore, the long-lived coordinator of
// the document database client. It manages the lifecycle of everything the
// client shares: per-database request channels, the naming conventions, the
// Hi-Lo key generator and the maintenance facade, and it mints unit-of-work
// sessions.
//
// The package focuses on:
//   - Exactly-once, lazy creation of all shared state under concurrency
//   - A single initialization gate enforced at one place
//   - Fail-fast error reporting without internal retries
//
// Key Components:
//
//   - DocumentStore: constructed via New (or NewDocumentStore), then armed
//     with Initialize. The channel cache guarantees at most one request
//     channel per database name for the lifetime of the store; conventions
//     and the key generator are created exactly once. Close returns unused
//     identifier ranges to the server on shutdown.
//
//   - Error System: a structured error type with return codes. All
//     programmer-misuse conditions (missing default database, use before
//     Initialize) surface as RetCInvalidOperation with a remediation hint;
//     transport errors propagate unchanged.
//
//   - Operations: a small maintenance facade (statistics, ping) bound to
//     the default database's channel.
//
// Lifecycle:
//
//	s, err := store.NewDocumentStore("http://localhost:8080", "Northwind").Initialize()
//	...
//	sess, err := s.OpenSession()
//	id, err := s.GenerateID(ctx, order)
//	...
//	err = s.Close(ctx)
//
// Thread Safety:
//
//	A single DocumentStore is meant to be shared; all methods are safe for
//	concurrent use. Sessions obtained from it are single-owner.
package store
