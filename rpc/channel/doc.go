// Package channel implements the per-database request-dispatch channel of
// the document store client.
//
// A channel owns the HTTP connection pool to exactly one logical database
// and is created at most once per database name for the lifetime of a store
// (the store's channel cache enforces this). Sessions and key generators
// borrow channels, they never own them.
//
// The HTTP implementation posts serialized protocol messages to
// {URL}/dbs/{database}, retries failed sends up to the configured retry
// count, verifies that the response carries the expected message type and
// surfaces protocol errors as Go errors. Request and failure counts are
// exported as VictoriaMetrics counters labeled by database.
//
// Thread Safety:
//
//	Channels are safe for concurrent use from multiple goroutines.
package channel
