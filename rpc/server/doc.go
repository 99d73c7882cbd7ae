// Package server implements an in-memory document server speaking the same
// wire protocol the client channels use. It exists for development and for
// end-to-end tests; nothing is persisted.
//
// Databases are created implicitly on first access. Each database keeps its
// documents in a concurrent map and tracks one identifier counter per
// collection for the Hi-Lo protocol: HiLoNext reserves the next range,
// HiLoReturn hands the unused tail of the most recent range back so the ids
// can be reissued. Ranges returned out of order are dropped, the Hi-Lo
// scheme tolerates the resulting gaps.
//
// The wire format of the response always matches the request: the handler
// resolves the serializer from the Content-Type header. Request counts are
// exported on GET /metrics in Prometheus text format.
package server
