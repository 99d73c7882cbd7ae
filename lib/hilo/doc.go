// Package hilo implements the Hi-Lo document identifier generator of the
// client.
//
// The Hi-Lo scheme reserves a contiguous identifier range from the server
// and hands the ids out locally until the range is exhausted, so generating
// an id is usually free of network round-trips. On shutdown the unused tail
// of every reserved range is returned to the server for reissue.
//
// Key Components:
//
//   - Generator: identifier source for one (database, collection) pair.
//     Range consumption and replenishment are serialized per generator;
//     generators of different collections never block each other.
//
//   - MultiGenerator: the store-wide generator constructed during store
//     initialization. It creates per-collection generators lazily (exactly
//     once per pair) and drains all of them on ReturnUnusedRanges.
//
// Generators reach the server through the owning store's channel cache
// (IStoreRef), never through private connections, so the "one channel per
// database" invariant of the store also holds for identifier traffic.
package hilo
