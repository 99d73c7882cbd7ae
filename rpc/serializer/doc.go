// Package serializer provides pluggable codecs for the document protocol
// messages exchanged between client and server.
//
// Three implementations are included:
//
//   - JSON (NewJSONSerializer): human-readable, interoperable, the default.
//
//   - GOB (NewGOBSerializer): Go's native binary encoding.
//
//   - Binary (NewBinarySerializer): a custom length-prefixed format with a
//     flag word marking which optional message fields are present. Smallest
//     payloads and fastest encoding of the three.
//
// Every serializer announces a MIME content type; ForContentType resolves
// the matching codec on the receiving side, so client and server do not have
// to agree on a format out of band.
package serializer
