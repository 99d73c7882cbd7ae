// Package common provides core data structures and utilities shared across
// the document store client. It defines the wire protocol, configuration
// structures and conventions used by the other packages.
//
// The package focuses on:
//   - Message protocol definition for client/server communication
//   - Configuration structures for client and development server
//   - Naming conventions shared by channels, sessions and key generators
//   - Custom logging implementation integrated with the dragonboat logger
//
// Key Components:
//
//   - Message: Core data structure for all communication with the document
//     service, with a flexible structure that adapts to different operation
//     types. Includes factory methods for creating the various request and
//     response messages.
//
//   - MessageType: Enumeration defining all supported operation types,
//     categorized into document operations, Hi-Lo identifier range
//     operations and control messages.
//
//   - ClientConfig / ServerConfig: Connection parameters of the client and
//     the development server.
//
//   - Conventions: Read-only naming policy of a store. One instance is
//     created per store and shared by everything the store creates.
//
//   - Logger: Custom logging implementation that plugs into the dragonboat
//     logging facade while providing consistent formatting across the
//     application.
package common
