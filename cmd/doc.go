// Package cmd implements the command-line interface for the dDocs document
// database client. It provides a hierarchical command structure with operations
// for running the development server and interacting with a database as a client.
//
// The package is organized into several subpackages:
//
//   - docs: Commands for document operations (put, get, del, has, stats, ping)
//   - id: Commands for generating document ids via the Hi-Lo scheme
//   - serve: Commands for starting and configuring the in-memory dev server
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See ddocs -help for a list of all commands.
package cmd
