package store

import (
	"fmt"
	"github.com/ValentinKolb/dDocs/lib/session"
	"github.com/ValentinKolb/dDocs/rpc/channel"
	"github.com/ValentinKolb/dDocs/rpc/common"
	"github.com/ValentinKolb/dDocs/rpc/serializer"
)

// --------------------------------------------------------------------------
// Factory and capability types
// --------------------------------------------------------------------------

// ChannelFactory is a function type that creates the request channel for a
// database name. This is used to abstract channel construction from the
// store; the default factory builds HTTP channels from the client config.
type ChannelFactory func(database string) (channel.IRequestChannel, error)

// INamedType is the capability an entity implements to take part in
// type-based id generation (see session.INamedType).
type INamedType = session.INamedType

// Config holds everything needed to construct a DocumentStore.
type Config struct {
	// Client carries url, default database, credential and HTTP parameters
	Client common.ClientConfig

	// Conventions is the naming policy of the store. Nil means defaults.
	// The store takes ownership: the instance must not be mutated after New.
	Conventions *common.Conventions

	// Serializer is the wire format for all channels created by the store.
	// Nil means JSON.
	Serializer serializer.IRPCSerializer

	// NewChannel overrides channel construction. Nil means HTTP channels.
	NewChannel ChannelFactory
}

// SessionOptions configures OpenSessionWithOptions. The zero value opens a
// session against the store's default database.
type SessionOptions struct {
	// Database overrides the store's default database
	Database string
	// Channel overrides channel resolution; when set, the session uses this
	// channel instead of the store's cached one
	Channel channel.IRequestChannel
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	errorCode := ""
	switch e.Code {
	case RetCInternalError:
		errorCode = "InternalError"
	case RetCInvalidOperation:
		errorCode = "InvalidOperation"
	default:
		errorCode = "Unknown"
	}

	return fmt.Sprintf("DocumentStoreError (code %s): %s", errorCode, e.Msg)
}

// NewError creates a new Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess          RetCode = iota // 0: Command executed successfully.
	RetCInternalError                   // 1: Command failed due to an internal error.
	RetCInvalidOperation                // 2: Invalid operation (programmer misuse).
)
