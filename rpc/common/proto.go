package common

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// General fields
	ID         string `json:"id,omitempty"`         // Used for: DocPut, DocGet, DocDelete, DocHas
	Collection string `json:"collection,omitempty"` // Used for: DocPut, HiLoNext, HiLoReturn
	Document   []byte `json:"document,omitempty"`   // Used for: DocPut (request), DocGet (response)

	// Identifier range fields (Hi-Lo protocol)
	Amount uint64 `json:"amount,omitempty"` // Used for: HiLoNext request (requested range size)
	Lo     uint64 `json:"lo,omitempty"`     // Used for: HiLoNext response (first id of range, inclusive)
	Hi     uint64 `json:"hi,omitempty"`     // Used for: HiLoNext response (last id of range, inclusive)
	Last   uint64 `json:"last,omitempty"`   // Used for: HiLoReturn request (last id actually handed out)

	// Response only fields
	Ok  bool   `json:"ok,omitempty"`  // Used for: DocGet, DocHas, DocDelete responses
	Err string `json:"err,omitempty"` // Empty if no error, otherwise contains the error message

	// Meta information
	Meta []byte `json:"meta,omitempty"` // Used for: Stats response payload, otherwise free for adapters
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewPutRequest creates a new DocPut request
func NewPutRequest(id, collection string, document []byte) *Message {
	return &Message{
		MsgType:    MsgTDocPut,
		ID:         id,
		Collection: collection,
		Document:   document,
	}
}

// NewPutResponse creates a new DocPut response
func NewPutResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTDocPut,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewGetRequest creates a new DocGet request
func NewGetRequest(id string) *Message {
	return &Message{
		MsgType: MsgTDocGet,
		ID:      id,
	}
}

// NewGetResponse creates a new DocGet response
func NewGetResponse(document []byte, ok bool, err error) *Message {
	msg := &Message{
		MsgType:  MsgTDocGet,
		Ok:       ok,
		Document: document,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewDeleteRequest creates a new DocDelete request
func NewDeleteRequest(id string) *Message {
	return &Message{
		MsgType: MsgTDocDelete,
		ID:      id,
	}
}

// NewDeleteResponse creates a new DocDelete response
func NewDeleteResponse(ok bool, err error) *Message {
	msg := &Message{
		MsgType: MsgTDocDelete,
		Ok:      ok,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewHasRequest creates a new DocHas request
func NewHasRequest(id string) *Message {
	return &Message{
		MsgType: MsgTDocHas,
		ID:      id,
	}
}

// NewHasResponse creates a new DocHas response
func NewHasResponse(ok bool, err error) *Message {
	msg := &Message{
		MsgType: MsgTDocHas,
		Ok:      ok,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewHiLoNextRequest creates a new HiLoNext request asking the server to
// reserve the next identifier range for a collection
func NewHiLoNextRequest(collection string, amount uint64) *Message {
	return &Message{
		MsgType:    MsgTHiLoNext,
		Collection: collection,
		Amount:     amount,
	}
}

// NewHiLoNextResponse creates a new HiLoNext response carrying the reserved
// range [lo, hi] (both inclusive)
func NewHiLoNextResponse(lo, hi uint64, err error) *Message {
	msg := &Message{
		MsgType: MsgTHiLoNext,
		Lo:      lo,
		Hi:      hi,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewHiLoReturnRequest creates a new HiLoReturn request giving the unused tail
// of a reserved range (everything after last, up to hi) back to the server
func NewHiLoReturnRequest(collection string, last, hi uint64) *Message {
	return &Message{
		MsgType:    MsgTHiLoReturn,
		Collection: collection,
		Last:       last,
		Hi:         hi,
	}
}

// NewHiLoReturnResponse creates a new HiLoReturn response
func NewHiLoReturnResponse(ok bool, err error) *Message {
	msg := &Message{
		MsgType: MsgTHiLoReturn,
		Ok:      ok,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewStatsRequest creates a new Stats request
func NewStatsRequest() *Message {
	return &Message{
		MsgType: MsgTStats,
	}
}

// NewStatsResponse creates a new Stats response with the serialized statistics
// as meta payload
func NewStatsResponse(meta []byte, err error) *Message {
	msg := &Message{
		MsgType: MsgTStats,
		Meta:    meta,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewPingRequest creates a new Ping request
func NewPingRequest() *Message {
	return &Message{
		MsgType: MsgTPing,
	}
}

// NewPingResponse creates a new Ping response
func NewPingResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTPing,
		Ok:      err == nil,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Err:     err,
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in the document protocol.
type MessageType uint8

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTDocPut:
		return "put"
	case MsgTDocGet:
		return "get"
	case MsgTDocDelete:
		return "delete"
	case MsgTDocHas:
		return "has"
	case MsgTHiLoNext:
		return "hiloNext"
	case MsgTHiLoReturn:
		return "hiloReturn"
	case MsgTStats:
		return "stats"
	case MsgTPing:
		return "ping"
	case MsgTError:
		return "error"
	case MsgTSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	// Convert string back to MessageType
	switch s {
	case "put":
		*t = MsgTDocPut
	case "get":
		*t = MsgTDocGet
	case "delete":
		*t = MsgTDocDelete
	case "has":
		*t = MsgTDocHas
	case "hiloNext":
		*t = MsgTHiLoNext
	case "hiloReturn":
		*t = MsgTHiLoReturn
	case "stats":
		*t = MsgTStats
	case "ping":
		*t = MsgTPing
	case "error":
		*t = MsgTError
	case "success":
		*t = MsgTSuccess
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// Document operations

	MsgTDocPut    // Store a document under an id
	MsgTDocGet    // Load a document by id
	MsgTDocDelete // Delete a document by id
	MsgTDocHas    // Check if a document exists

	// Hi-Lo identifier range operations

	MsgTHiLoNext   // Reserve the next identifier range for a collection
	MsgTHiLoReturn // Return the unused tail of a reserved range

	// Maintenance operations

	MsgTStats // Database statistics
	MsgTPing  // Liveness check
)
