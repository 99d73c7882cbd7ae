package serializer

import "github.com/ValentinKolb/dDocs/rpc/common"

// IRPCSerializer is the interface for all Message Serializers
type IRPCSerializer interface {
	// Serialize serializes a Message into a byte array
	// It returns the serialized byte array and an error if any
	Serialize(msg common.Message) ([]byte, error)
	// Deserialize deserializes a byte array into a Message
	// It takes a byte array and a pointer to a Message as parameters
	// It returns an error if any
	Deserialize(b []byte, msg *common.Message) error
	// ContentType returns the MIME type announced on the wire for this format
	ContentType() string
}

// ForContentType returns the serializer matching a MIME type announced by a
// peer, or nil if the type is unknown.
func ForContentType(contentType string) IRPCSerializer {
	switch contentType {
	case ContentTypeJSON:
		return NewJSONSerializer()
	case ContentTypeGOB:
		return NewGOBSerializer()
	case ContentTypeBinary:
		return NewBinarySerializer()
	default:
		return nil
	}
}

// Content types of the built-in serializers
const (
	ContentTypeJSON   = "application/json"
	ContentTypeGOB    = "application/x-gob"
	ContentTypeBinary = "application/x-ddocs-binary"
)
