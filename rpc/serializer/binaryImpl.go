package serializer

import (
	"encoding/binary"
	"fmt"
	"github.com/ValentinKolb/dDocs/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasID         uint16 = 1 << 0
	hasCollection uint16 = 1 << 1
	hasDocument   uint16 = 1 << 2
	hasAmount     uint16 = 1 << 3
	hasLo         uint16 = 1 << 4
	hasHi         uint16 = 1 << 5
	hasLast       uint16 = 1 << 6
	hasOk         uint16 = 1 << 7
	hasErr        uint16 = 1 << 8
	hasMeta       uint16 = 1 << 9
)

// header is MsgType (1 byte) plus the flag word (2 bytes)
const headerSize = 3

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	// Calculate total size needed
	totalSize := b.sizeBytes(msg)
	result := make([]byte, totalSize)

	// Write message type
	result[0] = byte(msg.MsgType)

	// Initialize flags
	var flags uint16 = 0

	// Set position for writing
	pos := headerSize

	// Handle ID
	if msg.ID != "" {
		flags |= hasID
		pos += writeBytes(result, pos, []byte(msg.ID))
	}

	// Handle Collection
	if msg.Collection != "" {
		flags |= hasCollection
		pos += writeBytes(result, pos, []byte(msg.Collection))
	}

	// Handle Document
	if msg.Document != nil {
		flags |= hasDocument
		pos += writeBytes(result, pos, msg.Document)
	}

	// Handle Amount
	if msg.Amount > 0 {
		flags |= hasAmount
		binary.BigEndian.PutUint64(result[pos:pos+8], msg.Amount)
		pos += 8
	}

	// Handle Lo
	if msg.Lo > 0 {
		flags |= hasLo
		binary.BigEndian.PutUint64(result[pos:pos+8], msg.Lo)
		pos += 8
	}

	// Handle Hi
	if msg.Hi > 0 {
		flags |= hasHi
		binary.BigEndian.PutUint64(result[pos:pos+8], msg.Hi)
		pos += 8
	}

	// Handle Last
	if msg.Last > 0 {
		flags |= hasLast
		binary.BigEndian.PutUint64(result[pos:pos+8], msg.Last)
		pos += 8
	}

	// Handle Ok
	if msg.Ok {
		flags |= hasOk
		result[pos] = 1
		pos += 1
	}

	// Handle Err
	if msg.Err != "" {
		flags |= hasErr
		pos += writeBytes(result, pos, []byte(msg.Err))
	}

	// Handle Meta
	if msg.Meta != nil {
		flags |= hasMeta
		pos += writeBytes(result, pos, msg.Meta)
	}

	// Write the flag word
	binary.BigEndian.PutUint16(result[1:3], flags)

	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	if len(data) < headerSize {
		return fmt.Errorf("message too short: %d bytes", len(data))
	}

	// Read message type and flags
	msg.MsgType = common.MessageType(data[0])
	flags := binary.BigEndian.Uint16(data[1:3])

	pos := headerSize

	// Handle ID
	if flags&hasID != 0 {
		value, n, err := readBytes(data, pos)
		if err != nil {
			return fmt.Errorf("reading id: %v", err)
		}
		msg.ID = string(value)
		pos += n
	}

	// Handle Collection
	if flags&hasCollection != 0 {
		value, n, err := readBytes(data, pos)
		if err != nil {
			return fmt.Errorf("reading collection: %v", err)
		}
		msg.Collection = string(value)
		pos += n
	}

	// Handle Document
	if flags&hasDocument != 0 {
		value, n, err := readBytes(data, pos)
		if err != nil {
			return fmt.Errorf("reading document: %v", err)
		}
		msg.Document = value
		pos += n
	}

	// Handle Amount
	if flags&hasAmount != 0 {
		if pos+8 > len(data) {
			return fmt.Errorf("message truncated at amount")
		}
		msg.Amount = binary.BigEndian.Uint64(data[pos : pos+8])
		pos += 8
	}

	// Handle Lo
	if flags&hasLo != 0 {
		if pos+8 > len(data) {
			return fmt.Errorf("message truncated at lo")
		}
		msg.Lo = binary.BigEndian.Uint64(data[pos : pos+8])
		pos += 8
	}

	// Handle Hi
	if flags&hasHi != 0 {
		if pos+8 > len(data) {
			return fmt.Errorf("message truncated at hi")
		}
		msg.Hi = binary.BigEndian.Uint64(data[pos : pos+8])
		pos += 8
	}

	// Handle Last
	if flags&hasLast != 0 {
		if pos+8 > len(data) {
			return fmt.Errorf("message truncated at last")
		}
		msg.Last = binary.BigEndian.Uint64(data[pos : pos+8])
		pos += 8
	}

	// Handle Ok
	if flags&hasOk != 0 {
		if pos+1 > len(data) {
			return fmt.Errorf("message truncated at ok")
		}
		msg.Ok = data[pos] == 1
		pos += 1
	}

	// Handle Err
	if flags&hasErr != 0 {
		value, n, err := readBytes(data, pos)
		if err != nil {
			return fmt.Errorf("reading err: %v", err)
		}
		msg.Err = string(value)
		pos += n
	}

	// Handle Meta
	if flags&hasMeta != 0 {
		value, n, err := readBytes(data, pos)
		if err != nil {
			return fmt.Errorf("reading meta: %v", err)
		}
		msg.Meta = value
		pos += n
	}

	return nil
}

func (b binarySerializerImpl) ContentType() string {
	return ContentTypeBinary
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// sizeBytes calculates the total number of bytes needed for the message
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	size := headerSize

	if msg.ID != "" {
		size += 4 + len(msg.ID)
	}
	if msg.Collection != "" {
		size += 4 + len(msg.Collection)
	}
	if msg.Document != nil {
		size += 4 + len(msg.Document)
	}
	if msg.Amount > 0 {
		size += 8
	}
	if msg.Lo > 0 {
		size += 8
	}
	if msg.Hi > 0 {
		size += 8
	}
	if msg.Last > 0 {
		size += 8
	}
	if msg.Ok {
		size += 1
	}
	if msg.Err != "" {
		size += 4 + len(msg.Err)
	}
	if msg.Meta != nil {
		size += 4 + len(msg.Meta)
	}

	return size
}

// writeBytes writes a length-prefixed byte slice and returns the bytes written
func writeBytes(dst []byte, pos int, value []byte) int {
	binary.BigEndian.PutUint32(dst[pos:pos+4], uint32(len(value)))
	copy(dst[pos+4:pos+4+len(value)], value)
	return 4 + len(value)
}

// readBytes reads a length-prefixed byte slice and returns the value and the
// number of bytes consumed
func readBytes(data []byte, pos int) ([]byte, int, error) {
	if pos+4 > len(data) {
		return nil, 0, fmt.Errorf("truncated length prefix")
	}
	length := int(binary.BigEndian.Uint32(data[pos : pos+4]))
	if pos+4+length > len(data) {
		return nil, 0, fmt.Errorf("truncated value (want %d bytes)", length)
	}
	value := make([]byte, length)
	copy(value, data[pos+4:pos+4+length])
	return value, 4 + length, nil
}
