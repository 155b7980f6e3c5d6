package comm

import (
	"encoding/binary"
	"time"

	"github.com/robotalks/bahrs.go/pkg/l0/crc"
	"github.com/robotalks/bahrs.go/pkg/l0/msgs"
)

// Frame layout.
const (
	SyncMarker0 byte = 0x4E
	SyncMarker1 byte = 0x45

	HeaderSize   = 5
	PaddingSize  = 1
	ChecksumSize = crc.Size

	// FrameSize is the size of the only known frame (NavData).
	FrameSize = HeaderSize + msgs.NavDataSize + PaddingSize + ChecksumSize
)

// ProtocolVersion is the version written by EncodeFrame.
const ProtocolVersion uint16 = 1

// Header is the decoded frame header.
type Header struct {
	Version uint16
	Type    byte
}

// ParseHeader decodes the header at the beginning of b.
func ParseHeader(b []byte) (h Header, err error) {
	if len(b) < HeaderSize {
		return h, ErrShortFrame
	}
	if b[0] != SyncMarker0 || b[1] != SyncMarker1 {
		return h, ErrNoSyncMarker
	}
	h.Version = binary.LittleEndian.Uint16(b[2:4])
	h.Type = b[4]
	return h, nil
}

// FrameSizeFor returns the frame size of a message type.
// Supporting more message types starts here: the parser consumes
// FrameSize bytes for anything unknown.
func FrameSizeFor(msgType byte) (int, bool) {
	switch msgType {
	case msgs.NavDataType:
		return HeaderSize + msgs.NavDataSize + PaddingSize + ChecksumSize, true
	}
	return 0, false
}

// EncodeFrame builds a complete frame around payload, padding the body to
// a whole number of words and appending the checksum.
func EncodeFrame(version uint16, msgType byte, payload []byte) []byte {
	size := HeaderSize + len(payload) + ChecksumSize
	if pad := (HeaderSize + len(payload)) % crc.WordSize; pad != 0 {
		size += crc.WordSize - pad
	}
	b := make([]byte, HeaderSize, size)
	b[0], b[1] = SyncMarker0, SyncMarker1
	binary.LittleEndian.PutUint16(b[2:4], version)
	b[4] = msgType
	b = append(b, payload...)
	b = b[:size-ChecksumSize]
	return crc.Append(b)
}

// EncodeNavData encodes a NavData frame.
func EncodeNavData(raw msgs.RawNavData) []byte {
	return EncodeFrame(ProtocolVersion, msgs.NavDataType, raw.Bytes())
}

// ValidateFrame checks a frame window and returns the header and payload.
func ValidateFrame(window []byte) (h Header, payload []byte, err error) {
	if h, err = ParseHeader(window); err != nil {
		return
	}
	size, ok := FrameSizeFor(h.Type)
	if !ok {
		err = &UnsupportedTypeError{Type: h.Type}
		return
	}
	if size != len(window) {
		err = &FrameSizeError{Type: h.Type, Expected: size, Actual: len(window)}
		return
	}
	if !crc.Verify(window) {
		err = ErrChecksum
		return
	}
	payload = window[HeaderSize : size-PaddingSize-ChecksumSize]
	return
}

// DecodeFrame validates a frame window and decodes its NavData.
// clock is only called once the frame is valid.
func DecodeFrame(window []byte, clock func() time.Time) (msgs.NavData, error) {
	_, payload, err := ValidateFrame(window)
	if err != nil {
		return msgs.NavData{}, err
	}
	return msgs.DecodeNavData(payload, clock())
}
