package wire

import "encoding/binary"

// Offsets within a frame buffer.
const (
	offSignature = 0
	offLength    = 4
	offCommand   = 6
	offPayload   = 8
)

// FrameView parses frame fields lazily from a caller-provided byte slice.
// Accessors never panic; they report absence instead when the buffer is
// too short to contain the requested field.
type FrameView struct {
	buf []byte
}

// NewFrameView wraps buf for reading. buf is not copied; the view is only
// valid as long as buf is not mutated out from under it.
func NewFrameView(buf []byte) FrameView {
	return FrameView{buf: buf}
}

// Signature returns the frame's leading 32-bit marker.
func (v FrameView) Signature() (uint32, bool) {
	if len(v.buf) < offLength {
		return 0, false
	}
	return binary.LittleEndian.Uint32(v.buf[offSignature:]), true
}

// Length returns the declared payload length in bytes.
func (v FrameView) Length() (uint16, bool) {
	if len(v.buf) < offCommand {
		return 0, false
	}
	return binary.LittleEndian.Uint16(v.buf[offLength:]), true
}

// CommandResponse returns the command (request) or response code.
func (v FrameView) CommandResponse() (uint16, bool) {
	if len(v.buf) < offPayload {
		return 0, false
	}
	return binary.LittleEndian.Uint16(v.buf[offCommand:]), true
}

// Payload returns the payload bytes, aliasing the underlying buffer.
func (v FrameView) Payload() ([]byte, bool) {
	length, ok := v.Length()
	if !ok {
		return nil, false
	}
	end := offPayload + int(length)
	if end+ChecksumSize > len(v.buf) {
		return nil, false
	}
	return v.buf[offPayload:end], true
}

// Checksum returns the trailing checksum field as stored in the buffer.
func (v FrameView) Checksum() (uint16, bool) {
	payload, ok := v.Payload()
	if !ok {
		return 0, false
	}
	off := offPayload + len(payload)
	return binary.LittleEndian.Uint16(v.buf[off:]), true
}

// calculateChecksum folds length, command_response, and the payload's
// little-endian 16-bit words (an odd trailing byte is padded with a zero
// high byte) into the frame's stored checksum field. A frame is valid
// exactly when this accumulation equals 0xFFFF.
func (v FrameView) calculateChecksum() (uint16, bool) {
	payload, ok := v.Payload()
	if !ok {
		return 0, false
	}
	length, _ := v.Length()
	cmd, _ := v.CommandResponse()
	sum, _ := v.Checksum()

	sum = onesComplementAdd(sum, length)
	sum = onesComplementAdd(sum, cmd)

	n := len(payload)
	for i := 0; i+1 < n; i += 2 {
		sum = onesComplementAdd(sum, binary.LittleEndian.Uint16(payload[i:i+2]))
	}
	if n%2 == 1 {
		sum = onesComplementAdd(sum, uint16(payload[n-1]))
	}
	return sum, true
}

// VerifyChecksum reports whether the frame's stored checksum balances the
// one's-complement accumulation described by calculateChecksum.
func (v FrameView) VerifyChecksum() bool {
	sum, ok := v.calculateChecksum()
	return ok && sum == 0xFFFF
}

// IsValid reports whether the frame carries the expected signature and a
// balancing checksum.
func (v FrameView) IsValid() bool {
	sig, ok := v.Signature()
	return ok && sig == Signature && v.VerifyChecksum()
}

// onesComplementAdd folds a 32-bit sum back into 16 bits, carrying any
// overflow into the low word, until it fits.
func onesComplementAdd(lhs, rhs uint16) uint16 {
	sum := uint32(lhs) + uint32(rhs)
	for sum > 0xFFFF {
		sum = (sum & 0xFFFF) + (sum >> 16)
	}
	return uint16(sum)
}

// FrameBuilder assembles a frame into a buffer it owns, sized exactly
// HeaderSize+len(payload)+ChecksumSize.
type FrameBuilder struct {
	buf []byte
}

// NewFrameBuilder writes the signature, length, and command_response
// fields and copies payload into a freshly allocated buffer. Call
// Finalize to compute and store the checksum.
func NewFrameBuilder(cmd uint16, payload []byte) *FrameBuilder {
	buf := make([]byte, offPayload+len(payload)+ChecksumSize)
	binary.LittleEndian.PutUint32(buf[offSignature:], Signature)
	binary.LittleEndian.PutUint16(buf[offLength:], uint16(len(payload)))
	binary.LittleEndian.PutUint16(buf[offCommand:], cmd)
	copy(buf[offPayload:], payload)
	return &FrameBuilder{buf: buf}
}

// Finalize zeroes the checksum field, recomputes the accumulation, stores
// its bitwise complement, and returns the complete frame.
func (b *FrameBuilder) Finalize() []byte {
	checksumOff := len(b.buf) - ChecksumSize
	binary.LittleEndian.PutUint16(b.buf[checksumOff:], 0)
	sum, _ := NewFrameView(b.buf).calculateChecksum()
	binary.LittleEndian.PutUint16(b.buf[checksumOff:], ^sum)
	return b.buf
}

// Encode builds a complete, checksummed frame for cmd and payload.
func Encode(cmd uint16, payload []byte) []byte {
	return NewFrameBuilder(cmd, payload).Finalize()
}

// Decode validates buf as a frame and returns its command/response code
// and payload. The returned payload aliases buf.
func Decode(buf []byte) (cmd uint16, payload []byte, err error) {
	view := NewFrameView(buf)

	sig, ok := view.Signature()
	if !ok {
		return 0, nil, &InvalidFrameError{Reason: "buffer shorter than frame header"}
	}
	if sig != Signature {
		return 0, nil, &InvalidFrameError{Reason: "bad signature"}
	}

	p, ok := view.Payload()
	if !ok {
		return 0, nil, &InvalidFrameError{Reason: "buffer shorter than declared payload length"}
	}
	if !view.VerifyChecksum() {
		return 0, nil, &InvalidFrameError{Reason: "checksum does not balance"}
	}

	c, _ := view.CommandResponse()
	return c, p, nil
}
