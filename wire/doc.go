// Package wire implements the device bring-up protocol used to flash AXP
// firmware packages over USB or serial.
//
// # Frame format
//
// Every request and response is a signed, checksummed frame, except the raw
// handshake probe and the raw image chunks written after a start_block:
//
//	[SIGNATURE(4)][LENGTH(2)][COMMAND_RESPONSE(2)][PAYLOAD(N)][CHECKSUM(2)]
//
// All multi-byte fields are little-endian. FrameView reads accessors
// lazily from a caller-owned buffer and never panics on a short slice;
// FrameBuilder assembles and checksums an outbound frame. See frame.go for
// the one's-complement checksum algorithm.
//
// # Commands
//
// Build* functions in commands.go construct request frames for the
// device's staged bring-up: entering RAM-write mode, announcing a
// partition or address range, streaming raw chunks, and closing out a
// partition. Responses are accepted only when they carry ResponseACK; any
// other command_response code is reported as UnexpectedResponseError.
//
// # Handshake
//
// The device is probed with three raw, unframed bytes (HandshakeProbe)
// before any frame is sent; its reply is a single frame whose payload is a
// UTF-8 banner naming the active stage ("romcode", "fdl1", ...).
package wire
