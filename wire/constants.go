package wire

import "time"

// Signature is the fixed 32-bit marker at offset 0 of every frame.
const Signature uint32 = 0x5C6D8E9F

// Frame layout sizes, in bytes.
const (
	// HeaderSize is signature(4) + length(2) + command_response(2).
	HeaderSize = 4 + 2 + 2

	// ChecksumSize is the trailing checksum field.
	ChecksumSize = 2

	// MinFrameSize is the smallest legal frame: header + checksum, no payload.
	MinFrameSize = HeaderSize + ChecksumSize
)

// Command/response codes understood by the device's bring-up protocol.
const (
	// CmdStartRAMDownload enters RAM-write mode ahead of an FDL upload.
	CmdStartRAMDownload uint16 = 0x0000

	// CmdStartPartition announces the address or partition about to be
	// written. Its payload shape depends on addressing mode (see
	// commands.go: BuildStartPartitionAbsolute32/64, BuildStartPartitionID).
	CmdStartPartition uint16 = 0x0001

	// CmdStartBlock announces the size of the next raw chunk.
	CmdStartBlock uint16 = 0x0002

	// CmdEndPartition closes the partition currently being written.
	CmdEndPartition uint16 = 0x0003

	// CmdEndRAMDownload returns control to the device's resident loader.
	CmdEndRAMDownload uint16 = 0x0004

	// CmdSetPartitionTable installs the binary partition table.
	CmdSetPartitionTable uint16 = 0x000B

	// ResponseACK is the command_response value of an accepted response frame.
	ResponseACK uint16 = 0x0080
)

// HandshakeProbe is sent raw (not framed) to elicit the device's banner.
var HandshakeProbe = [3]byte{0x3C, 0x3C, 0x3C}

// StartBlockReservedBytes is the zero-filled padding following the 2-byte
// block size in a start_block payload. The device ignores these; the
// builder always zeroes them and nothing reads them back.
const StartBlockReservedBytes = 10

// Chunk sizes for write_image streaming, per image class.
const (
	ChunkSizeFDL  = 1000
	ChunkSizeCode = 48000
)

// DefaultProgressEvery is how many chunks elapse between progress callbacks.
const DefaultProgressEvery = 100

// Protocol timeouts.
const (
	HandshakeTimeout = 5 * time.Second
	ControlTimeout   = 5 * time.Second
	ChunkTimeout     = 60 * time.Second

	// EndPartitionTimeoutRAM applies to end_partition after an FDL upload.
	EndPartitionTimeoutRAM = 5 * time.Second

	// EndPartitionTimeoutCode applies to end_partition after a CODE image.
	EndPartitionTimeoutCode = 60 * time.Second
)

// Device identity (§6): USB VID/PID and bulk endpoints, plus the serial
// fallback's line settings.
const (
	USBVendorID    = 0x32C9
	USBProductID   = 0x1000
	USBEndpointOut = 0x01
	USBEndpointIn  = 0x81

	SerialBaudRate = 115200
)
