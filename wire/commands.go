package wire

import "unicode/utf16"

// BuildStartRAMDownload constructs the start_ram_download request. It
// carries no payload.
func BuildStartRAMDownload() []byte {
	return Encode(CmdStartRAMDownload, nil)
}

// BuildStartPartitionAbsolute32 constructs a start_partition request
// addressing a 32-bit absolute range, as used for FDL1 (the mask-ROM
// loader only accepts a 32-bit address).
func BuildStartPartitionAbsolute32(addr, length uint32) []byte {
	payload := make([]byte, 8)
	putUint32LE(payload[0:4], addr)
	putUint32LE(payload[4:8], length)
	return Encode(CmdStartPartition, payload)
}

// BuildStartPartitionAbsolute64 constructs a start_partition request
// addressing a 64-bit absolute range, as used for FDL2.
func BuildStartPartitionAbsolute64(addr, length uint64) []byte {
	payload := make([]byte, 16)
	putUint64LE(payload[0:8], addr)
	putUint64LE(payload[8:16], length)
	return Encode(CmdStartPartition, payload)
}

// BuildStartPartitionID constructs a start_partition request addressing a
// named flash partition. name is encoded as UTF-16LE into the first 72
// bytes of the payload (36 code units); it must not exceed that length.
// totalLength follows as a little-endian uint64 at bytes 72..80, and the
// last 8 bytes of the 88-byte payload are reserved and left zero.
func BuildStartPartitionID(name string, totalLength uint64) ([]byte, error) {
	const nameField = 72
	units := utf16.Encode([]rune(name))
	if len(units)*2 > nameField {
		return nil, &PackageManifestError{Detail: "partition name exceeds 36 UTF-16 code units"}
	}

	payload := make([]byte, 88)
	for i, u := range units {
		putUint16LE(payload[i*2:i*2+2], u)
	}
	putUint64LE(payload[72:80], totalLength)

	return Encode(CmdStartPartition, payload), nil
}

// BuildStartBlock constructs the start_block request announcing the size
// of the next raw chunk. The 10 reserved bytes following the block size
// are always zero-filled and never interpreted on read.
func BuildStartBlock(blockSize uint16) []byte {
	payload := make([]byte, 2+StartBlockReservedBytes)
	putUint16LE(payload[0:2], blockSize)
	return Encode(CmdStartBlock, payload)
}

// BuildEndPartition constructs the end_partition request. It carries no
// payload.
func BuildEndPartition() []byte {
	return Encode(CmdEndPartition, nil)
}

// BuildEndRAMDownload constructs the end_ram_download request. It carries
// no payload.
func BuildEndRAMDownload() []byte {
	return Encode(CmdEndRAMDownload, nil)
}

// BuildSetPartitionTable constructs the set_partition_table request,
// embedding the already-serialized partition table as its payload.
func BuildSetPartitionTable(table []byte) []byte {
	return Encode(CmdSetPartitionTable, table)
}

func putUint16LE(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

func putUint32LE(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func putUint64LE(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}
