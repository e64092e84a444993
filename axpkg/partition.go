package axpkg

import (
	"strconv"
	"unicode/utf16"

	"github.com/axflash/axdl-go/wire"
)

// partitionRecordSize is the fixed size of one serialized Partition record.
const partitionRecordSize = 0x58

// partitionNameField is the byte width reserved for the UTF-16LE name
// inside a partition record; the name must fit within it.
const partitionNameField = 0x40

// partitionTableMagic opens every serialized partition table.
var partitionTableMagic = [4]byte{'p', 'a', 'r', ':'}

// Serialize encodes the partition table in the binary layout the device's
// set_partition_table command expects: a 4-byte magic, strategy, unit, a
// little-endian partition count, then one fixed-size record per partition.
func (t PartitionTable) Serialize() ([]byte, error) {
	out := make([]byte, 0, 4+2+2+len(t.Partitions)*partitionRecordSize)
	out = append(out, partitionTableMagic[:]...)
	out = append(out, t.Strategy, t.Unit)
	out = append(out, byte(len(t.Partitions)), byte(len(t.Partitions)>>8))

	for _, p := range t.Partitions {
		record, err := p.toBytes()
		if err != nil {
			return nil, err
		}
		out = append(out, record...)
	}
	return out, nil
}

// toBytes encodes one partition record: name as UTF-16LE at offset 0,
// zero-padded to partitionNameField bytes, gap and size as little-endian
// uint64 at 0x40 and 0x48, remainder reserved-zero.
func (p Partition) toBytes() ([]byte, error) {
	units := utf16.Encode([]rune(p.Name))
	if len(units)*2 > partitionNameField {
		return nil, &wire.PackageManifestError{Detail: "partition name exceeds " + strconv.Itoa(partitionNameField) + " bytes in UTF-16LE"}
	}

	record := make([]byte, partitionRecordSize)
	for i, u := range units {
		record[i*2] = byte(u)
		record[i*2+1] = byte(u >> 8)
	}
	putUint64LE(record[0x40:0x48], p.Gap)
	putUint64LE(record[0x48:0x50], p.Size)
	return record, nil
}

func putUint64LE(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}
