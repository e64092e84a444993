package wire

import "time"

// Stage identifies which bring-up stage of the device is currently
// addressed.
type Stage int

const (
	StageRomCode Stage = iota
	StageFDL1
	StageFDL2
)

// String returns the banner substring expected from the device at this
// stage.
func (s Stage) String() string {
	switch s {
	case StageRomCode:
		return "romcode"
	case StageFDL1:
		return "fdl1"
	case StageFDL2:
		return "fdl2"
	default:
		return "unknown"
	}
}

// ImageClass distinguishes the chunking and timeout profile used when
// streaming an image to the device.
type ImageClass int

const (
	ImageClassFDL ImageClass = iota
	ImageClassCode
)

// ChunkSize returns the block size used when streaming an image of this
// class.
func (c ImageClass) ChunkSize() int {
	if c == ImageClassCode {
		return ChunkSizeCode
	}
	return ChunkSizeFDL
}

// EndPartitionTimeout returns the timeout applied to the end_partition
// exchange that follows an image of this class.
func (c ImageClass) EndPartitionTimeout() time.Duration {
	if c == ImageClassCode {
		return EndPartitionTimeoutCode
	}
	return EndPartitionTimeoutRAM
}
