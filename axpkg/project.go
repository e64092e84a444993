package axpkg

import "github.com/axflash/axdl-go/wire"

// ImageType classifies the role an image plays during bring-up.
type ImageType int

const (
	ImageInit ImageType = iota
	ImageEip
	ImageFDL1
	ImageFDL2
	ImageEraseFlash
	ImageCode
)

// String renders the manifest's own spelling for the type.
func (t ImageType) String() string {
	switch t {
	case ImageInit:
		return "INIT"
	case ImageEip:
		return "EIP"
	case ImageFDL1:
		return "FDL1"
	case ImageFDL2:
		return "FDL2"
	case ImageEraseFlash:
		return "ERASEFLASH"
	case ImageCode:
		return "CODE"
	default:
		return "UNKNOWN"
	}
}

// ParseImageType maps a manifest <Type> string to an ImageType. The match
// is case-sensitive; anything else is a manifest error.
func ParseImageType(s string) (ImageType, error) {
	switch s {
	case "INIT":
		return ImageInit, nil
	case "EIP":
		return ImageEip, nil
	case "FDL1":
		return ImageFDL1, nil
	case "FDL2":
		return ImageFDL2, nil
	case "ERASEFLASH":
		return ImageEraseFlash, nil
	case "CODE":
		return ImageCode, nil
	default:
		return 0, &wire.PackageManifestError{Detail: "unknown image type " + s}
	}
}

// Block describes where an image lands: either an absolute device address
// or a named partition resolved against the partition table.
type Block interface {
	isBlock()
}

// AbsoluteBlock is a raw address/offset, used for INIT, FDL1, and FDL2
// images that load before any partition table exists.
type AbsoluteBlock uint64

func (AbsoluteBlock) isBlock() {}

// PartitionBlock names a partition from the table this image writes into.
type PartitionBlock string

func (PartitionBlock) isBlock() {}

// Image is one entry in the manifest's image list.
type Image struct {
	Flag        uint32
	Name        string
	Type        ImageType
	Block       Block
	File        string // empty means no file is associated with this entry
	Description string
}

// HasFile reports whether this image references a file in the package.
func (img Image) HasFile() bool {
	return img.File != ""
}

// Partition is one row of the device's partition table.
type Partition struct {
	Name string
	Gap  uint64
	Size uint64
}

// PartitionTable is the full partition layout the manifest declares,
// matching the binary record format the device expects over the wire.
type PartitionTable struct {
	Strategy   byte
	Unit       byte
	Partitions []Partition
}

// Project is the fully parsed contents of one AXP package manifest.
type Project struct {
	Alias          string
	Name           string
	Version        string
	FDLLevel       uint32
	PartitionTable PartitionTable
	Images         []Image
}

// ImageByName returns the first image whose Name matches, or false if none
// does. The orchestrator uses this to locate "FDL1" and "FDL2" entries.
func (p *Project) ImageByName(name string) (Image, bool) {
	for _, img := range p.Images {
		if img.Name == name {
			return img, true
		}
	}
	return Image{}, false
}
