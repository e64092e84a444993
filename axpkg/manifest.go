package axpkg

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/axflash/axdl-go/wire"
)

// manifestConfig mirrors the raw XML shape of an AXP package manifest.
type manifestConfig struct {
	XMLName xml.Name        `xml:"Config"`
	Project manifestProject `xml:"Project"`
}

type manifestProject struct {
	Alias      string             `xml:"alias,attr"`
	Name       string             `xml:"name,attr"`
	Version    string             `xml:"version,attr"`
	FDLLevel   uint32             `xml:"FDLLevel"`
	Partitions manifestPartitions `xml:"Partitions"`
	ImgList    manifestImgList    `xml:"ImgList"`
}

type manifestPartitions struct {
	Strategy   byte                `xml:"strategy,attr"`
	Unit       byte                `xml:"unit,attr"`
	Partitions []manifestPartition `xml:"Partition"`
}

type manifestPartition struct {
	ID   string `xml:"id,attr"`
	Gap  uint64 `xml:"gap,attr"`
	Size uint64 `xml:"size,attr"`
}

type manifestImgList struct {
	Images []manifestImg `xml:"Img"`
}

type manifestImg struct {
	Flag        uint32          `xml:"flag,attr"`
	Name        string          `xml:"name,attr"`
	Select      uint32          `xml:"select,attr"`
	ID          string          `xml:"ID"`
	Type        string          `xml:"Type"`
	Block       manifestBlock   `xml:"Block"`
	File        string          `xml:"File"`
	Auth        manifestAuth    `xml:"Auth"`
	Description string          `xml:"Description"`
}

type manifestBlock struct {
	ID   *string `xml:"id,attr"`
	Base string  `xml:"Base"`
	Size string  `xml:"Size"`
}

type manifestAuth struct {
	Algo uint32 `xml:"algo,attr"`
}

// parseManifest decodes raw manifest XML into the domain Project type,
// applying the mapping rules: Block.id present selects a named partition,
// absent selects an absolute address parsed from Base; an empty <File/>
// means the image has no associated file; <Type> maps case-sensitively.
func parseManifest(data []byte) (*Project, error) {
	var cfg manifestConfig
	if err := xml.Unmarshal(data, &cfg); err != nil {
		return nil, &wire.PackageManifestError{Detail: "parsing manifest XML: " + err.Error()}
	}

	raw := cfg.Project
	project := &Project{
		Alias:    raw.Alias,
		Name:     raw.Name,
		Version:  raw.Version,
		FDLLevel: raw.FDLLevel,
		PartitionTable: PartitionTable{
			Strategy: byte(raw.Partitions.Strategy),
			Unit:     byte(raw.Partitions.Unit),
		},
	}

	for _, p := range raw.Partitions.Partitions {
		project.PartitionTable.Partitions = append(project.PartitionTable.Partitions, Partition{
			Name: p.ID,
			Gap:  p.Gap,
			Size: p.Size,
		})
	}

	for _, img := range raw.ImgList.Images {
		domainImg, err := mapImage(img)
		if err != nil {
			return nil, err
		}
		project.Images = append(project.Images, domainImg)
	}

	return project, nil
}

func mapImage(img manifestImg) (Image, error) {
	typ, err := ParseImageType(img.Type)
	if err != nil {
		return Image{}, err
	}

	var block Block
	if img.Block.ID != nil {
		block = PartitionBlock(*img.Block.ID)
	} else {
		base, err := parseHexU64(img.Block.Base)
		if err != nil {
			return Image{}, &wire.PackageManifestError{Detail: "image " + img.Name + ": invalid Block.Base: " + err.Error()}
		}
		block = AbsoluteBlock(base)
	}

	return Image{
		Flag:        img.Flag,
		Name:        img.Name,
		Type:        typ,
		Block:       block,
		File:        img.File,
		Description: img.Description,
	}, nil
}

// parseHexU64 parses a manifest hex string, optionally "0x"-prefixed.
func parseHexU64(s string) (uint64, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return 0, nil
	}
	return strconv.ParseUint(s, 16, 64)
}
