package flash

import "fmt"

// ImageNotFoundError indicates the manifest has no image with the given
// name, e.g. when SendFDL1 looks for an image named "FDL1".
type ImageNotFoundError struct {
	Name string
}

func (e *ImageNotFoundError) Error() string {
	return fmt.Sprintf("package has no image named %q", e.Name)
}

// UnexpectedBlockError indicates an image's Block is not the kind this
// stage requires (e.g. FDL1/FDL2 must be AbsoluteBlock, CODE images must
// be PartitionBlock).
type UnexpectedBlockError struct {
	Image string
	Want  string
}

func (e *UnexpectedBlockError) Error() string {
	return fmt.Sprintf("image %q block is not %s", e.Image, e.Want)
}
