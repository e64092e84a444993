package axpkg

import "io"

// Parse opens and parses the AXP package at path, returning its manifest
// as a Project. The returned Package keeps the archive open so its images
// can be streamed; callers should Close it when done.
//
// Example:
//
//	pkg, err := axpkg.Parse("firmware.axp")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pkg.Close()
func Parse(path string) (*Package, error) {
	return Open(path)
}

// ParseReader parses an AXP package from any io.Reader. This is useful for
// testing and reading from non-file sources; the input is buffered in
// memory since the ZIP central directory sits at the end of the archive.
//
// Example:
//
//	pkg, err := axpkg.ParseReader(bytes.NewReader(data))
func ParseReader(r io.Reader) (*Package, error) {
	return OpenReader(r)
}
