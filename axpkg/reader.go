package axpkg

import (
	"archive/zip"
	"io"
	"os"
	"strings"

	"github.com/axflash/axdl-go/wire"
)

// Package is an opened AXP archive: its parsed manifest plus the ability
// to stream individual image files referenced by the manifest.
type Package struct {
	Project *Project
	archive *zip.Reader
	closer  io.Closer // non-nil when Open opened the underlying file itself
}

// Open opens the AXP package at path and parses its manifest.
func Open(path string) (*Package, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &wire.IOError{Context: "opening package", Cause: err}
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, &wire.IOError{Context: "statting package", Cause: err}
	}

	pkg, err := openArchive(f, info.Size())
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	pkg.closer = f
	return pkg, nil
}

// OpenReader opens an AXP package from an arbitrary reader, buffering it
// in memory so the ZIP directory (stored at the end of the archive) can be
// located. Use Open when reading from a file on disk; it avoids the copy.
func OpenReader(r io.Reader) (*Package, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &wire.PackageZipError{Cause: err}
	}
	return openArchive(&entryReader{data: data}, int64(len(data)))
}

func openArchive(r io.ReaderAt, size int64) (*Package, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, &wire.PackageZipError{Cause: err}
	}

	manifestFile, err := findManifest(zr)
	if err != nil {
		return nil, err
	}

	rc, err := manifestFile.Open()
	if err != nil {
		return nil, &wire.PackageZipError{Cause: err}
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, &wire.PackageZipError{Cause: err}
	}

	project, err := parseManifest(data)
	if err != nil {
		return nil, err
	}

	return &Package{Project: project, archive: zr}, nil
}

func findManifest(zr *zip.Reader) (*zip.File, error) {
	for _, f := range zr.File {
		if strings.HasSuffix(strings.ToLower(f.Name), ".xml") {
			return f, nil
		}
	}
	return nil, &wire.PackageManifestError{Detail: "archive contains no .xml manifest"}
}

// ImageSize returns the uncompressed size in bytes of the archive entry
// backing img, used as the length argument of the start_partition commands
// and as the denominator for streaming progress.
func (p *Package) ImageSize(img Image) (uint64, error) {
	f, err := p.findImageFile(img)
	if err != nil {
		return 0, err
	}
	return f.UncompressedSize64, nil
}

// OpenImage opens the image file named by img.File for streaming. The
// caller is responsible for closing the returned reader.
func (p *Package) OpenImage(img Image) (io.ReadCloser, error) {
	f, err := p.findImageFile(img)
	if err != nil {
		return nil, err
	}
	rc, err := f.Open()
	if err != nil {
		return nil, &wire.PackageZipError{Cause: err}
	}
	return rc, nil
}

func (p *Package) findImageFile(img Image) (*zip.File, error) {
	if !img.HasFile() {
		return nil, &wire.PackageManifestError{Detail: "image " + img.Name + " has no associated file"}
	}
	for _, f := range p.archive.File {
		if f.Name == img.File {
			return f, nil
		}
	}
	return nil, &wire.PackageManifestError{Detail: "archive has no entry named " + img.File}
}

// Close releases resources Open acquired. It is a no-op for packages built
// with OpenReader.
func (p *Package) Close() error {
	if p.closer != nil {
		return p.closer.Close()
	}
	return nil
}

// entryReader provides io.ReaderAt and a bounds-clamped Seek over an
// in-memory buffer, letting OpenReader hand archive/zip a ReaderAt backed
// by an arbitrary (possibly non-seekable) input reader.
type entryReader struct {
	data []byte
	pos  int64
}

func (e *entryReader) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(e.data)) {
		return 0, io.EOF
	}
	n := copy(p, e.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (e *entryReader) Read(p []byte) (int, error) {
	n, err := e.ReadAt(p, e.pos)
	e.pos += int64(n)
	if err != nil {
		return n, err
	}
	return n, nil
}

// Seek clamps the resulting offset to [0, len(data)], matching the
// io.SeekEnd convention that size is one past the last valid byte rather
// than the index of the last byte.
func (e *entryReader) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = e.pos + offset
	case io.SeekEnd:
		abs = int64(len(e.data)) + offset
	default:
		return 0, &wire.UnsupportedError{Feature: "seek whence"}
	}
	if abs < 0 {
		abs = 0
	}
	if abs > int64(len(e.data)) {
		abs = int64(len(e.data))
	}
	e.pos = abs
	return abs, nil
}
