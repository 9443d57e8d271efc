// Package romfile loads cartridge images from disk, transparently
// decompressing common archive formats and choosing between an
// in-memory or file-backed Contents implementation depending on image
// size.
package romfile

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bodgit/sevenzip"
	"github.com/cespare/xxhash"

	"github.com/nitrocart/dsrom/internal/dsslot/rom"
)

// InMemoryThreshold is the image size, in bytes, above which Load
// prefers a file-backed Contents over reading the whole image into
// memory. Archive members are always read fully into memory first,
// since none of the supported archive readers expose a seekable
// decompression stream.
const InMemoryThreshold = 64 * 1024 * 1024

// Loaded bundles the decoded Contents together with a fingerprint of
// the raw (post-decompression) image bytes, suitable for cache keys or
// save-file naming.
type Loaded struct {
	Contents   rom.Contents
	Fingerprint uint64
	// Close releases any resources (such as an open file handle) held
	// by Contents. It is always non-nil, even when Contents is a
	// MemoryContents with nothing to release.
	Close func() error
}

// Load reads filename, decompressing it first if its extension names a
// supported archive format, and wraps the result in a Contents
// implementation appropriate to its size.
func Load(filename string) (*Loaded, error) {
	data, fromArchive, err := readFile(filename)
	if err != nil {
		return nil, fmt.Errorf("romfile: %w", err)
	}

	fingerprint := xxhash.Sum64(data)

	if useFileBacked(len(data), fromArchive) {
		f, err := os.Open(filename)
		if err != nil {
			return nil, fmt.Errorf("romfile: reopen %s for file-backed load: %w", filename, err)
		}
		fc, err := rom.NewFileContents(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("romfile: %w", err)
		}
		return &Loaded{Contents: fc, Fingerprint: fingerprint, Close: fc.Close}, nil
	}

	return &Loaded{
		Contents:    rom.NewMemoryContents(data),
		Fingerprint: fingerprint,
		Close:       func() error { return nil },
	}, nil
}

// useFileBacked reports whether Load should prefer a file-backed
// Contents for an image of the given post-decompression length.
// Archive members never qualify, since they were already read fully
// into memory to decompress them.
func useFileBacked(length int, fromArchive bool) bool {
	return !fromArchive && length > InMemoryThreshold
}

// readFile reads filename fully into memory, transparently extracting
// the first entry of a recognized archive format. fromArchive reports
// whether decompression occurred, since an archive member can never be
// read back with a fresh os.Open of filename.
func readFile(filename string) (data []byte, fromArchive bool, err error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, false, err
	}

	var decoder io.Reader
	switch ext := filepath.Ext(filename); ext {
	case ".gz":
		// raw has already consumed f's sequential read cursor above, so
		// the gzip reader is built over raw itself rather than f.
		decoder, err = gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, false, fmt.Errorf("open gzip stream: %w", err)
		}
	case ".zip":
		zr, err := zip.NewReader(f, int64(len(raw)))
		if err != nil {
			return nil, false, fmt.Errorf("open zip archive: %w", err)
		}
		member, err := firstROMMember(zipNames(zr.File), func(name string) (io.ReadCloser, error) {
			for _, zf := range zr.File {
				if zf.Name == name {
					return zf.Open()
				}
			}
			return nil, fmt.Errorf("member %s vanished", name)
		})
		if err != nil {
			return nil, false, err
		}
		decoder = member
	case ".7z":
		sr, err := sevenzip.NewReader(f, int64(len(raw)))
		if err != nil {
			return nil, false, fmt.Errorf("open 7z archive: %w", err)
		}
		member, err := firstROMMember(sevenZipNames(sr.File), func(name string) (io.ReadCloser, error) {
			for _, zf := range sr.File {
				if zf.Name == name {
					return zf.Open()
				}
			}
			return nil, fmt.Errorf("member %s vanished", name)
		})
		if err != nil {
			return nil, false, err
		}
		decoder = member
	default:
		return raw, false, nil
	}

	data, err = io.ReadAll(decoder)
	if err != nil {
		return nil, false, fmt.Errorf("decompress %s: %w", filename, err)
	}
	return data, true, nil
}

func zipNames(files []*zip.File) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names
}

func sevenZipNames(files []*sevenzip.File) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names
}

// firstROMMember picks the first archive entry whose extension looks
// like a cartridge image (.nds or .srl), falling back to the first
// entry overall when none match.
func firstROMMember(names []string, open func(name string) (io.ReadCloser, error)) (io.ReadCloser, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("archive contains no entries")
	}
	for _, name := range names {
		switch filepath.Ext(name) {
		case ".nds", ".srl":
			return open(name)
		}
	}
	return open(names[0])
}
