package loader

import (
	"bytes"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/bodgit/sevenzip"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/nwaples/rardecode/v2"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// MaxModuleSize bounds the decompressed size of a module. The largest
// valid module is well under 32 KiB.
const MaxModuleSize = 1 << 20

// Container identifies how module bytes are wrapped on disk.
type Container int

const (
	Raw Container = iota
	Gzip
	Zstd
	XZ
	LZ4
	Bzip2
	Brotli
	Zip
	SevenZip
	RAR
)

var containerNames = [...]string{"raw", "gzip", "zstd", "xz", "lz4", "bzip2", "brotli", "zip", "7z", "rar"}

func (c Container) String() string {
	if int(c) < len(containerNames) {
		return containerNames[c]
	}
	return fmt.Sprintf("Container(%d)", int(c))
}

var (
	magicGzip  = []byte{0x1F, 0x8B}
	magicZstd  = []byte{0x28, 0xB5, 0x2F, 0xFD}
	magicXZ    = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}
	magicLZ4   = []byte{0x04, 0x22, 0x4D, 0x18}
	magicBzip2 = []byte{'B', 'Z', 'h'}
	magicZip   = []byte{'P', 'K', 0x03, 0x04}
	magic7z    = []byte{'7', 'z', 0xBC, 0xAF, 0x27, 0x1C}
	magicRAR   = []byte{'R', 'a', 'r', '!', 0x1A, 0x07}
)

// ErrNoModule is returned when an archive holds no regular file.
var ErrNoModule = errors.New("archive contains no module")

// ErrTooLarge is returned when decompressed data exceeds MaxModuleSize.
var ErrTooLarge = errors.New("decompressed data too large")

// Detect identifies the container of data by its magic bytes. Brotli has
// no magic and is recognised by a .br extension on name.
func Detect(name string, data []byte) Container {
	switch {
	case bytes.HasPrefix(data, magicGzip):
		return Gzip
	case bytes.HasPrefix(data, magicZstd):
		return Zstd
	case bytes.HasPrefix(data, magicXZ):
		return XZ
	case bytes.HasPrefix(data, magicLZ4):
		return LZ4
	case bytes.HasPrefix(data, magicBzip2):
		return Bzip2
	case bytes.HasPrefix(data, magicZip):
		return Zip
	case bytes.HasPrefix(data, magic7z):
		return SevenZip
	case bytes.HasPrefix(data, magicRAR):
		return RAR
	case strings.EqualFold(path.Ext(name), ".br"):
		return Brotli
	}
	return Raw
}

// Decompress unwraps data according to its container. Raw data is
// returned unchanged. Archives yield their first .PIS entry, or their
// first regular file when none has that extension.
func Decompress(name string, data []byte) ([]byte, error) {
	switch Detect(name, data) {
	case Gzip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer r.Close()
		return readLimited(r)
	case Zstd:
		r, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer r.Close()
		return readLimited(r)
	case XZ:
		r, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("xz: %w", err)
		}
		return readLimited(r)
	case LZ4:
		return readLimited(lz4.NewReader(bytes.NewReader(data)))
	case Bzip2:
		return readLimited(bzip2.NewReader(bytes.NewReader(data)))
	case Brotli:
		return readLimited(brotli.NewReader(bytes.NewReader(data)))
	case Zip:
		return extractZip(data)
	case SevenZip:
		return extract7z(data)
	case RAR:
		return extractRAR(data)
	}
	return data, nil
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxModuleSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxModuleSize {
		return nil, ErrTooLarge
	}
	return data, nil
}

// isModuleName reports whether an archive entry looks like a module.
func isModuleName(name string) bool {
	return strings.EqualFold(path.Ext(name), ".pis")
}

// pickEntry returns the index of the entry to extract, or -1.
func pickEntry(names []string, dirs []bool) int {
	first := -1
	for i, n := range names {
		if dirs[i] {
			continue
		}
		if isModuleName(n) {
			return i
		}
		if first < 0 {
			first = i
		}
	}
	return first
}

func extractZip(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("zip: %w", err)
	}
	names := make([]string, len(zr.File))
	dirs := make([]bool, len(zr.File))
	for i, f := range zr.File {
		names[i] = f.Name
		dirs[i] = f.FileInfo().IsDir()
	}
	idx := pickEntry(names, dirs)
	if idx < 0 {
		return nil, ErrNoModule
	}
	rc, err := zr.File[idx].Open()
	if err != nil {
		return nil, fmt.Errorf("zip: %w", err)
	}
	defer rc.Close()
	return readLimited(rc)
}

func extract7z(data []byte) ([]byte, error) {
	sr, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("7z: %w", err)
	}
	names := make([]string, len(sr.File))
	dirs := make([]bool, len(sr.File))
	for i, f := range sr.File {
		names[i] = f.Name
		dirs[i] = f.FileInfo().IsDir()
	}
	idx := pickEntry(names, dirs)
	if idx < 0 {
		return nil, ErrNoModule
	}
	rc, err := sr.File[idx].Open()
	if err != nil {
		return nil, fmt.Errorf("7z: %w", err)
	}
	defer rc.Close()
	return readLimited(rc)
}

// extractRAR streams through the archive. The first regular file is
// kept as a fallback while looking for a .PIS entry.
func extractRAR(data []byte) ([]byte, error) {
	rr, err := rardecode.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("rar: %w", err)
	}
	var fallback []byte
	for {
		hdr, err := rr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("rar: %w", err)
		}
		if hdr.IsDir {
			continue
		}
		if isModuleName(hdr.Name) {
			return readLimited(rr)
		}
		if fallback == nil {
			if fallback, err = readLimited(rr); err != nil {
				return nil, fmt.Errorf("rar: %w", err)
			}
		}
	}
	if fallback == nil {
		return nil, ErrNoModule
	}
	return fallback, nil
}
