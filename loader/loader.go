// Package loader reads PIS modules from a filesystem, unwrapping
// compressed files and archives, and caches parsed modules.
package loader

import (
	"fmt"
	iofs "io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"

	"github.com/user-none/pisplay/pis"
)

// DefaultCacheSize is the number of parsed modules kept in memory.
const DefaultCacheSize = 32

type cacheKey struct {
	path    string
	size    int64
	modTime int64
}

// Loader loads modules through an afero filesystem. Parsed modules are
// shared between callers and must be treated as read-only.
type Loader struct {
	fs    afero.Fs
	cache *lru.Cache[cacheKey, *pis.Module]
}

// New creates a loader over fs. A nil fs means the OS filesystem.
func New(fs afero.Fs, cacheSize int) (*Loader, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[cacheKey, *pis.Module](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("module cache: %w", err)
	}
	return &Loader{fs: fs, cache: cache}, nil
}

// Fs returns the filesystem the loader reads from.
func (l *Loader) Fs() afero.Fs {
	return l.fs
}

// ReadBytes returns the decompressed module bytes stored at path.
// Failures are reported as *pis.IOError.
func (l *Loader) ReadBytes(path string) ([]byte, error) {
	raw, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, &pis.IOError{Path: path, Err: err}
	}
	data, err := Decompress(path, raw)
	if err != nil {
		return nil, &pis.IOError{Path: path, Err: err}
	}
	return data, nil
}

// Load reads and parses the module at path. A file that has not changed
// since it was last parsed is served from the cache.
func (l *Loader) Load(path string) (*pis.Module, error) {
	fi, err := l.fs.Stat(path)
	if err != nil {
		return nil, &pis.IOError{Path: path, Err: err}
	}
	if fi.IsDir() {
		return nil, &pis.IOError{Path: path, Err: fmt.Errorf("is a directory")}
	}
	key := cacheKey{path: path, size: fi.Size(), modTime: fi.ModTime().UnixNano()}
	if m, ok := l.cache.Get(key); ok {
		return m, nil
	}

	data, err := l.ReadBytes(path)
	if err != nil {
		return nil, err
	}
	m, err := pis.ParseBytes(data)
	if err != nil {
		return nil, err
	}
	l.cache.Add(key, m)
	return m, nil
}

// Cached returns the number of modules in the cache.
func (l *Loader) Cached() int {
	return l.cache.Len()
}

// Purge empties the cache.
func (l *Loader) Purge() {
	l.cache.Purge()
}

// moduleExts lists the file extensions Scan accepts, lower case.
var moduleExts = map[string]bool{
	".pis": true, ".gz": true, ".zst": true, ".xz": true, ".lz4": true,
	".bz2": true, ".br": true, ".zip": true, ".7z": true, ".rar": true,
}

// Scan walks dir and returns the paths of files that may hold a module,
// sorted by name.
func (l *Loader) Scan(dir string) ([]string, error) {
	var paths []string
	err := afero.Walk(l.fs, dir, func(p string, info iofs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if moduleExts[lowerExt(p)] {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, &pis.IOError{Path: dir, Err: err}
	}
	sort.Strings(paths)
	return paths, nil
}

func lowerExt(p string) string {
	return strings.ToLower(filepath.Ext(p))
}
