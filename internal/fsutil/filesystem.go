// Package fsutil lets loaders and artifact writers run against either the
// real disk or an in-memory tree.
package fsutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileSystem is the subset of file operations the pipelines need.
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
	MkdirAll(path string, perm os.FileMode) error
}

// OSFileSystem passes every call through to package os.
type OSFileSystem struct{}

func (OSFileSystem) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

func (OSFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

func (OSFileSystem) MkdirAll(path string, perm os.FileMode) error { return os.MkdirAll(path, perm) }

// MemoryFileSystem keeps files and directories in a map keyed by cleaned
// path. Writes need an existing parent directory, like the real thing,
// except directly under "/" or ".".
type MemoryFileSystem struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	data []byte
	dir  bool
}

// NewMemoryFileSystem returns an empty tree.
func NewMemoryFileSystem() *MemoryFileSystem {
	return &MemoryFileSystem{entries: make(map[string]*entry)}
}

func (m *MemoryFileSystem) ReadFile(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	name = filepath.Clean(name)
	e, ok := m.entries[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	if e.dir {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrInvalid}
	}
	return append([]byte(nil), e.data...), nil
}

func (m *MemoryFileSystem) WriteFile(name string, data []byte, _ os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name = filepath.Clean(name)
	if parent := filepath.Dir(name); parent != "." && parent != "/" {
		if p, ok := m.entries[parent]; !ok || !p.dir {
			return &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
		}
	}
	if e, ok := m.entries[name]; ok && e.dir {
		return &fs.PathError{Op: "open", Path: name, Err: fs.ErrExist}
	}
	m.entries[name] = &entry{data: append([]byte(nil), data...)}
	return nil
}

// MkdirAll records path and every missing ancestor as directories. It fails
// if any of them is already a file.
func (m *MemoryFileSystem) MkdirAll(path string, _ os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var chain []string
	for p := filepath.Clean(path); p != "." && p != "/"; p = filepath.Dir(p) {
		chain = append(chain, p)
	}
	for _, p := range chain {
		if e, ok := m.entries[p]; ok && !e.dir {
			return &fs.PathError{Op: "mkdir", Path: p, Err: fs.ErrExist}
		}
	}
	for _, p := range chain {
		if _, ok := m.entries[p]; !ok {
			m.entries[p] = &entry{dir: true}
		}
	}
	return nil
}

// Files returns the sorted paths of all regular files below dir.
func (m *MemoryFileSystem) Files(dir string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	prefix := filepath.Clean(dir) + string(filepath.Separator)
	var names []string
	for name, e := range m.entries {
		if !e.dir && strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
