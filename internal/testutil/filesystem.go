package testutil

import (
	"context"
	"fmt"
	"io/fs"
	"iter"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"drive-indexer/internal/category"
	"drive-indexer/internal/driveidx"
)

// MockFile represents a file in the mock filesystem.
type MockFile struct {
	Size        int64
	ModTime     time.Time
	IsDirectory bool
}

// MockFilesystemManager is an in-memory filesystem for testing. Paths use
// forward slashes. It implements both driveidx.FilesystemManager and
// driveidx.VolumeEnumerator. It does no junk filtering.
type MockFilesystemManager struct {
	mu      sync.Mutex
	files   map[string]*MockFile
	volumes []string
	space   map[string]*driveidx.DiskSpace
}

// NewMockFilesystemManager creates a new mock filesystem.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files: make(map[string]*MockFile),
		space: make(map[string]*driveidx.DiskSpace),
	}
}

// AddFile adds a file of the given size, creating its parent directories.
func (m *MockFilesystemManager) AddFile(p string, size int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mkdirAll(path.Dir(p))
	m.files[p] = &MockFile{Size: size, ModTime: time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)}
}

// AddDirectory adds a directory and its parents.
func (m *MockFilesystemManager) AddDirectory(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mkdirAll(p)
}

// AddVolume adds a mounted volume root.
func (m *MockFilesystemManager) AddVolume(root string) {
	m.AddDirectory(root)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volumes = append(m.volumes, root)
}

// Remove deletes p and everything below it, as when a drive is unplugged.
func (m *MockFilesystemManager) Remove(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.files {
		if k == p || strings.HasPrefix(k, p+"/") {
			delete(m.files, k)
		}
	}
	m.volumes = slices.DeleteFunc(m.volumes, func(v string) bool { return v == p })
}

// SetDiskSpace sets the capacity reported for paths under root.
func (m *MockFilesystemManager) SetDiskSpace(root string, space *driveidx.DiskSpace) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.space[root] = space
}

func (m *MockFilesystemManager) mkdirAll(p string) {
	for ; p != "/" && p != "."; p = path.Dir(p) {
		if _, ok := m.files[p]; ok {
			continue
		}
		m.files[p] = &MockFile{IsDirectory: true, ModTime: time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)}
	}
}

func (m *MockFilesystemManager) Stat(p string) (fs.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, ok := m.files[p]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: p, Err: fs.ErrNotExist}
	}
	return &mockFileInfo{name: path.Base(p), file: file}, nil
}

func (m *MockFilesystemManager) Exists(p string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[p]
	return ok
}

// Walk yields every file below root in path order.
func (m *MockFilesystemManager) Walk(ctx context.Context, root string) iter.Seq[*driveidx.WalkedFile] {
	return func(yield func(*driveidx.WalkedFile) bool) {
		m.mu.Lock()
		var paths []string
		for p, f := range m.files {
			if !f.IsDirectory && strings.HasPrefix(p, root+"/") {
				paths = append(paths, p)
			}
		}
		files := make([]MockFile, len(paths))
		slices.Sort(paths)
		for i, p := range paths {
			files[i] = *m.files[p]
		}
		m.mu.Unlock()

		for i, p := range paths {
			if ctx.Err() != nil {
				return
			}
			name := path.Base(p)
			ext := path.Ext(name)
			if ext == name {
				ext = ""
			}
			if !yield(&driveidx.WalkedFile{
				Name:         name,
				RelativePath: strings.TrimPrefix(p, root+"/"),
				Extension:    ext,
				Category:     category.Classify(ext),
				Size:         files[i].Size,
				ModifiedAt:   files[i].ModTime,
			}) {
				return
			}
		}
	}
}

// DiskSpace returns the space set for the longest matching root, or zeros.
func (m *MockFilesystemManager) DiskSpace(p string) (*driveidx.DiskSpace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[p]; !ok {
		return nil, fmt.Errorf("statfs %s: %w", p, fs.ErrNotExist)
	}
	best := ""
	for root := range m.space {
		if (p == root || strings.HasPrefix(p, root+"/")) && len(root) > len(best) {
			best = root
		}
	}
	if best == "" {
		return &driveidx.DiskSpace{}, nil
	}
	space := *m.space[best]
	return &space, nil
}

func (m *MockFilesystemManager) VolumeRoots() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.volumes), nil
}

// SplitVolume treats the first two segments of p as the volume root, as in
// /Volumes/<name>/... Volumes need not be mounted to split.
func (m *MockFilesystemManager) SplitVolume(p string) (string, string) {
	parts := strings.SplitN(strings.TrimPrefix(p, "/"), "/", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", p
	}
	root := "/" + parts[0] + "/" + parts[1]
	if len(parts) == 2 {
		return root, ""
	}
	return root, parts[2]
}

// mockFileInfo implements fs.FileInfo
type mockFileInfo struct {
	name string
	file *MockFile
}

func (i *mockFileInfo) Name() string { return i.name }
func (i *mockFileInfo) Size() int64  { return i.file.Size }
func (i *mockFileInfo) Mode() fs.FileMode {
	if i.file.IsDirectory {
		return fs.ModeDir | 0755
	}
	return 0644
}
func (i *mockFileInfo) ModTime() time.Time { return i.file.ModTime }
func (i *mockFileInfo) IsDir() bool        { return i.file.IsDirectory }
func (i *mockFileInfo) Sys() any           { return i.file }

// Compile-time checks
var (
	_ driveidx.FilesystemManager = (*MockFilesystemManager)(nil)
	_ driveidx.VolumeEnumerator  = (*MockFilesystemManager)(nil)
)
