// Package fs implements driveidx.FilesystemManager and driveidx.VolumeEnumerator
// on the real filesystem.
package fs

import (
	"io/fs"
	"os"
	"path/filepath"

	"drive-indexer/internal/driveidx"
)

// OSFilesystemManager is the real filesystem implementation of FilesystemManager.
// It performs actual filesystem operations using the os package.
type OSFilesystemManager struct {
	ignore      *IgnoreMatcher
	volumeRoots []string
	logger      driveidx.Logger
}

// NewOSFilesystemManager creates a filesystem manager that operates on the
// real filesystem. ignorePatterns apply to every walk. volumeRoots, when
// non-empty, replaces the platform's volume discovery.
func NewOSFilesystemManager(ignorePatterns, volumeRoots []string, logger driveidx.Logger) *OSFilesystemManager {
	roots := make([]string, 0, len(volumeRoots))
	for _, r := range volumeRoots {
		if n := driveidx.NormalizePath(r); n != "" {
			roots = append(roots, n)
		}
	}
	return &OSFilesystemManager{
		ignore:      NewIgnoreMatcher(ignorePatterns),
		volumeRoots: roots,
		logger:      logger,
	}
}

// Stat returns fresh file info for a path, following symlinks.
func (m *OSFilesystemManager) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(filepath.FromSlash(path))
}

// Exists reports whether a path exists.
func (m *OSFilesystemManager) Exists(path string) bool {
	_, err := os.Stat(filepath.FromSlash(path))
	return err == nil
}

// DiskSpace probes the capacity of the volume holding path.
func (m *OSFilesystemManager) DiskSpace(path string) (*driveidx.DiskSpace, error) {
	return diskSpace(filepath.FromSlash(path))
}

// Compile-time checks
var (
	_ driveidx.FilesystemManager = (*OSFilesystemManager)(nil)
	_ driveidx.VolumeEnumerator  = (*OSFilesystemManager)(nil)
)
