package driveidx

import (
	"context"
	"io/fs"
	"iter"
)

// FilesystemManager provides an interface for filesystem operations.
// Paths are forward-slash normalized strings; implementations convert them
// at the OS boundary.
type FilesystemManager interface {
	// Stat returns info for a path. Missing paths yield an error matching fs.ErrNotExist.
	Stat(path string) (fs.FileInfo, error)

	// Exists reports whether a path exists.
	Exists(path string) bool

	// Walk lazily yields the regular files under root that survive the junk
	// and ignore filters. Read errors are logged and skipped. The walk stops
	// at the next directory boundary once ctx is cancelled.
	Walk(ctx context.Context, root string) iter.Seq[*WalkedFile]

	// DiskSpace probes the capacity of the volume holding path.
	DiskSpace(path string) (*DiskSpace, error)
}

// VolumeEnumerator lists the volumes a drive might currently be mounted on.
type VolumeEnumerator interface {
	// VolumeRoots returns the roots of every currently available volume.
	VolumeRoots() ([]string, error)

	// SplitVolume splits a path into its volume root and the remainder
	// relative to that root. root is empty when no volume matches.
	SplitVolume(path string) (root, rest string)
}
