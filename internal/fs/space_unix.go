//go:build linux || darwin

package fs

import (
	"fmt"

	"golang.org/x/sys/unix"

	"drive-indexer/internal/driveidx"
)

func diskSpace(path string) (*driveidx.DiskSpace, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return nil, fmt.Errorf("statfs %s: %w", path, err)
	}

	bsize := uint64(st.Bsize)
	total := int64(st.Blocks * bsize)
	free := int64(st.Bavail * bsize)
	return &driveidx.DiskSpace{Total: total, Free: free, Used: total - int64(st.Bfree*bsize)}, nil
}
