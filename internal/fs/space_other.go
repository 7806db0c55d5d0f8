//go:build !linux && !darwin && !windows

package fs

import (
	"fmt"
	"runtime"

	"drive-indexer/internal/driveidx"
)

func diskSpace(path string) (*driveidx.DiskSpace, error) {
	return nil, fmt.Errorf("disk space probe not supported on %s", runtime.GOOS)
}
