//go:build windows

package fs

import (
	"fmt"

	"golang.org/x/sys/windows"

	"drive-indexer/internal/driveidx"
)

func diskSpace(path string) (*driveidx.DiskSpace, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, fmt.Errorf("encoding path %s: %w", path, err)
	}

	var freeToCaller, total, totalFree uint64
	if err := windows.GetDiskFreeSpaceEx(p, &freeToCaller, &total, &totalFree); err != nil {
		return nil, fmt.Errorf("GetDiskFreeSpaceEx %s: %w", path, err)
	}
	return &driveidx.DiskSpace{
		Total: int64(total),
		Free:  int64(freeToCaller),
		Used:  int64(total - totalFree),
	}, nil
}
