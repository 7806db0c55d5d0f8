//go:build windows

package fs

import (
	"fmt"

	"golang.org/x/sys/windows"

	"drive-indexer/internal/driveidx"
)

func platformVolumeRoots(_ driveidx.Logger) ([]string, error) {
	mask, err := windows.GetLogicalDrives()
	if err != nil {
		return nil, fmt.Errorf("GetLogicalDrives: %w", err)
	}

	var roots []string
	for i := 0; i < 26; i++ {
		if mask&(1<<uint(i)) != 0 {
			roots = append(roots, string(rune('A'+i))+":/")
		}
	}
	return roots, nil
}

// platformSplitVolume splits "E:/Footage/2021" into ("E:/", "Footage/2021").
func platformSplitVolume(p string) (string, string) {
	if len(p) < 2 || p[1] != ':' {
		return "", p
	}
	root := p[:2] + "/"
	if len(p) <= 3 {
		return root, ""
	}
	return root, p[3:]
}
