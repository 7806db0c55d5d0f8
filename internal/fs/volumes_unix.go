//go:build !windows

package fs

import (
	"os"
	"os/user"
	"path"
	"strings"

	"drive-indexer/internal/driveidx"
)

// mountParents are the directories removable volumes are mounted under,
// most specific first.
func mountParents() []string {
	parents := []string{"/Volumes"}
	if u, err := user.Current(); err == nil && u.Username != "" {
		parents = append(parents, "/run/media/"+u.Username, "/media/"+u.Username)
	}
	return append(parents, "/media", "/mnt")
}

func platformVolumeRoots(logger driveidx.Logger) ([]string, error) {
	seen := make(map[string]bool)
	var roots []string
	for _, parent := range mountParents() {
		entries, err := os.ReadDir(parent)
		if err != nil {
			if !os.IsNotExist(err) {
				logger.Warn("listing mount point failed", "path", parent, "error", err)
			}
			continue
		}
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), ".") {
				continue
			}
			// Mounted volumes are directories; on macOS the boot volume is a symlink.
			if !e.IsDir() && e.Type()&os.ModeSymlink == 0 {
				continue
			}
			root := path.Join(parent, e.Name())
			if !seen[root] {
				seen[root] = true
				roots = append(roots, root)
			}
		}
	}
	return roots, nil
}

// platformSplitVolume treats the first path segment below a mount parent as
// the volume name.
func platformSplitVolume(p string) (string, string) {
	best := ""
	for _, parent := range mountParents() {
		if len(parent) > len(best) && strings.HasPrefix(p, parent+"/") {
			best = parent
		}
	}
	if best == "" {
		return "", p
	}

	name, rest, _ := strings.Cut(strings.TrimPrefix(p, best+"/"), "/")
	if name == "" {
		return "", p
	}
	return best + "/" + name, rest
}
