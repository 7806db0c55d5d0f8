package fs

import (
	"strings"

	"drive-indexer/internal/driveidx"
)

// VolumeRoots returns the roots of every currently mounted volume, or the
// configured roots when any were given.
func (m *OSFilesystemManager) VolumeRoots() ([]string, error) {
	if len(m.volumeRoots) > 0 {
		return append([]string(nil), m.volumeRoots...), nil
	}
	return platformVolumeRoots(m.logger)
}

// SplitVolume splits path into the volume root it lives on and the remainder.
func (m *OSFilesystemManager) SplitVolume(path string) (root, rest string) {
	path = driveidx.NormalizePath(path)
	if len(m.volumeRoots) > 0 {
		return splitOnRoots(path, m.volumeRoots)
	}
	return platformSplitVolume(path)
}

// splitOnRoots matches path against explicit roots, longest first.
func splitOnRoots(path string, roots []string) (string, string) {
	best := ""
	for _, r := range roots {
		if len(r) > len(best) && under(path, r) {
			best = r
		}
	}
	if best == "" {
		return "", path
	}
	return best, strings.TrimPrefix(strings.TrimPrefix(path, best), "/")
}

// under reports whether path is root or lies inside it.
func under(path, root string) bool {
	if path == root {
		return true
	}
	if strings.HasSuffix(root, "/") {
		return strings.HasPrefix(path, root)
	}
	return strings.HasPrefix(path, root+"/")
}
