package driveidx

import "strings"

// NormalizePath converts a user-supplied root to the stored form: trimmed,
// backslashes replaced by forward slashes, no trailing slash. A bare root
// ("/" or "E:/") keeps its slash. Returns "" for a blank path.
func NormalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = strings.ReplaceAll(p, `\`, "/")
	for len(p) > 1 && strings.HasSuffix(p, "/") && !isDriveRoot(p) {
		p = p[:len(p)-1]
	}
	if isDriveLetter(p) {
		p += "/"
	}
	return p
}

// JoinPath joins a normalized root and a relative path with a single slash.
func JoinPath(root, rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	switch {
	case rel == "":
		return root
	case root == "":
		return rel
	case strings.HasSuffix(root, "/"):
		return root + rel
	default:
		return root + "/" + rel
	}
}

// isDriveLetter matches "E:".
func isDriveLetter(p string) bool {
	return len(p) == 2 && p[1] == ':' && isASCIILetter(p[0])
}

// isDriveRoot matches "E:/".
func isDriveRoot(p string) bool {
	return len(p) == 3 && p[2] == '/' && isDriveLetter(p[:2])
}

func isASCIILetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
