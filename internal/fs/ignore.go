package fs

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"strings"
)

// IgnoreFileName is the per-drive ignore file read from the root of a scan.
const IgnoreFileName = ".diignore"

// junkNames are OS metadata entries that are never indexed or descended into.
var junkNames = map[string]bool{
	".DS_Store":                 true,
	"Thumbs.db":                 true,
	"desktop.ini":               true,
	".Spotlight-V100":           true,
	".Trashes":                  true,
	".fseventsd":                true,
	".TemporaryItems":           true,
	".DocumentRevisions-V100":   true,
	"$RECYCLE.BIN":              true,
	"System Volume Information": true,
	".Trash":                    true,
	"ehthumbs.db":               true,
}

// junkPrefixes mark AppleDouble files, per-user trash dirs and Office lock files.
var junkPrefixes = []string{"._", ".Trash-", "~$"}

// reservedDirs are OS-managed directories that are never descended into.
var reservedDirs = []string{"System Volume Information", "$RECYCLE.BIN", "lost+found"}

// IsJunk reports whether an entry name is OS metadata that must be skipped
// whether it is a file or a directory.
func IsJunk(name string) bool {
	if junkNames[name] {
		return true
	}
	for _, p := range junkPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// IsSystemDir reports whether a directory must not be descended into:
// hidden dot-directories and reserved OS directories.
func IsSystemDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, r := range reservedDirs {
		if strings.EqualFold(name, r) {
			return true
		}
	}
	return false
}

// ignorePattern is a parsed ignore pattern with its matching strategy.
type ignorePattern struct {
	pattern   string
	matchPath bool // true = match against relative path; false = match against basename only
}

// IgnoreMatcher checks relative paths against user ignore patterns.
// Patterns without '/' match against the entry's basename only.
// Patterns with '/' match against the full relative path from the scan root.
type IgnoreMatcher struct {
	patterns []ignorePattern
}

// NewIgnoreMatcher creates an IgnoreMatcher from raw pattern strings.
// Blank lines and lines starting with '#' are skipped.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	m := &IgnoreMatcher{}
	m.add(rawPatterns)
	return m
}

// With returns a matcher holding the receiver's patterns plus extra.
func (m *IgnoreMatcher) With(extra []string) *IgnoreMatcher {
	out := &IgnoreMatcher{patterns: append([]ignorePattern(nil), m.patterns...)}
	out.add(extra)
	return out
}

func (m *IgnoreMatcher) add(rawPatterns []string) {
	for _, raw := range rawPatterns {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		m.patterns = append(m.patterns, ignorePattern{
			pattern:   strings.Trim(raw, "/"),
			matchPath: strings.Contains(strings.Trim(raw, "/"), "/"),
		})
	}
}

// Match reports whether the given relative path should be ignored.
// relativePath uses forward slashes and is relative to the scan root.
func (m *IgnoreMatcher) Match(relativePath string) bool {
	if len(m.patterns) == 0 {
		return false
	}

	basename := path.Base(relativePath)
	for _, p := range m.patterns {
		var matched bool
		var err error
		if p.matchPath {
			matched, err = path.Match(p.pattern, relativePath)
		} else {
			matched, err = path.Match(p.pattern, basename)
		}
		if err != nil {
			// Bad pattern: skip rather than crash.
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

// ParseIgnoreFile reads an ignore file and returns the raw pattern strings.
// Returns nil and no error if the file does not exist.
func ParseIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		patterns = append(patterns, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return patterns, nil
}
