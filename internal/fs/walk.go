package fs

import (
	"context"
	"iter"
	"os"
	"path"
	"path/filepath"

	"drive-indexer/internal/category"
	"drive-indexer/internal/driveidx"
)

// Walk lazily yields the regular files under root, depth-first in name order.
//
// Junk entries are neither yielded nor descended into. Hidden and reserved
// directories are not descended into. Entries matching the configured ignore
// patterns, or the patterns in root's .diignore, are skipped. Unreadable
// directories and entries are logged and skipped. Symlinks are not followed.
// Cancelling ctx stops the walk at the next directory boundary.
func (m *OSFilesystemManager) Walk(ctx context.Context, root string) iter.Seq[*driveidx.WalkedFile] {
	return func(yield func(*driveidx.WalkedFile) bool) {
		osRoot := filepath.FromSlash(root)

		ignore := m.ignore
		extra, err := ParseIgnoreFile(filepath.Join(osRoot, IgnoreFileName))
		if err != nil {
			m.logger.Warn("reading ignore file failed", "root", root, "error", err)
		} else if len(extra) > 0 {
			ignore = ignore.With(extra)
		}

		w := &walker{ctx: ctx, root: osRoot, ignore: ignore, logger: m.logger, yield: yield}
		w.dir("")
	}
}

type walker struct {
	ctx    context.Context
	root   string
	ignore *IgnoreMatcher
	logger driveidx.Logger
	yield  func(*driveidx.WalkedFile) bool
}

// dir walks the directory at rel (forward slashes, "" for the root).
// It returns false once the walk must stop.
func (w *walker) dir(rel string) bool {
	if w.ctx.Err() != nil {
		return false
	}

	abs := filepath.Join(w.root, filepath.FromSlash(rel))
	entries, err := os.ReadDir(abs)
	if err != nil {
		w.logger.Warn("entry read failed", "path", abs, "error", err)
		if entries == nil {
			return true
		}
	}

	for _, e := range entries {
		name := e.Name()
		if IsJunk(name) || (rel == "" && name == IgnoreFileName) {
			continue
		}

		childRel := path.Join(rel, name)
		if w.ignore.Match(childRel) {
			continue
		}

		switch {
		case e.IsDir():
			if IsSystemDir(name) {
				continue
			}
			if !w.dir(childRel) {
				return false
			}
		case e.Type().IsRegular():
			info, err := e.Info()
			if err != nil {
				w.logger.Warn("entry read failed", "path", filepath.Join(abs, name), "error", err)
				continue
			}
			ext := extension(name)
			if !w.yield(&driveidx.WalkedFile{
				Name:         name,
				RelativePath: childRel,
				Extension:    ext,
				Category:     category.Classify(ext),
				Size:         info.Size(),
				ModifiedAt:   info.ModTime().UTC(),
			}) {
				return false
			}
		}
	}
	return true
}

// extension returns the extension of name with its leading dot, or "" for
// names without one. A leading dot alone (".profile") is not an extension.
func extension(name string) string {
	ext := filepath.Ext(name)
	if ext == name {
		return ""
	}
	return ext
}
