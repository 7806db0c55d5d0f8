package fs

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"testing"
	"time"

	"drive-indexer/internal/driveidx"
)

// writeTree creates files (forward-slash relative paths) under a temp root.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("creating dir: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatalf("writing %s: %v", rel, err)
		}
	}
	return root
}

func newTestManager(ignore []string) *OSFilesystemManager {
	return NewOSFilesystemManager(ignore, nil, driveidx.NewNopLogger())
}

func collect(m *OSFilesystemManager, ctx context.Context, root string) []*driveidx.WalkedFile {
	var out []*driveidx.WalkedFile
	for f := range m.Walk(ctx, filepath.ToSlash(root)) {
		out = append(out, f)
	}
	return out
}

func relPaths(files []*driveidx.WalkedFile) []string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.RelativePath
	}
	return paths
}

func TestWalk_SkipsTrashesDirectory(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"Projects/proj_intro.mp4": "v",
		"Projects/proj_outro.mp4": "v",
		"Projects/notes.txt":      "n",
		"Projects/cover.psd":      "p",
		"Projects/score.wav":      "w",
		"Footage/a.mov":           "m",
		"Footage/b.mov":           "m",
		"Footage/c.r3d":           "r",
		"Footage/still.jpg":       "j",
		"Footage/readme":          "x",
		".Trashes/old1.mov":       "t",
		".Trashes/old2.mov":       "t",
	})

	got := collect(newTestManager(nil), context.Background(), root)
	if len(got) != 10 {
		t.Fatalf("expected 10 files, got %d: %v", len(got), relPaths(got))
	}
	for _, f := range got {
		if filepath.Dir(filepath.FromSlash(f.RelativePath)) == ".Trashes" {
			t.Errorf("yielded file from junk dir: %s", f.RelativePath)
		}
	}
}

func TestWalk_FileFields(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{"Footage/Clip.MP4": "12345"})
	mtime := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(filepath.Join(root, "Footage", "Clip.MP4"), mtime, mtime); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	got := collect(newTestManager(nil), context.Background(), root)
	if len(got) != 1 {
		t.Fatalf("expected 1 file, got %d", len(got))
	}
	f := got[0]
	if f.Name != "Clip.MP4" {
		t.Errorf("Name = %q", f.Name)
	}
	if f.RelativePath != "Footage/Clip.MP4" {
		t.Errorf("RelativePath = %q", f.RelativePath)
	}
	if f.Extension != ".MP4" {
		t.Errorf("Extension = %q", f.Extension)
	}
	if f.Category != "Video (MP4)" {
		t.Errorf("Category = %q", f.Category)
	}
	if f.Size != 5 {
		t.Errorf("Size = %d", f.Size)
	}
	if !f.ModifiedAt.Equal(mtime) || f.ModifiedAt.Location() != time.UTC {
		t.Errorf("ModifiedAt = %v, want %v", f.ModifiedAt, mtime)
	}
}

func TestWalk_NeverYieldsJunk(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"keep.txt":                    "k",
		".DS_Store":                   "j",
		"Thumbs.db":                   "j",
		"desktop.ini":                 "j",
		"sub/._keep.txt":              "j",
		"sub/~$draft.docx":            "j",
		"sub/real.docx":               "k",
		".Trash-1000/files/x.mov":     "j",
		"$RECYCLE.BIN/y.mov":          "j",
		"lost+found/#123":             "j",
		".git/objects/pack/pack.pack": "j",
		".profile":                    "k",
	})

	got := relPaths(collect(newTestManager(nil), context.Background(), root))
	slices.Sort(got)
	want := []string{".profile", "keep.txt", "sub/real.docx"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestWalk_DotfileHasNoExtension(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{".profile": "p"})
	got := collect(newTestManager(nil), context.Background(), root)
	if len(got) != 1 {
		t.Fatalf("expected 1 file, got %d", len(got))
	}
	if got[0].Extension != "" || got[0].Category != "Other" {
		t.Errorf("got ext %q category %q", got[0].Extension, got[0].Category)
	}
}

func TestWalk_IgnorePatterns(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"a.mov":              "v",
		"render.tmp":         "t",
		"Cache/c.bin":        "c",
		"Projects/Cache/d":   "c",
		"Projects/keep.mov":  "v",
		"Projects/out/e.mov": "v",
		IgnoreFileName:       "Projects/out\n# comment\n",
	})

	got := relPaths(collect(newTestManager([]string{"*.tmp", "Cache"}), context.Background(), root))
	slices.Sort(got)
	want := []string{"Projects/keep.mov", "a.mov"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestWalk_StopsOnBreak(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"a/1.txt": "1", "a/2.txt": "2", "b/3.txt": "3", "b/4.txt": "4",
	})

	m := newTestManager(nil)
	n := 0
	for range m.Walk(context.Background(), filepath.ToSlash(root)) {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("expected to stop after 2 files, got %d", n)
	}
}

func TestWalk_CancelledContext(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{"a.txt": "a", "sub/b.txt": "b"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if got := collect(newTestManager(nil), ctx, root); len(got) != 0 {
		t.Errorf("expected no files after cancel, got %v", relPaths(got))
	}
}

func TestWalk_UnreadableDirectory(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("directory permissions are not enforced on windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	root := writeTree(t, map[string]string{
		"Alpha/a.mov":       "a",
		"Locked/hidden.mp4": "h",
		"Zeta/z.mov":        "z",
		"top.txt":           "t",
	})
	locked := filepath.Join(root, "Locked")
	if err := os.Chmod(locked, 0); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	got := relPaths(collect(newTestManager(nil), context.Background(), root))
	slices.Sort(got)
	want := []string{"Alpha/a.mov", "Zeta/z.mov", "top.txt"}
	if !slices.Equal(got, want) {
		t.Errorf("Walk() = %v, want %v", got, want)
	}
}

func TestWalk_MissingRoot(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "gone")
	if got := collect(newTestManager(nil), context.Background(), root); len(got) != 0 {
		t.Errorf("expected no files, got %v", relPaths(got))
	}
}
