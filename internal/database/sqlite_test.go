package database

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"drive-indexer/internal/driveidx"
)

var testNow = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

// newTestDB creates a new in-memory database with schema applied.
func newTestDB(t *testing.T) *SQLiteDatabase {
	t.Helper()

	db, err := NewSQLiteDatabase(MemoryPath)
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func createDrive(t *testing.T, db *SQLiteDatabase, id, name string) *driveidx.Drive {
	t.Helper()
	d := &driveidx.Drive{ID: id, Name: name, CreatedAt: testNow}
	if err := db.CreateDrive(d); err != nil {
		t.Fatalf("CreateDrive(%q) error = %v", name, err)
	}
	return d
}

// indexFiles stages and commits the given relative paths as one scan.
func indexFiles(t *testing.T, db *SQLiteDatabase, driveID string, paths ...string) *driveidx.Drive {
	t.Helper()

	run, err := db.CreateScanRun(driveID, "/Volumes/"+driveID, testNow)
	if err != nil {
		t.Fatalf("CreateScanRun() error = %v", err)
	}

	files := make([]*driveidx.File, len(paths))
	for i, p := range paths {
		files[i] = &driveidx.File{
			ID:         fmt.Sprintf("%s-%d-%d", driveID, run.ID, i),
			DriveID:    driveID,
			FileName:   filepath.Base(p),
			FilePath:   p,
			FileSize:   int64(100 * (i + 1)),
			FileType:   filepath.Ext(p),
			Category:   categoryFor(filepath.Ext(p)),
			ModifiedAt: testNow.Add(-time.Hour),
			ScannedAt:  testNow,
		}
	}
	for start := 0; start < len(files); start += driveidx.BatchSize {
		end := min(start+driveidx.BatchSize, len(files))
		if err := db.InsertStagedFiles(run.ID, files[start:end]); err != nil {
			t.Fatalf("InsertStagedFiles() error = %v", err)
		}
	}

	drive, err := db.CommitScan(driveidx.ScanCommit{
		ScanID:     run.ID,
		DriveID:    driveID,
		ScanPath:   "/Volumes/" + driveID,
		FinishedAt: testNow,
	})
	if err != nil {
		t.Fatalf("CommitScan() error = %v", err)
	}
	return drive
}

func categoryFor(ext string) string {
	switch ext {
	case ".mp4":
		return "Video (MP4)"
	case ".psd":
		return "Photoshop"
	default:
		return "Other"
	}
}

func countRows(t *testing.T, db *SQLiteDatabase, query string, args ...any) int {
	t.Helper()
	var n int
	if err := db.db.Get(&n, query, args...); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	return n
}

func TestSQLiteDatabase_Drives(t *testing.T) {
	t.Run("find returns nil when missing", func(t *testing.T) {
		db := newTestDB(t)

		d, err := db.FindDriveByID("nope")
		if err != nil || d != nil {
			t.Errorf("FindDriveByID() = (%v, %v), want (nil, nil)", d, err)
		}
		d, err = db.FindDriveByName("nope")
		if err != nil || d != nil {
			t.Errorf("FindDriveByName() = (%v, %v), want (nil, nil)", d, err)
		}
	})

	t.Run("create and find", func(t *testing.T) {
		db := newTestDB(t)
		createDrive(t, db, "d-1", "Archive")

		found, err := db.FindDriveByName("Archive")
		if err != nil {
			t.Fatalf("FindDriveByName() error = %v", err)
		}
		if found == nil || found.ID != "d-1" {
			t.Fatalf("FindDriveByName() = %+v, want d-1", found)
		}
		if found.LastScanned.Valid {
			t.Error("LastScanned should be null before the first scan")
		}
		if !found.CreatedAt.Equal(testNow) {
			t.Errorf("CreatedAt = %v, want %v", found.CreatedAt, testNow)
		}
	})

	t.Run("duplicate name", func(t *testing.T) {
		db := newTestDB(t)
		createDrive(t, db, "d-1", "Archive")

		err := db.CreateDrive(&driveidx.Drive{ID: "d-2", Name: "Archive", CreatedAt: testNow})
		if !errors.Is(err, driveidx.ErrDuplicateName) {
			t.Errorf("CreateDrive() error = %v, want ErrDuplicateName", err)
		}
	})

	t.Run("rename onto existing name", func(t *testing.T) {
		db := newTestDB(t)
		createDrive(t, db, "d-1", "Archive")
		d2 := createDrive(t, db, "d-2", "Backup")

		d2.Name = "Archive"
		if err := db.UpdateDrive(d2); !errors.Is(err, driveidx.ErrDuplicateName) {
			t.Errorf("UpdateDrive() error = %v, want ErrDuplicateName", err)
		}
	})

	t.Run("update missing drive", func(t *testing.T) {
		db := newTestDB(t)
		err := db.UpdateDrive(&driveidx.Drive{ID: "missing", Name: "x"})
		if !errors.Is(err, driveidx.ErrDriveNotFound) {
			t.Errorf("UpdateDrive() error = %v, want ErrDriveNotFound", err)
		}
	})

	t.Run("list newest first", func(t *testing.T) {
		db := newTestDB(t)
		for i, name := range []string{"A", "B", "C"} {
			d := &driveidx.Drive{ID: name, Name: name, CreatedAt: testNow.Add(time.Duration(i) * time.Minute)}
			if err := db.CreateDrive(d); err != nil {
				t.Fatalf("CreateDrive() error = %v", err)
			}
		}

		drives, err := db.ListDrives()
		if err != nil {
			t.Fatalf("ListDrives() error = %v", err)
		}
		var got []string
		for _, d := range drives {
			got = append(got, d.Name)
		}
		if fmt.Sprint(got) != "[C B A]" {
			t.Errorf("ListDrives() order = %v, want [C B A]", got)
		}
	})
}

func TestSQLiteDatabase_DeleteDriveCascades(t *testing.T) {
	db := newTestDB(t)
	createDrive(t, db, "d-1", "Archive")

	paths := make([]string, 500)
	for i := range paths {
		paths[i] = fmt.Sprintf("dir%d/file%03d.mp4", i%5, i)
	}
	indexFiles(t, db, "d-1", paths...)

	if n := countRows(t, db, `SELECT COUNT(*) FROM files WHERE drive_id = ?`, "d-1"); n != 500 {
		t.Fatalf("files before delete = %d, want 500", n)
	}

	if err := db.DeleteDrive("d-1"); err != nil {
		t.Fatalf("DeleteDrive() error = %v", err)
	}

	if n := countRows(t, db, `SELECT COUNT(*) FROM files WHERE drive_id = ?`, "d-1"); n != 0 {
		t.Errorf("files after delete = %d, want 0", n)
	}
	if n := countRows(t, db, `SELECT COUNT(*) FROM scan_runs WHERE drive_id = ?`, "d-1"); n != 0 {
		t.Errorf("scan runs after delete = %d, want 0", n)
	}
	if err := db.DeleteDrive("d-1"); !errors.Is(err, driveidx.ErrDriveNotFound) {
		t.Errorf("second DeleteDrive() error = %v, want ErrDriveNotFound", err)
	}
}

func TestSQLiteDatabase_CommitScan(t *testing.T) {
	t.Run("replaces previous index", func(t *testing.T) {
		db := newTestDB(t)
		createDrive(t, db, "d-1", "Archive")

		indexFiles(t, db, "d-1", "a.mp4", "b.mp4", "c.psd")
		drive := indexFiles(t, db, "d-1", "b.mp4", "d.psd")

		if drive.FileCount != 2 {
			t.Errorf("FileCount = %d, want 2", drive.FileCount)
		}
		if n := countRows(t, db, `SELECT COUNT(*) FROM files WHERE drive_id = ?`, "d-1"); n != 2 {
			t.Errorf("files = %d, want 2", n)
		}
		if n := countRows(t, db, `SELECT COUNT(*) FROM staged_files`); n != 0 {
			t.Errorf("staged_files = %d, want 0 after commit", n)
		}
		if !drive.LastScanned.Valid || !drive.LastScanned.Time.Equal(testNow) {
			t.Errorf("LastScanned = %v, want %v", drive.LastScanned, testNow)
		}
		if drive.ScanPath != "/Volumes/d-1" {
			t.Errorf("ScanPath = %q, want /Volumes/d-1", drive.ScanPath)
		}
	})

	t.Run("total size falls back to indexed bytes", func(t *testing.T) {
		db := newTestDB(t)
		createDrive(t, db, "d-1", "Archive")

		drive := indexFiles(t, db, "d-1", "a.mp4", "b.mp4")
		if drive.TotalSize != 300 {
			t.Errorf("TotalSize = %d, want 300 (sum of file sizes)", drive.TotalSize)
		}
	})

	t.Run("total size uses probed capacity", func(t *testing.T) {
		db := newTestDB(t)
		createDrive(t, db, "d-1", "Archive")

		run, err := db.CreateScanRun("d-1", "/Volumes/A", testNow)
		if err != nil {
			t.Fatalf("CreateScanRun() error = %v", err)
		}
		drive, err := db.CommitScan(driveidx.ScanCommit{
			ScanID: run.ID, DriveID: "d-1", ScanPath: "/Volumes/A",
			Capacity: 1 << 40, FreeSpace: 1 << 30, FinishedAt: testNow,
		})
		if err != nil {
			t.Fatalf("CommitScan() error = %v", err)
		}
		if drive.TotalSize != 1<<40 || drive.FreeSpace != 1<<30 {
			t.Errorf("TotalSize/FreeSpace = %d/%d, want %d/%d", drive.TotalSize, drive.FreeSpace, int64(1<<40), int64(1<<30))
		}
	})

	t.Run("marks run successful", func(t *testing.T) {
		db := newTestDB(t)
		createDrive(t, db, "d-1", "Archive")
		indexFiles(t, db, "d-1", "a.mp4")

		runs, err := db.ListScanRuns(10)
		if err != nil {
			t.Fatalf("ListScanRuns() error = %v", err)
		}
		if len(runs) != 1 {
			t.Fatalf("ListScanRuns() returned %d runs, want 1", len(runs))
		}
		r := runs[0]
		if r.Status != driveidx.ScanSuccess || r.FileCount != 1 || !r.FinishedAt.Valid || r.DriveName != "Archive" {
			t.Errorf("run = %+v, want success with 1 file for Archive", r)
		}
	})
}

func TestSQLiteDatabase_AbortScan(t *testing.T) {
	db := newTestDB(t)
	createDrive(t, db, "d-1", "Archive")
	indexFiles(t, db, "d-1", "keep.mp4")

	run, err := db.CreateScanRun("d-1", "/Volumes/d-1", testNow)
	if err != nil {
		t.Fatalf("CreateScanRun() error = %v", err)
	}
	staged := []*driveidx.File{{
		ID: "s-1", DriveID: "d-1", FileName: "new.mp4", FilePath: "new.mp4",
		Category: "Video (MP4)", ModifiedAt: testNow, ScannedAt: testNow,
	}}
	if err := db.InsertStagedFiles(run.ID, staged); err != nil {
		t.Fatalf("InsertStagedFiles() error = %v", err)
	}

	if err := db.AbortScan(run.ID, testNow, "disk unplugged"); err != nil {
		t.Fatalf("AbortScan() error = %v", err)
	}

	if n := countRows(t, db, `SELECT COUNT(*) FROM staged_files`); n != 0 {
		t.Errorf("staged_files = %d, want 0", n)
	}
	if n := countRows(t, db, `SELECT COUNT(*) FROM files WHERE file_path = 'keep.mp4'`); n != 1 {
		t.Errorf("previous index lost: keep.mp4 rows = %d", n)
	}

	runs, err := db.ListScanRuns(1)
	if err != nil {
		t.Fatalf("ListScanRuns() error = %v", err)
	}
	if runs[0].Status != driveidx.ScanError || runs[0].Error != "disk unplugged" {
		t.Errorf("latest run = %+v, want error 'disk unplugged'", runs[0])
	}

	maxID, err := db.MaxScanRunID()
	if err != nil {
		t.Fatalf("MaxScanRunID() error = %v", err)
	}
	if maxID != run.ID {
		t.Errorf("MaxScanRunID() = %d, want %d", maxID, run.ID)
	}
}

func TestSQLiteDatabase_SearchFiles(t *testing.T) {
	db := newTestDB(t)
	createDrive(t, db, "d-1", "Archive")
	createDrive(t, db, "d-2", "Backup")
	indexFiles(t, db, "d-1", "Project_A.mp4", "project_b.psd", "notes.txt", "100%_done.mp4")
	indexFiles(t, db, "d-2", "PROJECT_C.mp4")

	tests := []struct {
		name    string
		query   string
		filters driveidx.SearchFilters
		want    []string
	}{
		{
			name:  "case-insensitive substring, ordered by name",
			query: "proj",
			want:  []string{"PROJECT_C.mp4", "Project_A.mp4", "project_b.psd"},
		},
		{
			name:    "category filter",
			query:   "proj",
			filters: driveidx.SearchFilters{Categories: []string{"Video (MP4)"}},
			want:    []string{"PROJECT_C.mp4", "Project_A.mp4"},
		},
		{
			name:    "drive filter",
			query:   "proj",
			filters: driveidx.SearchFilters{DriveIDs: []string{"d-1"}},
			want:    []string{"Project_A.mp4", "project_b.psd"},
		},
		{
			name:    "both filters",
			query:   "proj",
			filters: driveidx.SearchFilters{Categories: []string{"Video (MP4)"}, DriveIDs: []string{"d-2"}},
			want:    []string{"PROJECT_C.mp4"},
		},
		{
			name:  "wildcards are literal",
			query: "%_",
			want:  []string{"100%_done.mp4"},
		},
		{
			name:  "no match",
			query: "zzz",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := db.SearchFiles(tt.query, tt.filters, 1000)
			if err != nil {
				t.Fatalf("SearchFiles() error = %v", err)
			}
			var got []string
			for _, r := range results {
				got = append(got, r.FileName)
			}
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("SearchFiles(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}

	t.Run("non-ASCII names fold case", func(t *testing.T) {
		createDrive(t, db, "d-3", "Export")
		indexFiles(t, db, "d-3", "PROJEKT_Über.mp4", "ÄRGER.psd", "straße.txt")

		for _, tt := range []struct {
			query string
			want  []string
		}{
			{query: "über", want: []string{"PROJEKT_Über.mp4"}},
			{query: "ÜBER", want: []string{"PROJEKT_Über.mp4"}},
			{query: "ärger", want: []string{"ÄRGER.psd"}},
			{query: "STRASSE", want: []string{"straße.txt"}},
		} {
			results, err := db.SearchFiles(tt.query, driveidx.SearchFilters{DriveIDs: []string{"d-3"}}, 1000)
			if err != nil {
				t.Fatalf("SearchFiles() error = %v", err)
			}
			var got []string
			for _, r := range results {
				got = append(got, r.FileName)
			}
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("SearchFiles(%q) = %v, want %v", tt.query, got, tt.want)
			}
		}
	})

	t.Run("results carry drive name", func(t *testing.T) {
		results, err := db.SearchFiles("PROJECT_C", driveidx.SearchFilters{}, 1000)
		if err != nil {
			t.Fatalf("SearchFiles() error = %v", err)
		}
		if len(results) != 1 || results[0].DriveName != "Backup" || results[0].DriveID != "d-2" {
			t.Errorf("SearchFiles() = %+v, want one hit on Backup", results)
		}
	})

	t.Run("limit", func(t *testing.T) {
		results, err := db.SearchFiles("", driveidx.SearchFilters{}, 2)
		if err != nil {
			t.Fatalf("SearchFiles() error = %v", err)
		}
		if len(results) != 2 {
			t.Errorf("SearchFiles() returned %d rows, want 2", len(results))
		}
	})
}

func TestSQLiteDatabase_FileStats(t *testing.T) {
	db := newTestDB(t)
	createDrive(t, db, "d-1", "Archive")
	indexFiles(t, db, "d-1", "a.mp4", "b.mp4", "c.mp4", "d.psd", "e.txt", "f.txt")

	stats, err := db.FileStats("d-1")
	if err != nil {
		t.Fatalf("FileStats() error = %v", err)
	}
	if len(stats) != 3 {
		t.Fatalf("FileStats() returned %d categories, want 3", len(stats))
	}
	if stats[0].Category != "Video (MP4)" || stats[0].Count != 3 || stats[0].TotalSize != 600 {
		t.Errorf("stats[0] = %+v, want Video (MP4) x3 totalling 600", stats[0])
	}
	if stats[1].Category != "Other" || stats[1].Count != 2 {
		t.Errorf("stats[1] = %+v, want Other x2", stats[1])
	}
}

func TestSQLiteDatabase_ClearDriveFiles(t *testing.T) {
	db := newTestDB(t)
	createDrive(t, db, "d-1", "Archive")
	createDrive(t, db, "d-2", "Backup")
	indexFiles(t, db, "d-1", "a.mp4", "b.mp4")
	indexFiles(t, db, "d-2", "c.mp4")

	removed, err := db.ClearDriveFiles("d-1")
	if err != nil {
		t.Fatalf("ClearDriveFiles() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("ClearDriveFiles() = %d, want 2", removed)
	}

	d1, _ := db.FindDriveByID("d-1")
	if d1.FileCount != 0 {
		t.Errorf("FileCount = %d, want 0", d1.FileCount)
	}
	if n := countRows(t, db, `SELECT COUNT(*) FROM files WHERE drive_id = 'd-2'`); n != 1 {
		t.Errorf("other drive's files = %d, want 1", n)
	}
}

func TestSQLiteDatabase_SampleFilePaths(t *testing.T) {
	db := newTestDB(t)
	createDrive(t, db, "d-1", "Archive")
	indexFiles(t, db, "d-1", "a.mp4", "b.mp4", "c.mp4", "d.mp4", "e.mp4", "f.mp4", "g.mp4")

	sample, err := db.SampleFilePaths("d-1", 5)
	if err != nil {
		t.Fatalf("SampleFilePaths() error = %v", err)
	}
	if len(sample) != 5 {
		t.Errorf("SampleFilePaths() returned %d paths, want 5", len(sample))
	}

	sample, err = db.SampleFilePaths("missing", 5)
	if err != nil {
		t.Fatalf("SampleFilePaths() error = %v", err)
	}
	if len(sample) != 0 {
		t.Errorf("SampleFilePaths(missing) = %v, want empty", sample)
	}
}

func TestSQLiteDatabase_BackupTo(t *testing.T) {
	db := newTestDB(t)
	createDrive(t, db, "d-1", "Archive")
	indexFiles(t, db, "d-1", "a.mp4")

	dest := filepath.Join(t.TempDir(), "copy.db")
	if err := db.BackupTo(dest); err != nil {
		t.Fatalf("BackupTo() error = %v", err)
	}

	restored, err := NewSQLiteDatabase(dest)
	if err != nil {
		t.Fatalf("opening backup: %v", err)
	}
	defer restored.Close()

	if err := restored.CheckMigrations(); err != nil {
		t.Errorf("backup schema check failed: %v", err)
	}
	d, err := restored.FindDriveByName("Archive")
	if err != nil || d == nil || d.FileCount != 1 {
		t.Errorf("backup drive = (%+v, %v), want Archive with 1 file", d, err)
	}
}
