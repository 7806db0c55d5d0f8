// Package database implements the drive index on SQLite.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"golang.org/x/text/cases"

	"drive-indexer/internal/database/migrations"
	"drive-indexer/internal/driveidx"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// SQLiteDatabase implements driveidx.Database using SQLite.
type SQLiteDatabase struct {
	db   *sqlx.DB
	path string
}

// NewSQLiteDatabase opens the database at path, or a private in-memory
// database when path is MemoryPath. The schema is not migrated; call Migrate.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteDatabase{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite connection pool.
//
// File databases run in WAL mode with a 5s busy timeout so concurrent scans
// can interleave their batch inserts. An in-memory database is pinned to a
// single connection because each new connection would see an empty database.
func OpenConnection(path string) (*sqlx.DB, error) {
	var dsn string
	if path == MemoryPath {
		dsn = MemoryPath + "?_foreign_keys=on"
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		dsn = path + "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_txlock=immediate"
	}

	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path == MemoryPath {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// Path returns the file the database was opened from.
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// Migrate applies pending schema migrations.
func (s *SQLiteDatabase) Migrate() error {
	return migrations.MigrateUp(s.db.DB)
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db.DB)
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
// destPath must not exist.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	if _, err := s.db.Exec("VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Drive operations

func (s *SQLiteDatabase) ListDrives() ([]*driveidx.Drive, error) {
	var drives []*driveidx.Drive
	if err := s.db.Select(&drives, `SELECT * FROM drives ORDER BY created_at DESC, name ASC`); err != nil {
		return nil, fmt.Errorf("listing drives: %w", err)
	}
	return drives, nil
}

func (s *SQLiteDatabase) FindDriveByID(id string) (*driveidx.Drive, error) {
	return s.findDrive(`SELECT * FROM drives WHERE id = ?`, id)
}

func (s *SQLiteDatabase) FindDriveByName(name string) (*driveidx.Drive, error) {
	return s.findDrive(`SELECT * FROM drives WHERE name = ?`, name)
}

func (s *SQLiteDatabase) findDrive(query string, arg string) (*driveidx.Drive, error) {
	drive := &driveidx.Drive{}
	if err := s.db.Get(drive, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding drive: %w", err)
	}
	return drive, nil
}

func (s *SQLiteDatabase) CreateDrive(drive *driveidx.Drive) error {
	_, err := s.db.NamedExec(`
		INSERT INTO drives (id, name, description, scan_path, file_count, total_size, free_space, last_scanned, created_at)
		VALUES (:id, :name, :description, :scan_path, :file_count, :total_size, :free_space, :last_scanned, :created_at)`,
		drive)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", driveidx.ErrDuplicateName, drive.Name)
		}
		return fmt.Errorf("inserting drive: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) UpdateDrive(drive *driveidx.Drive) error {
	res, err := s.db.Exec(`UPDATE drives SET name = ?, description = ? WHERE id = ?`,
		drive.Name, drive.Description, drive.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", driveidx.ErrDuplicateName, drive.Name)
		}
		return fmt.Errorf("updating drive: %w", err)
	}
	return expectRow(res, drive.ID)
}

func (s *SQLiteDatabase) UpdateDriveScanPath(id, scanPath string) error {
	res, err := s.db.Exec(`UPDATE drives SET scan_path = ? WHERE id = ?`, scanPath, id)
	if err != nil {
		return fmt.Errorf("updating scan path: %w", err)
	}
	return expectRow(res, id)
}

func (s *SQLiteDatabase) DeleteDrive(id string) error {
	res, err := s.db.Exec(`DELETE FROM drives WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting drive: %w", err)
	}
	return expectRow(res, id)
}

// Scan operations

func (s *SQLiteDatabase) CreateScanRun(driveID, scanPath string, startedAt time.Time) (*driveidx.ScanRun, error) {
	res, err := s.db.Exec(`
		INSERT INTO scan_runs (drive_id, scan_path, started_at, status)
		VALUES (?, ?, ?, ?)`,
		driveID, scanPath, startedAt, driveidx.ScanRunning)
	if err != nil {
		return nil, fmt.Errorf("inserting scan run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading scan run id: %w", err)
	}

	return &driveidx.ScanRun{
		ID:        id,
		DriveID:   driveID,
		ScanPath:  scanPath,
		StartedAt: startedAt,
		Status:    driveidx.ScanRunning,
	}, nil
}

// InsertStagedFiles writes the batch as a single multi-row INSERT.
func (s *SQLiteDatabase) InsertStagedFiles(scanID int64, files []*driveidx.File) error {
	if len(files) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString(`INSERT INTO staged_files
		(id, scan_id, drive_id, file_name, file_name_folded, file_path, file_size, file_type, category, modified_at, scanned_at)
		VALUES `)

	args := make([]any, 0, len(files)*11)
	for i, f := range files {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args, f.ID, scanID, f.DriveID, f.FileName, foldName(f.FileName), f.FilePath, f.FileSize,
			f.FileType, f.Category, f.ModifiedAt, f.ScannedAt)
	}

	if _, err := s.db.Exec(b.String(), args...); err != nil {
		return fmt.Errorf("inserting %d staged files: %w", len(files), err)
	}
	return nil
}

func (s *SQLiteDatabase) CommitScan(c driveidx.ScanCommit) (*driveidx.Drive, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM files WHERE drive_id = ?`, c.DriveID); err != nil {
		return nil, fmt.Errorf("removing previous index: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO files (id, drive_id, file_name, file_name_folded, file_path, file_size, file_type, category, modified_at, scanned_at)
		SELECT id, drive_id, file_name, file_name_folded, file_path, file_size, file_type, category, modified_at, scanned_at
		FROM staged_files WHERE scan_id = ?`, c.ScanID); err != nil {
		return nil, fmt.Errorf("promoting staged files: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM staged_files WHERE scan_id = ?`, c.ScanID); err != nil {
		return nil, fmt.Errorf("clearing staged files: %w", err)
	}

	var agg struct {
		Count int64 `db:"count"`
		Size  int64 `db:"size"`
	}
	if err := tx.Get(&agg, `SELECT COUNT(*) AS count, COALESCE(SUM(file_size), 0) AS size FROM files WHERE drive_id = ?`, c.DriveID); err != nil {
		return nil, fmt.Errorf("summing indexed files: %w", err)
	}

	totalSize := c.Capacity
	if totalSize <= 0 {
		totalSize = agg.Size
	}

	res, err := tx.Exec(`
		UPDATE drives
		SET file_count = ?, total_size = ?, free_space = ?, last_scanned = ?, scan_path = ?
		WHERE id = ?`,
		agg.Count, totalSize, c.FreeSpace, c.FinishedAt, c.ScanPath, c.DriveID)
	if err != nil {
		return nil, fmt.Errorf("updating drive stats: %w", err)
	}
	if err := expectRow(res, c.DriveID); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(`
		UPDATE scan_runs SET status = ?, finished_at = ?, file_count = ? WHERE id = ?`,
		driveidx.ScanSuccess, c.FinishedAt, agg.Count, c.ScanID); err != nil {
		return nil, fmt.Errorf("finishing scan run: %w", err)
	}

	drive := &driveidx.Drive{}
	if err := tx.Get(drive, `SELECT * FROM drives WHERE id = ?`, c.DriveID); err != nil {
		return nil, fmt.Errorf("reloading drive: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing scan: %w", err)
	}
	return drive, nil
}

func (s *SQLiteDatabase) AbortScan(scanID int64, finishedAt time.Time, message string) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM staged_files WHERE scan_id = ?`, scanID); err != nil {
		return fmt.Errorf("discarding staged files: %w", err)
	}

	if _, err := tx.Exec(`
		UPDATE scan_runs SET status = ?, finished_at = ?, error = ? WHERE id = ?`,
		driveidx.ScanError, finishedAt, message, scanID); err != nil {
		return fmt.Errorf("failing scan run: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteDatabase) ListScanRuns(limit int) ([]*driveidx.ScanRun, error) {
	var runs []*driveidx.ScanRun
	err := s.db.Select(&runs, `
		SELECT r.*, COALESCE(d.name, '') AS drive_name
		FROM scan_runs r LEFT JOIN drives d ON d.id = r.drive_id
		ORDER BY r.id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing scan runs: %w", err)
	}
	return runs, nil
}

func (s *SQLiteDatabase) MaxScanRunID() (int64, error) {
	var id int64
	if err := s.db.Get(&id, `SELECT COALESCE(MAX(id), 0) FROM scan_runs`); err != nil {
		return 0, fmt.Errorf("reading max scan run id: %w", err)
	}
	return id, nil
}

// File operations

func (s *SQLiteDatabase) ClearDriveFiles(driveID string) (int64, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`DELETE FROM files WHERE drive_id = ?`, driveID)
	if err != nil {
		return 0, fmt.Errorf("deleting files: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted files: %w", err)
	}

	if _, err := tx.Exec(`UPDATE drives SET file_count = 0 WHERE id = ?`, driveID); err != nil {
		return 0, fmt.Errorf("resetting file count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing clear: %w", err)
	}
	return removed, nil
}

func (s *SQLiteDatabase) SampleFilePaths(driveID string, n int) ([]string, error) {
	var paths []string
	if err := s.db.Select(&paths, `SELECT file_path FROM files WHERE drive_id = ? ORDER BY RANDOM() LIMIT ?`, driveID, n); err != nil {
		return nil, fmt.Errorf("sampling files: %w", err)
	}
	return paths, nil
}

func (s *SQLiteDatabase) SearchFiles(query string, filters driveidx.SearchFilters, limit int) ([]*driveidx.FileResult, error) {
	var b strings.Builder
	b.WriteString(`
		SELECT f.id, f.drive_id, f.file_name, f.file_path, f.file_size, f.file_type,
			f.category, f.modified_at, f.scanned_at, d.name AS drive_name
		FROM files f JOIN drives d ON d.id = f.drive_id
		WHERE f.file_name_folded LIKE ? ESCAPE '\'`)
	args := []any{"%" + escapeLike(foldName(query)) + "%"}

	if len(filters.Categories) > 0 {
		b.WriteString(` AND f.category IN (?)`)
		args = append(args, filters.Categories)
	}
	if len(filters.DriveIDs) > 0 {
		b.WriteString(` AND f.drive_id IN (?)`)
		args = append(args, filters.DriveIDs)
	}
	b.WriteString(` ORDER BY f.file_name ASC, d.name ASC, f.file_path ASC LIMIT ?`)
	args = append(args, limit)

	q, args, err := sqlx.In(b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("building search query: %w", err)
	}

	var results []*driveidx.FileResult
	if err := s.db.Select(&results, s.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("searching files: %w", err)
	}
	return results, nil
}

func (s *SQLiteDatabase) FileStats(driveID string) ([]*driveidx.CategoryStat, error) {
	var stats []*driveidx.CategoryStat
	err := s.db.Select(&stats, `
		SELECT category, COUNT(*) AS count, COALESCE(SUM(file_size), 0) AS total_size
		FROM files WHERE drive_id = ?
		GROUP BY category
		ORDER BY count DESC, category ASC`, driveID)
	if err != nil {
		return nil, fmt.Errorf("computing file stats: %w", err)
	}
	return stats, nil
}

// foldName case-folds a file name for search. SQLite's own LIKE folds ASCII only.
func foldName(s string) string {
	return cases.Fold().String(s)
}

// escapeLike escapes the LIKE wildcards in a user query.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}

// expectRow maps an update that touched no rows to ErrDriveNotFound.
func expectRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", driveidx.ErrDriveNotFound, id)
	}
	return nil
}

// Compile-time check that SQLiteDatabase implements driveidx.Database interface
var _ driveidx.Database = (*SQLiteDatabase)(nil)
