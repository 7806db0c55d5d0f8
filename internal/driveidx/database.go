package driveidx

import "time"

// Database provides an interface for index storage operations.
// Lookups return (nil, nil) when nothing matches.
type Database interface {
	// Drive operations

	// ListDrives returns every drive, newest first.
	ListDrives() ([]*Drive, error)

	FindDriveByID(id string) (*Drive, error)
	FindDriveByName(name string) (*Drive, error)

	// CreateDrive inserts a drive. Returns ErrDuplicateName if the name is taken.
	CreateDrive(drive *Drive) error

	// UpdateDrive persists the name and description of a drive.
	// Returns ErrDuplicateName if the new name is taken.
	UpdateDrive(drive *Drive) error

	// UpdateDriveScanPath records a new mount location for a drive.
	UpdateDriveScanPath(id, scanPath string) error

	// DeleteDrive removes a drive and, by cascade, its files and scan runs.
	DeleteDrive(id string) error

	// Scan operations

	// CreateScanRun opens a scan run in the running state.
	CreateScanRun(driveID, scanPath string, startedAt time.Time) (*ScanRun, error)

	// InsertStagedFiles writes one batch of files for an in-flight scan.
	InsertStagedFiles(scanID int64, files []*File) error

	// CommitScan replaces the drive's files with the staged rows of the scan,
	// refreshes the drive statistics and marks the run successful, all in one
	// transaction. Returns the updated drive.
	CommitScan(commit ScanCommit) (*Drive, error)

	// AbortScan drops the staged rows of a scan and marks it failed.
	AbortScan(scanID int64, finishedAt time.Time, message string) error

	// ListScanRuns returns the most recent scan runs, newest first.
	ListScanRuns(limit int) ([]*ScanRun, error)

	// MaxScanRunID returns the highest scan run id, or 0 if none exist.
	MaxScanRunID() (int64, error)

	// File operations

	// ClearDriveFiles deletes every file of a drive and zeroes its file count.
	// Returns the number of rows removed.
	ClearDriveFiles(driveID string) (int64, error)

	// SampleFilePaths returns up to n random relative paths indexed for a drive.
	SampleFilePaths(driveID string, n int) ([]string, error)

	// SearchFiles matches query as a case-insensitive substring of the file name.
	SearchFiles(query string, filters SearchFilters, limit int) ([]*FileResult, error)

	// FileStats groups a drive's files by category, largest count first.
	FileStats(driveID string) ([]*CategoryStat, error)

	// CheckMigrations verifies the schema is at the latest version.
	CheckMigrations() error

	// BackupTo writes a consistent copy of the database to destPath.
	BackupTo(destPath string) error

	Close() error
}
