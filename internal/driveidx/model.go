package driveidx

import (
	"database/sql"
	"time"
)

// Drive is a registered external volume and the summary of its last scan.
type Drive struct {
	ID          string       `db:"id"`
	Name        string       `db:"name"`
	Description string       `db:"description"`
	ScanPath    string       `db:"scan_path"`
	FileCount   int64        `db:"file_count"`
	TotalSize   int64        `db:"total_size"`
	FreeSpace   int64        `db:"free_space"`
	LastScanned sql.NullTime `db:"last_scanned"`
	CreatedAt   time.Time    `db:"created_at"`
}

// File is one indexed file. FilePath is relative to the drive's scan root
// and always uses forward slashes.
type File struct {
	ID         string    `db:"id"`
	DriveID    string    `db:"drive_id"`
	FileName   string    `db:"file_name"`
	FilePath   string    `db:"file_path"`
	FileSize   int64     `db:"file_size"`
	FileType   string    `db:"file_type"`
	Category   string    `db:"category"`
	ModifiedAt time.Time `db:"modified_at"`
	ScannedAt  time.Time `db:"scanned_at"`
}

// FileResult is a search hit with the name of the drive that holds it.
type FileResult struct {
	File
	DriveName string `db:"drive_name"`
}

// CategoryStat is the per-category file count and byte total of one drive.
type CategoryStat struct {
	Category  string `db:"category"`
	Count     int64  `db:"count"`
	TotalSize int64  `db:"total_size"`
}

// Scan run states.
const (
	ScanRunning = "running"
	ScanSuccess = "success"
	ScanError   = "error"
)

// ScanRun records one scan attempt. Its ID doubles as the catalog version.
type ScanRun struct {
	ID         int64        `db:"id"`
	DriveID    string       `db:"drive_id"`
	DriveName  string       `db:"drive_name"`
	ScanPath   string       `db:"scan_path"`
	StartedAt  time.Time    `db:"started_at"`
	FinishedAt sql.NullTime `db:"finished_at"`
	Status     string       `db:"status"`
	FileCount  int64        `db:"file_count"`
	Error      string       `db:"error"`
}

// ScanCommit carries what the store needs to swap a staged scan into place.
type ScanCommit struct {
	ScanID     int64
	DriveID    string
	ScanPath   string
	Capacity   int64
	FreeSpace  int64
	FinishedAt time.Time
}

// DriveUpdate is a partial update. Nil fields are left unchanged.
type DriveUpdate struct {
	Name        *string
	Description *string
}

// SearchFilters narrows a search. Empty slices apply no restriction.
type SearchFilters struct {
	Categories []string
	DriveIDs   []string
}

// DiskSpace is the capacity of the volume holding a path, in bytes.
type DiskSpace struct {
	Total int64
	Free  int64
	Used  int64
}

// WalkedFile is one regular file yielded by a directory walk.
type WalkedFile struct {
	Name         string
	RelativePath string
	Extension    string
	Category     string
	Size         int64
	ModifiedAt   time.Time
}

// Progress is reported while a scan runs.
type Progress struct {
	FilesScanned int64
	Message      string
	Done         bool
}

// ProgressFunc receives scan progress. It may be nil.
type ProgressFunc func(Progress)

// ScanSummary is returned by a successful scan.
type ScanSummary struct {
	DriveID     string
	ScanID      int64
	ScanPath    string
	FileCount   int64
	TotalSize   int64
	FreeSpace   int64
	LastScanned time.Time
	Duration    time.Duration
}

// Location is the result of resolving a drive against the mounted volumes.
type Location struct {
	Connected bool
	MountPath string
	Matched   int
	Sampled   int
}

// DriveLocation pairs a drive with its resolved location.
type DriveLocation struct {
	Drive    *Drive
	Location *Location
	Err      error
}
