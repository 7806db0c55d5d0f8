package driveidx

import "errors"

var (
	// ErrInvalidPath is returned when a scan or probe root is empty.
	ErrInvalidPath = errors.New("invalid path")

	// ErrPathNotFound is returned when a root does not exist or is not a directory.
	ErrPathNotFound = errors.New("path not found")

	// ErrDuplicateName is returned when a drive name is already taken.
	ErrDuplicateName = errors.New("drive name already exists")

	// ErrDriveNotFound is returned when no drive matches an id or name.
	ErrDriveNotFound = errors.New("drive not found")

	// ErrScanInProgress is returned when a drive already has a running scan.
	ErrScanInProgress = errors.New("scan already in progress")

	// ErrBatchWrite wraps a failed batch insert. It aborts the scan.
	ErrBatchWrite = errors.New("batch write failed")
)
