package driveidx

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

const (
	// SearchLimit caps the number of rows returned by SearchFiles.
	SearchLimit = 1000

	// DefaultHistoryLimit is used when ScanHistory is called with limit <= 0.
	DefaultHistoryLimit = 50

	// locateConcurrency bounds the number of drives resolved at once.
	locateConcurrency = 4
)

// Service is the orchestration layer that coordinates the index store, the
// filesystem and the volume enumerator to perform the operations needed by
// the CLI.
type Service struct {
	database Database
	fsmgr    FilesystemManager
	locator  *Locator
	logger   Logger
	clock    Clock
	idgen    IDGenerator

	mu       sync.Mutex
	scanning map[string]bool
}

// NewService creates a new Service with the provided dependencies.
func NewService(database Database, fsmgr FilesystemManager, volumes VolumeEnumerator, logger Logger, clock Clock, idgen IDGenerator) *Service {
	return &Service{
		database: database,
		fsmgr:    fsmgr,
		locator:  NewLocator(database, fsmgr, volumes, logger),
		logger:   logger,
		clock:    clock,
		idgen:    idgen,
		scanning: make(map[string]bool),
	}
}

// ListDrives returns every registered drive, newest first.
func (s *Service) ListDrives() ([]*Drive, error) {
	drives, err := s.database.ListDrives()
	if err != nil {
		return nil, fmt.Errorf("listing drives: %w", err)
	}
	return drives, nil
}

// GetDrive looks a drive up by id, then by name.
func (s *Service) GetDrive(idOrName string) (*Drive, error) {
	drive, err := s.database.FindDriveByID(idOrName)
	if err != nil {
		return nil, fmt.Errorf("finding drive: %w", err)
	}
	if drive != nil {
		return drive, nil
	}

	drive, err = s.database.FindDriveByName(idOrName)
	if err != nil {
		return nil, fmt.Errorf("finding drive: %w", err)
	}
	if drive == nil {
		return nil, fmt.Errorf("%w: %s", ErrDriveNotFound, idOrName)
	}
	return drive, nil
}

// CreateDrive registers a new drive. Names must be unique.
func (s *Service) CreateDrive(name, description string) (*Drive, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("drive name is required")
	}

	existing, err := s.database.FindDriveByName(name)
	if err != nil {
		return nil, fmt.Errorf("checking for existing drive: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}

	drive := &Drive{
		ID:          s.idgen.New(),
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedAt:   s.clock.Now(),
	}
	if err := s.database.CreateDrive(drive); err != nil {
		return nil, fmt.Errorf("creating drive: %w", err)
	}

	s.logger.Info("drive created", "drive", drive.Name, "id", drive.ID)
	return drive, nil
}

// UpdateDrive applies a partial update to a drive's name and description.
func (s *Service) UpdateDrive(id string, upd DriveUpdate) (*Drive, error) {
	drive, err := s.findDrive(id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, fmt.Errorf("drive name is required")
		}
		if name != drive.Name {
			existing, err := s.database.FindDriveByName(name)
			if err != nil {
				return nil, fmt.Errorf("checking for existing drive: %w", err)
			}
			if existing != nil {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateName, name)
			}
		}
		drive.Name = name
	}
	if upd.Description != nil {
		drive.Description = strings.TrimSpace(*upd.Description)
	}

	if err := s.database.UpdateDrive(drive); err != nil {
		return nil, fmt.Errorf("updating drive: %w", err)
	}

	s.logger.Info("drive updated", "drive", drive.Name, "id", drive.ID)
	return drive, nil
}

// DeleteDrive removes a drive and all of its indexed files.
func (s *Service) DeleteDrive(id string) error {
	drive, err := s.findDrive(id)
	if err != nil {
		return err
	}

	if err := s.database.DeleteDrive(drive.ID); err != nil {
		return fmt.Errorf("deleting drive: %w", err)
	}

	s.logger.Info("drive deleted", "drive", drive.Name, "id", drive.ID)
	return nil
}

// ClearDriveIndex removes every indexed file of a drive and zeroes its file
// count. Returns the number of files removed.
func (s *Service) ClearDriveIndex(id string) (int64, error) {
	drive, err := s.findDrive(id)
	if err != nil {
		return 0, err
	}

	release, err := s.acquireScan(drive.ID)
	if err != nil {
		return 0, err
	}
	defer release()

	removed, err := s.database.ClearDriveFiles(drive.ID)
	if err != nil {
		return 0, fmt.Errorf("clearing drive index: %w", err)
	}

	s.logger.Info("drive index cleared", "drive", drive.Name, "removed", removed)
	return removed, nil
}

// SearchFiles returns files whose name contains query, case-insensitively,
// narrowed by the filters. Results are ordered by file name and capped at
// SearchLimit.
func (s *Service) SearchFiles(query string, filters SearchFilters) ([]*FileResult, error) {
	results, err := s.database.SearchFiles(strings.TrimSpace(query), filters, SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("searching files: %w", err)
	}
	return results, nil
}

// GetFileStats returns the per-category breakdown of a drive, largest first.
func (s *Service) GetFileStats(id string) ([]*CategoryStat, error) {
	drive, err := s.findDrive(id)
	if err != nil {
		return nil, err
	}

	stats, err := s.database.FileStats(drive.ID)
	if err != nil {
		return nil, fmt.Errorf("computing file stats: %w", err)
	}
	return stats, nil
}

// ProbeDiskSpace reports the capacity of the volume holding root.
func (s *Service) ProbeDiskSpace(root string) (*DiskSpace, error) {
	root = NormalizePath(root)
	if root == "" {
		return nil, ErrInvalidPath
	}
	if err := s.checkRoot(root); err != nil {
		return nil, err
	}

	space, err := s.fsmgr.DiskSpace(root)
	if err != nil {
		return nil, fmt.Errorf("probing disk space: %w", err)
	}
	return space, nil
}

// LocateDrive resolves where a drive is currently mounted. When the drive is
// found somewhere other than its recorded scan path, the new path is saved.
func (s *Service) LocateDrive(ctx context.Context, id string) (*Location, error) {
	drive, err := s.findDrive(id)
	if err != nil {
		return nil, err
	}
	return s.locate(ctx, drive)
}

// LocateDrives resolves every registered drive concurrently. A failure for
// one drive is reported in its DriveLocation and does not stop the others.
// Cancelling ctx does: drives not yet started are skipped.
func (s *Service) LocateDrives(ctx context.Context) ([]*DriveLocation, error) {
	drives, err := s.ListDrives()
	if err != nil {
		return nil, err
	}

	results := make([]*DriveLocation, len(drives))
	var g errgroup.Group
	g.SetLimit(locateConcurrency)

	for i, drive := range drives {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			loc, err := s.locate(ctx, drive)
			results[i] = &DriveLocation{Drive: drive, Location: loc, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// ScanHistory returns the most recent scan runs, newest first.
func (s *Service) ScanHistory(limit int) ([]*ScanRun, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	runs, err := s.database.ListScanRuns(limit)
	if err != nil {
		return nil, fmt.Errorf("listing scan runs: %w", err)
	}
	return runs, nil
}

func (s *Service) locate(ctx context.Context, drive *Drive) (*Location, error) {
	loc, err := s.locator.Locate(ctx, drive)
	if err != nil {
		return nil, fmt.Errorf("locating drive %s: %w", drive.Name, err)
	}

	if loc.Connected && loc.MountPath != drive.ScanPath {
		if err := s.database.UpdateDriveScanPath(drive.ID, loc.MountPath); err != nil {
			return nil, fmt.Errorf("recording new scan path: %w", err)
		}
		s.logger.Info("drive relocated", "drive", drive.Name, "from", drive.ScanPath, "to", loc.MountPath)
		drive.ScanPath = loc.MountPath
	}
	return loc, nil
}

// findDrive looks a drive up by id only.
func (s *Service) findDrive(id string) (*Drive, error) {
	drive, err := s.database.FindDriveByID(id)
	if err != nil {
		return nil, fmt.Errorf("finding drive: %w", err)
	}
	if drive == nil {
		return nil, fmt.Errorf("%w: %s", ErrDriveNotFound, id)
	}
	return drive, nil
}

// checkRoot verifies that root exists and is a directory.
func (s *Service) checkRoot(root string) error {
	info, err := s.fsmgr.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrPathNotFound, root)
		}
		return fmt.Errorf("%w: %s: %v", ErrPathNotFound, root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: not a directory: %s", ErrPathNotFound, root)
	}
	return nil
}

// acquireScan takes the per-drive lease. The returned func releases it.
func (s *Service) acquireScan(driveID string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scanning[driveID] {
		return nil, fmt.Errorf("%w: %s", ErrScanInProgress, driveID)
	}
	s.scanning[driveID] = true

	return func() {
		s.mu.Lock()
		delete(s.scanning, driveID)
		s.mu.Unlock()
	}, nil
}
