package driveidx

import (
	"context"
	"fmt"
)

// ScanDrive walks rootPath and replaces the drive's index with what it finds.
//
// The new rows are staged while the walk runs and swapped in with a single
// transaction at the end, so a failed or cancelled scan leaves the previous
// index and drive statistics untouched. Only one scan per drive may run at a
// time; a second call returns ErrScanInProgress.
func (s *Service) ScanDrive(ctx context.Context, driveID, rootPath string, onProgress ProgressFunc) (*ScanSummary, error) {
	root := NormalizePath(rootPath)
	if root == "" {
		return nil, ErrInvalidPath
	}

	drive, err := s.findDrive(driveID)
	if err != nil {
		return nil, err
	}

	if err := s.checkRoot(root); err != nil {
		return nil, err
	}

	release, err := s.acquireScan(drive.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	space, err := s.fsmgr.DiskSpace(root)
	if err != nil {
		s.logger.Warn("capacity probe failed", "drive", drive.Name, "path", root, "error", err)
		space = &DiskSpace{}
	}

	startedAt := s.clock.Now()
	run, err := s.database.CreateScanRun(drive.ID, root, startedAt)
	if err != nil {
		return nil, fmt.Errorf("creating scan run: %w", err)
	}
	s.logger.Info("scan started", "drive", drive.Name, "path", root, "scan", run.ID)

	if err := s.stageTree(ctx, run, root, onProgress); err != nil {
		s.abortScan(run, err)
		return nil, err
	}

	updated, err := s.database.CommitScan(ScanCommit{
		ScanID:     run.ID,
		DriveID:    drive.ID,
		ScanPath:   root,
		Capacity:   space.Total,
		FreeSpace:  space.Free,
		FinishedAt: s.clock.Now(),
	})
	if err != nil {
		s.abortScan(run, err)
		return nil, fmt.Errorf("committing scan: %w", err)
	}

	if onProgress != nil {
		onProgress(Progress{FilesScanned: updated.FileCount, Message: "Scan complete!", Done: true})
	}

	summary := &ScanSummary{
		DriveID:     drive.ID,
		ScanID:      run.ID,
		ScanPath:    root,
		FileCount:   updated.FileCount,
		TotalSize:   updated.TotalSize,
		FreeSpace:   updated.FreeSpace,
		LastScanned: updated.LastScanned.Time,
		Duration:    s.clock.Now().Sub(startedAt),
	}
	s.logger.Info("scan complete", "drive", drive.Name, "scan", run.ID, "files", summary.FileCount, "duration", summary.Duration)
	return summary, nil
}

// stageTree walks root and writes every surviving file into the staging
// rows of run.
func (s *Service) stageTree(ctx context.Context, run *ScanRun, root string, onProgress ProgressFunc) error {
	bw := NewBatchWriter(s.database, run.ID, onProgress)

	for wf := range s.fsmgr.Walk(ctx, root) {
		f := &File{
			ID:         s.idgen.New(),
			DriveID:    run.DriveID,
			FileName:   wf.Name,
			FilePath:   wf.RelativePath,
			FileSize:   wf.Size,
			FileType:   wf.Extension,
			Category:   wf.Category,
			ModifiedAt: wf.ModifiedAt,
			ScannedAt:  run.StartedAt,
		}
		if err := bw.Add(f); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("scan cancelled: %w", err)
	}

	return bw.Close()
}

// abortScan discards the staged rows of a failed scan and records the cause.
func (s *Service) abortScan(run *ScanRun, cause error) {
	s.logger.Error("scan failed", "drive", run.DriveID, "scan", run.ID, "error", cause)
	if err := s.database.AbortScan(run.ID, s.clock.Now(), cause.Error()); err != nil {
		s.logger.Error("discarding staged files failed", "scan", run.ID, "error", err)
	}
}
