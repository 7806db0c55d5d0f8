package driveidx

import (
	"context"
	"fmt"
)

// DefaultSampleSize is the number of indexed files checked per candidate root.
const DefaultSampleSize = 5

// Locator re-associates an indexed drive with its current mount point by
// checking whether a random sample of its indexed files exists under each
// candidate root. It performs no writes.
type Locator struct {
	database   Database
	fsmgr      FilesystemManager
	volumes    VolumeEnumerator
	logger     Logger
	sampleSize int
}

// NewLocator creates a Locator that samples DefaultSampleSize files.
func NewLocator(database Database, fsmgr FilesystemManager, volumes VolumeEnumerator, logger Logger) *Locator {
	return &Locator{
		database:   database,
		fsmgr:      fsmgr,
		volumes:    volumes,
		logger:     logger,
		sampleSize: DefaultSampleSize,
	}
}

// Locate returns where the drive is mounted now. The recorded scan path is
// tried first; then the same path is rebuilt on every available volume root.
// The first candidate where at least half of the sample (rounded up) exists
// wins. A drive with no indexed files is never connected.
func (l *Locator) Locate(ctx context.Context, drive *Drive) (*Location, error) {
	if drive.FileCount == 0 {
		return &Location{}, nil
	}

	sample, err := l.database.SampleFilePaths(drive.ID, l.sampleSize)
	if err != nil {
		return nil, fmt.Errorf("sampling indexed files: %w", err)
	}
	if len(sample) == 0 {
		return &Location{}, nil
	}

	threshold := (len(sample) + 1) / 2
	best := 0

	if drive.ScanPath != "" {
		matched := l.countMatches(drive.ScanPath, sample)
		if matched >= threshold {
			return &Location{Connected: true, MountPath: drive.ScanPath, Matched: matched, Sampled: len(sample)}, nil
		}
		best = matched
	}

	if l.volumes == nil || drive.ScanPath == "" {
		return &Location{Matched: best, Sampled: len(sample)}, nil
	}

	volume, rest := l.volumes.SplitVolume(drive.ScanPath)
	if volume == "" {
		return &Location{Matched: best, Sampled: len(sample)}, nil
	}

	roots, err := l.volumes.VolumeRoots()
	if err != nil {
		return nil, fmt.Errorf("listing volumes: %w", err)
	}

	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		candidate := JoinPath(root, rest)
		if candidate == drive.ScanPath {
			continue
		}

		matched := l.countMatches(candidate, sample)
		l.logger.Debug("locate candidate", "drive", drive.Name, "candidate", candidate, "matched", matched, "sampled", len(sample))
		if matched >= threshold {
			return &Location{Connected: true, MountPath: candidate, Matched: matched, Sampled: len(sample)}, nil
		}
		best = max(best, matched)
	}

	return &Location{Matched: best, Sampled: len(sample)}, nil
}

func (l *Locator) countMatches(root string, sample []string) int {
	n := 0
	for _, rel := range sample {
		if l.fsmgr.Exists(JoinPath(root, rel)) {
			n++
		}
	}
	return n
}
