package driveidx

import "fmt"

// BatchSize is the number of file records written per insert.
const BatchSize = 100

// StagedFileWriter receives batches of files for an in-flight scan.
type StagedFileWriter interface {
	InsertStagedFiles(scanID int64, files []*File) error
}

// BatchWriter buffers walked files and writes them in fixed-size batches,
// reporting the cumulative count after every flush. It is not safe for
// concurrent use.
type BatchWriter struct {
	store      StagedFileWriter
	scanID     int64
	size       int
	buf        []*File
	written    int64
	onProgress ProgressFunc
}

// NewBatchWriter creates a BatchWriter that flushes every BatchSize records.
func NewBatchWriter(store StagedFileWriter, scanID int64, onProgress ProgressFunc) *BatchWriter {
	return &BatchWriter{
		store:      store,
		scanID:     scanID,
		size:       BatchSize,
		buf:        make([]*File, 0, BatchSize),
		onProgress: onProgress,
	}
}

// Add buffers a record and flushes when the buffer is full.
func (w *BatchWriter) Add(f *File) error {
	w.buf = append(w.buf, f)
	if len(w.buf) >= w.size {
		return w.Flush()
	}
	return nil
}

// Flush writes any buffered records. An empty buffer is a no-op.
func (w *BatchWriter) Flush() error {
	if len(w.buf) == 0 {
		return nil
	}

	if err := w.store.InsertStagedFiles(w.scanID, w.buf); err != nil {
		return fmt.Errorf("%w: %w", ErrBatchWrite, err)
	}

	w.written += int64(len(w.buf))
	w.buf = w.buf[:0]

	if w.onProgress != nil {
		w.onProgress(Progress{
			FilesScanned: w.written,
			Message:      fmt.Sprintf("Scanned %d files...", w.written),
		})
	}
	return nil
}

// Close flushes the remaining records.
func (w *BatchWriter) Close() error {
	return w.Flush()
}

// Written returns the number of records persisted so far.
func (w *BatchWriter) Written() int64 {
	return w.written
}
