package driveidx_test

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"drive-indexer/internal/driveidx"
	"drive-indexer/internal/testutil"
)

// failingDatabase fails staged inserts while failInserts is set.
type failingDatabase struct {
	driveidx.Database
	failInserts atomic.Bool
}

var errInjected = errors.New("injected write failure")

func (d *failingDatabase) InsertStagedFiles(scanID int64, files []*driveidx.File) error {
	if d.failInserts.Load() {
		return errInjected
	}
	return d.Database.InsertStagedFiles(scanID, files)
}

type fixture struct {
	svc   *driveidx.Service
	db    *failingDatabase
	fsmgr *testutil.MockFilesystemManager
	clock *testutil.StubClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := &failingDatabase{Database: testutil.NewTestDatabase(t)}
	fsmgr := testutil.NewMockFilesystemManager()
	clock := testutil.FixedClock()
	svc := driveidx.NewService(db, fsmgr, fsmgr, driveidx.NewNopLogger(), clock, testutil.NewStubIDGenerator("id"))
	return &fixture{svc: svc, db: db, fsmgr: fsmgr, clock: clock}
}

func (f *fixture) createDrive(t *testing.T, name string) *driveidx.Drive {
	t.Helper()
	drive, err := f.svc.CreateDrive(name, "")
	if err != nil {
		t.Fatalf("CreateDrive(%q) error = %v", name, err)
	}
	return drive
}

// addFiles adds n files named <prefix>-<i>.mov under root.
func (f *fixture) addFiles(root, prefix string, n int) {
	for i := range n {
		f.fsmgr.AddFile(fmt.Sprintf("%s/%s-%03d.mov", root, prefix, i), int64(i+1))
	}
}

func (f *fixture) scan(t *testing.T, driveID, root string) *driveidx.ScanSummary {
	t.Helper()
	summary, err := f.svc.ScanDrive(t.Context(), driveID, root, nil)
	if err != nil {
		t.Fatalf("ScanDrive(%q) error = %v", root, err)
	}
	return summary
}

// indexedFiles returns every indexed row of a drive.
func indexedFiles(t *testing.T, db driveidx.Database, driveID string) []*driveidx.FileResult {
	t.Helper()
	rows, err := db.SearchFiles("", driveidx.SearchFilters{DriveIDs: []string{driveID}}, 100000)
	if err != nil {
		t.Fatalf("SearchFiles() error = %v", err)
	}
	return rows
}

func mustFindDrive(t *testing.T, db driveidx.Database, id string) *driveidx.Drive {
	t.Helper()
	drive, err := db.FindDriveByID(id)
	if err != nil {
		t.Fatalf("FindDriveByID() error = %v", err)
	}
	if drive == nil {
		t.Fatalf("drive %s not found", id)
	}
	return drive
}
