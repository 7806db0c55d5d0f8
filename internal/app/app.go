package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"drive-indexer/internal/config"
	"drive-indexer/internal/database"
	"drive-indexer/internal/driveidx"
	"drive-indexer/internal/encryption"
	"drive-indexer/internal/fs"
	"drive-indexer/internal/vault"
)

// ErrNoVault is returned by catalog operations when no vault is configured.
var ErrNoVault = errors.New("no vault configured")

// App is the application layer between the CLI and driveidx.Service.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw drive references and paths, and manages the catalog
// lifecycle on Close.
type App struct {
	cfg       *config.Config
	db        *database.SQLiteDatabase
	vault     driveidx.Vault     // nil when no vault is configured
	encryptor driveidx.Encryptor // nil when snapshots are stored in plaintext
	service   *driveidx.Service
	logger    *slog.Logger
	logCloser io.Closer
	mutated   bool
}

// NewApp creates a fully wired App from the given config.
// command identifies the CLI command being run (e.g. "scan", "drive add").
// The caller must call Close when done.
func NewApp(cfg *config.Config, command string) (*App, error) {
	var v driveidx.Vault
	if len(cfg.Vaults) > 0 {
		var err error
		v, err = vault.NewVaultFromConfig(cfg.Vaults[0])
		if err != nil {
			return nil, fmt.Errorf("creating vault: %w", err)
		}
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	return open(cfg, command, v, enc, os.Stderr)
}

// open wires an App around an already constructed vault and encryptor.
func open(cfg *config.Config, command string, v driveidx.Vault, enc driveidx.Encryptor, stderr io.Writer) (*App, error) {
	level, err := ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logCloser, err := newLogger(cfg.LogDir, opID, level, stderr)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger.Debug("starting", "command", command, "host", cfg.HostID)

	db, err := database.NewDatabaseFromConfig(cfg.Database, cfg.HostID)
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("creating database: %w", err)
	}

	if v != nil {
		if err := checkRemoteVersion(db, v, cfg.HostID); err != nil {
			db.Close()
			logCloser.Close()
			return nil, err
		}
	}

	adapter := &slogAdapter{l: logger}
	fsmgr := fs.NewOSFilesystemManager(cfg.Filesystem.Ignore, cfg.Filesystem.VolumeRoots, adapter)
	svc := driveidx.NewService(db, fsmgr, fsmgr, adapter, driveidx.RealClock{}, driveidx.UUIDGenerator{})

	return &App{
		cfg:       cfg,
		db:        db,
		vault:     v,
		encryptor: enc,
		service:   svc,
		logger:    logger,
		logCloser: logCloser,
	}, nil
}

// checkRemoteVersion refuses to run against a catalog older than the
// snapshot in the vault.
func checkRemoteVersion(db *database.SQLiteDatabase, v driveidx.Vault, hostID string) error {
	remoteVersion, err := v.GetSnapshotVersion(hostID)
	if err != nil {
		return fmt.Errorf("checking remote catalog version: %w", err)
	}

	localMax, err := db.MaxScanRunID()
	if err != nil {
		return fmt.Errorf("checking local catalog version: %w", err)
	}

	if remoteVersion > localMax {
		return fmt.Errorf("local catalog is behind remote (local=%d, remote=%d): run `di catalog restore` or re-initialize", localMax, remoteVersion)
	}
	return nil
}

// Drives

func (a *App) ListDrives() ([]*driveidx.Drive, error) {
	return a.service.ListDrives()
}

// GetDrive resolves a drive reference: an id or a name.
func (a *App) GetDrive(ref string) (*driveidx.Drive, error) {
	return a.service.GetDrive(ref)
}

func (a *App) CreateDrive(name, description string) (*driveidx.Drive, error) {
	a.mutated = true
	return a.service.CreateDrive(name, description)
}

func (a *App) UpdateDrive(ref string, upd driveidx.DriveUpdate) (*driveidx.Drive, error) {
	drive, err := a.service.GetDrive(ref)
	if err != nil {
		return nil, err
	}
	a.mutated = true
	return a.service.UpdateDrive(drive.ID, upd)
}

func (a *App) DeleteDrive(ref string) error {
	drive, err := a.service.GetDrive(ref)
	if err != nil {
		return err
	}
	a.mutated = true
	return a.service.DeleteDrive(drive.ID)
}

// Scanning

// ScanDrive resolves rawPath and scans it into the drive's index.
// An empty rawPath rescans the drive's recorded scan path.
func (a *App) ScanDrive(ctx context.Context, ref, rawPath string, onProgress driveidx.ProgressFunc) (*driveidx.ScanSummary, error) {
	drive, err := a.service.GetDrive(ref)
	if err != nil {
		return nil, err
	}

	root := drive.ScanPath
	if rawPath != "" {
		if root, err = resolvePath(rawPath); err != nil {
			return nil, err
		}
	}

	// A failed scan still records a scan run.
	a.mutated = true
	return a.service.ScanDrive(ctx, drive.ID, root, onProgress)
}

func (a *App) ClearDriveIndex(ref string) (int64, error) {
	drive, err := a.service.GetDrive(ref)
	if err != nil {
		return 0, err
	}
	a.mutated = true
	return a.service.ClearDriveIndex(drive.ID)
}

func (a *App) ScanHistory(limit int) ([]*driveidx.ScanRun, error) {
	return a.service.ScanHistory(limit)
}

// Queries

// SearchFiles searches file names across drives. driveRefs may hold ids or names.
func (a *App) SearchFiles(query string, categories, driveRefs []string) ([]*driveidx.FileResult, error) {
	filters := driveidx.SearchFilters{Categories: categories}
	for _, ref := range driveRefs {
		drive, err := a.service.GetDrive(ref)
		if err != nil {
			return nil, err
		}
		filters.DriveIDs = append(filters.DriveIDs, drive.ID)
	}
	return a.service.SearchFiles(query, filters)
}

func (a *App) GetFileStats(ref string) (*driveidx.Drive, []*driveidx.CategoryStat, error) {
	drive, err := a.service.GetDrive(ref)
	if err != nil {
		return nil, nil, err
	}
	stats, err := a.service.GetFileStats(drive.ID)
	if err != nil {
		return nil, nil, err
	}
	return drive, stats, nil
}

// ProbeDiskSpace resolves rawPath and reports the capacity of its volume.
func (a *App) ProbeDiskSpace(rawPath string) (*driveidx.DiskSpace, error) {
	p, err := resolvePath(rawPath)
	if err != nil {
		return nil, err
	}
	return a.service.ProbeDiskSpace(p)
}

// Location

func (a *App) LocateDrive(ctx context.Context, ref string) (*driveidx.Drive, *driveidx.Location, error) {
	drive, err := a.service.GetDrive(ref)
	if err != nil {
		return nil, nil, err
	}
	loc, err := a.service.LocateDrive(ctx, drive.ID)
	if err != nil {
		return nil, nil, err
	}
	if loc.Connected && loc.MountPath != drive.ScanPath {
		a.mutated = true
		drive.ScanPath = loc.MountPath
	}
	return drive, loc, nil
}

func (a *App) LocateDrives(ctx context.Context) ([]*driveidx.DriveLocation, error) {
	results, err := a.service.LocateDrives(ctx)
	if err != nil {
		return nil, err
	}
	// A connected drive may have been relocated by the service.
	for _, r := range results {
		if r.Err == nil && r.Location.Connected {
			a.mutated = true
			break
		}
	}
	return results, nil
}

// Catalog snapshots

// ValidateVault checks that the configured vault is reachable.
func (a *App) ValidateVault() error {
	if a.vault == nil {
		return ErrNoVault
	}
	if err := a.vault.ValidateSetup(); err != nil {
		return fmt.Errorf("validating vault: %w", err)
	}
	return nil
}

// BackupCatalog uploads a snapshot of the catalog to the vault and returns
// its version.
func (a *App) BackupCatalog() (int64, error) {
	if a.vault == nil {
		return 0, ErrNoVault
	}
	if a.encryptor != nil && !a.encryptor.IsConfigured() {
		return 0, fmt.Errorf("encryption keys not found: run `di config keys` first")
	}
	return a.snapshot()
}

// snapshot copies the catalog with VACUUM INTO, encrypts the copy when an
// encryptor is set and uploads it. The version is the highest scan run id.
func (a *App) snapshot() (int64, error) {
	dir, err := os.MkdirTemp("", "di-snapshot-*")
	if err != nil {
		return 0, fmt.Errorf("creating snapshot dir: %w", err)
	}
	defer os.RemoveAll(dir)

	version, err := a.db.MaxScanRunID()
	if err != nil {
		return 0, err
	}

	payload := filepath.Join(dir, "catalog.db")
	if err := a.db.BackupTo(payload); err != nil {
		return 0, err
	}

	if a.encryptor != nil {
		sealed := payload + ".age"
		if err := encryptFile(a.encryptor, payload, sealed); err != nil {
			return 0, err
		}
		payload = sealed
	}

	if err := a.upload(payload, version); err != nil {
		return 0, err
	}
	a.logger.Info("catalog snapshot uploaded", "host", a.cfg.HostID, "version", version)
	return version, nil
}

func (a *App) upload(path string, version int64) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening snapshot for upload: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat snapshot: %w", err)
	}

	if err := a.vault.PutSnapshot(a.cfg.HostID, f, info.Size(), version); err != nil {
		return fmt.Errorf("uploading snapshot to vault: %w", err)
	}
	return nil
}

// Close closes all resources. After a command that changed the catalog, a
// snapshot is uploaded to the vault first.
func (a *App) Close() error {
	var firstErr error

	if a.mutated && a.vault != nil {
		if a.encryptor != nil && !a.encryptor.IsConfigured() {
			a.logger.Warn("skipping catalog snapshot: encryption keys not found")
		} else if _, err := a.snapshot(); err != nil {
			firstErr = err
		}
	}

	if err := a.db.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}

	if a.logCloser != nil {
		a.logCloser.Close()
	}
	return firstErr
}

// SetupKeys generates the snapshot encryption key pair, protecting the
// private key with passphrase.
func SetupKeys(cfg *config.Config, passphrase string) error {
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	if enc == nil {
		return fmt.Errorf("encryption is disabled (encryption.type = %q)", cfg.Encryption.Type)
	}
	if err := enc.Setup(passphrase); err != nil {
		return fmt.Errorf("generating keys: %w", err)
	}
	return nil
}

// RestoreCatalog downloads the host's catalog snapshot from the first
// configured vault and installs it at out, or at the configured database
// file when out is empty. passphrase unlocks the private key when snapshots
// are encrypted. It returns the restored path.
func RestoreCatalog(cfg *config.Config, passphrase, out string) (string, error) {
	if len(cfg.Vaults) == 0 {
		return "", ErrNoVault
	}
	v, err := vault.NewVaultFromConfig(cfg.Vaults[0])
	if err != nil {
		return "", fmt.Errorf("creating vault: %w", err)
	}
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return "", fmt.Errorf("creating encryptor: %w", err)
	}
	return restore(cfg, v, enc, passphrase, out)
}

func restore(cfg *config.Config, v driveidx.Vault, enc driveidx.Encryptor, passphrase, out string) (string, error) {
	if out == "" {
		out = database.FilePath(cfg.Database, cfg.HostID)
		if out == "" {
			return "", fmt.Errorf("--out is required for a %q database", cfg.Database.Type)
		}
	}

	var dec driveidx.DecryptionContext
	if enc != nil {
		var err error
		if dec, err = enc.Unlock(passphrase); err != nil {
			return "", fmt.Errorf("unlocking private key: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return "", fmt.Errorf("creating catalog directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(out), ".di-restore-*.db")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := download(v, dec, cfg.HostID, tmp); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("writing restored catalog: %w", err)
	}

	if err := verifyCatalog(tmpPath); err != nil {
		return "", err
	}

	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(out + suffix); err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("removing stale %s file: %w", suffix, err)
		}
	}
	if err := os.Rename(tmpPath, out); err != nil {
		return "", fmt.Errorf("installing restored catalog: %w", err)
	}
	return out, nil
}

func download(v driveidx.Vault, dec driveidx.DecryptionContext, hostID string, w io.Writer) error {
	if dec == nil {
		if err := v.GetSnapshot(hostID, w); err != nil {
			return fmt.Errorf("downloading snapshot: %w", err)
		}
		return nil
	}

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(v.GetSnapshot(hostID, pw))
	}()
	if err := dec.Decrypt(pr, w); err != nil {
		pr.CloseWithError(err)
		return fmt.Errorf("decrypting snapshot: %w", err)
	}
	return nil
}

// verifyCatalog checks that path holds a catalog at the current schema.
func verifyCatalog(path string) error {
	db, err := database.NewSQLiteDatabase(path)
	if err != nil {
		return fmt.Errorf("opening restored catalog: %w", err)
	}
	defer db.Close()

	if err := db.CheckMigrations(); err != nil {
		return fmt.Errorf("restored catalog is not usable: %w", err)
	}
	return nil
}

func encryptFile(enc driveidx.Encryptor, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating encrypted snapshot: %w", err)
	}
	if err := enc.Encrypt(in, out); err != nil {
		out.Close()
		return fmt.Errorf("encrypting snapshot: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("writing encrypted snapshot: %w", err)
	}
	return nil
}

// resolvePath makes rawPath absolute.
func resolvePath(rawPath string) (string, error) {
	if rawPath == "" {
		return "", driveidx.ErrInvalidPath
	}
	p, err := filepath.Abs(rawPath)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return filepath.ToSlash(p), nil
}
