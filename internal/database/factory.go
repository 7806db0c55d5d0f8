package database

import (
	"fmt"
	"path/filepath"

	"drive-indexer/internal/config"
)

// NewDatabaseFromConfig opens the index database described by cfg and
// migrates it to the latest schema.
func NewDatabaseFromConfig(cfg config.DatabaseConfig, hostID string) (*SQLiteDatabase, error) {
	var path string
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		path = FilePath(cfg, hostID)
	case "memory":
		path = MemoryPath
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}

	db, err := NewSQLiteDatabase(path)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return db, nil
}

// FilePath returns the catalog file for a sqlite config, or "" for other types.
func FilePath(cfg config.DatabaseConfig, hostID string) string {
	if cfg.Type != "sqlite" || cfg.DataDir == "" {
		return ""
	}
	return filepath.Join(cfg.DataDir, hostID+".db")
}
