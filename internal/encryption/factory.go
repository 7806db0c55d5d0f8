// Package encryption implements driveidx.Encryptor for catalog snapshots.
package encryption

import (
	"fmt"

	"drive-indexer/internal/config"
	"drive-indexer/internal/driveidx"
)

// NewEncryptorFromConfig creates an Encryptor based on the configuration type.
// Type "none" returns a nil Encryptor: snapshots are stored in plaintext.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (driveidx.Encryptor, error) {
	switch cfg.Type {
	case "age", "":
		return NewAgeEncryptor(cfg), nil
	case "test":
		return NewTestEncryptor(), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
