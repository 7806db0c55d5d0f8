package testutil

import (
	"drive-indexer/internal/driveidx"
	"drive-indexer/internal/encryption"
)

// NewTestEncryptor creates a new test encryptor for testing.
func NewTestEncryptor() driveidx.Encryptor {
	return encryption.NewTestEncryptor()
}
