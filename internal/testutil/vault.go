package testutil

import (
	"drive-indexer/internal/driveidx"
	"drive-indexer/internal/vault"
)

// NewTestVault creates a new in-memory vault for testing.
func NewTestVault() driveidx.Vault {
	return vault.NewMemoryVault("test-vault")
}
