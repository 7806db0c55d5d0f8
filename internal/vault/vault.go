// Package vault implements driveidx.Vault backends for catalog snapshots.
package vault

import "errors"

// ErrSnapshotNotFound is returned when a host has no stored snapshot.
var ErrSnapshotNotFound = errors.New("snapshot not found")
