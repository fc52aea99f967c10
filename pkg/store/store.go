package store

import "github.com/contentcompass/compass/pkg/models"

// Store saves and restores session snapshots. At most one snapshot exists
// at a time; saving replaces it whole.
type Store interface {
	SaveSnapshot(snap *models.Snapshot) error
	LoadSnapshot() (*models.Snapshot, error)
	Reset() error
	Close() error
}
