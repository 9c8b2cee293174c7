// Package storage persists the single update record on a local file or a key-value store.
package storage

import (
	"context"

	"github.com/barokatu/tauri-updater-server/api"
)

// Store represents a backend able to hold the update record.
type Store interface {
	Type() string

	// Read returns ErrRecordNotFound if the backend is empty.
	Read(ctx context.Context) (*api.UpdateRecord, error)
	Write(ctx context.Context, record *api.UpdateRecord) error
}
