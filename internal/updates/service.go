// Package updates validates and stores the update record.
package updates

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/blang/semver/v4"

	"github.com/barokatu/tauri-updater-server/api"
)

// RecordStore is the persistence used by the service.
type RecordStore interface {
	Read(ctx context.Context) api.UpdateRecord
	Write(ctx context.Context, record *api.UpdateRecord) error
}

// Service mediates between the API boundary and the record store.
type Service struct {
	store RecordStore
}

// NewService returns a service backed by store.
func NewService(store RecordStore) *Service {
	return &Service{store: store}
}

// Fetch returns the current record. Stored data is not re-validated.
func (s *Service) Fetch(ctx context.Context) api.UpdateRecord {
	return s.store.Read(ctx)
}

// Upsert validates candidate and, if valid, replaces the stored record with it.
func (s *Service) Upsert(ctx context.Context, candidate []byte) (*api.UpdateRecord, error) {
	err := Validate(candidate)
	if err != nil {
		return nil, err
	}

	record := &api.UpdateRecord{}

	err = json.Unmarshal(candidate, record)
	if err != nil {
		return nil, validationErrorf("invalid update record: %v", err)
	}

	// Neither field is enforced, an operator may publish whatever the clients accept.
	_, err = semver.ParseTolerant(record.Version)
	if err != nil {
		slog.WarnContext(ctx, "Update version isn't a semantic version", "version", record.Version)
	}

	if record.PubDate != nil {
		_, err = time.Parse(time.RFC3339, *record.PubDate)
		if err != nil {
			slog.WarnContext(ctx, "Update publication date isn't RFC 3339", "pub_date", *record.PubDate)
		}
	}

	err = s.store.Write(ctx, record)
	if err != nil {
		return nil, &StoreError{Err: err}
	}

	slog.InfoContext(ctx, "Update record saved", "version", record.Version, "platforms", len(record.Platforms))

	return record, nil
}
