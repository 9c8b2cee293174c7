package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/barokatu/tauri-updater-server/api"
)

// Chain is the record store used by the service. Reads go through an ordered
// list of backends and never fail, writes go to a single backend.
type Chain struct {
	readers []Store
	writer  Store
}

// NewChain returns a chain writing to writer and reading from readers in order.
// With no readers, the writer is also the only reader.
func NewChain(writer Store, readers ...Store) *Chain {
	if len(readers) == 0 {
		readers = []Store{writer}
	}

	return &Chain{
		readers: readers,
		writer:  writer,
	}
}

// Writer returns the backend receiving writes.
func (c *Chain) Writer() Store {
	return c.writer
}

// Read returns the first record found. Backend errors are logged and skipped,
// if no backend yields a record the default record is returned.
func (c *Chain) Read(ctx context.Context) api.UpdateRecord {
	for _, store := range c.readers {
		record, err := store.Read(ctx)
		if err != nil {
			if !errors.Is(err, ErrRecordNotFound) {
				slog.WarnContext(ctx, "Failed to read update record", "backend", store.Type(), "err", err)
			}

			continue
		}

		if record != nil {
			return *record
		}
	}

	slog.DebugContext(ctx, "No update record stored, serving default")

	return api.DefaultUpdateRecord(time.Now())
}

// Write replaces the record on the writer backend. There is no fallback to
// another backend on failure.
func (c *Chain) Write(ctx context.Context, record *api.UpdateRecord) error {
	err := c.writer.Write(ctx, record)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to write update record", "backend", c.writer.Type(), "err", err)

		return err
	}

	return nil
}
