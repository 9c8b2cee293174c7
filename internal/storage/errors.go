package storage

import (
	"errors"
)

// ErrRecordNotFound is returned when a backend holds no update record.
var ErrRecordNotFound = errors.New("no update record stored")

// ErrFileWritesUnsupported is returned when the local file backend can't be written to.
var ErrFileWritesUnsupported = errors.New("file writes are not supported in this environment, configure a key-value store instead")

// ErrKVNotConfigured is returned when creating a key-value backend without an endpoint or token.
var ErrKVNotConfigured = errors.New("key-value store endpoint and token must both be set")
