package storage

import (
	"github.com/barokatu/tauri-updater-server/internal/config"
)

// Load builds the record store selected by the configuration. When a key-value
// store is configured it is read first and receives all writes, the local file
// remains as a read fallback.
func Load(cfg *config.Config) (*Chain, error) {
	file := NewFileStore(cfg.DataFile)

	if !cfg.KV.Configured() {
		return NewChain(file), nil
	}

	kv, err := NewKVStore(cfg.KV.URL, cfg.KV.Token, cfg.KV.Key, nil)
	if err != nil {
		return nil, err
	}

	return NewChain(kv, kv, file), nil
}
