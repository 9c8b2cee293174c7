package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/barokatu/tauri-updater-server/api"
)

// DefaultKVKey is the key under which the record is kept.
const DefaultKVKey = "tauri-updates"

// KVStore keeps the record in a Redis-compatible key-value store exposing the
// Upstash REST protocol (as used by Vercel KV).
type KVStore struct {
	url   string
	token string
	key   string

	client *http.Client
}

// kvResponse is the body returned by the REST endpoint for every command.
type kvResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

// NewKVStore returns a key-value backend. An empty key selects DefaultKVKey and
// a nil client selects a client with a 30s timeout.
func NewKVStore(url string, token string, key string, client *http.Client) (*KVStore, error) {
	if url == "" || token == "" {
		return nil, ErrKVNotConfigured
	}

	if key == "" {
		key = DefaultKVKey
	}

	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &KVStore{
		url:    strings.TrimSuffix(url, "/"),
		token:  token,
		key:    key,
		client: client,
	}, nil
}

// Type returns the backend name.
func (*KVStore) Type() string {
	return "kv"
}

// Read fetches and decodes the record stored under the key.
func (k *KVStore) Read(ctx context.Context) (*api.UpdateRecord, error) {
	result, err := k.command(ctx, "GET", k.key)
	if err != nil {
		return nil, err
	}

	if len(result) == 0 || string(result) == "null" {
		return nil, ErrRecordNotFound
	}

	// Values are stored as JSON encoded strings, but accept a raw object too.
	value := []byte(result)
	if result[0] == '"' {
		var s string

		err = json.Unmarshal(result, &s)
		if err != nil {
			return nil, err
		}

		value = []byte(s)
	}

	record := &api.UpdateRecord{}

	err = json.Unmarshal(value, record)
	if err != nil {
		return nil, fmt.Errorf("failed to parse value of key %q: %w", k.key, err)
	}

	return record, nil
}

// Write stores the JSON encoded record under the key.
func (k *KVStore) Write(ctx context.Context, record *api.UpdateRecord) error {
	value, err := json.Marshal(record)
	if err != nil {
		return err
	}

	_, err = k.command(ctx, "SET", k.key, string(value))

	return err
}

func (k *KVStore) command(ctx context.Context, args ...string) (json.RawMessage, error) {
	reqBody, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}

	// Prepare the request.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, k.url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, errors.New("unable to create http request: " + err.Error())
	}

	req.Header.Set("Authorization", "Bearer "+k.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := k.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("key-value store %s request failed: %w", args[0], err)
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return nil, err
	}

	var kvResp kvResponse

	err = json.Unmarshal(body, &kvResp)
	if err != nil && resp.StatusCode == http.StatusOK {
		return nil, fmt.Errorf("invalid key-value store response: %w", err)
	}

	if kvResp.Error != "" {
		return nil, fmt.Errorf("key-value store %s failed: %s", args[0], kvResp.Error)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad HTTP response code from key-value store: %d", resp.StatusCode)
	}

	return kvResp.Result, nil
}
