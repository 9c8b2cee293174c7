package api_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/barokatu/tauri-updater-server/api"
)

// Test the record synthesized for an empty store.
func TestDefaultUpdateRecord(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 14, 15, 9, 26, 535000000, time.FixedZone("CET", 3600))
	record := api.DefaultUpdateRecord(now)

	require.Equal(t, "1.0.0", record.Version)
	require.Equal(t, "Initial release", api.Value(record.Notes))
	require.Equal(t, "2025-03-14T14:09:26.535Z", api.Value(record.PubDate))
	require.Len(t, record.Platforms, 4)

	for _, platform := range api.WellKnownPlatforms {
		require.Equal(t, api.NewPlatformTarget("", ""), record.Platforms[platform.String()])
	}
}

// Test that the JSON field names match the Tauri updater format.
func TestUpdateRecordJSON(t *testing.T) {
	t.Parallel()

	record := api.UpdateRecord{
		Version: "1.2.3",
		Notes:   api.Text("fix"),
		PubDate: api.Text("2024-01-01T00:00:00Z"),
		Platforms: map[string]api.PlatformTarget{
			"linux-x86_64": api.NewPlatformTarget("SIG", "https://x/y"),
		},
	}

	content, err := json.Marshal(record)
	require.NoError(t, err)
	require.JSONEq(t, `{"version":"1.2.3","notes":"fix","pub_date":"2024-01-01T00:00:00Z","platforms":{"linux-x86_64":{"signature":"SIG","url":"https://x/y"}}}`, string(content))
}

// Test that absent and null values survive a decode and encode cycle.
func TestUpdateRecordOptionalFields(t *testing.T) {
	t.Parallel()

	tests := []string{
		`{"version":"1.2.3","platforms":{"linux-x86_64":{"signature":"S","url":"u"}}}`,
		`{"version":"1.2.3","notes":"","pub_date":"","platforms":{"linux-x86_64":{"signature":"","url":""}}}`,
		`{"version":"1.2.3","platforms":{"linux-x86_64":{"signature":null,"url":null}}}`,
	}

	for _, input := range tests {
		var record api.UpdateRecord

		err := json.Unmarshal([]byte(input), &record)
		require.NoError(t, err)

		content, err := json.Marshal(record)
		require.NoError(t, err)
		require.JSONEq(t, input, string(content))
	}
}
