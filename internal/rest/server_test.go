package rest_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/barokatu/tauri-updater-server/api"
	"github.com/barokatu/tauri-updater-server/internal/auth"
	"github.com/barokatu/tauri-updater-server/internal/config"
	"github.com/barokatu/tauri-updater-server/internal/rest"
	"github.com/barokatu/tauri-updater-server/internal/storage"
	"github.com/barokatu/tauri-updater-server/internal/updates"
)

const (
	testSecret = "Zq8#vLm2!pR7xT4w"

	scenarioRecord = `{"version":"1.2.3","notes":"fix","pub_date":"2024-01-01T00:00:00Z","platforms":{"linux-x86_64":{"signature":"SIG","url":"https://x/y"}}}`
)

func newHandler(t *testing.T, mutate func(cfg *config.Config)) http.Handler {
	t.Helper()

	cfg := config.Default()
	cfg.DataFile = filepath.Join(t.TempDir(), "data", "updates.json")
	cfg.Auth.Secret = testSecret

	if mutate != nil {
		mutate(cfg)
	}

	chain, err := storage.Load(cfg)
	require.NoError(t, err)

	server, err := rest.NewServer(cfg, updates.NewService(chain), auth.NewStaticToken(cfg.Auth.Secret))
	require.NoError(t, err)

	return server.Handler()
}

func do(t *testing.T, h http.Handler, method string, path string, body string, authorization string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func bearer() string {
	return "Bearer " + auth.GenerateToken(testSecret)
}

// Test fetching the default record from an empty store.
func TestGetDefault(t *testing.T) {
	t.Parallel()

	h := newHandler(t, nil)

	rec := do(t, h, http.MethodGet, "/updates", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var record api.UpdateRecord

	err := json.Unmarshal(rec.Body.Bytes(), &record)
	require.NoError(t, err)
	require.Equal(t, "1.0.0", record.Version)
	require.Equal(t, "Initial release", api.Value(record.Notes))
	require.Len(t, record.Platforms, 4)
}

// Test the credential forms accepted when reads are authenticated.
func TestGetAuthenticated(t *testing.T) {
	t.Parallel()

	h := newHandler(t, func(cfg *config.Config) { cfg.Auth.Read = true })

	rec := do(t, h, http.MethodGet, "/updates", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	require.JSONEq(t, `{"error":"missing authorization credential"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/updates", "", "Bearer bWVldGdlZWs=")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodGet, "/updates", "", auth.GenerateToken(testSecret))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/updates", "", bearer())
	require.Equal(t, http.StatusOK, rec.Code)
}

// Test that writes always need a credential.
func TestWriteRequiresAuth(t *testing.T) {
	t.Parallel()

	h := newHandler(t, nil)

	rec := do(t, h, http.MethodPut, "/updates", scenarioRecord, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodGet, "/updates", "", "")
	require.Contains(t, rec.Body.String(), `"version":"1.0.0"`)
}

// Test the upsert scenario and that PUT and POST are interchangeable.
func TestUpsertMethods(t *testing.T) {
	t.Parallel()

	for _, method := range []string{http.MethodPut, http.MethodPost} {
		t.Run(method, func(t *testing.T) {
			t.Parallel()

			h := newHandler(t, nil)

			rec := do(t, h, method, "/updates", scenarioRecord, bearer())
			require.Equal(t, http.StatusOK, rec.Code)
			require.JSONEq(t, `{"success":true,"data":`+scenarioRecord+`}`, rec.Body.String())

			rec = do(t, h, http.MethodGet, "/updates", "", "")
			require.Equal(t, http.StatusOK, rec.Code)
			require.JSONEq(t, scenarioRecord, rec.Body.String())

			// The legacy path serves the same record.
			rec = do(t, h, http.MethodGet, "/api/updates", "", "")
			require.JSONEq(t, scenarioRecord, rec.Body.String())
		})
	}
}

// Test the client errors of the write endpoint.
func TestUpsertErrors(t *testing.T) {
	t.Parallel()

	h := newHandler(t, nil)

	rec := do(t, h, http.MethodPost, "/updates", `{"version":"1.2.3","platforms":{"linux-x86_64":{"url":"https://x/y"}}}`, bearer())
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"error":"platform linux-x86_64 must have signature and url"}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/updates", `{"notes":"no version"}`, bearer())
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"error":"missing required fields: version and platforms"}`, rec.Body.String())

	rec = do(t, h, http.MethodPut, "/updates", `{"version":`, bearer())
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"error":"invalid JSON in request body"}`, rec.Body.String())

	rec = do(t, h, http.MethodDelete, "/updates", "", bearer())
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Equal(t, "GET, PUT, POST", rec.Header().Get("Allow"))

	// Nothing was stored.
	rec = do(t, h, http.MethodGet, "/updates", "", "")
	require.Contains(t, rec.Body.String(), `"version":"1.0.0"`)
}

// Test that a failing store is reported as a server error.
func TestUpsertStoreFailure(t *testing.T) {
	t.Parallel()

	blocker := filepath.Join(t.TempDir(), "blocker")

	err := os.WriteFile(blocker, []byte("x"), 0o600)
	require.NoError(t, err)

	h := newHandler(t, func(cfg *config.Config) { cfg.DataFile = filepath.Join(blocker, "updates.json") })

	rec := do(t, h, http.MethodPut, "/updates", scenarioRecord, bearer())
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string

	err = json.Unmarshal(rec.Body.Bytes(), &body)
	require.NoError(t, err)
	require.Contains(t, body["error"], "file writes are not supported in this environment")
}

// Test that a stalled key-value store is reported before the request deadline.
func TestUpsertStoreTimeout(t *testing.T) {
	t.Parallel()

	kv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(kv.Close)

	h := newHandler(t, func(cfg *config.Config) {
		cfg.KV.URL = kv.URL
		cfg.KV.Token = "token"
		cfg.RequestTimeout = 200 * time.Millisecond
	})

	start := time.Now()

	rec := do(t, h, http.MethodPut, "/updates", scenarioRecord, bearer())
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Less(t, time.Since(start), 5*time.Second)
}

// Test conditional requests against the record etag.
func TestGetNotModified(t *testing.T) {
	t.Parallel()

	h := newHandler(t, nil)

	rec := do(t, h, http.MethodPut, "/updates", scenarioRecord, bearer())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/updates", "", "")
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/updates", nil)
	req.Header.Set("If-None-Match", etag)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotModified, rec.Code)
}

// Test the root redirect and health endpoint.
func TestRootAndHealth(t *testing.T) {
	t.Parallel()

	h := newHandler(t, nil)

	rec := do(t, h, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/ui/", rec.Header().Get("Location"))

	rec = do(t, h, http.MethodGet, "/missing", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func formBody(token string) string {
	form := url.Values{}
	form.Set("token", token)
	form.Set("version", "2.0.0")
	form.Set("notes", "New <features>")
	form.Set("pub_date", "2024-05-01T12:30")
	form.Set("linux-x86_64-url", "https://example.com/app.AppImage.tar.gz")
	form.Set("linux-x86_64-signature", "SIG\n")

	return form.Encode()
}

func postForm(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/ui/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

// Test rendering the edit form.
func TestUIGet(t *testing.T) {
	t.Parallel()

	h := newHandler(t, nil)

	rec := do(t, h, http.MethodGet, "/ui/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Body.String(), `value="1.0.0"`)

	for _, platform := range api.WellKnownPlatforms {
		require.Contains(t, rec.Body.String(), `name="`+platform.String()+`-url"`)
	}
}

// Test saving through the edit form.
func TestUIPost(t *testing.T) {
	t.Parallel()

	h := newHandler(t, nil)

	rec := postForm(t, h, formBody("wrong"))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid authorization credential")

	rec = postForm(t, h, formBody(auth.GenerateToken(testSecret)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Update data saved successfully!")

	rec = do(t, h, http.MethodGet, "/updates", "", "")

	var record api.UpdateRecord

	err := json.Unmarshal(rec.Body.Bytes(), &record)
	require.NoError(t, err)
	require.Equal(t, "2.0.0", record.Version)
	require.Equal(t, "New <features>", api.Value(record.Notes))
	require.Equal(t, "2024-05-01T12:30:00.000Z", api.Value(record.PubDate))
	require.Equal(t, api.NewPlatformTarget("SIG", "https://example.com/app.AppImage.tar.gz"), record.Platforms["linux-x86_64"])
	require.Len(t, record.Platforms, 4)

	// An empty version is rejected by the service.
	form := url.Values{}
	form.Set("token", auth.GenerateToken(testSecret))

	rec = postForm(t, h, form.Encode())
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "missing required fields: version and platforms")
}

// Test that a publication date the form can't show survives a form save.
func TestUIPostKeepsPubDate(t *testing.T) {
	t.Parallel()

	h := newHandler(t, nil)

	rec := do(t, h, http.MethodPut, "/updates", `{"version":"1.0.0","pub_date":"May 1st","platforms":{}}`, bearer())
	require.Equal(t, http.StatusOK, rec.Code)

	form := url.Values{}
	form.Set("token", auth.GenerateToken(testSecret))
	form.Set("version", "1.0.1")
	form.Set("pub_date", "")

	rec = postForm(t, h, form.Encode())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/updates", "", "")

	var record api.UpdateRecord

	err := json.Unmarshal(rec.Body.Bytes(), &record)
	require.NoError(t, err)
	require.Equal(t, "1.0.1", record.Version)
	require.Equal(t, "May 1st", api.Value(record.PubDate))

	// Clearing a date the form did show drops it.
	form.Set("version", "1.0.2")
	form.Set("pub_date", "2024-05-01T12:30")

	rec = postForm(t, h, form.Encode())
	require.Equal(t, http.StatusOK, rec.Code)

	form.Set("pub_date", "")

	rec = postForm(t, h, form.Encode())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/updates", "", "")
	require.NotContains(t, rec.Body.String(), "pub_date")
}
