package rest

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"log/slog"
	"maps"
	"net/http"
	"strings"
	"time"

	"github.com/barokatu/tauri-updater-server/api"
	"github.com/barokatu/tauri-updater-server/internal/rest/response"
	"github.com/barokatu/tauri-updater-server/internal/updates"
)

//go:embed html
var staticFiles embed.FS

// datetimeLocalLayout is the value format of an HTML datetime-local input.
const datetimeLocalLayout = "2006-01-02T15:04"

type uiPlatform struct {
	Name      string
	Title     string
	URL       string
	Signature string
}

type uiPage struct {
	Version   string
	Notes     string
	PubDate   string
	Platforms []uiPlatform
	Preview   string

	Message string
	Success bool
}

func (s *Server) apiUI(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/ui/" {
		_ = response.NotFound(nil).Render(w)

		return
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.renderUI(w, r, http.StatusOK, s.service.Fetch(r.Context()), "", false)
	case http.MethodPost:
		s.apiUIPost(w, r)
	default:
		_ = response.MethodNotAllowed("GET, POST").Render(w)
	}
}

func (s *Server) apiUIPost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	err := r.ParseForm()
	if err != nil {
		s.renderUI(w, r, http.StatusBadRequest, s.service.Fetch(r.Context()), err.Error(), false)

		return
	}

	candidate := recordFromForm(r, s.service.Fetch(r.Context()))

	err = s.checker.Check(r.PostForm.Get("token"))
	if err != nil {
		slog.WarnContext(r.Context(), "Rejected form credential", "client", clientAddress(r), "err", err)
		s.renderUI(w, r, http.StatusUnauthorized, candidate, err.Error(), false)

		return
	}

	body, err := json.Marshal(candidate)
	if err != nil {
		s.renderUI(w, r, http.StatusInternalServerError, candidate, err.Error(), false)

		return
	}

	record, err := s.service.Upsert(r.Context(), body)
	if err != nil {
		code := http.StatusInternalServerError
		if updates.IsValidationError(err) {
			code = http.StatusBadRequest
		}

		s.renderUI(w, r, code, candidate, err.Error(), false)

		return
	}

	s.renderUI(w, r, http.StatusOK, *record, "Update data saved successfully!", true)
}

// recordFromForm applies the submitted form on top of current. Platforms not
// shown in the form are kept as they are, and so is a publication date the
// operator left untouched.
func recordFromForm(r *http.Request, current api.UpdateRecord) api.UpdateRecord {
	platforms := make(map[string]api.PlatformTarget, len(current.Platforms)+len(api.WellKnownPlatforms))
	maps.Copy(platforms, current.Platforms)

	for _, platform := range api.WellKnownPlatforms {
		platforms[platform.String()] = api.NewPlatformTarget(
			strings.TrimSpace(r.PostForm.Get(platform.String()+"-signature")),
			strings.TrimSpace(r.PostForm.Get(platform.String()+"-url")),
		)
	}

	pubDate := current.PubDate

	value := r.PostForm.Get("pub_date")
	if value != pubDateToForm(api.Value(current.PubDate)) {
		pubDate = pubDateFromForm(value)
	}

	return api.UpdateRecord{
		Version:   strings.TrimSpace(r.PostForm.Get("version")),
		Notes:     api.Text(r.PostForm.Get("notes")),
		PubDate:   pubDate,
		Platforms: platforms,
	}
}

// pubDateFromForm converts a datetime-local value (taken as UTC) to the record layout.
func pubDateFromForm(value string) *string {
	if value == "" {
		return nil
	}

	t, err := time.Parse(datetimeLocalLayout, value)
	if err != nil {
		return api.Text(value)
	}

	return api.Text(t.UTC().Format(api.PubDateLayout))
}

// pubDateToForm converts a record publication date to a datetime-local value.
// Dates the input can't represent are shown empty.
func pubDateToForm(value string) string {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return ""
	}

	return t.UTC().Format(datetimeLocalLayout)
}

func (s *Server) renderUI(w http.ResponseWriter, r *http.Request, code int, record api.UpdateRecord, message string, success bool) {
	page := uiPage{
		Version: record.Version,
		Notes:   api.Value(record.Notes),
		PubDate: pubDateToForm(api.Value(record.PubDate)),
		Message: message,
		Success: success,
	}

	for _, platform := range api.WellKnownPlatforms {
		target := record.Platforms[platform.String()]

		page.Platforms = append(page.Platforms, uiPlatform{
			Name:      platform.String(),
			Title:     strings.Replace(platform.String(), "-", " ", 1),
			URL:       api.Value(target.URL),
			Signature: api.Value(target.Signature),
		})
	}

	preview, err := json.MarshalIndent(record, "", "  ")
	if err == nil {
		page.Preview = string(preview)
	}

	var buf bytes.Buffer

	err = s.ui.Execute(&buf, page)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to render UI", "err", err)
		_ = response.InternalError(errors.New("failed to render page")).Render(w)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")

	_ = response.ManualResponse(code, func(w http.ResponseWriter) error {
		_, err := buf.WriteTo(w)

		return err
	}).Render(w)
}
