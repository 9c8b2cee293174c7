package rest

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/barokatu/tauri-updater-server/api"
	"github.com/barokatu/tauri-updater-server/internal/rest/response"
	"github.com/barokatu/tauri-updater-server/internal/updates"
)

// swagger:operation GET /updates updates updates_get
//
//	Get the update record
//
//	Returns the update manifest consumed by the Tauri updater.
//	Requires a credential only if read authentication is enabled.
//
//	---
//	produces:
//	  - application/json
//	responses:
//	  "200":
//	    description: Update manifest
//	    schema:
//	      type: object
//	      example: {"version":"1.2.3","notes":"fix","pub_date":"2024-01-01T00:00:00Z","platforms":{"linux-x86_64":{"signature":"SIG","url":"https://x/y"}}}
//	  "401":
//	    $ref: "#/responses/Unauthorized"

// swagger:operation PUT /updates updates updates_put
//
//	Replace the update record
//
//	Validates and stores a new update manifest. POST is accepted with the
//	same semantics.
//
//	---
//	consumes:
//	  - application/json
//	produces:
//	  - application/json
//	parameters:
//	  - in: body
//	    name: record
//	    description: Update manifest
//	    required: true
//	    schema:
//	      type: object
//	responses:
//	  "200":
//	    description: Stored update manifest
//	    schema:
//	      type: object
//	      example: {"success":true,"data":{"version":"1.2.3","notes":"fix","pub_date":"2024-01-01T00:00:00Z","platforms":{"linux-x86_64":{"signature":"SIG","url":"https://x/y"}}}}
//	  "400":
//	    $ref: "#/responses/BadRequest"
//	  "401":
//	    $ref: "#/responses/Unauthorized"
//	  "500":
//	    $ref: "#/responses/InternalServerError"
func (s *Server) apiUpdates(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		if s.config.Auth.Read && !s.authorize(w, r) {
			return
		}

		record := s.service.Fetch(r.Context())

		w.Header().Set("Cache-Control", "no-cache")

		if response.NotModified(r, record) {
			w.WriteHeader(http.StatusNotModified)

			return
		}

		_ = response.SyncResponseETag(record, record).Render(w)
	case http.MethodPut, http.MethodPost:
		if !s.authorize(w, r) {
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				_ = response.TooLarge(err).Render(w)

				return
			}

			_ = response.BadRequest(err).Render(w)

			return
		}

		record, err := s.service.Upsert(r.Context(), body)
		if err != nil {
			slog.WarnContext(r.Context(), "Rejected update record", "client", clientAddress(r), "err", err)
			_ = upsertError(err).Render(w)

			return
		}

		_ = response.SyncResponse(api.UpdateRecordPost{Success: true, Data: *record}).Render(w)
	default:
		// If none of the supported methods, return MethodNotAllowed.
		_ = response.MethodNotAllowed("GET, PUT, POST").Render(w)
	}
}

// upsertError maps a service error to its response.
func upsertError(err error) response.Response {
	var (
		malformed  *updates.MalformedRequestError
		validation *updates.ValidationError
	)

	switch {
	case errors.As(err, &malformed), errors.As(err, &validation):
		return response.BadRequest(err)
	default:
		return response.InternalError(err)
	}
}
