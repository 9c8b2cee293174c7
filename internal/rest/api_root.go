package rest

import (
	"net/http"

	"github.com/barokatu/tauri-updater-server/internal/rest/response"
)

func (*Server) apiRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		_ = response.NotFound(nil).Render(w)

		return
	}

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		_ = response.MethodNotAllowed("GET").Render(w)

		return
	}

	// Redirect to UI.
	_ = response.SyncResponseRedirect("/ui/").Render(w)
}

func (*Server) apiHealth(w http.ResponseWriter, _ *http.Request) {
	_ = response.SyncResponse(map[string]any{"ok": true}).Render(w)
}
