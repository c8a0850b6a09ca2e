package api

import (
	"net/http"
)

// SnapshotsHandler serves snapshot metadata.
type SnapshotsHandler struct {
	deps Dependencies
}

// NewSnapshotsHandler creates a new snapshots handler.
func NewSnapshotsHandler(deps Dependencies) *SnapshotsHandler {
	return &SnapshotsHandler{deps: deps}
}

// HandleList handles GET /snapshots, newest first.
func (h *SnapshotsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	infos, err := h.deps.Snapshots(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

// HandleLatest handles GET /snapshots/latest.
func (h *SnapshotsHandler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	snap, err := h.deps.Latest(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Info())
}

// HandleGet handles GET /snapshots/{id}.
func (h *SnapshotsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	snap, err := h.deps.Snapshot(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Info())
}
