package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultSource = "upload"

// RunsHandler accepts uploaded results files.
type RunsHandler struct {
	deps     Dependencies
	maxBytes int64
}

// NewRunsHandler creates a handler accepting bodies up to maxBytes.
func NewRunsHandler(deps Dependencies, maxBytes int64) *RunsHandler {
	return &RunsHandler{deps: deps, maxBytes: maxBytes}
}

type submitResponse struct {
	JobID     string `json:"job_id,omitempty"`
	Status    string `json:"status"`
	Digest    string `json:"digest"`
	Duplicate bool   `json:"duplicate"`
}

// HandlePostRuns handles POST /runs with a CSV body. The source label is
// taken from ?source= and defaults to "upload".
func (h *RunsHandler) HandlePostRuns(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large",
				fmt.Errorf("%w: limit is %d bytes", ErrPayloadTooLarge, tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: empty body", ErrBadRequest))
		return
	}

	src := strings.TrimSpace(r.URL.Query().Get("source"))
	if src == "" {
		src = defaultSource
	}
	res, err := h.deps.Submit(r.Context(), src, body)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if res.Duplicate {
		writeJSON(w, http.StatusOK, submitResponse{Status: "duplicate", Digest: res.Digest, Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, submitResponse{JobID: res.JobID, Status: "accepted", Digest: res.Digest})
}
