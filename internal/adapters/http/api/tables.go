package api

import (
	"fmt"
	"net/http"

	"github.com/okian/minestats/internal/adapters/export"
	"github.com/okian/minestats/internal/domain/model"
	"github.com/okian/minestats/internal/domain/types"
)

// TablesHandler serves the tables of the newest snapshot.
type TablesHandler struct {
	deps Dependencies
}

// NewTablesHandler creates a new tables handler.
func NewTablesHandler(deps Dependencies) *TablesHandler {
	return &TablesHandler{deps: deps}
}

type tableInfo struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
}

// HandleList handles GET /tables.
func (h *TablesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	snap, err := h.deps.Latest(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]tableInfo, 0, len(model.TableNames))
	for _, name := range model.TableNames {
		if t, ok := snap.Table(name); ok {
			out = append(out, tableInfo{Name: name, Rows: t.Len()})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleGet handles GET /tables/{name}?format=json|csv.
func (h *TablesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if !validFormat(w, r) {
		return
	}
	t, err := h.deps.Table(r.Context(), r.PathValue("name"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeTable(w, r, t)
}

// HandlePareto handles GET /pareto?dims=...&format=json|csv.
func (h *TablesHandler) HandlePareto(w http.ResponseWriter, r *http.Request) {
	if !validFormat(w, r) {
		return
	}
	t, err := h.deps.Pareto(r.Context(), r.URL.Query().Get("dims"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeTable(w, r, t)
}

func validFormat(w http.ResponseWriter, r *http.Request) bool {
	switch r.URL.Query().Get("format") {
	case "", "json", "csv":
		return true
	}
	writeError(w, http.StatusBadRequest, "bad_request",
		fmt.Errorf("%w: format must be json or csv", ErrBadRequest))
	return false
}

func writeTable(w http.ResponseWriter, r *http.Request, t types.Table) {
	if r.URL.Query().Get("format") != "csv" {
		if t.Rows == nil {
			t.Rows = [][]any{}
		}
		writeJSON(w, http.StatusOK, t)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", t.Name+".csv"))
	w.WriteHeader(http.StatusOK)
	_ = export.WriteCSV(w, t)
}
