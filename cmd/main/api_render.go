package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/jreel/js-chem/pkg/elements"
	"github.com/jreel/js-chem/pkg/lewis"
	"github.com/jreel/js-chem/pkg/periodic"
	"github.com/jreel/js-chem/pkg/trends"
)

// RenderAPI serves periodic tables, atom drawings and trend charts built
// from the stored element data.
type RenderAPI struct {
	store  *elements.Store
	logger *slog.Logger
}

// NewRenderAPI creates a new instance of the RenderAPI.
func NewRenderAPI(store *elements.Store, logger *slog.Logger) *RenderAPI {
	return &RenderAPI{
		store:  store,
		logger: logger,
	}
}

// RegisterRoutes sets up the routing for the table, atom and trend endpoints.
func (a *RenderAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/table", a.handleTable)
	mux.HandleFunc("/api/atom/move", a.handleAtomMove)
	mux.HandleFunc("/api/atom/", a.handleAtom)
	mux.HandleFunc("/api/trend/", a.handleTrend)
}

// dataset loads a snapshot of the store, answering 500 itself on failure.
func (a *RenderAPI) dataset(w http.ResponseWriter, r *http.Request) (*elements.Dataset, bool) {
	ds, err := a.store.Dataset(r.Context())
	if err != nil {
		a.logger.Error("Failed to load element data", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to load element data")
		return nil, false
	}
	return ds, true
}

// handleTable renders an HTML table fragment. Query parameters override the
// defaults: id, size, info (comma separated), shade and border.
func (a *RenderAPI) handleTable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !requireScope(w, r, scopeElementsRead) {
		return
	}

	opts := periodic.DefaultOptions()
	q := r.URL.Query()
	if v := q.Get("id"); v != "" {
		opts.ID = v
	}
	if v := q.Get("size"); v != "" {
		opts.Size = periodic.Size(v)
	}
	if v := q.Get("info"); v != "" {
		opts.Info = strings.Split(v, ",")
	}
	if q.Has("shade") {
		opts.Shade = q.Get("shade")
	}
	if q.Has("border") {
		opts.Border = q.Get("border")
	}
	if err := opts.Validate(); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	ds, ok := a.dataset(w, r)
	if !ok {
		return
	}
	grid, err := periodic.Layout(ds.All(), opts.Size)
	if err != nil {
		a.logger.Error("Failed to lay out table", "size", opts.Size, "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to lay out table: %v", err))
		return
	}

	var buf bytes.Buffer
	if err = periodic.RenderHTML(&buf, grid, opts); err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to render table: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// handleAtom draws /api/atom/{symbol}. By default the response is a
// standalone SVG document; with fragment=1 it is a bare group, using the
// id parameter as group id when given.
func (a *RenderAPI) handleAtom(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !requireScope(w, r, scopeElementsRead) {
		return
	}

	symbol := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/atom/"), "/")
	q := r.URL.Query()
	x, y := lewis.DefaultRadius*2, lewis.DefaultRadius*2
	var err error
	if v := q.Get("x"); v != "" {
		if x, err = strconv.Atoi(v); err != nil || x < 0 {
			respondWithError(w, http.StatusBadRequest, "Query parameter 'x' must be a non-negative integer")
			return
		}
	}
	if v := q.Get("y"); v != "" {
		if y, err = strconv.Atoi(v); err != nil || y < 0 {
			respondWithError(w, http.StatusBadRequest, "Query parameter 'y' must be a non-negative integer")
			return
		}
	}

	el, err := a.store.Get(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, elements.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Element '"+symbol+"' not found")
			return
		}
		a.logger.Error("Failed to get element", "symbol", symbol, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Database query failed")
		return
	}
	atom := lewis.NewAtom(el, x, y)

	var buf bytes.Buffer
	if q.Get("fragment") == "1" {
		gid := lewis.Build(&buf, atom, q.Get("id"))
		w.Header().Set("X-Atom-Id", gid)
	} else {
		extent := atom.Radius * 2
		lewis.Document(&buf, x+extent, y+extent, atom)
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = buf.WriteTo(w)
}

// MoveRequest is the state of one drag step: the group's current transform,
// the pointer position where the drag started and where it is now.
type MoveRequest struct {
	Transform string `json:"transform"`
	StartX    int    `json:"start_x"`
	StartY    int    `json:"start_y"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
}

// handleAtomMove computes the transform of a dragged atom group, for clients
// that move atoms without the embedded script.
func (a *RenderAPI) handleAtomMove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !requireScope(w, r, scopeElementsRead) {
		return
	}

	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}
	if req.Transform == "" {
		req.Transform = lewis.Translate(0, 0)
	}

	var d lewis.Drag
	d.Start(req.StartX, req.StartY)
	transform, err := d.Move(req.Transform, req.X, req.Y)
	d.End()
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"transform": transform})
}

// handleTrend serves /api/trend/{property} as a chart and
// /api/trend/{property}/summary as JSON statistics.
func (a *RenderAPI) handleTrend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !requireScope(w, r, scopeElementsRead) {
		return
	}

	rest := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/trend/"), "/")
	name, sub, _ := strings.Cut(rest, "/")
	p, err := trends.ParseProperty(name)
	if err != nil {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}
	if sub != "" && sub != "summary" {
		respondWithError(w, http.StatusNotFound, "Not Found")
		return
	}

	ds, ok := a.dataset(w, r)
	if !ok {
		return
	}

	if sub == "summary" {
		summary, err := trends.Summarize(ds.All(), p)
		if err != nil {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondWithJSON(w, http.StatusOK, summary)
		return
	}

	format := r.URL.Query().Get("format")
	contentType := "image/svg+xml"
	switch format {
	case "", "svg":
		format = "svg"
	case "png":
		contentType = "image/png"
	default:
		respondWithError(w, http.StatusBadRequest, "Query parameter 'format' must be svg or png")
		return
	}

	var buf bytes.Buffer
	if err = trends.Plot(&buf, ds.All(), p, format); err != nil {
		a.logger.Error("Failed to plot trend", "property", p, "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to plot trend: %v", err))
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = buf.WriteTo(w)
}
