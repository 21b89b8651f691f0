package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/jreel/js-chem/pkg/elements"
	"github.com/jreel/js-chem/pkg/templating"
)

// ElementsAPI holds the dependencies for the element data handlers.
type ElementsAPI struct {
	store  *elements.Store
	tm     *templating.TemplateManager
	logger *slog.Logger
}

// NewElementsAPI creates a new instance of the ElementsAPI.
func NewElementsAPI(store *elements.Store, tm *templating.TemplateManager, logger *slog.Logger) *ElementsAPI {
	return &ElementsAPI{
		store:  store,
		tm:     tm,
		logger: logger,
	}
}

// RegisterRoutes sets up the routing for all /api/elements endpoints.
func (e *ElementsAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/elements", e.handleList)
	mux.HandleFunc("/api/elements/", e.handleElement)
}

// handleList returns every element, optionally narrowed by the type, block,
// phase or period query parameters.
func (e *ElementsAPI) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !requireScope(w, r, scopeElementsRead) {
		return
	}

	els, err := e.store.List(r.Context())
	if err != nil {
		e.logger.Error("Failed to list elements", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Database query failed")
		return
	}

	q := r.URL.Query()
	period, _ := strconv.Atoi(q.Get("period"))
	filtered := make([]elements.Element, 0, len(els))
	for _, el := range els {
		if t := q.Get("type"); t != "" && !strings.EqualFold(el.Type, t) {
			continue
		}
		if b := q.Get("block"); b != "" && !strings.EqualFold(el.Block, b) {
			continue
		}
		if p := q.Get("phase"); p != "" && !strings.EqualFold(el.Phase, p) {
			continue
		}
		if period != 0 && el.Period != period {
			continue
		}
		filtered = append(filtered, el)
	}
	respondWithJSON(w, http.StatusOK, filtered)
}

// handleElement reads or corrects a single element.
func (e *ElementsAPI) handleElement(w http.ResponseWriter, r *http.Request) {
	symbol := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/elements/"), "/")
	if symbol == "" || strings.Contains(symbol, "/") {
		respondWithError(w, http.StatusNotFound, "Not Found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		if !requireScope(w, r, scopeElementsRead) {
			return
		}
		el, err := e.store.Get(r.Context(), symbol)
		if err != nil {
			e.respondStoreError(w, err, symbol)
			return
		}
		respondWithJSON(w, http.StatusOK, el)

	case http.MethodPut:
		if !requireScope(w, r, scopeElementsWrite) {
			return
		}
		current, err := e.store.Get(r.Context(), symbol)
		if err != nil {
			e.respondStoreError(w, err, symbol)
			return
		}
		var el elements.Element
		if err = json.NewDecoder(r.Body).Decode(&el); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
			return
		}
		if el.Number == 0 {
			el.Number = current.Number
		}
		if el.Number != current.Number {
			respondWithError(w, http.StatusBadRequest, "Atomic number cannot be changed")
			return
		}
		if err = e.store.Update(r.Context(), el); err != nil {
			if errors.Is(err, elements.ErrInvalidElement) {
				respondWithError(w, http.StatusBadRequest, err.Error())
				return
			}
			e.respondStoreError(w, err, symbol)
			return
		}
		// Pages read a snapshot, so they only see the correction after a refresh.
		if err = e.tm.Refresh(); err != nil {
			e.logger.Warn("Element updated but template refresh failed", "symbol", el.Symbol, "error", err)
		}
		e.logger.Info("Element updated via API", "number", el.Number, "symbol", el.Symbol)
		respondWithJSON(w, http.StatusOK, el)

	default:
		w.Header().Set("Allow", "GET, PUT")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (e *ElementsAPI) respondStoreError(w http.ResponseWriter, err error, symbol string) {
	if errors.Is(err, elements.ErrNotFound) {
		respondWithError(w, http.StatusNotFound, "Element '"+symbol+"' not found")
		return
	}
	e.logger.Error("Element store failed", "symbol", symbol, "error", err)
	respondWithError(w, http.StatusInternalServerError, "Database query failed")
}
