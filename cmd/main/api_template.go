package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/jreel/js-chem/pkg/templating"
	"github.com/natefinch/atomic"
)

// TemplateAPI holds the dependencies for the template API handlers.
type TemplateAPI struct {
	tm     *templating.TemplateManager
	logger *slog.Logger
}

// NewTemplateAPI creates a new instance of the TemplateAPI.
func NewTemplateAPI(tm *templating.TemplateManager, logger *slog.Logger) *TemplateAPI {
	return &TemplateAPI{
		tm:     tm,
		logger: logger,
	}
}

// RegisterRoutes sets up the routing for all /api/templates endpoints.
func (t *TemplateAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/templates/refresh", t.handleRefresh)
	mux.HandleFunc("/api/templates/test", t.handleTest)
	mux.HandleFunc("/api/templates/preview", t.handlePreview)
	mux.HandleFunc("/api/templates", t.handleList)
	mux.HandleFunc("/api/templates/", t.handleFile)
}

// handleRefresh triggers a manual refresh of templates from disk.
func (t *TemplateAPI) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !requireScope(w, r, scopeTemplatesWrite) {
		return
	}
	if err := t.tm.Refresh(); err != nil {
		t.logger.Error("API triggered refresh failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to refresh templates: %v", err))
		return
	}
	t.logger.Info("Templates refreshed via API")
	w.WriteHeader(http.StatusNoContent)
}

// handleList returns a list of all available template names.
func (t *TemplateAPI) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !requireScope(w, r, scopeTemplatesRead) {
		return
	}
	respondWithJSON(w, http.StatusOK, t.tm.GetTemplateNames())
}

// handleTest validates template syntax without saving the file by executing it as a string.
func (t *TemplateAPI) handleTest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !requireScope(w, r, scopeTemplatesRead) {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to read request body: %v", err))
		return
	}

	var buf bytes.Buffer
	err = t.tm.ExecuteTemplateString(&buf, string(body), newPageInput(r))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Template execution failed: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handlePreview renders a loaded template as the page server would, with the
// request's query string as page input.
func (t *TemplateAPI) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !requireScope(w, r, scopeTemplatesRead) {
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'name' is required")
		return
	}

	var buf bytes.Buffer
	if err := t.tm.Execute(&buf, name, newPageInput(r)); err != nil {
		if strings.Contains(err.Error(), "is undefined") {
			respondWithError(w, http.StatusNotFound, fmt.Sprintf("Template '%s' not found", name))
			return
		}
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to render preview: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleFile manages CRUD operations for a single template file.
func (t *TemplateAPI) handleFile(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/templates/")
	if name == "" || strings.HasSuffix(name, "/") {
		respondWithError(w, http.StatusNotFound, "Not Found")
		return
	}

	if strings.Contains(name, "..") || (!strings.HasSuffix(name, ".tmpl.html") && !strings.HasSuffix(name, ".part.html")) {
		respondWithError(w, http.StatusBadRequest, "Invalid template name format")
		return
	}

	templateDir, err := filepath.Abs(t.tm.GetTemplateDir())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to resolve template directory")
		return
	}

	path := filepath.Join(templateDir, name)
	absPath, err := filepath.Abs(path)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid path")
		return
	}

	if !strings.HasPrefix(absPath, templateDir) {
		respondWithError(w, http.StatusForbidden, "Access denied: Path outside template directory")
		return
	}

	switch r.Method {
	case http.MethodGet:
		if !requireScope(w, r, scopeTemplatesRead) {
			return
		}
		content, err := os.ReadFile(path)
		if err != nil {
			respondWithError(w, http.StatusNotFound, "Template not found")
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write(content)

	case http.MethodPut:
		if !requireScope(w, r, scopeTemplatesWrite) {
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to read request body: %v", err))
			return
		}
		if err = atomic.WriteFile(path, bytes.NewReader(body)); err != nil {
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to write template file: %v", err))
			return
		}
		if err = t.tm.Refresh(); err != nil {
			// The file is saved; report the parse error so it can be fixed.
			respondWithError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Template saved but failed to load: %v", err))
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case http.MethodDelete:
		if !requireScope(w, r, scopeTemplatesWrite) {
			return
		}
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				respondWithError(w, http.StatusNotFound, "Template not found")
				return
			}
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to delete template file: %v", err))
			return
		}
		_ = t.tm.Refresh()
		w.WriteHeader(http.StatusNoContent)

	default:
		w.Header().Set("Allow", "GET, PUT, DELETE")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
