package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jreel/js-chem/pkg/elements"
)

const (
	actionShutdown = "shutdown"
	actionRestart  = "restart"
)

// ServerAPI holds the dependencies for the main application API handlers.
type ServerAPI struct {
	cm         *ConfigManager
	store      *elements.Store
	actionChan chan string
	logger     *slog.Logger
}

// VersionInfo defines the structure for build/version information.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}

// HealthInfo is the body of /api/health.
type HealthInfo struct {
	Status   string `json:"status"`
	Elements int    `json:"elements"`
}

// NewServerAPI creates a new instance of the ServerAPI.
func NewServerAPI(cm *ConfigManager, store *elements.Store, actionChan chan string, logger *slog.Logger) *ServerAPI {
	return &ServerAPI{
		cm:         cm,
		store:      store,
		actionChan: actionChan,
		logger:     logger,
	}
}

// RegisterRoutes sets up the routing for all /api/server endpoints.
func (a *ServerAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/server/config", a.handleConfig)
	mux.HandleFunc("/api/server/version", a.handleVersion)
	mux.HandleFunc("/api/server/shutdown", a.handleShutdown)
	mux.HandleFunc("/api/server/restart", a.handleRestart)
}

// handleHealthCheck reports whether the element store answers. It is served
// without authentication so container health checks can use it.
func (a *ServerAPI) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	n, err := a.store.Count(r.Context())
	if err != nil {
		a.logger.Error("Health check failed", "error", err)
		respondWithJSON(w, http.StatusServiceUnavailable, HealthInfo{Status: "unavailable"})
		return
	}
	respondWithJSON(w, http.StatusOK, HealthInfo{Status: "ok", Elements: n})
}

// handleConfig gets or updates the main server configuration.
func (a *ServerAPI) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if !requireScope(w, r, scopeServerConfig) {
			return
		}
		respondWithJSON(w, http.StatusOK, a.cm.Get())
	case http.MethodPut:
		if !requireScope(w, r, scopeServerConfig) {
			return
		}
		var newConfig Config
		if err := json.NewDecoder(r.Body).Decode(&newConfig); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
			return
		}

		if err := a.cm.Update(newConfig); err != nil {
			a.logger.Error("Failed to apply new config", "error", err)
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		a.logger.Info("Application configuration updated and saved via API. Server and format changes apply after a restart.")
		respondWithJSON(w, http.StatusOK, a.cm.Get())
	default:
		w.Header().Set("Allow", "GET, PUT")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleVersion returns the application's build information.
func (a *ServerAPI) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !requireScope(w, r, scopeStatsRead) {
		return
	}

	respondWithJSON(w, http.StatusOK, VersionInfo{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
	})
}

// handleShutdown initiates a graceful shutdown of the server.
func (a *ServerAPI) handleShutdown(w http.ResponseWriter, r *http.Request) {
	a.handleAction(w, r, actionShutdown, "Server is shutting down...")
}

// handleRestart initiates a graceful restart of the server.
func (a *ServerAPI) handleRestart(w http.ResponseWriter, r *http.Request) {
	a.handleAction(w, r, actionRestart, "Server is restarting...")
}

func (a *ServerAPI) handleAction(w http.ResponseWriter, r *http.Request, action, message string) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !requireScope(w, r, scopeServerControl) {
		return
	}

	a.logger.Warn("Server action initiated via API", "action", action)
	respondWithJSON(w, http.StatusAccepted, map[string]string{"message": message})

	go func() {
		a.actionChan <- action
	}()
}
