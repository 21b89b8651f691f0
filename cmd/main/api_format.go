package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jreel/js-chem/pkg/chemform"
)

// FormatAPI holds the dependencies for the formatting handlers.
type FormatAPI struct {
	formatter *chemform.Formatter
	stats     *StatsAPI
	cm        *ConfigManager
	logger    *slog.Logger
}

// FormatRequest is the expected JSON body for /api/format. Either Input or
// Inputs must be set.
type FormatRequest struct {
	Input  string   `json:"input,omitempty"`
	Inputs []string `json:"inputs,omitempty"`
	Tokens bool     `json:"tokens,omitempty"`
}

// FormatResult is the formatted form of one input.
type FormatResult struct {
	Input  string           `json:"input"`
	HTML   string           `json:"html"`
	Tokens []chemform.Token `json:"tokens,omitempty"`
}

// FormatResponse is the JSON response of /api/format.
type FormatResponse struct {
	Results []FormatResult `json:"results"`
}

// NewFormatAPI creates a new instance of the FormatAPI.
func NewFormatAPI(formatter *chemform.Formatter, stats *StatsAPI, cm *ConfigManager, logger *slog.Logger) *FormatAPI {
	return &FormatAPI{
		formatter: formatter,
		stats:     stats,
		cm:        cm,
		logger:    logger,
	}
}

// RegisterRoutes sets up the routing for all /api/format endpoints.
func (f *FormatAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/format", f.handleFormat)
	mux.HandleFunc("/api/format/rules", f.handleRules)
}

func (f *FormatAPI) handleFormat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !requireScope(w, r, scopeFormatUse) {
		return
	}

	var req FormatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}
	inputs := req.Inputs
	if req.Input != "" {
		inputs = append([]string{req.Input}, inputs...)
	}
	if len(inputs) == 0 {
		respondWithError(w, http.StatusBadRequest, "Request needs 'input' or 'inputs'")
		return
	}

	limits := f.cm.Get().Format
	if len(inputs) > limits.MaxBatchSize {
		respondWithError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Batch of %d inputs exceeds limit of %d", len(inputs), limits.MaxBatchSize))
		return
	}
	for i, input := range inputs {
		if len(input) > limits.MaxInputLength {
			respondWithError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Input %d is %d bytes, limit is %d", i, len(input), limits.MaxInputLength))
			return
		}
	}

	resp := FormatResponse{Results: make([]FormatResult, 0, len(inputs))}
	for _, input := range inputs {
		res := FormatResult{Input: input, HTML: f.formatter.Format(input)}
		if req.Tokens {
			res.Tokens = f.formatter.Tokenize(input)
		}
		resp.Results = append(resp.Results, res)
	}

	if err := f.stats.RecordFormulas(r.Context(), inputs); err != nil {
		f.logger.Warn("Failed to record formula stats", "error", err)
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// RuleInfo describes one entry of the rule table.
type RuleInfo struct {
	Priority int    `json:"priority"`
	Name     string `json:"name"`
	Template string `json:"template"`
}

// handleRules lists the rule table in priority order.
func (f *FormatAPI) handleRules(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !requireScope(w, r, scopeFormatUse) {
		return
	}
	rules := f.formatter.Rules()
	infos := make([]RuleInfo, len(rules))
	for i, rule := range rules {
		infos[i] = RuleInfo{Priority: i + 1, Name: rule.Name, Template: rule.Template}
	}
	respondWithJSON(w, http.StatusOK, infos)
}
