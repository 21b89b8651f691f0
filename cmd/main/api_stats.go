package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

const statsSchema = `
CREATE TABLE IF NOT EXISTS stats_formula (
    formula       TEXT PRIMARY KEY,
    total_uses    INTEGER NOT NULL DEFAULT 1,
    first_seen    DATETIME NOT NULL,
    last_seen     DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS stats_request (
    endpoint      TEXT PRIMARY KEY,
    total_hits    INTEGER NOT NULL DEFAULT 1,
    first_seen    DATETIME NOT NULL,
    last_seen     DATETIME NOT NULL
);
`

// maxStoredFormula is the longest input kept in stats_formula; longer
// inputs are counted under their prefix.
const maxStoredFormula = 256

// FormulaStat is one row of the formula statistics.
type FormulaStat struct {
	Formula       string    `json:"formula"`
	TotalUses     int       `json:"total_uses"`
	FirstSeen     time.Time `json:"first_seen"`
	LastSeen      time.Time `json:"last_seen"`
	LastSeenHuman string    `json:"last_seen_human"`
}

// GlobalStatsSummary provides a high-level overview of all collected stats.
type GlobalStatsSummary struct {
	TotalFormatted int64            `json:"total_formatted"`
	UniqueFormulas int64            `json:"unique_formulas"`
	TotalRequests  int64            `json:"total_requests"`
	Endpoints      map[string]int64 `json:"endpoints"`
}

// StatsAPI holds the dependencies for the statistics handlers.
type StatsAPI struct {
	db     *sql.DB
	cm     *ConfigManager
	logger *slog.Logger
}

func setupStatsSchema(db *sql.DB) error {
	_, err := db.Exec(statsSchema)
	return err
}

func NewStatsAPI(db *sql.DB, cm *ConfigManager, logger *slog.Logger) *StatsAPI {
	return &StatsAPI{
		db:     db,
		cm:     cm,
		logger: logger,
	}
}

func (s *StatsAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/stats/summary", s.handleSummary)
	mux.HandleFunc("/api/stats/top_formulas", s.handleTopFormulas)
}

// RecordFormulas counts each input in a single transaction. It does nothing
// when formula recording is disabled.
func (s *StatsAPI) RecordFormulas(ctx context.Context, inputs []string) error {
	if !s.cm.Get().Server.StatsConfig.RecordFormulas || len(inputs) == 0 {
		return nil
	}
	now := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO stats_formula (formula, first_seen, last_seen) VALUES (?, ?, ?)
        ON CONFLICT(formula) DO UPDATE SET total_uses = total_uses + 1, last_seen = ?
    `)
	if err != nil {
		return fmt.Errorf("failed to prepare stats_formula upsert: %w", err)
	}
	defer func(stmt *sql.Stmt) {
		_ = stmt.Close()
	}(stmt)

	for _, input := range inputs {
		formula := strings.TrimSpace(input)
		if formula == "" {
			continue
		}
		formula = truncateFormula(formula, maxStoredFormula)
		if _, err = stmt.ExecContext(ctx, formula, now, now, now); err != nil {
			return fmt.Errorf("failed to upsert stats_formula: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit stats transaction: %w", err)
	}
	return nil
}

// RecordRequest counts a hit on a page or API endpoint.
func (s *StatsAPI) RecordRequest(ctx context.Context, endpoint string) error {
	now := time.Now()
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO stats_request (endpoint, first_seen, last_seen) VALUES (?, ?, ?)
        ON CONFLICT(endpoint) DO UPDATE SET total_hits = total_hits + 1, last_seen = ?
    `, endpoint, now, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert stats_request: %w", err)
	}
	return nil
}

func (s *StatsAPI) handleSummary(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, scopeStatsRead) {
		return
	}
	summary := GlobalStatsSummary{Endpoints: map[string]int64{}}
	_ = s.db.QueryRowContext(r.Context(), "SELECT COALESCE(SUM(total_uses), 0) FROM stats_formula").Scan(&summary.TotalFormatted)
	_ = s.db.QueryRowContext(r.Context(), "SELECT COUNT(*) FROM stats_formula").Scan(&summary.UniqueFormulas)

	rows, err := s.db.QueryContext(r.Context(), "SELECT endpoint, total_hits FROM stats_request")
	if err != nil {
		s.logger.Error("Failed to query request stats", "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Database error: %v", err))
		return
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	for rows.Next() {
		var endpoint string
		var hits int64
		if err = rows.Scan(&endpoint, &hits); err != nil {
			s.logger.Error("Failed to scan request stats", "error", err)
			continue
		}
		summary.Endpoints[endpoint] = hits
		summary.TotalRequests += hits
	}
	respondWithJSON(w, http.StatusOK, summary)
}

func (s *StatsAPI) handleTopFormulas(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, scopeStatsRead) {
		return
	}
	limit := s.cm.Get().Server.StatsConfig.TopLimit
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 && n < limit {
		limit = n
	}

	rows, err := s.db.QueryContext(r.Context(),
		"SELECT formula, total_uses, first_seen, last_seen FROM stats_formula ORDER BY total_uses DESC, formula LIMIT ?", limit)
	if err != nil {
		s.logger.Error("Failed to query top formulas", "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Database error: %v", err))
		return
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	results := []FormulaStat{}
	for rows.Next() {
		var stat FormulaStat
		if err = rows.Scan(&stat.Formula, &stat.TotalUses, &stat.FirstSeen, &stat.LastSeen); err != nil {
			s.logger.Error("Failed to scan top formulas", "error", err)
			continue
		}
		stat.LastSeenHuman = humanize.Time(stat.LastSeen)
		results = append(results, stat)
	}
	respondWithJSON(w, http.StatusOK, results)
}

// truncateFormula cuts s to at most n bytes without splitting a rune.
func truncateFormula(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
