package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/jreel/js-chem/pkg/chemform"
	"github.com/jreel/js-chem/pkg/elements"
	"github.com/jreel/js-chem/pkg/templating"
	"github.com/klauspost/compress/gzhttp"
)

// PageInput is the data passed to page templates.
type PageInput struct {
	Path  string
	Query url.Values
}

// LessonInput is the data passed to the lesson template.
type LessonInput struct {
	PageInput
	Name string
	Body template.HTML
}

func newPageInput(r *http.Request) PageInput {
	return PageInput{Path: r.URL.Path, Query: r.URL.Query()}
}

type Server struct {
	cm          *ConfigManager
	db          *sql.DB
	logger      *slog.Logger
	store       *elements.Store
	tm          *templating.TemplateManager
	authAPI     *AuthAPI
	formatAPI   *FormatAPI
	elementsAPI *ElementsAPI
	renderAPI   *RenderAPI
	templateAPI *TemplateAPI
	statsAPI    *StatsAPI
	serverAPI   *ServerAPI
	pageMux     *http.ServeMux
	apiMux      *http.ServeMux
}

// NewServer seeds the element store, loads the templates and wires every
// API onto the two muxes. The schemas must already exist.
func NewServer(cm *ConfigManager, logger *slog.Logger, db *sql.DB, actionChan chan string) (*Server, error) {
	config := cm.Get()

	store, err := elements.NewStore(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create element store: %w", err)
	}
	store.SetLogger(logger)
	added, err := store.Seed(context.Background(), elements.MustLoad().All())
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to seed element store: %w", err)
	}
	if added > 0 {
		logger.Info("Seeded element store", "added", added)
	}

	tm, err := templating.NewTemplateManager(logger, store, config.Templates, config.Server.DataDir)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create template manager: %w", err)
	}
	cm.SetTemplateManager(tm)

	formatter := chemform.NewFormatter(
		chemform.WithMaxSteps(config.Format.MaxSteps),
		chemform.WithLogger(logger),
	)

	statsAPI := NewStatsAPI(db, cm, logger)
	server := &Server{
		cm:          cm,
		db:          db,
		logger:      logger,
		store:       store,
		tm:          tm,
		authAPI:     NewAuthAPI(db, logger),
		formatAPI:   NewFormatAPI(formatter, statsAPI, cm, logger),
		elementsAPI: NewElementsAPI(store, tm, logger),
		renderAPI:   NewRenderAPI(store, logger),
		templateAPI: NewTemplateAPI(tm, logger),
		statsAPI:    statsAPI,
		serverAPI:   NewServerAPI(cm, store, actionChan, logger),
		pageMux:     http.NewServeMux(),
		apiMux:      http.NewServeMux(),
	}

	apiMux := http.NewServeMux()
	server.authAPI.RegisterRoutes(apiMux)
	server.formatAPI.RegisterRoutes(apiMux)
	server.elementsAPI.RegisterRoutes(apiMux)
	server.renderAPI.RegisterRoutes(apiMux)
	server.templateAPI.RegisterRoutes(apiMux)
	server.statsAPI.RegisterRoutes(apiMux)
	server.serverAPI.RegisterRoutes(apiMux)

	// Everything under /api/ passes through authentication first...
	authedAPI := server.authAPI.Authenticate(apiMux)
	// ... except for the health check, which is unauthed so something like docker can use it
	server.apiMux.HandleFunc("/api/health", server.serverAPI.handleHealthCheck)
	server.apiMux.Handle("/api/", authedAPI)

	staticFs := http.FileServer(http.Dir(config.Server.StaticPath))
	server.pageMux.Handle("/static/", http.StripPrefix("/static/", staticFs))
	server.pageMux.HandleFunc("/favicon.ico", handleFavicon)
	server.pageMux.HandleFunc("/pages/", server.handleLesson)
	server.pageMux.HandleFunc("/", server.handlePage)

	return server, nil
}

// Close releases the element store statements. The database is owned by the caller.
func (s *Server) Close() {
	s.store.Close()
}

// PageHandler returns the handler of the page server.
func (s *Server) PageHandler() http.Handler {
	return s.compress(s.pageMux)
}

// APIHandler returns the handler of the API server.
func (s *Server) APIHandler() http.Handler {
	return s.compress(s.apiMux)
}

func (s *Server) compress(h http.Handler) http.Handler {
	if !s.cm.Get().Server.EnableGzip {
		return h
	}
	return gzhttp.GzipHandler(h)
}

// handlePage serves "/" from the index template and "/{name}" from
// "{name}.tmpl.html".
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	config := s.cm.Get().Server
	name := strings.Trim(r.URL.Path, "/")
	templateName := config.IndexTemplate
	if name != "" {
		templateName = name + ".tmpl.html"
	}
	if strings.Contains(name, "/") || !s.tm.HasTemplate(templateName) {
		http.NotFound(w, r)
		return
	}
	s.render(w, r, templateName, newPageInput(r))
}

// handleLesson renders /pages/{name} from the Markdown file {name}.md in the
// pages directory, through the lesson template when one is loaded.
func (s *Server) handleLesson(w http.ResponseWriter, r *http.Request) {
	config := s.cm.Get().Server
	name := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/pages/"), "/")
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		http.NotFound(w, r)
		return
	}

	src, err := os.ReadFile(filepath.Join(config.PagesPath, name+".md"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("Failed to read lesson", "name", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var body bytes.Buffer
	if err = s.tm.ExecuteTemplateString(&body, `{{markdown .}}`, string(src)); err != nil {
		s.logger.Error("Failed to render lesson", "name", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if !s.tm.HasTemplate(config.LessonTemplate) {
		s.setPageHeaders(w)
		s.recordRequest(r, "lesson")
		_, _ = body.WriteTo(w)
		return
	}
	s.render(w, r, config.LessonTemplate, LessonInput{
		PageInput: newPageInput(r),
		Name:      name,
		Body:      template.HTML(body.String()),
	})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	s.logger.Debug("Serving page", "template", templateName, "remote_addr", s.clientIP(r))

	var buf bytes.Buffer
	if err := s.tm.Execute(&buf, templateName, data); err != nil {
		s.logger.Error("Failed to execute template", "template", templateName, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.setPageHeaders(w)
	s.recordRequest(r, templateName)
	_, _ = buf.WriteTo(w)
}

func (s *Server) recordRequest(r *http.Request, endpoint string) {
	if err := s.statsAPI.RecordRequest(r.Context(), endpoint); err != nil {
		s.logger.Warn("Failed to record request stats", "endpoint", endpoint, "error", err)
	}
}

func (s *Server) setPageHeaders(w http.ResponseWriter) {
	for k, v := range s.cm.Get().Server.Headers {
		w.Header().Set(k, v)
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
}

// clientIP returns the address of the client, honouring the X-Real-Ip and
// X-Forwarded-For headers only when the direct peer is a trusted proxy.
func (s *Server) clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// If splitting fails (e.g., no port), use the address as is.
		ip = r.RemoteAddr
	}
	if !s.cm.IsTrusted(ip) {
		return ip
	}

	// The X-Real-Ip header contains the forwarded IP in some cases (like from nginx)
	if realIP := r.Header.Get("X-Real-Ip"); realIP != "" {
		return realIP
	}

	// The first IP of X-Forwarded-For is the original client.
	if forwardedFor := r.Header.Get("X-Forwarded-For"); forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		return strings.TrimSpace(first)
	}
	return ip
}

// handleFavicon answers favicon requests with no content so they never reach
// the page templates.
func handleFavicon(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
