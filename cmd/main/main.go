package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jreel/js-chem/pkg/elements"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "./config.json", "path to the JSON config file")
	flag.Parse()

	baseLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	actionChan := make(chan string, 1)

	go func() {
		osSignalChan := make(chan os.Signal, 1)
		signal.Notify(osSignalChan, syscall.SIGINT, syscall.SIGTERM)
		<-osSignalChan // Wait for a signal
		baseLogger.Info("OS signal received, initiating shutdown.")
		actionChan <- actionShutdown
	}()

	for {
		action, err := run(*configPath, actionChan)
		if err != nil {
			baseLogger.Error("An error occurred during server run, shutting down.", "error", err)
			os.Exit(1)
		}
		if action != actionRestart {
			break
		}
		baseLogger.Info("--- Server Restarting ---")
	}

	baseLogger.Info("Chemistry server has shut down.")
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupSchemas creates every table the server uses.
func setupSchemas(db *sql.DB) error {
	if err := elements.SetupSchema(db); err != nil {
		return fmt.Errorf("failed to setup element schema: %w", err)
	}
	if err := setupAuthSchema(db); err != nil {
		return fmt.Errorf("failed to setup auth schema: %w", err)
	}
	if err := setupStatsSchema(db); err != nil {
		return fmt.Errorf("failed to setup stats schema: %w", err)
	}
	return nil
}

// run hosts both servers and returns whenever the server is shut down or restarted.
func run(configPath string, actionChan chan string) (string, error) {
	cm, err := NewConfigManager(configPath)
	if err != nil {
		return "", fmt.Errorf("failed to load configuration: %w", err)
	}
	config := cm.Get()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(config.Server.LogLevel)}))
	cm.SetLogger(logger)
	logger.Info("Starting server cycle...", "version", Version)

	if err = os.MkdirAll(config.Server.DataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data dir: %w", err)
	}

	db, err := initDB(config.Server.DatabasePath)
	if err != nil {
		return "", fmt.Errorf("failed to initialize database: %w", err)
	}

	if err = setupSchemas(db); err != nil {
		_ = db.Close()
		return "", err
	}

	server, err := NewServer(cm, logger, db, actionChan)
	if err != nil {
		_ = db.Close()
		return "", fmt.Errorf("failed to create server object: %w", err)
	}

	pageHttpServer := &http.Server{Addr: config.Server.ServerAddr, Handler: server.PageHandler()}
	apiHttpServer := &http.Server{Addr: config.Server.ApiAddr, Handler: server.APIHandler()}

	go func() {
		logger.Info("Starting api server", "address", apiHttpServer.Addr)
		if err := apiHttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Api server failed", "error", err)
		}
	}()

	go func() {
		logger.Info("Starting page server", "address", pageHttpServer.Addr)
		if err := pageHttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Page server failed", "error", err)
		}
	}()

	action := <-actionChan // Block here until API or OS signal sends an action.

	logger.Info("Stopping servers for " + action + "...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err = apiHttpServer.Shutdown(ctx); err != nil {
		logger.Error("Api server shutdown failed", "error", err)
	}
	if err = pageHttpServer.Shutdown(ctx); err != nil {
		logger.Error("Page server shutdown failed", "error", err)
	}
	logger.Info("HTTP servers stopped.")

	server.Close()
	logger.Info("Closing database connection.")
	if err = db.Close(); err != nil {
		logger.Error("Failed to close database", "error", err)
	}

	return action, nil
}
