package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"asset-store/internal/database"
	"asset-store/internal/handlers"
	"asset-store/internal/logging"
	"asset-store/internal/media"
	"asset-store/internal/memory"
	"asset-store/internal/metrics"
	"asset-store/internal/middleware"
	"asset-store/internal/startup"
	"asset-store/internal/storage"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	// Configure the runtime memory limit before large allocations
	memory.ConfigureFromEnv()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		logging.Fatal("Configuration error: %v", err)
	}

	// Initialize database
	dbStart := time.Now()
	db, err := database.New(context.Background(), config.DatabasePath)
	if err != nil {
		logging.Fatal("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Warn("Database close error: %v", err)
		}
	}()
	startup.LogDatabaseInit(time.Since(dbStart))

	// Clean up expired sessions periodically
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		for range ticker.C {
			db.CleanExpiredSessions(context.Background())
		}
	}()

	// Initialize libvips for webp encoding
	if err := media.InitVips(); err != nil {
		logging.Warn("libvips initialization failed, webp thumbnails unavailable: %v", err)
	}

	// Initialize object store
	store, err := newObjectStore(config)
	if err != nil {
		logging.Fatal("Failed to initialize object store: %v", err)
	}

	// Initialize handlers
	h := handlers.New(db, store, config)

	// Setup router
	router := setupRouter(h, config)

	// Log routes dynamically
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	// Apply authentication middleware
	authedRouter := h.AuthMiddleware(router)

	// Apply metrics middleware
	meteredHandler := middleware.Metrics(middleware.DefaultMetricsConfig())(authedRouter)

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.Logger(loggingConfig)(meteredHandler)

	// Create server
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Metrics server on its own port
	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metrics.InitializeMetrics()

		go func() {
			ticker := time.NewTicker(30 * time.Second)
			for range ticker.C {
				db.UpdateDBMetrics()
			}
		}()

		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:        ":" + config.MetricsPort,
			Handler:     metricsMux,
			ReadTimeout: 15 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	// Start graceful shutdown handler
	go handleShutdown(srv, metricsSrv)

	// Start server
	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logging.Fatal("Server error: %v", err)
	}
}

func newObjectStore(config *startup.Config) (storage.ObjectStore, error) {
	if config.StorageBackend == startup.BackendS3 {
		return storage.NewS3Store(storage.S3Config{
			Bucket:          config.S3Bucket,
			Region:          config.S3Region,
			AccessKeyID:     config.S3AccessKeyID,
			SecretAccessKey: config.S3SecretAccessKey,
			Endpoint:        config.S3Endpoint,
		})
	}
	return storage.NewLocalStore(config.LocalStorageDir, config.LocalStorageBaseURL)
}

func setupRouter(h *handlers.Handlers, config *startup.Config) *mux.Router {
	r := mux.NewRouter()

	// Health check and version routes (no auth required)
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.Liveness).Methods("GET")
	r.HandleFunc("/readyz", h.Readiness).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	// Auth routes
	auth := r.PathPrefix("/api/auth").Subrouter()
	auth.HandleFunc("/setup-required", h.CheckSetupRequired).Methods("GET")
	auth.HandleFunc("/setup", h.Setup).Methods("POST")
	auth.HandleFunc("/login", h.Login).Methods("POST")
	auth.HandleFunc("/logout", h.Logout).Methods("POST")
	auth.HandleFunc("/check", h.CheckAuth).Methods("GET")

	// Public listing (images only)
	r.HandleFunc("/api/public/files", h.ListPublicFiles).Methods("GET")

	// File management
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/files", h.UploadFile).Methods("POST")
	api.HandleFunc("/files", h.ListFiles).Methods("GET")
	api.HandleFunc("/files/{id:[0-9]+}", h.GetFile).Methods("GET")
	api.HandleFunc("/files/{id:[0-9]+}", h.UpdateFile).Methods("PATCH")
	api.HandleFunc("/files/{id:[0-9]+}", h.DeleteFile).Methods("DELETE")

	// Thumbnails
	api.HandleFunc("/files/{id:[0-9]+}/thumbnail", h.GetThumbnail).Methods("GET")
	api.HandleFunc("/files/{id:[0-9]+}/thumbnails", h.ListThumbnailSizes).Methods("GET")

	// Serve local-backend objects directly for development setups
	if config.StorageBackend == startup.BackendLocal {
		r.PathPrefix("/objects/").Handler(
			http.StripPrefix("/objects/", http.FileServer(http.Dir(config.LocalStorageDir))))
	}

	return r
}

func handleShutdown(srv, metricsSrv *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Releasing libvips resources")
	media.ShutdownVips()
	startup.LogShutdownStepComplete("libvips released")

	startup.LogShutdownComplete()
}
