package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"vibelist/cache"
	"vibelist/config"
	"vibelist/core/curator"
	"vibelist/db"
	"vibelist/library"
	"vibelist/logger"
	"vibelist/repository"
)

// Start wires up the API and runs it until SIGINT/SIGTERM. MySQL and Redis
// are optional: when either is unreachable the server runs generation-only
// and logs a warning.
func Start(cfg *config.Config, store *library.Store, runtime curator.InferenceRuntime) {
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // generation can take a while
		IdleTimeout:  120 * time.Second,
	}

	var playlistRepo repository.PlaylistRepository
	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Warn("playlist history disabled, database unavailable", logger.ErrorField(err))
	} else {
		playlistRepo = repository.NewGormPlaylistRepository()
		defer db.CloseGormDB()
	}

	if err := cache.ConnectRedis(cfg); err != nil {
		logger.Warn("playlist cache disabled, Redis unavailable", logger.ErrorField(err))
	} else {
		defer cache.CloseRedis()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.LibrarySource == "manifest" {
		watcher, err := library.NewWatcher(cfg.LibraryManifest, store)
		if err != nil {
			logger.Warn("manifest hot reload disabled", logger.ErrorField(err))
		} else {
			defer watcher.Close()
			go watcher.Start(ctx)
		}
	}

	apiHandler := NewAPIHandler(cfg, store, playlistRepo, runtime)
	server.Handler = Router(apiHandler)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting",
			logger.String("addr", cfg.ServerAddr),
			logger.Int("libraryTracks", store.Size()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("server stopped")
}

// Router builds the mux router with CORS middleware and all API routes.
func Router(h *APIHandler) *mux.Router {
	router := mux.NewRouter()

	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// OPTIONS is routed too so the CORS middleware answers preflights.
	router.HandleFunc("/api/playlist/generate", h.GenerateHandler).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/api/playlist/history", h.HistoryHandler).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/api/library", h.LibraryHandler).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/api/library/search", h.LibrarySearchHandler).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/api/health", h.HealthHandler).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/ws/playlist", h.WebSocketPlaylistHandler).Methods(http.MethodGet)

	return router
}
