package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"reelog/internal/api/handlers"
	"reelog/internal/api/middleware"
	"reelog/internal/collection"
	"reelog/internal/config"
	"reelog/internal/services/tmdb"
	"reelog/internal/suggest"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	logger *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, store *collection.Store, engine *suggest.Engine, metadata *tmdb.Client, logger *logrus.Logger) *Server {
	s := &Server{logger: logger}

	router := mux.NewRouter()
	router.Use(middleware.Instrument(middleware.NewMetrics(cfg.MetricsEnabled)))
	s.setupRoutes(router, cfg, store, engine, metadata)

	handler := middleware.Logging(router, logger)

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(router *mux.Router, cfg *config.Config, store *collection.Store, engine *suggest.Engine, metadata *tmdb.Client) {
	// Health check and metrics
	router.Handle("/health", handlers.NewHealthHandler(s.logger)).Methods(http.MethodGet)
	if cfg.MetricsEnabled {
		router.Handle("/metrics", middleware.MetricsHandler()).Methods(http.MethodGet)
	}

	// Metadata proxy
	metadataHandler := handlers.NewMetadataHandler(metadata, s.logger)
	router.HandleFunc("/api/search", metadataHandler.Search).Methods(http.MethodGet)
	router.HandleFunc("/api/trending", metadataHandler.Trending).Methods(http.MethodGet)
	router.HandleFunc("/api/discover", metadataHandler.Discover).Methods(http.MethodGet)
	router.HandleFunc("/api/genres", metadataHandler.Genres).Methods(http.MethodGet)
	router.HandleFunc("/api/latest", metadataHandler.Latest).Methods(http.MethodGet)
	router.HandleFunc("/api/popular", metadataHandler.Popular).Methods(http.MethodGet)
	router.HandleFunc("/api/top-rated", metadataHandler.TopRated).Methods(http.MethodGet)
	router.HandleFunc("/api/random", metadataHandler.Random).Methods(http.MethodGet)
	router.HandleFunc("/api/media/{id}", metadataHandler.MediaDetail).Methods(http.MethodGet)
	router.HandleFunc("/api/movie/{id}", metadataHandler.MovieDetail).Methods(http.MethodGet)

	// Library
	libraryHandler := handlers.NewLibraryHandler(store, s.logger)
	router.HandleFunc("/api/library", libraryHandler.List).Methods(http.MethodGet)
	router.HandleFunc("/api/library", libraryHandler.Add).Methods(http.MethodPost)
	router.HandleFunc("/api/library", libraryHandler.Clear).Methods(http.MethodDelete)
	router.HandleFunc("/api/library/stats", libraryHandler.Stats).Methods(http.MethodGet)
	router.HandleFunc("/api/library/export", libraryHandler.Export).Methods(http.MethodGet)
	router.HandleFunc("/api/library/import", libraryHandler.Import).Methods(http.MethodPost)
	router.HandleFunc("/api/library/{id}", libraryHandler.Update).Methods(http.MethodPatch)
	router.HandleFunc("/api/library/{id}", libraryHandler.Remove).Methods(http.MethodDelete)

	// Suggestion
	suggestionHandler := handlers.NewSuggestionHandler(engine, s.logger)
	router.HandleFunc("/api/suggestion", suggestionHandler.Suggest).Methods(http.MethodGet)
	router.HandleFunc("/api/suggestion/reroll", suggestionHandler.Reroll).Methods(http.MethodPost)
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
