package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"cliplib/internal/api"
	"cliplib/internal/config"
)

type Server struct {
	cfg        *config.Config
	logger     zerolog.Logger
	httpServer *http.Server
	router     *chi.Mux
	handler    *api.Handler
}

func New(cfg *config.Config, logger zerolog.Logger, handler *api.Handler) *Server {
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		handler: handler,
	}

	s.router = chi.NewRouter()
	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(CORSMiddleware)
	s.router.Use(LoggingMiddleware(s.logger))
}

func (s *Server) setupRoutes() {
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handler.Health)

		r.Get("/folders", s.handler.ListFolders)
		r.Post("/folders", s.handler.CreateFolder)
		r.Post("/folders/default", s.handler.RenameDefaultFolder)
		r.Put("/folders/{name}", s.handler.RenameFolder)
		r.Delete("/folders/{name}", s.handler.DeleteFolder)

		r.Post("/files/move", s.handler.MoveFile)

		r.Get("/library", s.handler.GetLibrary)
		r.Get("/library/{id}", s.handler.GetItem)
		r.Patch("/library/{id}", s.handler.UpdateItem)
		r.Delete("/library/{id}", s.handler.DeleteItem)
		r.Put("/library/{id}/tags", s.handler.UpdateItemTags)
		r.Get("/library/{id}/stream", s.handler.StreamItem)

		r.Get("/tags", s.handler.GetAllTags)
		r.Get("/thumbnails/{id}", s.handler.GetThumbnail)

		r.Post("/links", s.handler.SaveLink)
		r.Post("/downloads", s.handler.StartDownload)
		r.Get("/downloads/progress", s.handler.DownloadProgress)
		r.Post("/downloads/cancel", s.handler.CancelDownload)
	})
}

// Router exposes the assembled routes, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info().
		Str("addr", s.httpServer.Addr).
		Msg("starting server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(shutdownCtx)
}
