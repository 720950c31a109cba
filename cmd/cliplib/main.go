package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"cliplib/internal/api"
	"cliplib/internal/cache"
	"cliplib/internal/config"
	"cliplib/internal/download"
	"cliplib/internal/folders"
	"cliplib/internal/library"
	"cliplib/internal/metadata"
	"cliplib/internal/server"
	"cliplib/internal/thumbs"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger := setupLogger(cfg.Logging)

	logger.Info().
		Str("version", api.Version).
		Msg("starting cliplib server")

	settings, err := config.OpenSettings(cfg.Content.SettingsFile, cfg.Content.DefaultFolder)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load settings")
	}

	store := folders.NewStore(cfg.Content.Root, settings, logger)
	if store.Configured() {
		if err := store.Initialize(); err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize content directories")
		}
	} else {
		logger.Warn().Msg("content root not configured - library endpoints will be empty")
	}

	repo := metadata.NewRepository(store.MetadataPath(), logger)
	index := library.NewIndex(store, repo, logger)
	thumbCache := thumbs.NewCache(store.ThumbnailsPath(), cfg.Thumbnails.FetchTimeout, logger)
	lru := cache.NewLRU(cfg.Thumbnails.CacheCapacity, cfg.Thumbnails.CacheMaxSize)

	engine := download.NewYTDLP(logger)
	if engine.IsAvailable() {
		logger.Info().Msg("yt-dlp available - downloads enabled")
	} else {
		logger.Warn().Msg("yt-dlp not found - downloads will fail")
	}
	supervisor := download.NewSupervisor(engine, logger)

	handler := api.NewHandler(store, repo, index, thumbCache, lru, supervisor, engine, logger)
	srv := server.New(cfg, logger, handler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info().Msg("received shutdown signal")
		cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("shutdown error")
		}
	}()

	if err := srv.Start(); err != nil {
		logger.Error().Err(err).Msg("server error")
	}

	logger.Info().Msg("server stopped")
}

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Pretty {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().
			Timestamp().
			Logger()
	}

	return zerolog.New(os.Stdout).
		With().
		Timestamp().
		Logger()
}
