package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/braindev/assets"
	"github.com/robalobadob/braindev/internal/database"
	"github.com/robalobadob/braindev/internal/httpserver"
	"github.com/robalobadob/braindev/internal/words"
)

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()
	setupLogger(cfg)

	if err := words.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load word list")
	}
	log.Info().Str("words", humanize.Comma(int64(words.Stats()))).Msg("word list loaded")

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	defer db.Close()
	if err := database.Migrate(db, assets.Migrations()); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}
	if fi, err := os.Stat(cfg.DBPath); err == nil {
		log.Info().Str("path", cfg.DBPath).Str("size", humanize.Bytes(uint64(fi.Size()))).Msg("database ready")
	}

	srv := httpserver.New(cfg.HTTP, db)
	defer srv.Close()

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting go-server")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server exited")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

// setupLogger applies LOG_LEVEL and LOG_FORMAT to the global logger.
func setupLogger(cfg Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
