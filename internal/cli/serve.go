package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jiho-dev/recap-archive/internal/api"
	"github.com/jiho-dev/recap-archive/internal/bgm"
	"github.com/jiho-dev/recap-archive/internal/ingest"
	"github.com/jiho-dev/recap-archive/internal/journal"
	"github.com/jiho-dev/recap-archive/internal/recap"
	"github.com/jiho-dev/recap-archive/internal/store"
	"github.com/jiho-dev/recap-archive/internal/syncer"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the journal HTTP server",
		Long:  "Serve the journal API for the web front end. Configure via RECAP_* environment variables.",
		Run:   runServe,
	}
	cmd.Flags().IntP("port", "p", 0, "Listen port (overrides RECAP_HTTP_PORT)")
	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.HTTPPort = port
	}

	log := zerolog.New(os.Stdout).With().
		Str("service", "recap-archive").
		Timestamp().
		Logger()

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		exitErr("open store", err)
	}
	defer st.Close()

	sy := syncer.New(st, time.Duration(cfg.DebounceMs)*time.Millisecond, log)
	j := journal.New(st, sy, log)
	if err := j.Load(cmd.Context()); err != nil {
		exitErr("load journal", err)
	}

	pipeline := ingest.New(st, j, log,
		ingest.WithLimits(cfg.ImageMaxDim, cfg.JPEGQuality, cfg.HEICQuality))

	player := bgm.NewController(bgm.NewStateDevice(), bgm.DefaultConfig(), log)
	defer player.Close()
	if err := player.SetSource(cfg.BGMSource); err != nil {
		log.Warn().Err(err).Msg("default bgm source unavailable")
	}

	summarizer := recap.New(cfg.GeminiAPIKey, cfg.GeminiBaseURL, cfg.GeminiModel, log)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      api.NewServer(st, j, sy, pipeline, player, summarizer, log).Router(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", srv.Addr).Str("db", cfg.DBPath).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	if err := sy.Flush(context.Background()); err != nil {
		log.Error().Err(err).Msg("final flush")
	}
	sy.Stop()
}
