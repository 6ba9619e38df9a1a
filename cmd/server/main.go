package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/JDav117/Sports-Event-LIVE/internal/adapters/http"
	"github.com/JDav117/Sports-Event-LIVE/internal/app"
	"github.com/JDav117/Sports-Event-LIVE/internal/config"
	"github.com/JDav117/Sports-Event-LIVE/internal/core"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	registry := core.NewRegistry()
	audit := core.NewAuditSink(cfg.AuditCapacity)
	notifier := core.NewNotifier(registry)
	enrollments := app.NewEnrollmentStore()
	admission := &app.Admission{Authority: enrollments, Audit: audit}
	attendance := app.NewRecorder(registry, app.NewMemoryAttendanceStore(), cfg.MinAttendanceMinutes)

	gw := app.NewGateway(registry, admission, notifier, audit, attendance,
		map[core.LimitClass]core.LimitRule{
			core.LimitChat:         {Limit: cfg.ChatLimit, Window: cfg.ChatWindow},
			core.LimitSubstitution: {Limit: cfg.SubstitutionLimit, Window: cfg.SubstitutionWindow},
			core.LimitTimeout:      {Limit: cfg.TimeoutLimit, Window: cfg.TimeoutWindow},
		})

	r := router.SetupRouter(ctx, cfg, gw, enrollments)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Sports-Event-LIVE server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
