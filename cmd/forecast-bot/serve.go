package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	commonhttp "forecast-bot/internal/common/http"
	"forecast-bot/internal/common/logger"
	"forecast-bot/internal/common/observability"
	"forecast-bot/internal/dialog"
	"forecast-bot/internal/transport/telegram"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the chat bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.RequireTelegram(); err != nil {
				return err
			}

			zapLog := logger.NewRotating(cfg.Logging.Level, cfg.Logging.Format, logger.FileOptions{Path: cfg.Logging.File})
			defer zapLog.Sync()
			zapLog.Info("Starting forecast bot...",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
				zap.String("factsBackend", cfg.Facts.Backend),
			)

			obs := observability.New(cfg.App.Name)
			defer obs.Shutdown()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, zapLog, 10)
			if err != nil {
				return err
			}
			defer a.Close()

			var ready atomic.Bool
			srv := newHealthServer(cfg.Metrics.Address, &ready)
			go func() {
				zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Metrics.Address))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					zapLog.Error("Health/Metrics server failed", zap.Error(err))
				}
			}()

			sessions := dialog.NewMemoryStore(
				time.Duration(cfg.Session.TTL)*time.Minute,
				time.Duration(cfg.Session.CleanupInterval)*time.Minute,
			)
			machine := dialog.NewMachine(a.resolver, a.assembler, sessions, a.log)

			client := commonhttp.NewClient(time.Duration(cfg.Telegram.APITimeout)*time.Millisecond, cfg.App.Name+"/"+cfg.App.Version)
			var bot *telegram.Bot
			err = retryWithBackoff(func() error {
				var err error
				bot, err = telegram.New(&telegram.Config{
					Token:       cfg.Telegram.Token,
					PollTimeout: cfg.Telegram.PollTimeout,
					Debug:       cfg.Telegram.Debug,
				}, client, machine, obs, a.log)
				return err
			}, 5, 2*time.Second, zapLog, "Chat API authorization")
			if err != nil {
				return err
			}
			if err := bot.RegisterCommands(); err != nil {
				zapLog.Warn("Failed to register bot commands", zap.Error(err))
			}

			ready.Store(true)
			bot.Run(ctx)

			// --- Graceful Shutdown ---
			zapLog.Info("Shutdown signal received, stopping bot...")
			ready.Store(false)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				zapLog.Error("Error stopping health server", zap.Error(err))
			}

			zapLog.Info("Forecast bot stopped gracefully", zap.Int("openSessions", sessions.Len()))
			return nil
		},
	}
}

func newHealthServer(addr string, ready *atomic.Bool) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if !ready.Load() {
			writeStatus(w, http.StatusServiceUnavailable, "starting")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}
