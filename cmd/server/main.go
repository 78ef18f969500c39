package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"

	"github.com/andy6609/roomchat/internal/chat"
	"github.com/andy6609/roomchat/internal/config"
	"github.com/andy6609/roomchat/internal/opshttp"
	"github.com/andy6609/roomchat/internal/store"
	gfshutdown "github.com/gelmium/graceful-shutdown"
)

func main() {
	cfg := config.Load()

	addr := flag.String("addr", cfg.Addr, "chat listen address")
	metricsAddr := flag.String("metrics-addr", cfg.MetricsAddr, "ops HTTP listen address (empty disables)")
	defaultRoom := flag.String("default-room", cfg.DefaultRoom, "default room every session joins")
	dbPath := flag.String("db", cfg.DBPath, "SQLite chat log path (empty disables persistence)")
	logLevel := flag.String("log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	flag.Parse()

	cfg.ApplyFlags(config.Flags{
		Addr:        *addr,
		MetricsAddr: *metricsAddr,
		DefaultRoom: *defaultRoom,
		DBPath:      *dbPath,
		LogLevel:    *logLevel,
	})

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	var recorder chat.Recorder = chat.NopRecorder{}
	var closeStore func(ctx context.Context) error
	if cfg.DBPath != "" {
		db, err := store.Open(cfg.DBPath)
		if err != nil {
			logger.Error("failed to open chat log store", "path", cfg.DBPath, "error", err)
			os.Exit(1)
		}
		rec := store.NewRecorder(store.NewRepository(db), logger, cfg.PersistTimeout)
		recorder = rec
		closeStore = func(ctx context.Context) error {
			err := rec.Close(ctx)
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				err = errors.Join(err, sqlDB.Close())
			}
			return err
		}
		logger.Info("chat log persistence enabled", "path", cfg.DBPath)
	}

	srv := chat.NewServer(chat.ServerConfig{
		Addr:           cfg.Addr,
		OutboundBuffer: cfg.OutboundBuffer,
		Hub: chat.HubConfig{
			DefaultRoom:      cfg.DefaultRoom,
			MaxMessageLength: cfg.MaxMessageLength,
			Recorder:         recorder,
		},
		Session: chat.SessionOptions{
			IdleTimeout:  cfg.IdleTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}, logger)
	if err := srv.Start(); err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}

	ops := map[string]gfshutdown.Operation{
		"chat": func(ctx context.Context) error {
			err := srv.Stop(ctx)
			if closeStore != nil {
				err = errors.Join(err, closeStore(ctx))
			}
			return err
		},
	}

	if cfg.MetricsAddr != "" {
		httpSrv := opshttp.NewServer(cfg.MetricsAddr, opshttp.NewRouter(srv.Hub(), logger))
		go func() {
			logger.Info("ops http listening", "addr", cfg.MetricsAddr)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("ops http server failed", "error", err)
			}
		}()
		ops["ops-http"] = httpSrv.Shutdown
	}

	wait := gfshutdown.GracefulShutdown(context.Background(), cfg.ShutdownTimeout, ops)
	exitCode := <-wait
	logger.Info("exited", "code", exitCode)
	os.Exit(exitCode)
}
