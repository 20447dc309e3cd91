package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/devchat-app/devchat/backend/internal/config"
	"github.com/devchat-app/devchat/backend/internal/handler"
	"github.com/devchat-app/devchat/backend/internal/logging"
	"github.com/devchat-app/devchat/backend/internal/model/persona"
	"github.com/devchat-app/devchat/backend/internal/service/ai"
	chatservice "github.com/devchat-app/devchat/backend/internal/service/chat"
	"github.com/devchat-app/devchat/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer logging.Sync()

	if err := godotenv.Load(); err != nil {
		logging.L().Info("no .env file found, using system environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.L().Fatal("failed to load configuration", zap.Error(err))
	}

	personaStore := persona.NewMemoryStore(persona.Seed())

	// Missing credential routes the whole application into the
	// configuration-required state: no completion calls, no storage writes.
	configured := cfg.AI.Enabled()
	if !configured {
		logging.L().Warn("completion credential missing, entering configuration-required mode",
			zap.String("provider", cfg.AI.Provider),
		)
	}

	var kv store.KV = store.NewMemoryKV()
	if configured {
		sqliteKV, err := store.NewSQLiteKV(cfg.Storage.Path)
		if err != nil {
			logging.L().Warn("failed to open local storage, continuing memory-only", zap.Error(err))
		} else {
			defer sqliteKV.Close()
			kv = sqliteKV
		}
	}
	sessionStore := store.NewSessionStore(kv, configured, logging.L())

	var completer chatservice.Completer
	if configured {
		provider, err := ai.NewProvider(ctx, cfg.AI)
		if err != nil {
			logging.L().Fatal("failed to initialize completion provider", zap.Error(err))
		}
		completer = ai.NewService(provider, logging.L())
		logging.L().Info("completion provider initialized", zap.String("provider", cfg.AI.Provider))
	}

	controller := chatservice.NewController(personaStore, completer, sessionStore, logging.L())

	router := handler.NewRouter(personaStore, controller)
	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logging.L().Info("devchat backend listening", zap.String("addr", serverCfg.Addr))
	if err := runServer(ctx, srv); err != nil {
		logging.L().Fatal("server error", zap.Error(err))
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
