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
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/quiz-night-backend/internal/broadcast"
	"github.com/DoyleJ11/quiz-night-backend/internal/catalog"
	"github.com/DoyleJ11/quiz-night-backend/internal/httpapi"
	"github.com/DoyleJ11/quiz-night-backend/internal/hub"
	"github.com/DoyleJ11/quiz-night-backend/internal/logging"
	"github.com/DoyleJ11/quiz-night-backend/internal/natsbridge"
)

const releaseVersion = "0.1.0"

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{}
	cobra.CheckErr(newCmd(cfg).Execute())
}

func serve(parent context.Context, cfg *Config) error {
	log, err := logging.New(cfg.verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := httpapi.Deps{
		PublicURL:      cfg.publicURL,
		AllowedOrigins: cfg.allowedOrigins,
		Logger:         log,
	}

	var store *catalog.Store
	if cfg.databaseURL != "" {
		db, err := catalog.OpenPostgres(cfg.databaseURL)
		if err != nil {
			return err
		}
		store = catalog.NewStore(db)
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		deps.Games = store
		log.Info("game catalog enabled")
	}

	hubOpts := hub.Options{AutoAdvance: cfg.autoAdvance, Logger: log}
	if cfg.natsURL != "" {
		nc, err := natsbridge.Connect(cfg.natsURL, log)
		if err != nil {
			return err
		}
		defer nc.Drain()
		hubOpts.Mirror = func(code string) broadcast.Transport {
			return natsbridge.NewTransport(nc, code)
		}
		log.Info("mirroring displays to NATS", zap.String("url", nc.ConnectedUrl()))
	}

	deps.Hub = hub.NewHub(ctx, hubOpts)

	for _, path := range cfg.preload {
		def, err := catalog.LoadFile(path)
		if err != nil {
			return err
		}
		if store != nil {
			if def, err = store.Save(ctx, def); err != nil {
				return err
			}
		}
		code, err := httpapi.StartSession(deps.Hub, def, cfg.theme)
		if err != nil {
			return err
		}
		log.Info("session ready", zap.String("file", path), zap.String("code", code), zap.String("name", def.Name))
	}

	srv := &http.Server{
		Addr:              cfg.addr(),
		Handler:           httpapi.SetupRoutes(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		deps.Hub.Inbox() <- hub.ShutdownHub{}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
