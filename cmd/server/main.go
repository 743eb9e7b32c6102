package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/storemailer/internal/api"
	"github.com/ignite/storemailer/internal/automation"
	"github.com/ignite/storemailer/internal/config"
	"github.com/ignite/storemailer/internal/mailer"
	"github.com/ignite/storemailer/internal/metastore"
	"github.com/ignite/storemailer/internal/pkg/logger"
	"github.com/ignite/storemailer/internal/platform"
	"github.com/ignite/storemailer/internal/store"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if *debug || os.Getenv("DEBUG") == "true" {
		logger.SetLevel(logger.DEBUG)
	}

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		// Missing secrets stop the process here. Serving with a broken
		// verifier would turn every trigger into a 401.
		log.Fatalf("invalid config: %v", err)
	}

	ctx := context.Background()

	meta, err := metastore.NewDynamoDB(ctx, cfg.Metastore)
	if err != nil {
		log.Fatalf("connecting metadata store: %v", err)
	}

	sender, err := mailer.NewSESSender(ctx, cfg.SES)
	if err != nil {
		log.Fatalf("initializing SES sender: %v", err)
	}

	settings := store.NewSettings(meta)
	activity := store.NewActivity(meta)
	engine := automation.New(cfg, settings,
		store.NewCampaigns(meta), activity, store.NewSentSet(meta),
		platform.New(cfg.Platform), sender)

	srv, err := api.New(cfg, engine, settings, activity)
	if err != nil {
		log.Fatalf("building server: %v", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown incomplete", "error", err)
		}
	}
}
