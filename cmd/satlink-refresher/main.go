package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"satlink/internal/catalog"
	"satlink/internal/config"
	"satlink/internal/export"
	"satlink/internal/listener"
	"satlink/internal/names"
	"satlink/internal/sources"
	"satlink/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	canon, err := names.Load(cfg.RulesPath)
	must(err)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	logger := log.New(os.Stderr, "satlink ", log.LstdFlags)
	store := catalog.NewStore(canon)
	if idx, err := catalog.Restore(db, store); err != nil {
		logger.Printf("restore failed, starting empty: %v", err)
	} else {
		logger.Printf("restored %d satellites", idx.Len())
	}

	svc := catalog.NewRefreshService(db, store, sources.FromConfig(cfg, sources.NewClient(cfg)), cfg, logger)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.RefreshAutoPublish {
		pub, err := export.NewPublisher(ctx, cfg)
		must(err)
		svc.WithPublisher(pub)
	}

	l := listener.NewService(db, svc, time.Duration(cfg.RefreshIntervalMin)*time.Minute, logger)
	must(l.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
