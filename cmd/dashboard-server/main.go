package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"sales-dashboard/internal/catalog"
	"sales-dashboard/internal/checkout"
	"sales-dashboard/internal/config"
	"sales-dashboard/internal/sales"
	"sales-dashboard/internal/server"
	"sales-dashboard/internal/store"
)

func main() {
	var exitCode int
	defer func() {
		os.Exit(exitCode)
	}()

	configPath := flag.String("config", "config.yaml", "path to the config file")
	backend := flag.String("store", "", "override the store backend (mongo, postgres, mysql, or memory)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		exitCode = 1
		return
	}
	if *backend != "" {
		cfg.Store.Backend = *backend
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	st, err := openStore(ctx, cfg)
	cancel()
	if err != nil {
		log.Printf("Failed to connect to %s store: %v", cfg.Store.Backend, err)
		exitCode = 1
		return
	}
	defer st.Close(context.Background())

	inst := store.Instrument(st)
	cat := catalog.NewService(inst, cfg.Tenant)
	recorder := sales.NewRecorder(inst, cfg.Tenant)
	engine := checkout.NewEngine(inst, recorder, cfg.Tenant)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.New(cat, recorder, engine, inst, cfg.Server.AuthToken).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("dashboard-server listening on %s (tenant=%s, store=%s)",
		cfg.Server.Addr, cfg.Tenant, cfg.Store.Backend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("http server error: %v", err)
		exitCode = 1
		return
	}
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "mongo":
		return store.NewMongoStore(ctx, cfg.Store.Mongo.URI, cfg.Store.Mongo.Database, cfg.Store.ParsedPollInterval())
	case "postgres":
		return store.NewPostgresStore(ctx, cfg.Store.Postgres, cfg.Store.ParsedPollInterval())
	case "mysql":
		return store.NewMySQLStore(ctx, cfg.Store.MySQL, cfg.Store.ParsedPollInterval())
	default:
		return store.NewMemoryStore(), nil
	}
}
