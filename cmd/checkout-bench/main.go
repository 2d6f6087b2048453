package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"sales-dashboard/internal/bench"
	"sales-dashboard/internal/catalog"
	"sales-dashboard/internal/checkout"
	"sales-dashboard/internal/config"
	"sales-dashboard/internal/sales"
	"sales-dashboard/internal/store"
)

// checkout-bench drives concurrent checkouts against a configured backend
// and reports throughput and latency percentiles. Useful for comparing the
// conditional-decrement behavior of the different store backends under
// contention.
func main() {
	var exitCode int
	defer func() {
		os.Exit(exitCode)
	}()

	configPath := flag.String("config", "config.yaml", "path to the config file")
	backend := flag.String("store", "", "override the store backend")
	concurrency := flag.Int("concurrency", 16, "number of concurrent sessions")
	duration := flag.Duration("duration", 10*time.Second, "duration of the run")
	stock := flag.Int("stock", 1_000_000, "seeded stock for the benchmark product")
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

	ctx := context.Background()
	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Printf("Failed to connect to %s store: %v", cfg.Store.Backend, err)
		exitCode = 1
		return
	}
	defer st.Close(context.Background())

	cat := catalog.NewService(st, cfg.Tenant)
	recorder := sales.NewRecorder(st, cfg.Tenant)
	engine := checkout.NewEngine(st, recorder, cfg.Tenant)

	customerID, err := cat.AddCustomer(ctx, catalog.Customer{
		Name:  "bench customer",
		Email: "bench@example.com",
		Phone: "0000000000",
	})
	if err != nil {
		log.Printf("Failed to seed customer: %v", err)
		exitCode = 1
		return
	}
	productID, err := cat.AddProduct(ctx, catalog.Product{
		Name:  "bench product",
		Price: 1000,
		Stock: *stock,
	})
	if err != nil {
		log.Printf("Failed to seed product: %v", err)
		exitCode = 1
		return
	}

	fmt.Printf("Running checkout benchmark on %s (concurrency=%d, duration=%s)...\n",
		cfg.Store.Backend, *concurrency, *duration)

	result := bench.Run(ctx, *concurrency, *duration, func(ctx context.Context) error {
		product, err := cat.GetProduct(ctx, productID)
		if err != nil {
			return err
		}
		session := checkout.NewSession()
		session.CustomerID = customerID
		if err := session.Cart.AddLine(product); err != nil {
			return err
		}
		_, err = engine.Checkout(ctx, session)
		return err
	})

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Printf("Failed to marshal result: %v", err)
		exitCode = 1
		return
	}
	fmt.Println(string(output))
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
