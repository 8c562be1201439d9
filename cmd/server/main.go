package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ledgerpost/internal/domain/auth"
	"ledgerpost/internal/domain/costing"
	"ledgerpost/internal/domain/documents/purchase"
	"ledgerpost/internal/domain/documents/purchasereturn"
	"ledgerpost/internal/domain/documents/salesinvoice"
	"ledgerpost/internal/domain/journal"
	"ledgerpost/internal/domain/masters/account"
	"ledgerpost/internal/domain/masters/item"
	"ledgerpost/internal/domain/masters/party"
	"ledgerpost/internal/domain/posting"
	"ledgerpost/internal/domain/registers/stock"
	v1 "ledgerpost/internal/infrastructure/http/v1"
	"ledgerpost/internal/infrastructure/http/v1/handlers"
	"ledgerpost/internal/infrastructure/storage/postgres"
	"ledgerpost/internal/infrastructure/storage/postgres/document_repo"
	"ledgerpost/internal/infrastructure/storage/postgres/journal_repo"
	"ledgerpost/internal/infrastructure/storage/postgres/master_repo"
	"ledgerpost/internal/infrastructure/storage/postgres/register_repo"
	"ledgerpost/internal/infrastructure/storage/postgres/sequence_repo"
	"ledgerpost/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "production") == "development",
	})
	if err != nil {
		panic(err)
	}
	ctx = logger.WithLogger(ctx, log)

	if err := run(ctx); err != nil {
		logger.Fatal(ctx, "server exited with error", "error", err)
	}
}

func run(ctx context.Context) error {
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		return err
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)

	// Repositories
	allocator := sequence_repo.NewAllocator(txManager)
	itemRepo := master_repo.NewItemRepo(txManager)
	partyRepo := master_repo.NewPartyRepo(txManager)
	accountRepo := master_repo.NewAccountRepo(txManager)
	stockRepo := register_repo.NewStockRepo(txManager)
	journalRepo := journal_repo.NewJournalRepo(txManager)
	purchaseRepo := document_repo.NewPurchaseRepo(txManager)
	salesRepo := document_repo.NewSalesInvoiceRepo(txManager)
	returnRepo := document_repo.NewPurchaseReturnRepo(txManager)

	// Domain services
	engine := posting.NewEngine(allocator)
	costingEngine := costing.NewEngine(itemRepo)
	stockService := stock.NewService(stockRepo, itemRepo)
	journalGen := journal.NewGenerator(journalRepo, allocator, account.NewResolver(accountRepo))

	purchaseService := purchase.NewService(purchaseRepo, partyRepo, txManager, engine, costingEngine, stockService)
	salesService := salesinvoice.NewService(salesRepo, partyRepo, txManager, engine, journalGen, stockService)
	returnService := purchasereturn.NewService(returnRepo, partyRepo, txManager, engine, journalGen, stockService)
	itemService := item.NewService(itemRepo, txManager)
	partyService := party.NewService(partyRepo, txManager)

	jwtService := auth.NewJWTService(
		mustEnv("JWT_SECRET"),
		getEnv("JWT_ISSUER", "ledgerpost"),
		getDurationEnv("JWT_TTL", 24*time.Hour),
	)

	router := v1.NewRouter(v1.Handlers{
		Purchase:       handlers.NewPurchaseHandler(purchaseService),
		SalesInvoice:   handlers.NewSalesInvoiceHandler(salesService),
		PurchaseReturn: handlers.NewPurchaseReturnHandler(returnService),
		Item:           handlers.NewItemHandler(itemService, stockService),
		Party:          handlers.NewPartyHandler(partyService),
		Journal:        handlers.NewJournalHandler(journalRepo),
		Health:         handlers.NewHealthHandler(pool.Unwrap()),
	}, jwtService)

	server := &http.Server{
		Addr:              ":" + getEnv("PORT", "8080"),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	postgres.LogPoolStats(ctx, pool.Unwrap())
	logger.Info(ctx, "server stopped")
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic("required environment variable not set: " + key)
	}
	return v
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
