package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"vishwaspatra/internal/config"
	"vishwaspatra/internal/contentstore"
	"vishwaspatra/internal/httpapi"
	"vishwaspatra/internal/ledger"
	"vishwaspatra/internal/logger"
	"vishwaspatra/internal/messaging"
	"vishwaspatra/internal/metrics"
	"vishwaspatra/internal/renderer"
	"vishwaspatra/internal/repository"
	"vishwaspatra/internal/service"
)

func runMigrations(db *pgxpool.Pool, log *zap.Logger) error {
	log.Info("Running database migrations")

	migrationsDir := "migrations"
	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrationFiles []string
	for _, file := range files {
		if strings.HasSuffix(file.Name(), ".sql") {
			migrationFiles = append(migrationFiles, file.Name())
		}
	}

	sort.Strings(migrationFiles)

	for _, filename := range migrationFiles {
		log.Info("Running migration", zap.String("file", filename))

		content, err := os.ReadFile(filepath.Join(migrationsDir, filename))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", filename, err)
		}

		_, err = db.Exec(context.Background(), string(content))
		if err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", filename, err)
		}

		log.Info("Migration completed", zap.String("file", filename))
	}

	log.Info("All migrations completed successfully")
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting VishwasPatra certificate service")

	db, err := pgxpool.New(context.Background(), cfg.DatabaseDSN())
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	log.Info("Connected to database")

	if err := runMigrations(db, log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS.URL, log)
	if err != nil {
		log.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer natsClient.Close()

	log.Info("Connected to NATS")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.New(registry)

	certificateRepo := repository.NewCertificateRepository(db, log)
	registryRepo := repository.NewRegistryRepository(db, log)
	collegeRepo := repository.NewCollegeRepository(db, log)

	render := renderer.NewBrowserlessRenderer(cfg.Renderer.BaseURL, cfg.Renderer.Token, cfg.Renderer.Timeout, log)
	store := contentstore.NewPinataStore(cfg.Pinata.JWT, cfg.Pinata.Gateway, log)
	chain := ledger.NewHTTPClient(ledger.Config{
		BaseURL:     cfg.Ledger.BaseURL,
		APIKey:      cfg.Ledger.APIKey,
		MintAmount:  cfg.Ledger.MintAmount,
		MaxAttempts: cfg.Ledger.MaxAttempts,
		RetryDelay:  cfg.Ledger.RetryDelay,
	}, log)

	verificationService := service.NewVerificationService(certificateRepo, registryRepo, m, log)
	issuanceService := service.NewIssuanceService(
		render, store, chain,
		certificateRepo, registryRepo, collegeRepo,
		natsClient, m, cfg.Verification.BaseURL, log)
	sbtService := service.NewCollegeSBTService(render, store, chain, collegeRepo, log)

	err = natsClient.SubscribeCertificateIssued(context.Background(), func(event *messaging.CertificateIssuedEvent) {
		log.Info("Certificate issued",
			zap.String("event_id", event.EventID),
			zap.String("college_id", event.CollegeID),
			zap.String("student_id", event.StudentID),
			zap.String("composite_hash", event.CompositeHash))
	})
	if err != nil {
		log.Error("Failed to subscribe to certificate issued events", zap.Error(err))
	}

	handler := httpapi.NewHandler(issuanceService, verificationService, sbtService, collegeRepo, log)
	router := handler.Router(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:    cfg.ServerAddr(),
		Handler: router,
	}

	log.Info("Starting server", zap.String("address", server.Addr))

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}
