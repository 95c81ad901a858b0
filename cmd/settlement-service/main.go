package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/langitpay/settlement-service/internal/config"
	deliveryhttp "github.com/langitpay/settlement-service/internal/delivery/http"
	"github.com/langitpay/settlement-service/internal/delivery/http/handlers"
	"github.com/langitpay/settlement-service/internal/infrastructure/billpay"
	"github.com/langitpay/settlement-service/internal/infrastructure/chain"
	"github.com/langitpay/settlement-service/internal/infrastructure/custody"
	"github.com/langitpay/settlement-service/internal/infrastructure/exchange"
	"github.com/langitpay/settlement-service/internal/infrastructure/fiat"
	"github.com/langitpay/settlement-service/internal/infrastructure/kafka"
	"github.com/langitpay/settlement-service/internal/infrastructure/metrics"
	"github.com/langitpay/settlement-service/internal/infrastructure/migrate"
	"github.com/langitpay/settlement-service/internal/infrastructure/postgres"
	"github.com/langitpay/settlement-service/internal/infrastructure/postgres/repository"
	usecase "github.com/langitpay/settlement-service/internal/usecase/transaction"
	"github.com/langitpay/settlement-service/internal/usecase/worker"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()
	// Init database
	db := postgres.MustInitDB(cfg)

	if err := migrate.RunMigrations(db, cfg.SettlementDB.MigrationPath); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Init repositories
	transactionRepo := repository.NewDefaultTransactionRepository(db)
	chainTxRepo := repository.NewDefaultChainTransactionRepository(db)
	exchangeRepo := repository.NewDefaultExchangeRepository(db)
	accountRepo := repository.NewDefaultAccountRepository(db)
	tokenRepo := repository.NewDefaultTokenRepository(db)

	// Init rail clients
	chainClient := chain.NewBundlerClient(cfg.ChainService.BundlerURL)
	fiatClient := fiat.NewWalletClient(
		cfg.WalletService.BaseURL,
		cfg.WalletService.APIKey,
		cfg.WalletService.PullingAccountID,
	)
	exchangeClient := exchange.NewVenueClient(
		cfg.ExchangeService.BaseURL,
		cfg.ExchangeService.APIKey,
		cfg.ExchangeService.APISecret,
		cfg.ExchangeService.Market,
	)
	billpayClient := billpay.NewPPOBClient(
		cfg.BillpayService.BaseURL,
		cfg.BillpayService.Username,
		cfg.BillpayService.APIKey,
	)
	custodyClient := custody.NewCustodyClient(cfg.CustodyService.BaseURL)

	brokers := []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}
	kafkaPublisher := kafka.NewKafkaPublisher(brokers, cfg.KafkaService.Topic)

	settlementMetrics := metrics.NewSettlementMetrics()

	// Init transaction usecase
	uc := usecase.NewDefaultTransactionUsecase(
		transactionRepo,
		chainTxRepo,
		exchangeRepo,
		accountRepo,
		tokenRepo,
		chainClient,
		fiatClient,
		exchangeClient,
		billpayClient,
		custodyClient,
		cfg.Custody,
		kafkaPublisher,
		settlementMetrics,
	)

	// Reconciliation worker
	reconciler := worker.NewReconciler(
		uc,
		chainTxRepo,
		exchangeRepo,
		accountRepo,
		chainClient,
		exchangeClient,
		settlementMetrics,
		cfg.Reconciler.Interval,
		cfg.Reconciler.BatchSize,
		cfg.Reconciler.PendingWindow,
	)
	go reconciler.Run(context.Background())

	transactionHandler := handlers.NewTransactionHandler(uc)
	router := deliveryhttp.NewRouter(transactionHandler)

	addr := fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port)
	log.Printf("HTTP server started on %s\n", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("failed to run http server: %v", err)
	}
}
