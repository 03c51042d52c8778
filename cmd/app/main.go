package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"github.com/Conte777/MemberFlow/config"
	httpDelivery "github.com/Conte777/MemberFlow/internal/delivery/http"
	"github.com/Conte777/MemberFlow/internal/domain"
	"github.com/Conte777/MemberFlow/internal/infrastructure/database"
	httpServer "github.com/Conte777/MemberFlow/internal/infrastructure/http/server"
	kafkaInfra "github.com/Conte777/MemberFlow/internal/infrastructure/kafka"
	"github.com/Conte777/MemberFlow/internal/infrastructure/logger"
	"github.com/Conte777/MemberFlow/internal/infrastructure/metrics"
	"github.com/Conte777/MemberFlow/internal/infrastructure/telegram"
	"github.com/Conte777/MemberFlow/internal/participants"
	"github.com/Conte777/MemberFlow/internal/repository/memory"
	"github.com/Conte777/MemberFlow/internal/repository/postgres"
	"github.com/Conte777/MemberFlow/internal/usecase"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// 2. Initialize logger
	log := logger.New(cfg.Logging.Level)
	log.Info().
		Str("service", cfg.Service.Name).
		Str("port", cfg.Service.Port).
		Msg("Starting member service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Connect to Telegram
	log.Info().Msg("Initializing Telegram client...")
	client, err := telegram.NewMTProtoClient(telegram.MTProtoClientConfig{
		APIID:       cfg.Telegram.APIID,
		APIHash:     cfg.Telegram.APIHash,
		PhoneNumber: cfg.Telegram.PhoneNumber,
		SessionDir:  cfg.Telegram.SessionDir,
		Logger:      log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Telegram client")
	}

	connectCtx, connectCancel := context.WithTimeout(ctx, cfg.Telegram.ConnectTimeout)
	if err := client.Connect(connectCtx); err != nil {
		connectCancel()
		log.Fatal().Err(err).Msg("Failed to connect to Telegram")
	}
	connectCancel()

	// 4. Build the enumeration stack
	m := metrics.GetDefaultMetrics()
	executor := telegram.NewRPCExecutor(client, m, log)
	resolver := telegram.NewResolver(client, log)
	participantService := participants.NewService(executor, log)

	// 5. Initialize snapshot repository
	var snapshotRepo domain.SnapshotRepository
	var db *gorm.DB
	if cfg.Database.Enabled {
		log.Info().Msg("Initializing PostgreSQL snapshot repository...")
		db, err = database.NewPostgresDB(&cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		snapshotRepo, err = postgres.NewSnapshotRepository(db)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize snapshot repository")
		}
	} else {
		log.Info().Msg("Database disabled, using in-memory snapshot repository")
		snapshotRepo = memory.NewSnapshotRepository()
	}

	// 6. Initialize Kafka producer when enabled
	var producer domain.EventProducer
	if cfg.Kafka.Enabled {
		log.Info().Msg("Validating Kafka brokers availability...")
		if err := kafkaInfra.ValidateBrokers(cfg.Kafka.Brokers); err != nil {
			log.Fatal().Err(err).Msg("Kafka brokers are not available")
		}

		producer, err = kafkaInfra.NewCensusProducer(kafkaInfra.ProducerConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			Logger:  log,
			Metrics: m,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Kafka producer")
		}
	} else {
		log.Info().Msg("Kafka disabled, census events will not be published")
	}

	// 7. Initialize use case
	censusUseCase := usecase.NewCensusUseCase(resolver, participantService, snapshotRepo, producer, m, log)

	// 8. Initialize HTTP server
	log.Info().Msg("Initializing HTTP server...")
	srv := httpServer.NewServer(cfg.Service.Port, log)
	srv.RegisterMetrics()

	participantHandler := httpDelivery.NewParticipantHandler(censusUseCase, &cfg.Census, log)
	healthHandler := httpDelivery.NewHealthHandler(httpDelivery.HealthHandlerParams{
		Client:   client,
		Producer: producer,
		Logger:   log,
	})
	router := httpDelivery.NewRouter(participantHandler, healthHandler, log)
	router.RegisterRoutes(srv.Router)

	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start HTTP server")
	}

	// 9. Start periodic census scheduler
	scheduler := usecase.NewCensusScheduler(censusUseCase, &cfg.Census, log)
	scheduler.Start(ctx)

	log.Info().Msg("Member service initialized successfully")

	// Wait for interrupt signal for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info().Msg("Received shutdown signal, starting graceful shutdown...")

	cancel()

	// Explicit shutdown sequence (not using defer to control order)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// 1. Stop the census scheduler (no new enumerations)
	scheduler.Stop(shutdownCtx)

	// 2. Shutdown HTTP server (stop accepting new requests)
	log.Info().Msg("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error shutting down HTTP server")
	}

	// 3. Close Kafka producer (flush pending events)
	if producer != nil {
		log.Info().Msg("Closing Kafka producer...")
		if err := producer.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing Kafka producer")
		}
	}

	// 4. Close database connection
	if db != nil {
		log.Info().Msg("Closing database connection...")
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing database connection")
			}
		}
	}

	// 5. Disconnect from Telegram
	log.Info().Msg("Disconnecting from Telegram...")
	if err := client.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error disconnecting from Telegram")
	}

	log.Info().Msg("Member service stopped successfully")
}
