package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/synaptica-ai/trialmatch/pkg/common/config"
	"github.com/synaptica-ai/trialmatch/pkg/common/database"
	"github.com/synaptica-ai/trialmatch/pkg/common/kafka"
	"github.com/synaptica-ai/trialmatch/pkg/common/logger"
	"github.com/synaptica-ai/trialmatch/pkg/criteria"
	"github.com/synaptica-ai/trialmatch/pkg/matching"
	"github.com/synaptica-ai/trialmatch/pkg/patient"
	"github.com/synaptica-ai/trialmatch/pkg/profile"
)

func main() {
	logger.Init()
	cfg := config.Load()

	book, err := criteria.LoadPhrasebook(cfg.PhrasebookPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load phrasebook")
	}

	opts := []profile.Option{
		profile.WithCache(profile.NewCache(database.GetRedis(), cfg.ProfileCacheTTL)),
	}
	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Warn("PostgreSQL unavailable, profiles live in memory only")
	} else {
		repo := profile.NewRepository(db)
		if err := repo.AutoMigrate(); err != nil {
			logger.Log.WithError(err).Fatal("Failed to migrate profile table")
		}
		opts = append(opts, profile.WithRepository(repo))
	}
	defer database.ClosePostgres()
	defer database.CloseRedis()

	producer := kafka.NewProducer(cfg.ProfilesTopic)
	defer producer.Close()
	var dlq *kafka.Producer
	if cfg.ProfilesDLQTopic != "" {
		dlq = kafka.NewProducer(cfg.ProfilesDLQTopic)
		defer dlq.Close()
		opts = append(opts, profile.WithPublisher(producer, dlq))
	} else {
		opts = append(opts, profile.WithPublisher(producer, nil))
	}

	store := profile.NewStore()
	svc := profile.NewService(profile.NewBuilder(criteria.NewExtractor(book), cfg.ProfileBuildWorkers), store, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if catalog, err := svc.Load(ctx); err != nil {
		logger.Log.WithError(err).Warn("Failed to load persisted profiles, starting empty")
	} else {
		logger.Log.WithField("profiles", catalog.Len()).Info("Trial profiles loaded")
	}

	// Rebuilds done by the profile builder are picked up from the bus.
	consumer := kafka.NewConsumer(cfg.ProfilesTopic, cfg.KafkaGroupID+"-match")
	defer consumer.Close()
	go func() {
		if err := consumer.Consume(ctx, svc.HandleRebuiltEvent); err != nil && ctx.Err() == nil {
			logger.Log.WithError(err).Error("Profile event consumer stopped")
		}
	}()

	engine := matching.NewEngine(store, cfg.MatchPageSize)
	validator := patient.NewValidator(cfg.SanitizeMaxLength)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      newHandler(engine, validator, svc, store, cfg.MaxRequestBody),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Match Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Match Service...")
	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	logger.Log.Info("Match Service stopped")
}
