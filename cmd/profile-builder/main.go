package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/synaptica-ai/trialmatch/pkg/common/config"
	"github.com/synaptica-ai/trialmatch/pkg/common/database"
	"github.com/synaptica-ai/trialmatch/pkg/common/kafka"
	"github.com/synaptica-ai/trialmatch/pkg/common/logger"
	"github.com/synaptica-ai/trialmatch/pkg/criteria"
	"github.com/synaptica-ai/trialmatch/pkg/observability/metrics"
	"github.com/synaptica-ai/trialmatch/pkg/profile"
)

const port = "8085"

func main() {
	logger.Init()
	cfg := config.Load()

	book, err := criteria.LoadPhrasebook(cfg.PhrasebookPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load phrasebook")
	}

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres()
	repo := profile.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("Failed to migrate profile table")
	}
	defer database.CloseRedis()

	producer := kafka.NewProducer(cfg.ProfilesTopic)
	defer producer.Close()
	opts := []profile.Option{
		profile.WithRepository(repo),
		profile.WithCache(profile.NewCache(database.GetRedis(), cfg.ProfileCacheTTL)),
		profile.WithPublisher(producer, nil),
	}
	if cfg.ProfilesDLQTopic != "" {
		dlq := kafka.NewProducer(cfg.ProfilesDLQTopic)
		defer dlq.Close()
		opts[2] = profile.WithPublisher(producer, dlq)
	}

	svc := profile.NewService(
		profile.NewBuilder(criteria.NewExtractor(book), cfg.ProfileBuildWorkers),
		profile.NewStore(),
		opts...,
	)

	consumer := kafka.NewConsumer(cfg.CorpusTopic, cfg.KafkaGroupID+"-profile-builder")
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := consumer.Consume(ctx, svc.HandleCorpusEvent); err != nil && ctx.Err() == nil {
			logger.Log.WithError(err).Fatal("Consumer error")
		}
	}()

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.ServerHost, port),
		Handler: router,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host":  cfg.ServerHost,
			"port":  port,
			"topic": cfg.CorpusTopic,
		}).Info("Profile Builder started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Profile Builder...")
	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	logger.Log.Info("Profile Builder stopped")
}
