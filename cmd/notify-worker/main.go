package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"ewaste-pickup/internal/config"
	"ewaste-pickup/internal/kafka"
	"ewaste-pickup/internal/logger"
	"ewaste-pickup/internal/notify"
)

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting notification worker")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	}
	cfg := config.Load()

	worker := notify.NewWorker(notify.NewMailer(cfg.Email), log)

	orderConsumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.OrderEvents, cfg.Kafka.GroupID)
	ticketConsumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.TicketEvents, cfg.Kafka.GroupID)
	defer orderConsumer.Close()
	defer ticketConsumer.Close()

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		orderConsumer.Start(ctx, worker.Handle)
	}()
	go func() {
		defer wg.Done()
		ticketConsumer.Start(ctx, worker.Handle)
	}()

	log.Info("APP", "Notification worker consuming order and ticket events")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("APP", "Shutdown signal received, stopping consumers")
	cancel()
	wg.Wait()
	log.Info("APP", "Shutdown complete")
}
