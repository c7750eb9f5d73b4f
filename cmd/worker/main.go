package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/avemarin/clinicbook/config"
	"github.com/avemarin/clinicbook/internal/email"
	"github.com/avemarin/clinicbook/internal/kafka"
	"github.com/avemarin/clinicbook/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	sender := email.NewSender(cfg.Mail)
	sendTimeout := time.Duration(cfg.Worker.SendTimeoutSeconds) * time.Second

	reminderConsumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.ReminderTopic)
	defer reminderConsumer.Close()
	reviewConsumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.ReviewTopic)
	defer reviewConsumer.Close()

	workers := []*worker.Worker{
		worker.New(reminderConsumer, producer, sender,
			cfg.Kafka.ReminderTopic, cfg.Kafka.DeadLetterTopic, "Appointment Confirmation Reminder",
			cfg.Worker.MaxAttempts, sendTimeout, log),
		worker.New(reviewConsumer, producer, sender,
			cfg.Kafka.ReviewTopic, cfg.Kafka.DeadLetterTopic, "We Value Your Feedback",
			cfg.Worker.MaxAttempts, sendTimeout, log),
	}

	var wg sync.WaitGroup
	for _, w := range workers {
		wg.Add(1)
		go func(w *worker.Worker) {
			defer wg.Done()
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("worker stopped")
			}
		}(w)
	}

	<-ctx.Done()
	log.Info().Msg("shutting down, draining in-flight messages")
	wg.Wait()
}
