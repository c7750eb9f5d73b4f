package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avemarin/clinicbook/api"
	"github.com/avemarin/clinicbook/config"
	"github.com/avemarin/clinicbook/internal/auth"
	"github.com/avemarin/clinicbook/internal/bootstrap"
	"github.com/avemarin/clinicbook/internal/cache"
	"github.com/avemarin/clinicbook/internal/kafka"
	"github.com/avemarin/clinicbook/internal/notify"
	"github.com/avemarin/clinicbook/internal/repository"
	"github.com/avemarin/clinicbook/internal/service/appointment"
	"github.com/avemarin/clinicbook/internal/service/doctors"
	"github.com/avemarin/clinicbook/internal/service/reminder"
	"github.com/avemarin/clinicbook/internal/service/review"
	"github.com/jackc/pgx/v5/pgxpool"
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

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.DoctorsCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	publisher := notify.NewPublisher(producer, cfg.Kafka.ReminderTopic, cfg.Kafka.ReviewTopic, log)

	appointmentRepo := repository.NewAppointmentRepository(pool)
	doctorRepo := repository.NewDoctorRepository(pool)
	reviewRepo := repository.NewReviewRepository(pool)

	appointmentService := appointment.NewAppointmentService(
		appointmentRepo,
		doctorRepo,
		redisCache,
		publisher,
		time.Duration(cfg.Booking.SlotHoldTTLSeconds)*time.Second,
		log,
	)
	doctorService := doctors.NewDoctorService(doctorRepo, redisCache, log)
	reviewService := review.NewReviewService(reviewRepo)

	scheduler := reminder.NewScheduler(
		appointmentRepo,
		publisher,
		time.Duration(cfg.Scheduler.ReminderPeriodHours)*time.Hour,
		cfg.Scheduler.MaxReminders,
		log,
	)
	go scheduler.Run(ctx)

	verifier := auth.NewVerifier(cfg.Auth.JWTSecret)
	handlers := bootstrap.Handlers{
		Appointments: api.NewAppointmentHandler(appointmentService),
		Doctors:      api.NewDoctorHandler(doctorService),
		Reviews:      api.NewReviewHandler(reviewService),
	}

	if err := bootstrap.Run(ctx, cfg, verifier, handlers); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
