package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"alcyxob/gym-platform/internal/api"
	"alcyxob/gym-platform/internal/config"
	"alcyxob/gym-platform/internal/datetime"
	"alcyxob/gym-platform/internal/domain"
	"alcyxob/gym-platform/internal/email"
	"alcyxob/gym-platform/internal/events"
	"alcyxob/gym-platform/internal/lock"
	"alcyxob/gym-platform/internal/logger"
	"alcyxob/gym-platform/internal/repository"
	"alcyxob/gym-platform/internal/repository/memory"
	"alcyxob/gym-platform/internal/repository/mongo"
	"alcyxob/gym-platform/internal/scheduler"
	"alcyxob/gym-platform/internal/service"
	"alcyxob/gym-platform/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type stores struct {
	users          repository.UserRepository
	coaches        repository.CoachRepository
	workouts       repository.WorkoutRepository
	clientFeedback repository.FeedbackRepository
	coachFeedback  repository.FeedbackRepository
	close          func()
}

// @title Gym Booking API
// @version 1.0
// @description Coach discovery, workout booking, feedback and reporting.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	logger.Init()
	logger.Info("Starting Gym Platform Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Fatal("could not load config", "error", err)
	}
	if cfg.Server.Mode == gin.DebugMode {
		logger.InitWithLevel(slog.LevelDebug)
	}
	gin.SetMode(cfg.Server.Mode)

	loc := cfg.Schedule.Location()
	clock := datetime.NewSystemClock(loc)
	logger.Info("Configuration loaded.", "timezone", loc.String(), "driver", cfg.Database.Driver)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Stores ---
	st, err := openStores(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("could not open stores", "error", err)
	}
	defer st.close()

	// --- Optional infrastructure ---
	var fileStorage storage.FileStorage
	if cfg.S3.Enabled() {
		fileStorage, err = storage.NewS3Storage(ctx, cfg.S3)
		if err != nil {
			logger.Fatal("failed to initialize S3 storage", "error", err)
		}
	} else {
		logger.Warn("S3 not configured: avatar uploads and report archiving disabled")
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		logger.Info("Publishing domain events to Kafka", "topic", cfg.Kafka.Topic)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.WithError(err).Warn("failed to close event publisher")
		}
	}()

	var (
		locker lock.Locker
		mailer scheduler.Mailer
	)
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to connect to redis", "addr", cfg.Redis.Addr, "error", err)
		}
		locker = lock.NewRedisLock(rdb)

		if cfg.SMTP.Host != "" {
			emailService := email.New(cfg.SMTP, rdb)
			go emailService.Start(ctx)
			mailer = emailService
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.WithError(err).Warn("failed to close redis client")
			}
		}()
	} else {
		logger.Warn("Redis not configured: weekly reports are not mailed and run locking is process-local")
	}

	// --- Services ---
	authService := service.NewAuthService(st.users, st.coaches, cfg.JWT.Secret, cfg.JWT.Expiration)
	if err := authService.EnsureAdmin(ctx, cfg.Schedule.AdminEmail, cfg.Server.AdminPassword); err != nil {
		logger.Fatal("failed to seed admin account", "error", err)
	}
	reportService := service.NewReportService(st.coaches, st.workouts, st.clientFeedback, loc, cfg.Schedule.GymLocation)

	weekly := scheduler.New(reportService, mailer, fileStorage, locker, cfg.Schedule, clock)
	if err := weekly.Start(); err != nil {
		logger.Fatal("failed to start weekly scheduler", "error", err)
	}

	services := api.Services{
		Auth:         authService,
		Coaches:      service.NewCoachService(st.coaches, fileStorage, clock),
		Availability: service.NewAvailabilityService(st.coaches, st.workouts, clock),
		Booking:      service.NewBookingService(st.workouts, st.coaches, clock, publisher),
		Feedback:     service.NewFeedbackService(st.workouts, st.clientFeedback, st.coachFeedback, st.users, clock, publisher),
		Reports:      reportService,
		Weekly:       weekly,
	}

	// --- HTTP ---
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, cfg.JWT.Secret, services, cfg.RateLimit)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("ListenAndServe error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}
	weekly.Stop(ctxShutdown)

	logger.Info("Server exiting.")
}

func openStores(ctx context.Context, cfg config.DatabaseConfig) (*stores, error) {
	if cfg.Driver == "memory" {
		logger.Warn("Using in-memory stores; data is lost on restart")
		return &stores{
			users:          memory.NewUserRepository(),
			coaches:        memory.NewCoachRepository(),
			workouts:       memory.NewWorkoutRepository(),
			clientFeedback: memory.NewFeedbackRepository(domain.RoleClient),
			coachFeedback:  memory.NewFeedbackRepository(domain.RoleCoach),
			close:          func() {},
		}, nil
	}

	client, err := mongo.ConnectDB(cfg.URI)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.Name)

	indexCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	if err := mongo.EnsureIndexes(indexCtx, db); err != nil {
		_ = mongo.DisconnectDB(client)
		return nil, err
	}
	logger.Info("Database connection established.", "database", cfg.Name)

	return &stores{
		users:          mongo.NewMongoUserRepository(db),
		coaches:        mongo.NewMongoCoachRepository(db),
		workouts:       mongo.NewMongoWorkoutRepository(db),
		clientFeedback: mongo.NewMongoClientFeedbackRepository(db),
		coachFeedback:  mongo.NewMongoCoachFeedbackRepository(db),
		close: func() {
			logger.Info("Disconnecting MongoDB...")
			if err := mongo.DisconnectDB(client); err != nil {
				logger.WithError(err).Error("failed to disconnect MongoDB")
			}
		},
	}, nil
}
