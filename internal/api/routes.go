package api

import (
	"net/http"

	"alcyxob/gym-platform/internal/config"
	"alcyxob/gym-platform/internal/domain"
	"alcyxob/gym-platform/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services bundles what the HTTP layer calls into.
type Services struct {
	Auth         service.AuthService
	Coaches      service.CoachService
	Availability service.AvailabilityService
	Booking      service.BookingService
	Feedback     service.FeedbackService
	Reports      service.ReportService
	Weekly       WeeklyRunner // nil disables the manual trigger
}

func SetupRoutes(router *gin.Engine, jwtSecret string, svc Services, limits config.RateLimitConfig) {
	authHandler := NewAuthHandler(svc.Auth)
	gymHandler := NewGymHandler(svc.Coaches, svc.Feedback, svc.Availability)
	bookingHandler := NewBookingHandler(svc.Booking, svc.Feedback)
	reportHandler := NewReportHandler(svc.Reports, svc.Weekly)

	authMiddleware := AuthMiddleware(jwtSecret)
	writeLimit := RateLimitMiddleware(limits.RPS, limits.Burst)

	router.Use(RequestIDMiddleware(), RequestLoggingMiddleware(), MetricsMiddleware())

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authGroup := router.Group("/auth", writeLimit)
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	gym := router.Group("/gym/dev")
	{
		gym.GET("/coaches", gymHandler.ListCoaches)
		gym.GET("/coaches/:id", gymHandler.GetCoach)
		gym.GET("/coaches/:id/feedbacks", gymHandler.CoachFeedbacks)
		gym.GET("/coaches/:id/available-slots/:date", gymHandler.CoachSlots)
		gym.GET("/workouts/available", gymHandler.AvailableWorkouts)

		gym.POST("/coaches", authMiddleware, RoleMiddleware(domain.RoleAdmin), gymHandler.CreateCoach)
		gym.POST("/coaches/:id/avatar-upload-url", authMiddleware, RoleMiddleware(domain.RoleCoach, domain.RoleAdmin), writeLimit, gymHandler.RequestAvatarUpload)
	}

	// --- Client Routes ---
	client := router.Group("/booking/dev/client", authMiddleware, RoleMiddleware(domain.RoleClient))
	{
		client.GET("/workouts", bookingHandler.ListClientWorkouts)
		client.POST("/workouts", writeLimit, bookingHandler.BookWorkout)
		client.PATCH("/workouts/:workoutId", writeLimit, bookingHandler.CancelClientWorkout)
		client.POST("/feedbacks", writeLimit, bookingHandler.ClientFeedback)
	}

	// --- Coach Routes ---
	coach := router.Group("/booking/dev/coaches-page", authMiddleware, RoleMiddleware(domain.RoleCoach))
	{
		coach.GET("/workouts", bookingHandler.ListCoachWorkouts)
		coach.PATCH("/workouts/:id", writeLimit, bookingHandler.CancelCoachWorkout)
		coach.POST("/feedbacks", writeLimit, bookingHandler.CoachFeedback)
	}

	// --- Admin Routes ---
	reports := router.Group("/api/reports", authMiddleware, RoleMiddleware(domain.RoleAdmin))
	{
		reports.GET("/performance", reportHandler.Performance)
		reports.POST("/trigger-weekly", reportHandler.TriggerWeekly)
	}
}
