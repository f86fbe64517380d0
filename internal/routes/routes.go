package routes

import (
	"mindmirror-server/internal/config"
	"mindmirror-server/internal/handlers"
	"mindmirror-server/internal/middleware"
	"mindmirror-server/internal/models"
	"mindmirror-server/internal/notify"
	"mindmirror-server/internal/scheduling"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config) {
	svc := scheduling.NewService(db, notify.FromConfig(cfg.Mailer))

	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	availabilityHandler := handlers.NewAvailabilityHandler(svc)
	leaveHandler := handlers.NewLeaveHandler(svc)
	appointmentHandler := handlers.NewAppointmentHandler(svc)

	// Public routes (no authentication required)
	public := router.Group("/api")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
		}

		userRoutes := private.Group("/users")
		{
			// Therapist directory powers the patient booking view.
			userRoutes.GET("/therapists", userHandler.GetTherapists)
			userRoutes.GET("/patients",
				middleware.RoleAuthMiddleware(models.RoleTherapist, models.RoleAdmin),
				userHandler.GetPatients)
			userRoutes.POST("",
				middleware.RoleAuthMiddleware(models.RoleAdmin),
				userHandler.CreateUser)
		}

		// Therapist calendar: availability, tentative overlay, leave.
		therapistRoutes := private.Group("/therapist/:id")
		{
			therapistRoutes.GET("/availability", availabilityHandler.GetAvailability)
			therapistRoutes.GET("/leave", leaveHandler.ListLeaves)

			manage := therapistRoutes.Group("")
			manage.Use(middleware.RoleAuthMiddleware(models.RoleTherapist, models.RoleAdmin))
			{
				manage.POST("/availability", availabilityHandler.SetAvailability)
				manage.POST("/availability/tentative", availabilityHandler.SetTentativeAvailability)
				manage.DELETE("/availability/tentative", availabilityHandler.RemoveTentativeAvailability)
				manage.POST("/leave", leaveHandler.CreateLeave)
				manage.GET("/appointments", appointmentHandler.ListForTherapist)
				manage.GET("/appointments/upcoming", appointmentHandler.ListUpcomingForTherapist)
			}
		}

		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("",
				middleware.RoleAuthMiddleware(models.RolePatient, models.RoleAdmin),
				appointmentHandler.BookAppointment)
			appointmentRoutes.PATCH("/:id/cancel", appointmentHandler.Cancel)
			appointmentRoutes.PATCH("/:id/complete",
				middleware.RoleAuthMiddleware(models.RoleTherapist, models.RoleAdmin),
				appointmentHandler.Complete)
			appointmentRoutes.POST("/cancel-criteria",
				middleware.RoleAuthMiddleware(models.RoleTherapist, models.RoleAdmin),
				appointmentHandler.CancelByCriteria)
			appointmentRoutes.POST("/derive-availability",
				middleware.RoleAuthMiddleware(models.RoleTherapist, models.RoleAdmin),
				availabilityHandler.DeriveAvailabilityType)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
