package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"concoevents/config"
	"concoevents/internal/handlers"
	"concoevents/internal/helpers"
	"concoevents/internal/middleware"
	"concoevents/internal/models"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return err
	}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	SetupRoutes(r, db, cfg)

	return r.Run(":" + cfg.Port)
}

// SetupRoutes wires every handler onto the engine. Exported so tests
// can run the full router against their own database.
func SetupRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config) {
	auth := middleware.JWTAuth(cfg.JWTSecret)

	authH := handlers.NewAuthHandler(db, cfg.JWTSecret)
	eventH := handlers.NewEventHandler(db)
	ticketH := handlers.NewTicketHandler(db)
	analyticsH := handlers.NewAnalyticsHandler(db)
	exportH := handlers.NewExportHandler(db)
	roleH := handlers.NewRoleHandler(db)
	requestH := handlers.NewOrganizerRequestHandler(db)
	imageH := handlers.NewImageHandler(cfg.UploadDir)
	chatH := handlers.NewChatHandler(cfg.OpenAIKey, cfg.OllamaHost, cfg.OllamaModel)

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "ConcoEvents backend running")
	})

	r.Static("/uploads", cfg.UploadDir)

	r.POST("/auth/register", authH.Register)
	r.POST("/auth/login", authH.Login)

	events := r.Group("/events")
	{
		events.GET("", eventH.ListEvents)
		events.POST("", auth, middleware.RequireRole(db, models.RoleOrganizer, models.RoleAdmin), eventH.CreateEvent)
		events.DELETE("/:id", auth, eventH.DeleteEvent)

		// gin cannot register the static segments "analytics" and
		// "stats" next to the ":id" wildcard, so the two GET depths
		// are dispatched by hand to keep the public paths intact:
		//   GET /events/analytics
		//   GET /events/:id
		//   GET /events/stats/:eventId
		//   GET /events/:eventId/export-attendees
		events.GET("/:id", func(c *gin.Context) {
			if c.Param("id") == "analytics" {
				analyticsH.Summary(c)
				return
			}
			eventH.GetEvent(c)
		})
		events.GET("/:id/:sub", func(c *gin.Context) {
			switch {
			case c.Param("id") == "stats":
				c.Params = append(c.Params, gin.Param{Key: "eventId", Value: c.Param("sub")})
				auth(c)
				if c.IsAborted() {
					return
				}
				analyticsH.Stats(c)
			case c.Param("sub") == "export-attendees":
				c.Params = append(c.Params, gin.Param{Key: "eventId", Value: c.Param("id")})
				exportH.ExportAttendees(c)
			default:
				helpers.RespondWithError(c, http.StatusNotFound, "Route not found.")
			}
		})
	}

	tickets := r.Group("/tickets")
	{
		tickets.POST("", auth, ticketH.ClaimTicket)
		tickets.POST("/admin/claim", auth, middleware.RequireRole(db, models.RoleAdmin), ticketH.AdminCheckIn)
		tickets.GET("", auth, ticketH.ListMyTickets)
		tickets.GET("/:id", auth, ticketH.GetTicket)
	}

	users := r.Group("/users")
	{
		users.GET("/role", auth, roleH.GetRole)
		users.PUT("/role", auth, middleware.RequireRole(db, models.RoleAdmin), roleH.UpdateRole)
	}

	images := r.Group("/images", auth)
	{
		images.POST("/upload", imageH.Upload)
		images.DELETE("", imageH.Delete)
	}

	requests := r.Group("/organizer-requests")
	{
		requests.POST("", auth, requestH.Submit)
		requests.GET("", auth, middleware.RequireRole(db, models.RoleAdmin), requestH.List)
		requests.POST("/:id/approve", auth, middleware.RequireRole(db, models.RoleAdmin), requestH.Approve)
		requests.POST("/:id/reject", auth, middleware.RequireRole(db, models.RoleAdmin), requestH.Reject)
	}

	r.POST("/api/chat", chatH.Chat)

	r.NoRoute(func(c *gin.Context) {
		helpers.RespondWithError(c, http.StatusNotFound, "Route not found.")
	})
}
