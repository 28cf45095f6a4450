// Package server wires the application context into an echo instance.
package server

import (
	"mentorship-service/internal/handler"
	"mentorship-service/internal/middleware"
	"mentorship-service/internal/model"
	"mentorship-service/internal/service"
	"mentorship-service/pkg/config"
	"mentorship-service/pkg/jwtutil"
	"mentorship-service/pkg/logger"
	"mentorship-service/pkg/mailer"
	"mentorship-service/pkg/tokenstore"
	"mentorship-service/pkg/upload"
	"mentorship-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds the shared dependencies built at startup
type App struct {
	Config  *config.Config
	Log     *zap.Logger
	DB      *gorm.DB
	JWT     *jwtutil.JWTUtil
	Tokens  tokenstore.Store
	Mail    mailer.Sender
	Uploads *upload.Store
}

// New builds the echo instance with middleware and every route registered
func New(app *App) *echo.Echo {
	cfg := app.Config

	e := echo.New()
	e.HideBanner = true
	handler.ExposeErrorDetails(!cfg.Server.IsProduction())
	e.Validator = middleware.NewValidator()
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept,
			echo.HeaderAuthorization, middleware.TokenHeader, logger.RequestIDKey,
		},
	}))
	e.Use(echomiddleware.BodyLimit(cfg.Server.BodyLimit))
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(app.Log))
	e.Use(prometheus.MetricsMiddleware())

	e.Static(cfg.Upload.PublicPath, cfg.Upload.Dir)

	registerRoutes(e, app)
	return e
}

func registerRoutes(e *echo.Echo, app *App) {
	users := service.NewUserService(app.DB)
	sessions := service.NewSessionService(app.DB)

	authH := handler.NewAuthHandler(service.NewAuthService(app.DB, app.JWT, app.Tokens, app.Mail, app.Config.Mail.ClientURL), users)
	userH := handler.NewUserHandler(users, app.Uploads)
	profileH := handler.NewProfileHandler(service.NewProfileService(app.DB))
	mentorshipH := handler.NewMentorshipHandler(service.NewMentorshipService(app.DB), sessions)
	sessionH := handler.NewSessionHandler(sessions)
	conversationH := handler.NewConversationHandler(service.NewConversationService(app.DB))
	resourceH := handler.NewResourceHandler(service.NewResourceService(app.DB), app.Uploads)
	eventH := handler.NewEventHandler(service.NewEventService(app.DB))
	storyH := handler.NewStoryHandler(service.NewStoryService(app.DB))
	healthH := handler.NewHealthHandler(app.DB)

	// Public routes - no authentication required
	e.GET("/health", healthH.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	authRequired := middleware.AuthMiddleware(app.JWT, app.Tokens, users)
	mentorOrAdmin := middleware.RequireRole(model.RoleMentor, model.RoleAdmin)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.GET("/verify-email/:token", authH.VerifyEmail)
	auth.POST("/forgot-password", authH.ForgotPassword)
	auth.POST("/reset-password/:token", authH.ResetPassword)
	auth.GET("/me", authH.Me, authRequired)
	auth.POST("/logout", authH.Logout, authRequired)

	// Events can be browsed anonymously
	api.GET("/events", eventH.List)
	api.GET("/events/:id", eventH.Get)

	protected := api.Group("", authRequired)

	u := protected.Group("/users")
	u.GET("", userH.List)
	u.GET("/mentors", userH.ListMentors)
	u.PUT("/profile", userH.UpdateProfile)
	u.PUT("/password", userH.ChangePassword)
	u.POST("/profile-image", userH.UploadProfileImage)
	u.GET("/:id", userH.Get)
	u.DELETE("/:id", userH.Delete, adminOnly)

	mp := protected.Group("/mentor-profiles")
	mp.POST("", profileH.CreateMentorProfile, middleware.RequireRole(model.RoleMentor))
	mp.PUT("", profileH.UpdateMentorProfile, middleware.RequireRole(model.RoleMentor))
	mp.GET("", profileH.ListMentorProfiles)
	mp.GET("/me", profileH.MyMentorProfile)
	mp.GET("/user/:userId", profileH.GetMentorProfile)

	mep := protected.Group("/mentee-profiles")
	mep.POST("", profileH.CreateMenteeProfile, middleware.RequireRole(model.RoleMentee))
	mep.PUT("", profileH.UpdateMenteeProfile, middleware.RequireRole(model.RoleMentee))
	mep.GET("", profileH.ListMenteeProfiles)
	mep.GET("/me", profileH.MyMenteeProfile)
	mep.GET("/user/:userId", profileH.GetMenteeProfile)

	ms := protected.Group("/mentorships")
	ms.POST("", mentorshipH.Request, middleware.RequireRole(model.RoleMentee))
	ms.GET("", mentorshipH.List)
	ms.GET("/:id", mentorshipH.Get)
	ms.PUT("/:id/status", mentorshipH.UpdateStatus)
	ms.PUT("/:id/goals", mentorshipH.UpdateGoals)
	ms.PUT("/:id/progress", mentorshipH.UpdateProgress)
	ms.POST("/:id/feedback", mentorshipH.AddFeedback)
	ms.GET("/:id/sessions", mentorshipH.Sessions)

	ss := protected.Group("/sessions")
	ss.POST("", sessionH.Schedule)
	ss.GET("", sessionH.List)
	ss.GET("/:id", sessionH.Get)
	ss.PUT("/:id/status", sessionH.UpdateStatus)
	ss.PUT("/:id/notes", sessionH.UpdateNotes)

	cv := protected.Group("/conversations")
	cv.POST("", conversationH.Open)
	cv.GET("", conversationH.List)
	cv.GET("/:id", conversationH.Get)

	msg := protected.Group("/messages")
	msg.POST("", conversationH.SendMessage)
	msg.GET("/unread-count", conversationH.UnreadCount)
	msg.GET("/:conversationId", conversationH.Messages)
	msg.PUT("/:conversationId/read", conversationH.MarkRead)

	rs := protected.Group("/resources")
	rs.POST("", resourceH.Create, mentorOrAdmin)
	rs.GET("", resourceH.List)
	rs.GET("/:id", resourceH.Get)
	rs.PUT("/:id", resourceH.Update)
	rs.DELETE("/:id", resourceH.Delete)
	rs.POST("/:id/share", resourceH.Share)
	rs.POST("/:id/download", resourceH.Download)

	ev := protected.Group("/events")
	ev.POST("", eventH.Create, mentorOrAdmin)
	ev.PUT("/:id", eventH.Update)
	ev.DELETE("/:id", eventH.Delete)
	ev.GET("/:id/registrations", eventH.Registrations)

	reg := protected.Group("/event-registrations")
	reg.POST("", eventH.Register)
	reg.GET("", eventH.MyRegistrations)
	reg.DELETE("/:id", eventH.CancelRegistration)
	reg.PUT("/:id/attended", eventH.MarkAttended)

	st := protected.Group("/success-stories")
	st.POST("", storyH.Create)
	st.GET("", storyH.List)
	st.GET("/:id", storyH.Get)
	st.PUT("/:id", storyH.Update)
	st.DELETE("/:id", storyH.Delete)
	st.PUT("/:id/feature", storyH.Feature, adminOnly)
}
