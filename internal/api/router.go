package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/stackitdev/stackit/internal/app"
	iauth "github.com/stackitdev/stackit/internal/auth"
	"github.com/stackitdev/stackit/internal/handlers"
	"github.com/stackitdev/stackit/internal/middleware"
	"github.com/stackitdev/stackit/internal/notifications"
	"github.com/stackitdev/stackit/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers routes.
//
// Most read and write routes are public; only answer mutation, acceptance,
// voting and the notification inbox require authentication.
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config, hub *notifications.Hub) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	notificationService, err := services.NewNotificationService(db, hub)
	if err != nil {
		return nil, err
	}
	userService, err := services.NewUserService(db)
	if err != nil {
		return nil, err
	}
	questionService, err := services.NewQuestionService(db, notificationService)
	if err != nil {
		return nil, err
	}
	answerService, err := services.NewAnswerService(db, notificationService)
	if err != nil {
		return nil, err
	}
	voteService, err := services.NewVoteService(db, notificationService)
	if err != nil {
		return nil, err
	}
	tagService, err := services.NewTagService(db)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS())

	r.NoRoute(middleware.NotFoundHandler)

	// Health endpoint (public)
	r.GET("/health", handlers.Health(db))

	if cfg.Monitoring.Prometheus.Enabled {
		r.GET(cfg.Monitoring.Prometheus.Endpoint, gin.WrapH(promhttp.Handler()))
	}

	authHandler := handlers.NewAuthHandler(userService, jwt)
	userHandler := handlers.NewUserHandler(userService, questionService)
	questionHandler := handlers.NewQuestionHandler(questionService, answerService, voteService)
	answerHandler := handlers.NewAnswerHandler(answerService, voteService)
	voteHandler := handlers.NewVoteHandler(voteService)
	tagHandler := handlers.NewTagHandler(tagService)
	notificationHandler := handlers.NewNotificationHandler(notificationService, hub, jwt)

	requireAuth := middleware.Auth(jwt)

	// Public auth routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", requireAuth, authHandler.Me)
	}

	api := r.Group("/api")

	// Users
	users := api.Group("/users")
	{
		users.GET("", userHandler.List)
		users.GET("/:id", userHandler.Get)
		users.GET("/:id/questions", userHandler.Questions)
		users.GET("/by-username/:username", userHandler.GetByUsername)
		users.PUT("/:id", userHandler.Update)
		users.DELETE("/:id", userHandler.Delete)
	}

	// Questions
	questions := api.Group("/questions")
	{
		questions.POST("", questionHandler.Create)
		questions.GET("", questionHandler.List)
		questions.GET("/search", questionHandler.Search)
		questions.GET("/author/:id", userHandler.Questions)
		questions.GET("/:id", questionHandler.Get)
		questions.GET("/:id/answers", questionHandler.Answers)
		questions.GET("/:id/votes", questionHandler.Votes)
		questions.PUT("/:id", questionHandler.Update)
		questions.DELETE("/:id", questionHandler.Delete)
	}

	// Answers: reads and creation are open, mutation and acceptance act as
	// the authenticated user
	answers := api.Group("/answers")
	{
		answers.POST("", answerHandler.Create)
		answers.GET("", answerHandler.List)
		answers.GET("/:id", answerHandler.Get)
		answers.GET("/:id/votes", answerHandler.Votes)
		answers.PUT("/:id", requireAuth, answerHandler.Update)
		answers.DELETE("/:id", requireAuth, answerHandler.Delete)
		answers.POST("/:id/accept", requireAuth, answerHandler.Accept)
		answers.POST("/:id/unaccept", requireAuth, answerHandler.Unaccept)
	}

	// Votes
	votes := api.Group("/votes")
	votes.Use(requireAuth)
	{
		votes.POST("", voteHandler.Cast)
		votes.DELETE("", voteHandler.Retract)
		votes.GET("/mine", voteHandler.Mine)
		votes.GET("/:id", voteHandler.Get)
		votes.DELETE("/:id", voteHandler.RetractByID)
	}

	// Tags
	tags := api.Group("/tags")
	{
		tags.POST("", tagHandler.Create)
		tags.GET("", tagHandler.List)
		tags.GET("/:id", tagHandler.Get)
		tags.GET("/name/:name", tagHandler.GetByName)
		tags.PUT("/:id", tagHandler.Update)
		tags.DELETE("/:id", tagHandler.Delete)
	}

	// Notifications
	notificationsGroup := api.Group("/notifications")
	{
		if cfg.Notifications.StreamEnabled {
			// Token arrives via query parameter, the handler validates it
			notificationsGroup.GET("/stream", notificationHandler.Stream)
		}

		notificationsGroup.Use(requireAuth)
		notificationsGroup.GET("", notificationHandler.List)
		notificationsGroup.GET("/unread-count", notificationHandler.UnreadCount)
		notificationsGroup.POST("/:id/read", notificationHandler.MarkRead)
		notificationsGroup.POST("/read-all", notificationHandler.MarkAllRead)
		notificationsGroup.DELETE("/:id", notificationHandler.Delete)
	}

	return r, nil
}
