package routes

import (
	"net/http"

	"task-assignment-api/internal/auth"
	"task-assignment-api/internal/authz"
	"task-assignment-api/internal/handlers"
	"task-assignment-api/internal/middleware"
	"task-assignment-api/internal/realtime"
	"task-assignment-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Deps are the collaborators the routes are served by.
type Deps struct {
	Tokens        *auth.TokenManager
	Users         *service.UserService
	Tasks         *service.TaskService
	Notifications *service.NotificationService
	Hub           *realtime.Hub
	Logger        logrus.FieldLogger
}

func SetupRoutes(d Deps) *gin.Engine {
	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery(), middleware.RequestLogger(d.Logger), middleware.CORS())

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Task Assignment API is running",
		})
	})

	authHandler := handlers.NewAuthHandler(d.Users, d.Logger)
	taskHandler := handlers.NewTaskHandler(d.Tasks, d.Logger)
	userHandler := handlers.NewUserHandler(d.Users, d.Logger)
	notificationHandler := handlers.NewNotificationHandler(d.Notifications, d.Logger)
	wsHandler := handlers.NewWSHandler(d.Hub, d.Logger)

	jwtAuth := middleware.JWTAuthMiddleware(d.Tokens)
	api := ginRouter.Group("/api")

	// Public routes (no authentication required)
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/signup", authHandler.Signup)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.GET("/me", jwtAuth, authHandler.Me)
	}

	api.GET("/ws", jwtAuth, wsHandler.Serve)

	// Protected routes (authentication required)
	tasks := api.Group("/tasks")
	tasks.Use(jwtAuth)
	{
		// Static paths are registered alongside /:id; gin prefers them.
		tasks.GET("/notifications", notificationHandler.ListUnread)
		tasks.PATCH("/notifications/:id/read", notificationHandler.MarkRead)
		tasks.GET("/users/list", middleware.Require(authz.OpListMembers), userHandler.ListMembers)
		tasks.GET("/stats", taskHandler.GetStats)

		tasks.GET("", taskHandler.GetTasks)
		tasks.GET("/:id", taskHandler.GetTaskByID)
		tasks.PATCH("/:id/status", taskHandler.UpdateTaskStatus)

		// Admin only routes
		tasks.POST("", middleware.Require(authz.OpCreateTask), taskHandler.CreateTask)
		tasks.PUT("/:id", middleware.Require(authz.OpUpdateTask), taskHandler.UpdateTask)
		tasks.DELETE("/:id", middleware.Require(authz.OpDeleteTask), taskHandler.DeleteTask)
	}

	return ginRouter
}
