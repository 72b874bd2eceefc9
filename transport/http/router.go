package http

import (
	"github.com/gin-gonic/gin"
	"github.com/gnoparus/pbtodo/service"
)

// SetupRouter sets up the Gin router
func SetupRouter(authService *service.AuthService, todoService *service.TodoService) *gin.Engine {
	router := gin.Default()

	// Create handlers
	authHandlers := NewAuthHandlers(authService)
	todoHandlers := NewTodoHandlers(todoService)

	// Auth routes
	auth := router.Group("/auth")
	{
		auth.POST("/register", authHandlers.Register)
		auth.POST("/login", authHandlers.Login)
		auth.POST("/refresh", authHandlers.Refresh)
		auth.POST("/logout", authHandlers.Logout)
	}

	// Protected API routes
	api := router.Group("/api")
	api.Use(AuthMiddleware(authService))
	{
		api.GET("/me", authHandlers.Me)

		api.GET("/todos", todoHandlers.List)
		api.POST("/todos", todoHandlers.Create)
		api.GET("/todos/:id", todoHandlers.Get)
		api.PATCH("/todos/:id", todoHandlers.Update)
		api.DELETE("/todos/:id", todoHandlers.Delete)
	}

	return router
}
