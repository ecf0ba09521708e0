package routes

import (
	"go-zettelkasten/internal/api/handlers"
	"go-zettelkasten/internal/api/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all application routes
func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		setupPublicRoutes(v1)

		// Protected routes
		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth())
		setupProtectedRoutes(protected)
	}
}

// setupPublicRoutes configures public routes that don't require authentication
func setupPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", handlers.HealthCheck)

	auth := rg.Group("/auth")
	{
		auth.POST("/register", handlers.Register)
		auth.POST("/login", handlers.Login)
	}

	// Published zettels are readable by anyone.
	posts := rg.Group("/posts")
	{
		posts.GET("", handlers.ListPosts)
		posts.GET("/:id", handlers.GetPost)
	}
}

// setupProtectedRoutes configures routes that require authentication
func setupProtectedRoutes(rg *gin.RouterGroup) {
	rg.GET("/tree", handlers.GetTree)
	rg.GET("/graph", handlers.GetGraph)
	rg.GET("/ws", handlers.ConnectWebSocket)

	folders := rg.Group("/folders")
	{
		folders.POST("", handlers.CreateFolder)
		folders.GET("/:id", handlers.GetFolder)
		folders.POST("/:id/upload", handlers.UploadToFolder)
		folders.GET("/:id/download", handlers.DownloadFolder)
	}

	zettels := rg.Group("/zettels")
	{
		zettels.POST("", handlers.CreateZettel)
		zettels.GET("/:id", handlers.GetZettel)
		zettels.PUT("/:id", handlers.UpdateZettel)
		zettels.POST("/:id/duplicate", handlers.DuplicateZettel)
	}

	files := rg.Group("/files")
	{
		files.GET("/:id", handlers.GetFile)
		files.GET("/:id/content", handlers.ServeFileContent)
	}

	// Mixed-kind operations: kind is folder|zettel|file.
	items := rg.Group("/items")
	{
		items.PUT("/:kind/:id/rename", handlers.RenameItem)
		items.POST("/:kind/:id/move", handlers.MoveItem)
		items.DELETE("/:kind/:id", handlers.DeleteItem)
	}
}
