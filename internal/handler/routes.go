package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/inkwell-notes/inkwell-backend/internal/middleware"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, authHandler *AuthHandler, noteHandler *NoteHandler, templateHandler *TemplateHandler, imageHandler *ImageHandler, wsHandler *WebSocketHandler) {
	// API version 1
	api := e.Group("/api/v1")
	api.Use(authMiddleware.Authenticate())
	api.Use(middleware.RateLimitMiddleware(rateLimiter))

	// Auth routes
	api.GET("/auth/me", authHandler.Me)

	// Note routes
	notes := api.Group("/notes")
	notes.POST("", noteHandler.CreateNote)
	notes.GET("", noteHandler.ListNotes)
	notes.GET("/:id", noteHandler.GetNote)
	notes.PUT("/:id", noteHandler.SaveNote)
	notes.PATCH("/:id/pin", noteHandler.PinNote)
	notes.DELETE("/:id", noteHandler.DeleteNote)
	notes.GET("/:id/tasks", noteHandler.GetTasks)
	notes.POST("/:id/images", imageHandler.UploadImage)

	// Template routes
	templates := api.Group("/templates")
	templates.GET("", templateHandler.ListTemplates)
	templates.POST("/:id/notes", templateHandler.InstantiateTemplate)

	// Editor session socket, authenticated by token query param
	e.GET("/ws", wsHandler.HandleWS)
}
