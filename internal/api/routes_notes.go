package api

import (
	"github.com/gin-gonic/gin"

	"github.com/famboard/famboard/internal/handlers"
	"github.com/famboard/famboard/internal/middleware"
)

func registerNoteRoutes(group *gin.RouterGroup, deps Dependencies) {
	handler := handlers.NewNotesHandler(deps.Notes, deps.Classifier, deps.Summaries)

	notes := group.Group("/notes", middleware.RequireAuth(deps.JWTService))
	notes.GET("", handler.List)
	notes.POST("", handler.Add)
	notes.POST("/:id/toggle", handler.Toggle)

	lists := group.Group("/lists", middleware.RequireAuth(deps.JWTService))
	lists.GET("", handler.Lists)
	lists.POST("/:id/clear-completed", handler.ClearCompleted)
	lists.DELETE("/:id", handler.DeleteList)

	summary := group.Group("/summary", middleware.RequireAuth(deps.JWTService))
	summary.GET("", handler.Summary)
	summary.POST("/generate", handler.GenerateSummary)
}
