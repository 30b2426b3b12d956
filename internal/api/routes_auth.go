package api

import (
	"github.com/gin-gonic/gin"

	"github.com/famboard/famboard/internal/handlers"
	"github.com/famboard/famboard/internal/middleware"
)

func registerAuthRoutes(group *gin.RouterGroup, deps Dependencies) {
	handler := handlers.NewAuthHandler(deps.Provider, deps.JWTService, deps.Users)

	auth := group.Group("/auth")
	auth.POST("/register", handler.Register)
	auth.POST("/login", handler.Login)
	auth.GET("/me", middleware.RequireAuth(deps.JWTService), handler.Me)
}
