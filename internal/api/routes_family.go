package api

import (
	"github.com/gin-gonic/gin"

	"github.com/famboard/famboard/internal/handlers"
	"github.com/famboard/famboard/internal/middleware"
)

func registerFamilyRoutes(group *gin.RouterGroup, deps Dependencies) {
	handler := handlers.NewFamilyHandler(deps.Families)

	family := group.Group("/family", middleware.RequireAuth(deps.JWTService))
	family.POST("", handler.Create)
	family.GET("", handler.Get)
	family.GET("/activity", handler.Activity)
	family.POST("/invite", handler.Invite)
	family.GET("/invite/qr", handler.InviteQR)
	family.POST("/join", handler.Join)
}
