// Package api assembles the HTTP router.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/famboard/famboard/internal/auth"
	"github.com/famboard/famboard/internal/handlers"
	"github.com/famboard/famboard/internal/middleware"
	"github.com/famboard/famboard/internal/services"
	apperrors "github.com/famboard/famboard/pkg/errors"
	"github.com/famboard/famboard/pkg/response"
)

// Dependencies carries everything the router needs.
type Dependencies struct {
	DB         *gorm.DB
	JWTService *auth.JWTService
	Provider   *auth.LocalProvider

	Users      *services.UserService
	Families   *services.FamilyService
	Notes      *services.NoteService
	Classifier *services.ClassifierService
	Summaries  *services.SummaryService

	MetricsEnabled bool
}

// NewRouter builds the gin engine with all routes and middleware attached.
func NewRouter(deps Dependencies) *gin.Engine {
	engine := gin.New()

	engine.Use(
		middleware.Recovery(),
		middleware.RequestLogger(),
		middleware.SecurityHeaders(),
		middleware.Metrics(),
	)

	engine.GET("/healthz", handlers.NewHealthHandler(deps.DB).Health)
	if deps.MetricsEnabled {
		engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := engine.Group("/api/v1")
	registerAuthRoutes(api, deps)
	registerFamilyRoutes(api, deps)
	registerNoteRoutes(api, deps)

	engine.NoRoute(func(c *gin.Context) {
		response.Error(c, apperrors.ErrNotFound)
	})
	engine.NoMethod(func(c *gin.Context) {
		response.Error(c, apperrors.New("METHOD_NOT_ALLOWED", "Method not allowed", http.StatusMethodNotAllowed))
	})

	return engine
}
