package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jmoreau/nutritrack/internal/api"
	"github.com/jmoreau/nutritrack/internal/middleware"
)

// Handlers bundles every API handler the router mounts.
type Handlers struct {
	Auth        *api.AuthHandler
	Aliments    *api.AlimentHandler
	Recipes     *api.RecipeHandler
	Preferences *api.PreferenceHandler
	Profiles    *api.ProfileHandler
	Pathologies *api.PathologyHandler
}

// SetupRouter configures the application routes
func SetupRouter(
	h Handlers,
	validator middleware.TokenValidator,
	mutationLimiter *middleware.RateLimiter,
	logger *zap.Logger,
	allowedOrigins []string,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(allowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	h.Auth.RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(validator))
	{
		var mutation []gin.HandlerFunc
		if mutationLimiter != nil {
			mutation = append(mutation, mutationLimiter.Middleware())
		}

		h.Aliments.RegisterRoutes(protected, mutation...)
		h.Recipes.RegisterRoutes(protected, mutation...)
		h.Preferences.RegisterRoutes(protected)
		h.Profiles.RegisterRoutes(protected)
		h.Pathologies.RegisterRoutes(protected)
	}

	return router
}
