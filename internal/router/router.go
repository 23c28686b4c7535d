package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/vidtube-accounts/internal/container"
	handlers "github.com/oksasatya/vidtube-accounts/internal/interface/http"
	"github.com/oksasatya/vidtube-accounts/internal/interface/middleware"
	"github.com/oksasatya/vidtube-accounts/internal/router/modules"
	"github.com/oksasatya/vidtube-accounts/pkg/validation"
)

// Setup builds the Gin engine with global middleware and every module mounted under /api.
func Setup(c *container.Container) *gin.Engine {
	validation.Init()
	cfg := c.Config

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(), middleware.RealIP())
	// cors.New panics on an empty allow-list; no origins means same-origin only.
	if origins := cfg.CORSOrigins(); len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if cfg.HTTPLogEnabled {
		r.Use(middleware.RequestLogger(c.Logger))
	}
	r.Use(middleware.ErrorHandler(c.Logger))
	r.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Route not found"})
	})

	users := handlers.NewUserHandler(c.Service, c.Logger, c.Cookies, cfg.UploadTempDir)

	reg := NewRegistry(r, "/api")
	reg.Add(
		modules.NewHealthModule(),
		modules.NewUserModule(users, c.JWT, c.Users, c.Redis),
	)
	if cfg.DebugMetricsEnabled {
		reg.Add(modules.NewDebugModule(c.Redis))
	}
	reg.RegisterAll()
	return r
}
