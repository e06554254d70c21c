package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/postloop/postloop/internal/middleware"
)

type RouterDeps struct {
	Calendar        *CalendarHandler
	Templates       *TemplateHandler
	Files           *FileHandler
	JWTSecret       []byte
	RateLimitWindow time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	authGroup := api.Group("")
	authGroup.Use(middleware.TenantAuth(deps.JWTSecret))
	authGroup.Use(middleware.RateLimit(deps.RateLimitWindow))

	authGroup.POST("/calendar/import", deps.Calendar.Import)
	authGroup.POST("/calendar/validate", deps.Calendar.Validate)
	authGroup.POST("/calendar/bulk-update", deps.Calendar.BulkUpdate)
	authGroup.POST("/calendar/export", deps.Calendar.Export)
	authGroup.POST("/calendar/bulk-delete", deps.Calendar.BulkDelete)
	authGroup.GET("/calendar/template", deps.Templates.Template)
	authGroup.GET("/files/:key", deps.Files.Get)
}
