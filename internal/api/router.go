package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Setup builds the gin engine with middleware and routes
func Setup(h *Handler, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Logger(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		assignments := v1.Group("/assignments")
		{
			assignments.POST("", h.CreateAssignment)
			assignments.GET("", h.ListAssignments)
			assignments.GET("/:id", h.GetAssignment)
			assignments.POST("/:id/cancel", h.CancelAssignment)
		}

		cov := v1.Group("/coverage")
		{
			cov.GET("/dashboard", h.GetDashboard)
			cov.GET("/outlook", h.GetOutlook)
		}
	}

	return r
}
