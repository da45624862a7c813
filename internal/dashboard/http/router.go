package http

import "github.com/gin-gonic/gin"

// Register registers the dashboard and project routes
func (h *Handler) Register(rg *gin.RouterGroup) {
	d := rg.Group("/dashboard")
	d.GET("", h.GetDashboard)
	d.GET("/stats", h.GetStats)
	d.PUT("/filter", h.SetFilter)
	d.PUT("/search", h.SetSearch)
	d.POST("/refetch", h.Refetch)
	d.POST("/invalidate", h.Invalidate)
	d.PUT("/selection", h.Select)
	d.DELETE("/selection", h.ClearSelection)
	d.GET("/stream", h.StreamDashboard)

	p := rg.Group("/projects")
	p.GET("/city/:city", h.ListByCity)
	p.GET("/:id", h.GetProject)
	p.GET("/:id/feedback", h.ListFeedback)
	p.POST("/:id/feedback", h.SubmitFeedback)
}
