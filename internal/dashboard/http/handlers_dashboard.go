package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/civictrack/civictrack-go/internal/dashboard"
	"github.com/civictrack/civictrack-go/internal/format"
	"github.com/gin-gonic/gin"
)

func (h *Handler) GetDashboard(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "dashboard": h.dash.Snapshot()})
}

// GetStats returns the status bar figures for the visible projects.
func (h *Handler) GetStats(c *gin.Context) {
	stats := h.dash.Snapshot().Stats
	c.JSON(http.StatusOK, gin.H{
		"ok":    true,
		"stats": stats,
		"display": gin.H{
			"totalBudget":        format.Compact(stats.TotalBudget),
			"totalBudgetPrecise": format.Currency(stats.TotalBudget),
		},
	})
}

type filterReq struct {
	Status string `json:"status"`
}

func (h *Handler) SetFilter(c *gin.Context) {
	var req filterReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Status) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	snap := h.dash.SetStatusFilter(strings.TrimSpace(req.Status))
	c.JSON(http.StatusOK, gin.H{"ok": true, "dashboard": snap})
}

type searchReq struct {
	Query *string `json:"query"`
}

func (h *Handler) SetSearch(c *gin.Context) {
	var req searchReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	snap := h.dash.SetSearchQuery(*req.Query)
	c.JSON(http.StatusOK, gin.H{"ok": true, "dashboard": snap})
}

// Refetch forces a refresh. A fetch superseded by a newer one still answers
// 200 with the current state.
func (h *Handler) Refetch(c *gin.Context) {
	err := h.dash.Refetch(c.Request.Context())
	snap := h.dash.Snapshot()
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"ok": true, "dashboard": snap})
	case errors.Is(err, dashboard.ErrSuperseded):
		c.JSON(http.StatusOK, gin.H{"ok": true, "dashboard": snap, "superseded": true})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error(), "dashboard": snap})
	}
}

func (h *Handler) Invalidate(c *gin.Context) {
	h.dash.Invalidate()
	c.JSON(http.StatusOK, gin.H{"ok": true, "dashboard": h.dash.Snapshot()})
}

type selectReq struct {
	ID string `json:"id"`
}

func (h *Handler) Select(c *gin.Context) {
	var req selectReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	if _, err := h.dash.Select(c.Request.Context(), strings.TrimSpace(req.ID)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "dashboard": h.dash.Snapshot()})
}

func (h *Handler) ClearSelection(c *gin.Context) {
	h.dash.ClearSelection()
	c.JSON(http.StatusOK, gin.H{"ok": true, "dashboard": h.dash.Snapshot()})
}
