package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/civictrack/civictrack-go/internal/logging"
	"github.com/gin-gonic/gin"
)

// StreamDashboard streams dashboard snapshots using Server-Sent Events (SSE)
func (h *Handler) StreamDashboard(c *gin.Context) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "streaming unsupported"})
		return
	}

	// Subscribe before reading the initial state so no change is missed.
	updates, cancel := h.dash.Subscribe()
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	initial := h.dash.Snapshot()
	writeEvent(c, "initial", initial)
	flusher.Flush()
	last := initial.Version

	ctx := c.Request.Context()
	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case snap, ok := <-updates:
			if !ok {
				return
			}
			if snap.Version <= last {
				continue
			}
			last = snap.Version
			writeEvent(c, "update", snap)
			flusher.Flush()
		}
	}
}

func writeEvent(c *gin.Context, event string, v any) {
	data, err := json.Marshal(gin.H{"dashboard": v})
	if err != nil {
		logging.New(c.Request.Context()).LogErrorf("dashboard.stream", "event=%s encode failed: %v", event, err)
		return
	}
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, string(data))
}
