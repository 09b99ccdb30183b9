package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"aria/internal/logging"
	"aria/internal/server/app"
	"aria/internal/session"
)

// SSEHandler streams consolidated run views over Server-Sent Events.
type SSEHandler struct {
	runs        *session.Manager
	broadcaster *app.ViewBroadcaster
	heartbeat   time.Duration
	logger      logging.Logger
}

// NewSSEHandler creates an SSE handler with the given heartbeat interval.
func NewSSEHandler(runs *session.Manager, broadcaster *app.ViewBroadcaster, heartbeat time.Duration) *SSEHandler {
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	return &SSEHandler{
		runs:        runs,
		broadcaster: broadcaster,
		heartbeat:   heartbeat,
		logger:      logging.NewComponentLogger("SSEHandler"),
	}
}

// HandleStream holds the connection open and pushes a full consolidated
// view on every change. Each frame is a complete snapshot, so a client that
// missed updates is consistent again after the next frame.
func (h *SSEHandler) HandleStream(c *gin.Context) {
	runID := c.Param("id")
	w := c.Writer

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	ch := h.broadcaster.Register(runID)
	defer h.broadcaster.Unregister(runID, ch)

	h.logger.Info("SSE client connected for run %s", runID)

	// Current state first, so late joiners start consistent.
	if view, ok := h.runs.View(runID); ok {
		if err := writeSSEView(w, view); err != nil {
			return
		}
	} else if _, err := fmt.Fprintf(w, "event: connected\ndata: {\"run_id\":%q}\n\n", runID); err != nil {
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case view := <-ch:
			if err := writeSSEView(w, view); err != nil {
				h.logger.Warn("SSE write failed for run %s: %v", runID, err)
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-c.Request.Context().Done():
			h.logger.Info("SSE client disconnected for run %s", runID)
			return
		}
	}
}

func writeSSEView(w http.ResponseWriter, view session.View) error {
	data, err := json.Marshal(view)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: view\ndata: %s\n\n", data)
	return err
}
