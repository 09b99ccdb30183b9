package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aria/internal/logging"
	"aria/internal/session"
)

// RunHandler serves consolidated run snapshots and run lifecycle control.
type RunHandler struct {
	runs   *session.Manager
	logger logging.Logger
}

// NewRunHandler creates a run handler.
func NewRunHandler(runs *session.Manager) *RunHandler {
	return &RunHandler{
		runs:   runs,
		logger: logging.NewComponentLogger("RunHandler"),
	}
}

// HandleView returns the run's full consolidated view.
func (h *RunHandler) HandleView(c *gin.Context) {
	view, ok := h.runs.View(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown run"})
		return
	}
	c.JSON(http.StatusOK, view)
}

// HandleSteps returns only the progress-step list.
func (h *RunHandler) HandleSteps(c *gin.Context) {
	view, ok := h.runs.View(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown run"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"run_id": view.RunID, "steps": view.Steps})
}

// HandleMessage returns only the reconstructed message snapshot.
func (h *RunHandler) HandleMessage(c *gin.Context) {
	view, ok := h.runs.View(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown run"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"run_id": view.RunID, "message": view.Message})
}

// HandleStatus returns only the derived status label.
func (h *RunHandler) HandleStatus(c *gin.Context) {
	view, ok := h.runs.View(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown run"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"run_id": view.RunID, "label": view.Label, "ended": view.Ended})
}

type endRunRequest struct {
	StreamingError bool `json:"streaming_error"`
}

// HandleEnd finalizes a run. streaming_error marks an abnormal termination
// (network drop rather than a terminal event) and prunes dangling
// placeholder steps from the final view.
func (h *RunHandler) HandleEnd(c *gin.Context) {
	var req endRunRequest
	// Empty body means a normal end.
	_ = c.ShouldBindJSON(&req)

	view, ok := h.runs.EndRun(c.Param("id"), req.StreamingError)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown run"})
		return
	}
	c.JSON(http.StatusOK, view)
}

// HandleDrop discards all state for a run.
func (h *RunHandler) HandleDrop(c *gin.Context) {
	h.runs.Drop(c.Param("id"))
	c.Status(http.StatusNoContent)
}
