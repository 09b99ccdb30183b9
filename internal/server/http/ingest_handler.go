// Package http exposes the consolidation engine over HTTP: event ingest,
// snapshot reads, and SSE/websocket streaming of consolidated run views.
package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kaptinlin/jsonrepair"

	"aria/internal/logging"
	"aria/internal/runevents"
	"aria/internal/server/app"
	"aria/internal/session"
)

// IngestHandler receives raw run events from the agent backend.
type IngestHandler struct {
	runs        *session.Manager
	broadcaster *app.ViewBroadcaster
	logger      logging.Logger
}

// NewIngestHandler creates an ingest handler.
func NewIngestHandler(runs *session.Manager, broadcaster *app.ViewBroadcaster) *IngestHandler {
	return &IngestHandler{
		runs:        runs,
		broadcaster: broadcaster,
		logger:      logging.NewComponentLogger("IngestHandler"),
	}
}

// HandleEvents ingests one event or a batch for a run. The body is decoded
// best-effort: broken JSON goes through a repair pass, and input that stays
// undecodable becomes a single opaque event rather than a 400 — the engine
// owns the policy that malformed events are tolerated, so the transport
// must not reject them first.
func (h *IngestHandler) HandleEvents(c *gin.Context) {
	h.ingest(c, c.Param("id"))
}

// HandleNewRunEvents ingests events for a run whose id the caller does not
// control; the id is generated server-side and returned in the view so the
// caller can address the run afterwards.
func (h *IngestHandler) HandleNewRunEvents(c *gin.Context) {
	h.ingest(c, fmt.Sprintf("run-%s", uuid.New().String()))
}

func (h *IngestHandler) ingest(c *gin.Context, runID string) {
	isTeam := c.Query("team") == "true"

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read body: " + err.Error()})
		return
	}

	events := h.decodeEvents(body)
	if len(events) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty body"})
		return
	}

	var view session.View
	for _, e := range events {
		view = h.runs.Append(runID, isTeam, e)
	}
	h.broadcaster.Publish(view)

	c.JSON(http.StatusAccepted, view)
}

// decodeEvents parses the request body into raw events: a single object or
// an array of objects, with a jsonrepair retry for the kind of truncated or
// sloppily-escaped frames unreliable backends produce.
func (h *IngestHandler) decodeEvents(body []byte) []runevents.RawEvent {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}

	if events, ok := unmarshalEvents(trimmed); ok {
		return events
	}

	repaired, err := jsonrepair.JSONRepair(string(trimmed))
	if err == nil {
		if events, ok := unmarshalEvents([]byte(repaired)); ok {
			h.logger.Warn("ingested repaired event frame (%d bytes)", len(trimmed))
			return events
		}
	}

	// Undecodable input still produces a deterministic opaque event.
	h.logger.Warn("ingested undecodable event frame (%d bytes)", len(trimmed))
	return []runevents.RawEvent{{
		Payload: map[string]any{"raw": string(trimmed)},
	}}
}

func unmarshalEvents(data []byte) ([]runevents.RawEvent, bool) {
	if len(data) == 0 {
		return nil, false
	}
	if data[0] == '[' {
		var events []runevents.RawEvent
		if err := json.Unmarshal(data, &events); err == nil {
			return events, true
		}
		return nil, false
	}
	var e runevents.RawEvent
	if err := json.Unmarshal(data, &e); err == nil {
		return []runevents.RawEvent{e}, true
	}
	return nil, false
}
