// Package app wires the consolidation engine to the transport: fan-out of
// consolidated run views to streaming clients.
package app

import (
	"sync"

	"aria/internal/logging"
	"aria/internal/session"
)

// ViewBroadcaster fans consolidated run views out to subscribed streaming
// clients, keyed by run id. Publishing never blocks: a subscriber whose
// buffer is full misses that update and catches up on the next one, since
// every view is a complete snapshot rather than a delta.
type ViewBroadcaster struct {
	mu      sync.RWMutex
	clients map[string][]chan session.View
	buffer  int
	logger  logging.Logger

	statsMu   sync.Mutex
	published int64
	dropped   int64
}

// NewViewBroadcaster creates a broadcaster with the given per-client buffer
// depth.
func NewViewBroadcaster(buffer int, logger logging.Logger) *ViewBroadcaster {
	if buffer <= 0 {
		buffer = 1
	}
	return &ViewBroadcaster{
		clients: make(map[string][]chan session.View),
		buffer:  buffer,
		logger:  logging.OrNop(logger),
	}
}

// Register subscribes a new client to a run's view updates.
func (b *ViewBroadcaster) Register(runID string) chan session.View {
	ch := make(chan session.View, b.buffer)
	b.mu.Lock()
	b.clients[runID] = append(b.clients[runID], ch)
	b.mu.Unlock()
	return ch
}

// Unregister removes a client channel. The channel is not closed here;
// the reader owns its lifecycle.
func (b *ViewBroadcaster) Unregister(runID string, ch chan session.View) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.clients[runID]
	for i, have := range subs {
		if have == ch {
			b.clients[runID] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.clients[runID]) == 0 {
		delete(b.clients, runID)
	}
}

// Publish delivers a view to every subscriber of its run.
func (b *ViewBroadcaster) Publish(view session.View) {
	b.mu.RLock()
	subs := b.clients[view.RunID]
	b.mu.RUnlock()

	var dropped int
	for _, ch := range subs {
		select {
		case ch <- view:
		default:
			dropped++
		}
	}

	b.statsMu.Lock()
	b.published++
	b.dropped += int64(dropped)
	b.statsMu.Unlock()

	if dropped > 0 {
		b.logger.Warn("run %s: dropped view update for %d slow client(s)", view.RunID, dropped)
	}
}

// ClientCount reports the number of subscribers for a run.
func (b *ViewBroadcaster) ClientCount(runID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients[runID])
}

// Stats reports lifetime publish/drop counters.
func (b *ViewBroadcaster) Stats() (published, dropped int64) {
	b.statsMu.Lock()
	defer b.statsMu.Unlock()
	return b.published, b.dropped
}
