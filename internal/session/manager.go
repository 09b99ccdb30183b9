// Package session tracks live run state: one in-memory event log per run,
// with the consolidated views derived from it on demand. Each run's state is
// independent; there is no cross-run shared mutable state beyond the
// registry maps themselves.
package session

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"aria/internal/consolidate"
	"aria/internal/logging"
	"aria/internal/runevents"
)

// View is the consolidated, render-ready state of one run.
type View struct {
	RunID          string                      `json:"run_id"`
	IsTeam         bool                        `json:"is_team"`
	Steps          []consolidate.Step          `json:"steps"`
	Message        consolidate.MessageSnapshot `json:"message"`
	Label          string                      `json:"label"`
	Ended          bool                        `json:"ended"`
	StreamingError bool                        `json:"streaming_error,omitempty"`
	EventCount     int                         `json:"event_count"`
}

// Archive persists final run views beyond the in-memory retention window.
// Implementations must be safe for concurrent use.
type Archive interface {
	Save(view View) error
	Load(runID string) (View, bool, error)
	Delete(runID string) error
}

// runState is the live accumulation for one run. The full event log is held
// for the run's lifetime: steps are a pure fold over it, so they can be
// rebuilt whenever it grows, while the message snapshot folds incrementally.
type runState struct {
	isTeam  bool
	events  []runevents.RawEvent
	message consolidate.MessageSnapshot
}

// Manager owns the per-run state registry. Live runs stay in a map keyed by
// run id; finished runs move into a bounded LRU of final views so late
// readers still get an answer without the registry growing forever. Nothing
// survives a process restart.
type Manager struct {
	mu       sync.RWMutex
	live     map[string]*runState
	retained *lru.Cache[string, View]
	archive  Archive
	logger   logging.Logger
}

// NewManager creates a manager retaining up to retainedRuns finished runs.
func NewManager(retainedRuns int, logger logging.Logger) (*Manager, error) {
	retained, err := lru.New[string, View](retainedRuns)
	if err != nil {
		return nil, err
	}
	return &Manager{
		live:     make(map[string]*runState),
		retained: retained,
		logger:   logging.OrNop(logger),
	}, nil
}

// UseArchive attaches a persistent store for final views. Archived views
// back the retained cache: ends are written through, reads fall back to it,
// and failures degrade to in-memory behavior with a warning.
func (m *Manager) UseArchive(a Archive) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.archive = a
}

// Append folds one event into the run's log and returns the refreshed view.
// The run is created on first append. Reusing the id of a finished run
// starts a fresh log; the retained snapshot for that id is discarded.
func (m *Manager) Append(runID string, isTeam bool, e runevents.RawEvent) View {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.live[runID]
	if !ok {
		state = &runState{isTeam: isTeam}
		m.live[runID] = state
		m.retained.Remove(runID)
		m.logger.Debug("run %s: first event %q", runID, e.Tag)
	}
	if isTeam {
		state.isTeam = true
	}
	state.events = append(state.events, e)
	state.message = consolidate.ApplyEventToMessage(state.message, e, state.isTeam)

	return m.viewLocked(runID, state, false, false)
}

// View returns the run's current consolidated state. Finished runs are
// served from the retained cache.
func (m *Manager) View(runID string) (View, bool) {
	m.mu.RLock()
	state, live := m.live[runID]
	if live {
		view := m.viewLocked(runID, state, false, false)
		m.mu.RUnlock()
		return view, true
	}
	archive := m.archive
	m.mu.RUnlock()

	if view, ok := m.retained.Get(runID); ok {
		return view, true
	}
	if archive != nil {
		view, ok, err := archive.Load(runID)
		if err != nil {
			m.logger.Warn("run %s: archive read failed: %v", runID, err)
			return View{}, false
		}
		return view, ok
	}
	return View{}, false
}

// EndRun finalizes a run. streamingError marks an abnormal termination and
// triggers the pruning of dangling placeholder steps; the final view is
// moved to the retained cache and the live state released.
func (m *Manager) EndRun(runID string, streamingError bool) (View, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.live[runID]
	if !ok {
		// Ending twice is tolerated; report the retained view if any.
		if view, found := m.retained.Get(runID); found {
			return view, true
		}
		if m.archive != nil {
			if view, found, err := m.archive.Load(runID); err == nil && found {
				return view, true
			}
		}
		return View{}, false
	}

	final := m.viewLocked(runID, state, true, streamingError)
	delete(m.live, runID)
	m.retained.Add(runID, final)
	if m.archive != nil {
		if err := m.archive.Save(final); err != nil {
			m.logger.Warn("run %s: archive write failed: %v", runID, err)
		}
	}
	m.logger.Info("run %s ended (events=%d streaming_error=%v)", runID, final.EventCount, streamingError)
	return final, true
}

// Drop discards all state for a run: live, retained, and archived.
func (m *Manager) Drop(runID string) {
	m.mu.Lock()
	delete(m.live, runID)
	archive := m.archive
	m.mu.Unlock()
	m.retained.Remove(runID)
	if archive != nil {
		if err := archive.Delete(runID); err != nil {
			m.logger.Warn("run %s: archive delete failed: %v", runID, err)
		}
	}
}

// LiveCount reports the number of runs currently accumulating events.
func (m *Manager) LiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.live)
}

func (m *Manager) viewLocked(runID string, state *runState, ended, streamingError bool) View {
	return View{
		RunID:          runID,
		IsTeam:         state.isTeam,
		Steps:          consolidate.ReduceToSteps(state.events, streamingError, state.isTeam),
		Message:        state.message,
		Label:          consolidate.SynthesizeLabel(state.events, state.isTeam),
		Ended:          ended,
		StreamingError: streamingError,
		EventCount:     len(state.events),
	}
}
