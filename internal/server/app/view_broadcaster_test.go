package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aria/internal/session"
)

func TestBroadcasterDeliversToRunSubscribers(t *testing.T) {
	b := NewViewBroadcaster(4, nil)
	ch := b.Register("run-1")
	other := b.Register("run-2")

	b.Publish(session.View{RunID: "run-1", Label: "Working..."})

	select {
	case view := <-ch:
		assert.Equal(t, "run-1", view.RunID)
	default:
		t.Fatal("expected delivery to run-1 subscriber")
	}
	select {
	case <-other:
		t.Fatal("run-2 subscriber must not receive run-1 views")
	default:
	}
}

func TestBroadcasterDropsOnFullBuffer(t *testing.T) {
	b := NewViewBroadcaster(1, nil)
	ch := b.Register("run-1")

	b.Publish(session.View{RunID: "run-1"})
	b.Publish(session.View{RunID: "run-1"}) // buffer full, dropped

	published, dropped := b.Stats()
	assert.Equal(t, int64(2), published)
	assert.Equal(t, int64(1), dropped)

	// The subscriber still drains the first snapshot.
	require.Len(t, ch, 1)
}

func TestBroadcasterUnregister(t *testing.T) {
	b := NewViewBroadcaster(1, nil)
	ch := b.Register("run-1")
	assert.Equal(t, 1, b.ClientCount("run-1"))

	b.Unregister("run-1", ch)
	assert.Equal(t, 0, b.ClientCount("run-1"))

	// Publishing to a run with no subscribers is a no-op.
	b.Publish(session.View{RunID: "run-1"})
}
