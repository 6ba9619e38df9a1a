package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotifierIdempotentStart(t *testing.T) {
	assert := assert.New(t)
	reg := NewRegistry()
	c1 := &fakeConn{}
	reg.Join("e1", mustParticipant(t, "p1", "Ana"), "c1", c1)

	n := NewNotifier(reg)
	assert.True(n.MarkStarted("e1"))
	assert.False(n.MarkStarted("e1"))

	assert.Equal([]string{EventStarted}, c1.types(t))
}

func TestNotifierFullTransitionSequence(t *testing.T) {
	assert := assert.New(t)
	reg := NewRegistry()
	c1 := &fakeConn{}
	reg.Join("e1", mustParticipant(t, "p1", "Ana"), "c1", c1)

	n := NewNotifier(reg)
	assert.True(n.MarkEnded("e1"))
	assert.True(n.MarkStarted("e1"))
	assert.False(n.MarkStarted("e1"))

	// One of each, in call order; no legality check at this layer.
	assert.Equal([]string{EventEnded, EventStarted}, c1.types(t))
}

func TestNotifierTracksEventsIndependently(t *testing.T) {
	assert := assert.New(t)
	reg := NewRegistry()
	n := NewNotifier(reg)

	assert.True(n.MarkStarted("e1"))
	assert.True(n.MarkStarted("e2"))
	assert.False(n.MarkStarted("e1"))
	assert.True(n.MarkEnded("e1"))
}
