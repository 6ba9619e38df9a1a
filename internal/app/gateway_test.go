package app

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JDav117/Sports-Event-LIVE/internal/core"
	"github.com/JDav117/Sports-Event-LIVE/internal/domain"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
}

func (f *fakeConn) TrySend(data core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, data)
	return nil
}

func (f *fakeConn) Close() {}

func (f *fakeConn) types(t *testing.T) []string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.frames))
	for _, frame := range f.frames {
		var env struct {
			Type string `json:"type"`
		}
		require.NoError(t, json.Unmarshal(frame, &env))
		out = append(out, env.Type)
	}
	return out
}

func (f *fakeConn) count(t *testing.T, eventType string) int {
	t.Helper()
	n := 0
	for _, typ := range f.types(t) {
		if typ == eventType {
			n++
		}
	}
	return n
}

func allowAll() *fakeAuthority {
	return &fakeAuthority{approved: map[string]bool{
		"p1/e1": true, "p2/e1": true, "p1/e2": true,
	}}
}

func newTestGateway(auth EnrollmentAuthority, limits map[core.LimitClass]core.LimitRule) *Gateway {
	reg := core.NewRegistry()
	audit := core.NewAuditSink(100)
	adm := &Admission{Authority: auth, Audit: audit}
	notifier := core.NewNotifier(reg)
	recorder := NewRecorder(reg, NewMemoryAttendanceStore(), 10)
	return NewGateway(reg, adm, notifier, audit, recorder, limits)
}

func participant(id, name string) *domain.Participant {
	return &domain.Participant{ID: domain.ParticipantID(id), Name: name}
}

func TestGatewayJoinBroadcastsOnce(t *testing.T) {
	assert := assert.New(t)
	gw := newTestGateway(allowAll(), nil)
	ctx := context.Background()
	c1 := &fakeConn{}

	res := gw.Join(ctx, "e1", participant("p1", "Ana"), "c1", c1, "")
	assert.True(res.Admitted)
	assert.Equal(1, res.ConnectedCount)
	assert.Equal(1, c1.count(t, core.EventParticipantJoined))
	assert.Equal(1, c1.count(t, core.EventRosterUpdate))

	// Idempotent repeat: re-acked, no duplicate membership, no
	// duplicate broadcasts.
	res = gw.Join(ctx, "e1", participant("p1", "Ana"), "c9", c1, "")
	assert.True(res.Admitted)
	assert.Equal(1, res.ConnectedCount)
	assert.Equal(1, c1.count(t, core.EventParticipantJoined))
	assert.Equal(1, c1.count(t, core.EventRosterUpdate))
}

func TestGatewayJoinDeniedTouchesNoRoom(t *testing.T) {
	assert := assert.New(t)
	gw := newTestGateway(&fakeAuthority{}, nil)
	c1 := &fakeConn{}

	res := gw.Join(context.Background(), "e1", participant("p1", "Ana"), "c1", c1, "10.0.0.9:1")
	assert.False(res.Admitted)
	assert.Equal(DenyNotEnrolled, res.Reason)
	assert.Empty(gw.Registry.Members("e1"))
	assert.Empty(c1.types(t))
	assert.Len(gw.Audit.Query("p1", AuditJoinDenied, 0), 1)
}

func TestGatewayLeaveDisconnectSymmetry(t *testing.T) {
	assert := assert.New(t)
	gw := newTestGateway(allowAll(), nil)
	ctx := context.Background()
	c1, c2 := &fakeConn{}, &fakeConn{}

	gw.Join(ctx, "e1", participant("p1", "Ana"), "c1", c1, "")
	gw.Join(ctx, "e1", participant("p2", "Luis"), "c2", c2, "")

	// Explicit leave followed by the transport disconnect of the same
	// connection: exactly one participant.left reaches the room.
	roster, removed := gw.Leave("e1", "p1")
	assert.True(removed)
	assert.Equal(1, roster.ConnectedCount)
	assert.Empty(gw.Disconnect("c1"))
	assert.Equal(1, c2.count(t, core.EventParticipantLeft))

	// And the mirror image: disconnect first, duplicate leave is a
	// benign no-op.
	gw.Join(ctx, "e1", participant("p1", "Ana"), "c1", c1, "")
	assert.Len(gw.Disconnect("c1"), 1)
	_, removed = gw.Leave("e1", "p1")
	assert.False(removed)
	assert.Equal(2, c2.count(t, core.EventParticipantLeft))
}

func TestGatewayChatRateLimitBoundary(t *testing.T) {
	assert := assert.New(t)
	limits := map[core.LimitClass]core.LimitRule{
		core.LimitChat: {Limit: 2, Window: 200 * time.Millisecond},
	}
	gw := newTestGateway(allowAll(), limits)
	ctx := context.Background()
	c1, c2 := &fakeConn{}, &fakeConn{}

	gw.Join(ctx, "e1", participant("p1", "Ana"), "c1", c1, "")
	gw.Join(ctx, "e1", participant("p2", "Luis"), "c2", c2, "")
	limiter := gw.NewLimiter()

	assert.NoError(gw.Chat(limiter, "e1", participant("p1", "Ana"), "hola", false))
	assert.NoError(gw.Chat(limiter, "e1", participant("p1", "Ana"), "vamos", false))
	err := gw.Chat(limiter, "e1", participant("p1", "Ana"), "uno mas", false)
	assert.ErrorIs(err, ErrRateLimited)

	// A throttled message has no side effects for the room.
	assert.Equal(2, c2.count(t, core.EventChatMessage))

	time.Sleep(250 * time.Millisecond)
	assert.NoError(gw.Chat(limiter, "e1", participant("p1", "Ana"), "de nuevo", false))
	assert.Equal(3, c2.count(t, core.EventChatMessage))
}

func TestGatewayRequestQuotasIndependent(t *testing.T) {
	assert := assert.New(t)
	gw := newTestGateway(allowAll(), nil)
	ctx := context.Background()
	c1 := &fakeConn{}
	gw.Join(ctx, "e1", participant("p1", "Ana"), "c1", c1, "")
	limiter := gw.NewLimiter()

	for i := 0; i < 3; i++ {
		assert.NoError(gw.Request(limiter, core.LimitSubstitution, core.EventSubstitutionRequested, "e1", participant("p1", "Ana"), "tired"))
	}
	err := gw.Request(limiter, core.LimitSubstitution, core.EventSubstitutionRequested, "e1", participant("p1", "Ana"), "")
	assert.ErrorIs(err, ErrRateLimited)

	// A connection that burned its substitution quota still has its
	// full timeout quota.
	for i := 0; i < 3; i++ {
		assert.NoError(gw.Request(limiter, core.LimitTimeout, core.EventTimeoutRequested, "e1", participant("p1", "Ana"), ""))
	}
	err = gw.Request(limiter, core.LimitTimeout, core.EventTimeoutRequested, "e1", participant("p1", "Ana"), "")
	assert.ErrorIs(err, ErrRateLimited)

	assert.Equal(3, c1.count(t, core.EventSubstitutionRequested))
	assert.Equal(3, c1.count(t, core.EventTimeoutRequested))
}

func TestGatewayRequestDefaultsReason(t *testing.T) {
	assert := assert.New(t)
	gw := newTestGateway(allowAll(), nil)
	c1 := &fakeConn{}
	gw.Join(context.Background(), "e1", participant("p1", "Ana"), "c1", c1, "")

	require.NoError(t, gw.Request(gw.NewLimiter(), core.LimitTimeout, core.EventTimeoutRequested, "e1", participant("p1", "Ana"), ""))

	c1.mu.Lock()
	last := c1.frames[len(c1.frames)-1]
	c1.mu.Unlock()
	var evt core.RequestEvent
	require.NoError(t, json.Unmarshal(last, &evt))
	assert.Equal("no reason given", evt.Reason)
}

// The end-to-end presence scenario: two participants join, chat, one
// drops, and the survivor's view plus the attendance observation stay
// consistent throughout.
func TestGatewayLiveScenario(t *testing.T) {
	assert := assert.New(t)
	gw := newTestGateway(allowAll(), nil)
	ctx := context.Background()
	c1, c2 := &fakeConn{}, &fakeConn{}

	res := gw.Join(ctx, "e1", participant("p1", "Ana"), "c1", c1, "")
	assert.True(res.Admitted)
	assert.Equal(1, res.ConnectedCount)

	limiter := gw.NewLimiter()
	for i := 0; i < 3; i++ {
		assert.NoError(gw.Chat(limiter, "e1", participant("p1", "Ana"), "msg", false))
	}

	res = gw.Join(ctx, "e1", participant("p2", "Luis"), "c2", c2, "")
	assert.True(res.Admitted)
	assert.Equal(2, res.ConnectedCount)

	roster := gw.Registry.Roster("e1")
	assert.Equal(2, roster.ConnectedCount)
	names := []string{roster.Members[0].ParticipantName, roster.Members[1].ParticipantName}
	assert.Contains(names, "Ana")
	assert.Contains(names, "Luis")

	time.Sleep(20 * time.Millisecond)
	elapsed := gw.Registry.ConnectionTime("e1", "p1")
	assert.GreaterOrEqual(elapsed, 20*time.Millisecond)
	assert.Less(elapsed, time.Second)

	removed := gw.Disconnect("c1")
	assert.Len(removed, 1)
	assert.Equal(1, c2.count(t, core.EventParticipantLeft))
	assert.Equal(1, gw.Registry.Roster("e1").ConnectedCount)

	// Once the membership is gone the live observation is gone too.
	assert.Equal(time.Duration(0), gw.Registry.ConnectionTime("e1", "p1"))
}
