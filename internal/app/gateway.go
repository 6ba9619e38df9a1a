package app

import (
	"context"
	"errors"
	"time"

	"github.com/JDav117/Sports-Event-LIVE/internal/core"
	"github.com/JDav117/Sports-Event-LIVE/internal/domain"
)

// ErrRateLimited is reported to the sender only; a throttled message
// has no room-visible side effects.
var ErrRateLimited = errors.New("rate_limited")

// Gateway wires the presence core together and owns the room-facing
// flows: admission, presence broadcasts, rate-limited interaction
// fan-out. Adapters parse the wire and call in here.
type Gateway struct {
	Registry   *core.Registry
	Admission  *Admission
	Notifier   *core.Notifier
	Audit      *core.AuditSink
	Attendance *Recorder
	Limits     map[core.LimitClass]core.LimitRule

	now func() time.Time
}

func NewGateway(
	reg *core.Registry,
	adm *Admission,
	notifier *core.Notifier,
	audit *core.AuditSink,
	attendance *Recorder,
	limits map[core.LimitClass]core.LimitRule,
) *Gateway {
	if limits == nil {
		limits = core.DefaultLimits()
	}
	return &Gateway{
		Registry:   reg,
		Admission:  adm,
		Notifier:   notifier,
		Audit:      audit,
		Attendance: attendance,
		Limits:     limits,
		now:        time.Now,
	}
}

// NewLimiter builds the per-connection rate limiter for the
// configured classes.
func (g *Gateway) NewLimiter() *core.ConnLimiter {
	return core.NewConnLimiter(g.Limits)
}

// JoinResult is what the transport reports back to the joiner.
type JoinResult struct {
	Admitted       bool
	Reason         string
	ConnectedCount int
}

// Join runs the full admission flow: authority check first (the only
// I/O, done before any room lock), then the idempotent registry join,
// then the presence and roster broadcasts. A repeat join by the same
// participant re-acks without duplicating membership or broadcasts.
func (g *Gateway) Join(
	ctx context.Context,
	eventID domain.EventID,
	p *domain.Participant,
	connID domain.ConnID,
	sig core.SignalConnection,
	remoteAddr string,
) JoinResult {
	admitted, reason := g.Admission.Decide(ctx, eventID, p.ID, remoteAddr)
	if !admitted {
		return JoinResult{Admitted: false, Reason: reason}
	}

	m, added := g.Registry.Join(eventID, p, connID, sig)
	if added {
		g.Registry.Broadcast(eventID, core.PresenceEvent{
			Type:            core.EventParticipantJoined,
			EventID:         eventID,
			ParticipantID:   m.ParticipantID,
			ParticipantName: m.ParticipantName,
			Timestamp:       g.now(),
		})
		g.Registry.Broadcast(eventID, g.Registry.Roster(eventID))
	}
	return JoinResult{
		Admitted:       true,
		ConnectedCount: len(g.Registry.Members(eventID)),
	}
}

// Leave removes the membership and announces the departure to the
// remaining members. The returned roster lets the transport echo the
// updated count to the leaver, who is no longer in the broadcast
// group by the time of send. A second leave is a benign no-op.
func (g *Gateway) Leave(
	eventID domain.EventID,
	participantID domain.ParticipantID,
) (core.RosterUpdate, bool) {
	m, removed := g.Registry.Leave(eventID, participantID)
	roster := g.Registry.Roster(eventID)
	if !removed {
		return roster, false
	}
	g.Registry.Broadcast(eventID, core.PresenceEvent{
		Type:            core.EventParticipantLeft,
		EventID:         eventID,
		ParticipantID:   m.ParticipantID,
		ParticipantName: m.ParticipantName,
		Timestamp:       g.now(),
	})
	g.Registry.Broadcast(eventID, roster)
	return roster, true
}

// Disconnect resolves a transport-level drop: every membership bound
// to the connection is removed and announced. Safe to call for
// connections that never joined anything.
func (g *Gateway) Disconnect(connID domain.ConnID) []domain.Membership {
	removed := g.Registry.DisconnectAll(connID)
	for _, m := range removed {
		g.Registry.Broadcast(m.EventID, core.PresenceEvent{
			Type:            core.EventParticipantLeft,
			EventID:         m.EventID,
			ParticipantID:   m.ParticipantID,
			ParticipantName: m.ParticipantName,
			Timestamp:       g.now(),
		})
		g.Registry.Broadcast(m.EventID, g.Registry.Roster(m.EventID))
	}
	return removed
}

// Chat fans a chat message out to the room, subject to the chat
// quota of the sending connection.
func (g *Gateway) Chat(
	limiter *core.ConnLimiter,
	eventID domain.EventID,
	p *domain.Participant,
	message string,
	coachFeedback bool,
) error {
	if !limiter.Allow(core.LimitChat) {
		return ErrRateLimited
	}
	g.Registry.Broadcast(eventID, core.ChatEvent{
		Type:            core.EventChatMessage,
		EventID:         eventID,
		ParticipantID:   p.ID,
		ParticipantName: p.Name,
		Message:         message,
		CoachFeedback:   coachFeedback,
		Timestamp:       g.now(),
	})
	return nil
}

// Request fans a substitution or timeout request out to the room.
// Each request kind draws on its own quota of the sending connection,
// so a burst of one kind never starves the other.
func (g *Gateway) Request(
	limiter *core.ConnLimiter,
	class core.LimitClass,
	eventType string,
	eventID domain.EventID,
	p *domain.Participant,
	reason string,
) error {
	if !limiter.Allow(class) {
		return ErrRateLimited
	}
	if reason == "" {
		reason = "no reason given"
	}
	g.Registry.Broadcast(eventID, core.RequestEvent{
		Type:            eventType,
		EventID:         eventID,
		ParticipantID:   p.ID,
		ParticipantName: p.Name,
		Reason:          reason,
		Timestamp:       g.now(),
	})
	return nil
}
