package core

import (
	"time"

	"github.com/JDav117/Sports-Event-LIVE/internal/domain"
)

// Outbound event types. Dotted names, matching the wire protocol the
// player and coach clients already speak.
const (
	EventParticipantJoined     = "participant.joined"
	EventParticipantLeft       = "participant.left"
	EventChatMessage           = "chat.message"
	EventSubstitutionRequested = "substitution.requested"
	EventTimeoutRequested      = "timeout.requested"
	EventStarted               = "event.started"
	EventEnded                 = "event.ended"
	EventRosterUpdate          = "roster.update"
	EventJoinDenied            = "join.denied"
)

// MemberView is the read-only roster entry (no transport fields).
type MemberView struct {
	ParticipantID   domain.ParticipantID `json:"participantId"`
	ParticipantName string               `json:"participantName"`
	JoinedAt        time.Time            `json:"joinedAt"`
}

// RosterUpdate is broadcast whenever the membership of a room changes.
type RosterUpdate struct {
	Type           string         `json:"type"`
	EventID        domain.EventID `json:"eventId"`
	ConnectedCount int            `json:"connectedCount"`
	Members        []MemberView   `json:"members"`
}

// PresenceEvent announces one participant joining or leaving.
type PresenceEvent struct {
	Type            string               `json:"type"`
	EventID         domain.EventID       `json:"eventId"`
	ParticipantID   domain.ParticipantID `json:"participantId"`
	ParticipantName string               `json:"participantName"`
	Timestamp       time.Time            `json:"timestamp"`
}

// LifecycleEvent announces an event starting or ending.
type LifecycleEvent struct {
	Type      string         `json:"type"`
	EventID   domain.EventID `json:"eventId"`
	Timestamp time.Time      `json:"timestamp"`
}

// ChatEvent carries one chat message to the whole room.
type ChatEvent struct {
	Type            string               `json:"type"`
	EventID         domain.EventID       `json:"eventId"`
	ParticipantID   domain.ParticipantID `json:"participantId"`
	ParticipantName string               `json:"participantName"`
	Message         string               `json:"message"`
	CoachFeedback   bool                 `json:"coachFeedback"`
	Timestamp       time.Time            `json:"timestamp"`
}

// RequestEvent carries a substitution or timeout request to the room.
type RequestEvent struct {
	Type            string               `json:"type"`
	EventID         domain.EventID       `json:"eventId"`
	ParticipantID   domain.ParticipantID `json:"participantId"`
	ParticipantName string               `json:"participantName"`
	Reason          string               `json:"reason"`
	Timestamp       time.Time            `json:"timestamp"`
}
