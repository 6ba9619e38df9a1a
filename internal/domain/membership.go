package domain

import "time"

// Membership binds a participant to an event room for the lifetime of
// their connection. One membership per participant per event.
type Membership struct {
	ConnID          ConnID        `json:"-"`
	ParticipantID   ParticipantID `json:"participantId"`
	ParticipantName string        `json:"participantName"`
	EventID         EventID       `json:"eventId"`
	JoinedAt        time.Time     `json:"joinedAt"`
}
