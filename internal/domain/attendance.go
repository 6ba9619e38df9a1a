package domain

import "time"

// Attendance is the derived presence record for one participant in one
// event, computed from live connection time when the event finishes.
type Attendance struct {
	ParticipantID    ParticipantID `json:"participantId"`
	ParticipantName  string        `json:"participantName"`
	EventID          EventID       `json:"eventId"`
	MinutesConnected int           `json:"minutesConnected"`
	WasPresent       bool          `json:"wasPresent"`
	RecordedAt       time.Time     `json:"recordedAt"`
}
