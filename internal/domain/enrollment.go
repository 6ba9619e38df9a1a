package domain

import "time"

type EnrollmentStatus string

const (
	EnrollmentPending  EnrollmentStatus = "pending"
	EnrollmentApproved EnrollmentStatus = "approved"
	EnrollmentRejected EnrollmentStatus = "rejected"
)

// Enrollment records whether a participant may take part in an event.
// Only an approved enrollment admits into the live room.
type Enrollment struct {
	ID            string           `json:"id"`
	ParticipantID ParticipantID    `json:"participantId"`
	EventID       EventID          `json:"eventId"`
	Status        EnrollmentStatus `json:"status"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}
