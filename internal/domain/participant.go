// Package domain contains entity without logic, just meta-data
package domain

import "errors"

const (
	MaxParticipantIDLen = 64
	MaxNameLen          = 36
)

var (
	ErrNameTooLong = errors.New("participant name too long")
	ErrNameEmpty   = errors.New("participant name empty")
	ErrIDEmpty     = errors.New("participant id empty")
)

type (
	ParticipantID string
	// ConnID is the opaque handle of one transport connection.
	ConnID string
)

type Participant struct {
	ID   ParticipantID `json:"participantId"`
	Name string        `json:"participantName"`
}

// NewParticipant is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewParticipant(id ParticipantID, name string) (*Participant, error) {
	if len(id) == 0 {
		return nil, ErrIDEmpty
	}
	if len(name) == 0 {
		return nil, ErrNameEmpty
	}
	if len(name) > MaxNameLen {
		return nil, ErrNameTooLong
	}
	return &Participant{ID: id, Name: name}, nil
}
