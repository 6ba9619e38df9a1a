package signal

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/JDav117/Sports-Event-LIVE/internal/app"
	"github.com/JDav117/Sports-Event-LIVE/internal/core"
	"github.com/JDav117/Sports-Event-LIVE/internal/domain"
)

type chatPayload struct {
	Type            string `json:"type"`
	EventID         string `json:"eventId" validate:"required"`
	ParticipantID   string `json:"participantId" validate:"required"`
	ParticipantName string `json:"participantName" validate:"required,max=36"`
	Message         string `json:"message" validate:"required"`
	CoachFeedback   bool   `json:"coachFeedback"`
}

type requestPayload struct {
	Type            string `json:"type"`
	EventID         string `json:"eventId" validate:"required"`
	ParticipantID   string `json:"participantId" validate:"required"`
	ParticipantName string `json:"participantName" validate:"required,max=36"`
	Reason          string `json:"reason"`
}

func (ctl *Controller) handleChat(cl *client, data []byte) {
	var p chatPayload
	if !ctl.decode(cl.conn, data, &p) {
		return
	}
	err := ctl.Gw.Chat(
		cl.limiter,
		domain.EventID(p.EventID),
		&domain.Participant{ID: domain.ParticipantID(p.ParticipantID), Name: p.ParticipantName},
		p.Message,
		p.CoachFeedback,
	)
	if errors.Is(err, app.ErrRateLimited) {
		log.Warn().Str("module", "signal").
			Str("conn_id", string(cl.id)).
			Str("participant_id", p.ParticipantID).
			Msg("chat throttled")
		ctl.sendError(cl.conn, "rate_limited")
	}
}

func (ctl *Controller) handleSubstitution(cl *client, data []byte) {
	ctl.handleRequest(cl, data, core.LimitSubstitution, core.EventSubstitutionRequested)
}

func (ctl *Controller) handleTimeout(cl *client, data []byte) {
	ctl.handleRequest(cl, data, core.LimitTimeout, core.EventTimeoutRequested)
}

func (ctl *Controller) handleRequest(cl *client, data []byte, class core.LimitClass, eventType string) {
	var p requestPayload
	if !ctl.decode(cl.conn, data, &p) {
		return
	}
	err := ctl.Gw.Request(
		cl.limiter,
		class,
		eventType,
		domain.EventID(p.EventID),
		&domain.Participant{ID: domain.ParticipantID(p.ParticipantID), Name: p.ParticipantName},
		p.Reason,
	)
	if errors.Is(err, app.ErrRateLimited) {
		log.Warn().Str("module", "signal").
			Str("conn_id", string(cl.id)).
			Str("participant_id", p.ParticipantID).
			Str("request", eventType).
			Msg("request throttled")
		ctl.sendError(cl.conn, "rate_limited")
	}
}
