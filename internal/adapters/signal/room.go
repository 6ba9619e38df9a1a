package signal

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/JDav117/Sports-Event-LIVE/internal/core"
	"github.com/JDav117/Sports-Event-LIVE/internal/domain"
)

func (ctl *Controller) handleJoin(ctx context.Context, cl *client, data []byte) {
	var p struct {
		Type            string `json:"type"`
		EventID         string `json:"eventId" validate:"required"`
		ParticipantID   string `json:"participantId" validate:"required,max=64"`
		ParticipantName string `json:"participantName" validate:"required,max=36"`
	}
	if !ctl.decode(cl.conn, data, &p) {
		return
	}
	participant, err := domain.NewParticipant(domain.ParticipantID(p.ParticipantID), p.ParticipantName)
	if err != nil {
		ctl.sendError(cl.conn, "bad_payload")
		return
	}
	eventID := domain.EventID(p.EventID)

	res := ctl.Gw.Join(ctx, eventID, participant, cl.id, cl.conn, cl.remoteAddr)
	if !res.Admitted {
		log.Warn().Str("module", "signal").
			Str("event_id", p.EventID).
			Str("participant_id", p.ParticipantID).
			Str("reason", res.Reason).
			Msg("join denied")
		ctl.sendJSON(cl.conn, map[string]any{
			"type":    core.EventJoinDenied,
			"eventId": p.EventID,
			"reason":  res.Reason,
		})
		return
	}

	log.Info().Str("module", "signal").
		Str("event_id", p.EventID).
		Str("participant_id", p.ParticipantID).
		Msg("join")
	ctl.sendJSON(cl.conn, map[string]any{
		"type":           "joined",
		"eventId":        p.EventID,
		"connectedCount": res.ConnectedCount,
	})
}

func (ctl *Controller) handleLeave(cl *client, data []byte) {
	var p struct {
		Type          string `json:"type"`
		EventID       string `json:"eventId" validate:"required"`
		ParticipantID string `json:"participantId" validate:"required"`
	}
	if !ctl.decode(cl.conn, data, &p) {
		return
	}

	log.Info().Str("module", "signal").
		Str("event_id", p.EventID).
		Str("participant_id", p.ParticipantID).
		Msg("leave")
	roster, removed := ctl.Gw.Leave(domain.EventID(p.EventID), domain.ParticipantID(p.ParticipantID))

	ctl.sendJSON(cl.conn, map[string]any{
		"type": "left",
	})
	if removed {
		// The leaver is out of the broadcast group already; echo the
		// updated roster directly so their client sees the new count.
		ctl.sendJSON(cl.conn, roster)
	}
}
