package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/JDav117/Sports-Event-LIVE/internal/core"
	"github.com/JDav117/Sports-Event-LIVE/internal/domain"
)

// Machine-readable reason codes carried by join.denied.
const (
	DenyNotEnrolled          = "not_enrolled"
	DenyAuthorityUnavailable = "authority_unavailable"
)

// Audit action tags.
const (
	AuditJoinDenied = "ws_join_denied"
)

// Admission gates join attempts against the enrollment authority
// before any room state is touched. Fail-closed: a missing or
// non-approved enrollment and an unreachable authority all deny.
type Admission struct {
	Authority EnrollmentAuthority
	Audit     *core.AuditSink
}

// Decide resolves one join attempt. It performs the only I/O of the
// join path, so callers must invoke it before taking any room lock.
// The reason code is empty when admitted.
func (a *Admission) Decide(
	ctx context.Context,
	eventID domain.EventID,
	participantID domain.ParticipantID,
	remoteAddr string,
) (admitted bool, reason string) {
	approved, err := a.Authority.IsApproved(ctx, participantID, eventID)
	if err != nil {
		log.Error().Err(err).Str("module", "app.admission").
			Str("event_id", string(eventID)).
			Str("participant_id", string(participantID)).
			Msg("enrollment authority unreachable")
		a.audit(eventID, participantID, remoteAddr, DenyAuthorityUnavailable)
		return false, DenyAuthorityUnavailable
	}
	if !approved {
		a.audit(eventID, participantID, remoteAddr, DenyNotEnrolled)
		return false, DenyNotEnrolled
	}
	return true, ""
}

// audit is best effort and side channel; it can never fail the join
// path.
func (a *Admission) audit(
	eventID domain.EventID,
	participantID domain.ParticipantID,
	remoteAddr, reason string,
) {
	if a.Audit == nil {
		return
	}
	a.Audit.Record(core.AuditEntry{
		Action:        AuditJoinDenied,
		ParticipantID: participantID,
		EventID:       eventID,
		RemoteAddr:    remoteAddr,
		Detail:        reason,
	})
}
