package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JDav117/Sports-Event-LIVE/internal/core"
	"github.com/JDav117/Sports-Event-LIVE/internal/domain"
)

type fakeAuthority struct {
	approved map[string]bool
	err      error
}

func (f *fakeAuthority) IsApproved(
	_ context.Context,
	participantID domain.ParticipantID,
	eventID domain.EventID,
) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.approved[string(participantID)+"/"+string(eventID)], nil
}

func TestAdmissionApproved(t *testing.T) {
	assert := assert.New(t)
	adm := &Admission{
		Authority: &fakeAuthority{approved: map[string]bool{"p1/e1": true}},
		Audit:     core.NewAuditSink(10),
	}

	admitted, reason := adm.Decide(context.Background(), "e1", "p1", "10.0.0.1:555")
	assert.True(admitted)
	assert.Empty(reason)
	assert.Empty(adm.Audit.Query("", "", 0))
}

func TestAdmissionDeniesUnenrolled(t *testing.T) {
	assert := assert.New(t)
	audit := core.NewAuditSink(10)
	adm := &Admission{
		Authority: &fakeAuthority{approved: map[string]bool{}},
		Audit:     audit,
	}

	admitted, reason := adm.Decide(context.Background(), "e1", "p1", "10.0.0.1:555")
	assert.False(admitted)
	assert.Equal(DenyNotEnrolled, reason)

	entries := audit.Query("p1", AuditJoinDenied, 0)
	assert.Len(entries, 1)
	assert.Equal(domain.EventID("e1"), entries[0].EventID)
	assert.Equal("10.0.0.1:555", entries[0].RemoteAddr)
	assert.Equal(DenyNotEnrolled, entries[0].Detail)
}

func TestAdmissionFailsClosedOnAuthorityError(t *testing.T) {
	assert := assert.New(t)
	audit := core.NewAuditSink(10)
	adm := &Admission{
		Authority: &fakeAuthority{err: errors.New("enrollment db down")},
		Audit:     audit,
	}

	admitted, reason := adm.Decide(context.Background(), "e1", "p1", "10.0.0.1:555")
	assert.False(admitted)
	assert.Equal(DenyAuthorityUnavailable, reason)
	assert.Len(audit.Query("", AuditJoinDenied, 0), 1)
}

func TestAdmissionWithoutAuditSink(t *testing.T) {
	assert := assert.New(t)
	adm := &Admission{Authority: &fakeAuthority{}}

	// Audit is best effort; a missing sink never breaks the decision.
	admitted, reason := adm.Decide(context.Background(), "e1", "p1", "")
	assert.False(admitted)
	assert.Equal(DenyNotEnrolled, reason)
}

func TestEnrollmentStoreAuthority(t *testing.T) {
	assert := assert.New(t)
	s := NewEnrollmentStore()
	ctx := context.Background()

	e, err := s.Create("p1", "e1", "")
	assert.NoError(err)
	assert.Equal(domain.EnrollmentPending, e.Status)

	// Pending does not admit.
	ok, err := s.IsApproved(ctx, "p1", "e1")
	assert.NoError(err)
	assert.False(ok)

	_, err = s.UpdateStatus(e.ID, domain.EnrollmentApproved)
	assert.NoError(err)
	ok, _ = s.IsApproved(ctx, "p1", "e1")
	assert.True(ok)

	_, err = s.UpdateStatus(e.ID, domain.EnrollmentRejected)
	assert.NoError(err)
	ok, _ = s.IsApproved(ctx, "p1", "e1")
	assert.False(ok)

	// One enrollment per (participant, event).
	_, err = s.Create("p1", "e1", domain.EnrollmentApproved)
	assert.ErrorIs(err, ErrEnrollmentExists)

	_, err = s.UpdateStatus("nope", domain.EnrollmentApproved)
	assert.ErrorIs(err, ErrEnrollmentNotFound)

	assert.Len(s.ByEvent("e1"), 1)
	assert.Empty(s.ByEvent("e2"))
}
