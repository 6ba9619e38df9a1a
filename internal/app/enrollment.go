package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JDav117/Sports-Event-LIVE/internal/domain"
)

var (
	ErrEnrollmentExists   = errors.New("enrollment already exists")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
)

// EnrollmentAuthority answers whether a participant may join an
// event's live room. The live core treats any error as a denial.
type EnrollmentAuthority interface {
	IsApproved(ctx context.Context, participantID domain.ParticipantID, eventID domain.EventID) (bool, error)
}

type enrollmentKey struct {
	participantID domain.ParticipantID
	eventID       domain.EventID
}

// EnrollmentStore is the in-memory enrollment registry backing the
// admission check. One enrollment per (participant, event); only an
// approved one admits.
type EnrollmentStore struct {
	mu    sync.RWMutex
	byID  map[string]*domain.Enrollment
	byKey map[enrollmentKey]*domain.Enrollment
	now   func() time.Time
}

func NewEnrollmentStore() *EnrollmentStore {
	return &EnrollmentStore{
		byID:  make(map[string]*domain.Enrollment),
		byKey: make(map[enrollmentKey]*domain.Enrollment),
		now:   time.Now,
	}
}

func (s *EnrollmentStore) Create(
	participantID domain.ParticipantID,
	eventID domain.EventID,
	status domain.EnrollmentStatus,
) (domain.Enrollment, error) {
	if status == "" {
		status = domain.EnrollmentPending
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := enrollmentKey{participantID: participantID, eventID: eventID}
	if _, ok := s.byKey[key]; ok {
		return domain.Enrollment{}, ErrEnrollmentExists
	}
	now := s.now()
	e := &domain.Enrollment{
		ID:            uuid.NewString(),
		ParticipantID: participantID,
		EventID:       eventID,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.byID[e.ID] = e
	s.byKey[key] = e
	return *e, nil
}

func (s *EnrollmentStore) UpdateStatus(
	id string,
	status domain.EnrollmentStatus,
) (domain.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byID[id]
	if !ok {
		return domain.Enrollment{}, ErrEnrollmentNotFound
	}
	e.Status = status
	e.UpdatedAt = s.now()
	return *e, nil
}

func (s *EnrollmentStore) ByEvent(eventID domain.EventID) []domain.Enrollment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Enrollment, 0)
	for _, e := range s.byID {
		if e.EventID == eventID {
			out = append(out, *e)
		}
	}
	return out
}

// IsApproved implements EnrollmentAuthority. A missing enrollment is
// simply not approved; this store never errors.
func (s *EnrollmentStore) IsApproved(
	_ context.Context,
	participantID domain.ParticipantID,
	eventID domain.EventID,
) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byKey[enrollmentKey{participantID: participantID, eventID: eventID}]
	if !ok {
		return false, nil
	}
	return e.Status == domain.EnrollmentApproved, nil
}
