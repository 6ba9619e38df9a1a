package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/JDav117/Sports-Event-LIVE/internal/core"
	"github.com/JDav117/Sports-Event-LIVE/internal/domain"
)

// DefaultMinAttendanceMinutes is the presence threshold when the
// config leaves it unset.
const DefaultMinAttendanceMinutes = 10

// AttendanceStore persists derived attendance records. The live core
// itself stores nothing durable; this is the seam a database-backed
// implementation plugs into.
type AttendanceStore interface {
	Upsert(rec domain.Attendance)
	Get(eventID domain.EventID, participantID domain.ParticipantID) (domain.Attendance, bool)
	ByEvent(eventID domain.EventID) []domain.Attendance
}

type attendanceKey struct {
	eventID       domain.EventID
	participantID domain.ParticipantID
}

// MemoryAttendanceStore is the in-memory AttendanceStore.
type MemoryAttendanceStore struct {
	mu   sync.RWMutex
	recs map[attendanceKey]domain.Attendance
}

func NewMemoryAttendanceStore() *MemoryAttendanceStore {
	return &MemoryAttendanceStore{recs: make(map[attendanceKey]domain.Attendance)}
}

func (s *MemoryAttendanceStore) Upsert(rec domain.Attendance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[attendanceKey{eventID: rec.EventID, participantID: rec.ParticipantID}] = rec
}

func (s *MemoryAttendanceStore) Get(
	eventID domain.EventID,
	participantID domain.ParticipantID,
) (domain.Attendance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.recs[attendanceKey{eventID: eventID, participantID: participantID}]
	return rec, ok
}

func (s *MemoryAttendanceStore) ByEvent(eventID domain.EventID) []domain.Attendance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Attendance, 0)
	for k, rec := range s.recs {
		if k.eventID == eventID {
			out = append(out, rec)
		}
	}
	return out
}

// Recorder derives attendance from live connection time. It is the
// consumer side of the presence core: Finalize must run while the
// memberships are still alive, because a membership that is already
// gone reads as zero minutes.
type Recorder struct {
	Registry   *core.Registry
	Store      AttendanceStore
	MinMinutes int

	// connTime defaults to the registry's live lookup; swappable so
	// derivation is testable without a clock.
	connTime func(domain.EventID, domain.ParticipantID) time.Duration
	now      func() time.Time
}

func NewRecorder(reg *core.Registry, store AttendanceStore, minMinutes int) *Recorder {
	if minMinutes <= 0 {
		minMinutes = DefaultMinAttendanceMinutes
	}
	return &Recorder{
		Registry:   reg,
		Store:      store,
		MinMinutes: minMinutes,
		connTime:   reg.ConnectionTime,
		now:        time.Now,
	}
}

// Mark samples the participant's live connection time and upserts
// their attendance record. Minutes only ever grow: a repeated mark
// keeps the maximum observed value.
func (r *Recorder) Mark(
	eventID domain.EventID,
	participantID domain.ParticipantID,
	participantName string,
) domain.Attendance {
	minutes := int(r.connTime(eventID, participantID) / time.Minute)

	rec, ok := r.Store.Get(eventID, participantID)
	if !ok {
		rec = domain.Attendance{
			ParticipantID:   participantID,
			ParticipantName: participantName,
			EventID:         eventID,
		}
	}
	if minutes > rec.MinutesConnected {
		rec.MinutesConnected = minutes
	}
	rec.WasPresent = rec.MinutesConnected >= r.MinMinutes
	rec.RecordedAt = r.now()
	r.Store.Upsert(rec)
	return rec
}

// Finalize records attendance for every participant still connected
// to the event. Called on the finished transition, before clients
// start disconnecting and their connection times become unrecoverable.
func (r *Recorder) Finalize(eventID domain.EventID) []domain.Attendance {
	members := r.Registry.Members(eventID)
	out := make([]domain.Attendance, 0, len(members))
	for _, m := range members {
		out = append(out, r.Mark(eventID, m.ParticipantID, m.ParticipantName))
	}
	log.Info().Str("module", "app.attendance").
		Str("event_id", string(eventID)).
		Int("records", len(out)).
		Msg("attendance finalized")
	return out
}

// ByEvent exposes the stored records for the inspection API.
func (r *Recorder) ByEvent(eventID domain.EventID) []domain.Attendance {
	return r.Store.ByEvent(eventID)
}
