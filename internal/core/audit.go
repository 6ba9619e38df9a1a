package core

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/JDav117/Sports-Event-LIVE/internal/domain"
)

// DefaultAuditCapacity bounds the in-memory audit log.
const DefaultAuditCapacity = 1000

// AuditEntry is one recorded admission or security observation.
type AuditEntry struct {
	Timestamp     time.Time            `json:"timestamp"`
	Action        string               `json:"action"`
	ParticipantID domain.ParticipantID `json:"participantId,omitempty"`
	EventID       domain.EventID       `json:"eventId,omitempty"`
	RemoteAddr    string               `json:"remoteAddr,omitempty"`
	Detail        string               `json:"detail,omitempty"`
}

// AuditSink keeps a bounded in-memory log of abnormal attempts.
// Oldest entries fall off once the cap is reached; this is an
// inspection aid, not a durability guarantee. Recording can never
// fail the caller.
//
// Storage is a fixed-size ring so evicted entries are overwritten
// in place rather than retained by a sliding slice.
type AuditSink struct {
	mu      sync.Mutex
	entries []AuditEntry
	head    int // index of the oldest entry
	count   int
	now     func() time.Time
}

func NewAuditSink(capacity int) *AuditSink {
	if capacity <= 0 {
		capacity = DefaultAuditCapacity
	}
	return &AuditSink{entries: make([]AuditEntry, capacity), now: time.Now}
}

// Record appends an entry, evicting the oldest when over capacity.
func (s *AuditSink) Record(entry AuditEntry) {
	s.mu.Lock()
	entry.Timestamp = s.now()
	s.entries[(s.head+s.count)%len(s.entries)] = entry
	if s.count < len(s.entries) {
		s.count++
	} else {
		s.head = (s.head + 1) % len(s.entries)
	}
	s.mu.Unlock()
	log.Warn().Str("module", "core.audit").
		Str("action", entry.Action).
		Str("participant_id", string(entry.ParticipantID)).
		Str("event_id", string(entry.EventID)).
		Str("remote_addr", entry.RemoteAddr).
		Str("detail", entry.Detail).
		Msg("audit entry")
}

// Query returns up to limit entries, most recent first, optionally
// filtered by participant id and/or action tag. Zero limit means the
// whole log.
func (s *AuditSink) Query(
	participantID domain.ParticipantID,
	action string,
	limit int,
) []AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AuditEntry, 0, s.count)
	for i := s.count - 1; i >= 0; i-- {
		e := s.entries[(s.head+i)%len(s.entries)]
		if participantID != "" && e.ParticipantID != participantID {
			continue
		}
		if action != "" && e.Action != action {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
