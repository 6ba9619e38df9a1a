package core

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/JDav117/Sports-Event-LIVE/internal/domain"
)

// member binds a membership record to its transport endpoint.
type member struct {
	membership domain.Membership
	signal     SignalConnection
}

// room is the threadsafe member set of one live event.
// It owns the membership records but never closes adapter-owned
// connections. Fan-out runs under the room lock so that delivery order
// matches acceptance order for every member.
type room struct {
	eventID domain.EventID

	mu            sync.Mutex
	dead          bool
	byParticipant map[domain.ParticipantID]*member
	byConn        map[domain.ConnID]domain.ParticipantID
}

func newRoom(eventID domain.EventID) *room {
	return &room{
		eventID:       eventID,
		byParticipant: make(map[domain.ParticipantID]*member),
		byConn:        make(map[domain.ConnID]domain.ParticipantID),
	}
}

// add inserts a membership unless the participant already holds one.
// The second return is false when the room has been pruned and the
// caller must retry against a fresh room.
func (r *room) add(m domain.Membership, sig SignalConnection) (added, alive bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dead {
		return false, false
	}
	if _, ok := r.byParticipant[m.ParticipantID]; ok {
		return false, true
	}
	r.byParticipant[m.ParticipantID] = &member{membership: m, signal: sig}
	r.byConn[m.ConnID] = m.ParticipantID
	log.Info().Str("module", "core.room").
		Str("event_id", string(r.eventID)).
		Str("participant_id", string(m.ParticipantID)).
		Msg("member added")
	return true, true
}

func (r *room) removeByParticipant(id domain.ParticipantID) (domain.Membership, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byParticipant[id]
	if !ok {
		return domain.Membership{}, false
	}
	delete(r.byParticipant, id)
	delete(r.byConn, m.membership.ConnID)
	log.Info().Str("module", "core.room").
		Str("event_id", string(r.eventID)).
		Str("participant_id", string(id)).
		Msg("member removed")
	return m.membership, true
}

func (r *room) removeByConn(id domain.ConnID) (domain.Membership, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pid, ok := r.byConn[id]
	if !ok {
		return domain.Membership{}, false
	}
	m := r.byParticipant[pid]
	delete(r.byParticipant, pid)
	delete(r.byConn, id)
	log.Info().Str("module", "core.room").
		Str("event_id", string(r.eventID)).
		Str("participant_id", string(pid)).
		Msg("member removed on disconnect")
	return m.membership, true
}

func (r *room) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byParticipant)
}

// snapshot is a copy-on-read view, safe to iterate while the room
// keeps mutating. Ordered by join time for stable rosters.
func (r *room) snapshot() []domain.Membership {
	r.mu.Lock()
	out := make([]domain.Membership, 0, len(r.byParticipant))
	for _, m := range r.byParticipant {
		out = append(out, m.membership)
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].ParticipantID < out[j].ParticipantID
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out
}

func (r *room) get(id domain.ParticipantID) (domain.Membership, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byParticipant[id]
	if !ok {
		return domain.Membership{}, false
	}
	return m.membership, true
}

// broadcast fans a frame out to every current member, sender included.
// Slow members lose the frame rather than blocking the room.
func (r *room) broadcast(data Frame) PublishResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := PublishResult{}
	for _, m := range r.byParticipant {
		if err := m.signal.TrySend(data); err != nil {
			res.Dropped++
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "core.room").
		Str("event_id", string(r.eventID)).
		Int("sent_to", res.SentTo).
		Int("dropped", res.Dropped).
		Msg("broadcast result")
	return res
}
