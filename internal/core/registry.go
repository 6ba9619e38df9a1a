package core

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/JDav117/Sports-Event-LIVE/internal/domain"
)

// RoomInfo is a per-room summary for the management API.
type RoomInfo struct {
	EventID     domain.EventID `json:"eventId"`
	MemberCount int            `json:"memberCount"`
}

// Registry maps event ids to live rooms and is the ground truth for
// who is currently present. Rooms are created on first join and pruned
// when their last member leaves. The registry lock guards only the
// map; membership state is guarded per room.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.EventID]*room

	// now is swappable for tests; the zero registry uses time.Now,
	// whose monotonic reading keeps connection times skew-free.
	now func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[domain.EventID]*room),
		now:   time.Now,
	}
}

func (r *Registry) getOrCreate(eventID domain.EventID) *room {
	r.mu.RLock()
	rm, ok := r.rooms[eventID]
	r.mu.RUnlock()
	if ok {
		return rm
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if rm, ok = r.rooms[eventID]; ok {
		return rm
	}
	rm = newRoom(eventID)
	r.rooms[eventID] = rm
	log.Info().Str("module", "core.registry").
		Str("event_id", string(eventID)).
		Msg("room created")
	return rm
}

func (r *Registry) lookup(eventID domain.EventID) (*room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.rooms[eventID]
	return rm, ok
}

// prune drops the room if it is still empty. The dead flag makes a
// racing Join retry against a fresh room instead of landing in a
// removed one.
func (r *Registry) prune(rm *room) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if len(rm.byParticipant) != 0 || rm.dead {
		return
	}
	rm.dead = true
	delete(r.rooms, rm.eventID)
	log.Info().Str("module", "core.registry").
		Str("event_id", string(rm.eventID)).
		Msg("empty room pruned")
}

// Join adds a membership for the participant unless one already
// exists in that room. Idempotent: a repeat join by the same
// participant id is a no-op and returns the existing membership.
func (r *Registry) Join(
	eventID domain.EventID,
	p *domain.Participant,
	connID domain.ConnID,
	sig SignalConnection,
) (domain.Membership, bool) {
	m := domain.Membership{
		ConnID:          connID,
		ParticipantID:   p.ID,
		ParticipantName: p.Name,
		EventID:         eventID,
		JoinedAt:        r.now(),
	}
	for {
		rm := r.getOrCreate(eventID)
		added, alive := rm.add(m, sig)
		if !alive {
			continue
		}
		if !added {
			existing, _ := rm.get(p.ID)
			return existing, false
		}
		return m, true
	}
}

// Leave removes the participant's membership from the room, pruning
// the room if it is now empty. Unknown members are a benign no-op.
func (r *Registry) Leave(
	eventID domain.EventID,
	participantID domain.ParticipantID,
) (domain.Membership, bool) {
	rm, ok := r.lookup(eventID)
	if !ok {
		return domain.Membership{}, false
	}
	m, removed := rm.removeByParticipant(participantID)
	if removed && rm.count() == 0 {
		r.prune(rm)
	}
	return m, removed
}

// DisconnectAll resolves a transport disconnect: every room is scanned
// for a membership bound to the connection handle. A connection that
// never completed a join removes nothing.
func (r *Registry) DisconnectAll(connID domain.ConnID) []domain.Membership {
	r.mu.RLock()
	rooms := make([]*room, 0, len(r.rooms))
	for _, rm := range r.rooms {
		rooms = append(rooms, rm)
	}
	r.mu.RUnlock()

	var removed []domain.Membership
	for _, rm := range rooms {
		if m, ok := rm.removeByConn(connID); ok {
			removed = append(removed, m)
			if rm.count() == 0 {
				r.prune(rm)
			}
		}
	}
	return removed
}

// Members returns a copy-on-read snapshot of the room's memberships,
// ordered by join time.
func (r *Registry) Members(eventID domain.EventID) []domain.Membership {
	rm, ok := r.lookup(eventID)
	if !ok {
		return nil
	}
	return rm.snapshot()
}

// ConnectionTime reports how long the participant has been connected
// to the event's room. Zero when absent: once a member has left, the
// observation is gone from the live registry.
func (r *Registry) ConnectionTime(
	eventID domain.EventID,
	participantID domain.ParticipantID,
) time.Duration {
	rm, ok := r.lookup(eventID)
	if !ok {
		return 0
	}
	m, ok := rm.get(participantID)
	if !ok {
		return 0
	}
	d := r.now().Sub(m.JoinedAt)
	if d < 0 {
		return 0
	}
	return d
}

// Broadcast marshals the event once and fans it out to every member
// of the room. A missing room is a no-op.
func (r *Registry) Broadcast(eventID domain.EventID, v any) PublishResult {
	rm, ok := r.lookup(eventID)
	if !ok {
		return PublishResult{}
	}
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "core.registry").Msg("broadcast marshal")
		return PublishResult{}
	}
	return rm.broadcast(data)
}

// Roster builds the roster.update payload for a room.
func (r *Registry) Roster(eventID domain.EventID) RosterUpdate {
	members := r.Members(eventID)
	views := make([]MemberView, 0, len(members))
	for _, m := range members {
		views = append(views, MemberView{
			ParticipantID:   m.ParticipantID,
			ParticipantName: m.ParticipantName,
			JoinedAt:        m.JoinedAt,
		})
	}
	return RosterUpdate{
		Type:           EventRosterUpdate,
		EventID:        eventID,
		ConnectedCount: len(views),
		Members:        views,
	}
}

// Rooms lists every live room with its member count.
func (r *Registry) Rooms() []RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RoomInfo, 0, len(r.rooms))
	for id, rm := range r.rooms {
		out = append(out, RoomInfo{EventID: id, MemberCount: rm.count()})
	}
	return out
}
