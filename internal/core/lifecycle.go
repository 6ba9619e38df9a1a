package core

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/JDav117/Sports-Event-LIVE/internal/domain"
)

// Notifier broadcasts event lifecycle transitions exactly once per
// transition. A cache of the last announced status absorbs duplicate
// upstream status updates; transition legality is the status source's
// problem, not ours.
type Notifier struct {
	reg *Registry

	mu   sync.Mutex
	last map[domain.EventID]domain.EventStatus
	now  func() time.Time
}

func NewNotifier(reg *Registry) *Notifier {
	return &Notifier{
		reg:  reg,
		last: make(map[domain.EventID]domain.EventStatus),
		now:  time.Now,
	}
}

// MarkStarted announces event.started unless it was already the last
// announced state. Returns whether a broadcast went out.
func (n *Notifier) MarkStarted(eventID domain.EventID) bool {
	return n.announce(eventID, domain.StatusLive, EventStarted)
}

// MarkEnded announces event.ended unless it was already the last
// announced state. Returns whether a broadcast went out.
func (n *Notifier) MarkEnded(eventID domain.EventID) bool {
	return n.announce(eventID, domain.StatusFinished, EventEnded)
}

func (n *Notifier) announce(
	eventID domain.EventID,
	status domain.EventStatus,
	eventType string,
) bool {
	n.mu.Lock()
	if n.last[eventID] == status {
		n.mu.Unlock()
		log.Debug().Str("module", "core.lifecycle").
			Str("event_id", string(eventID)).
			Str("status", string(status)).
			Msg("duplicate transition suppressed")
		return false
	}
	n.last[eventID] = status
	ts := n.now()
	n.mu.Unlock()

	n.reg.Broadcast(eventID, LifecycleEvent{
		Type:      eventType,
		EventID:   eventID,
		Timestamp: ts,
	})
	log.Info().Str("module", "core.lifecycle").
		Str("event_id", string(eventID)).
		Str("status", string(status)).
		Msg("lifecycle announced")
	return true
}
